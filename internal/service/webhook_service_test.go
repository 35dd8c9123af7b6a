package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

const userCreatedPayload = `{
	"type": "user.created",
	"object": "event",
	"data": {
		"id": "user_29w83sxmDNGwOuEthce5gg56FcC",
		"email_addresses": [
			{"id": "idn_secondary", "email_address": "other@example.org"},
			{"id": "idn_29w83yL7CwVlJXylYLxcslromF1", "email_address": "example@example.org"}
		],
		"primary_email_address_id": "idn_29w83yL7CwVlJXylYLxcslromF1"
	}
}`

func signedHeaders(t *testing.T, payload []byte) http.Header {
	t.Helper()
	wh, err := svix.NewWebhook(testWebhookSecret)
	require.NoError(t, err)

	ts := time.Now()
	sig, err := wh.Sign("msg_2LJ5", ts, payload)
	require.NoError(t, err)

	h := http.Header{}
	h.Set(HeaderSvixID, "msg_2LJ5")
	h.Set(HeaderSvixTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderSvixSignature, sig)
	return h
}

func newTestWebhookService(secret string) (WebhookService, *memoryUserRepo) {
	users := newMemoryUserRepo()
	return NewWebhookService(secret, NewUserService(users, zap.NewNop()), zap.NewNop()), users
}

func TestWebhookRegistersUser(t *testing.T) {
	svc, users := newTestWebhookService(testWebhookSecret)
	payload := []byte(userCreatedPayload)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))

	u := users.get("user_29w83sxmDNGwOuEthce5gg56FcC")
	require.NotNil(t, u)
	assert.Equal(t, "example@example.org", u.Username)
	assert.False(t, u.IsSubscribed)
	assert.Nil(t, u.SubscriptionEnds)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	svc, users := newTestWebhookService(testWebhookSecret)
	payload := []byte(userCreatedPayload)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))
	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))
	assert.Len(t, users.users, 1)
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	svc, users := newTestWebhookService(testWebhookSecret)
	headers := signedHeaders(t, []byte(userCreatedPayload))
	tampered := []byte(`{"type":"user.created","data":{"id":"user_evil","email_addresses":[{"id":"e","email_address":"evil@example.org"}],"primary_email_address_id":"e"}}`)

	err := svc.HandleEvent(context.Background(), tampered, headers)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, users.users)
}

func TestWebhookRequiresHeaders(t *testing.T) {
	svc, _ := newTestWebhookService(testWebhookSecret)
	payload := []byte(userCreatedPayload)
	headers := signedHeaders(t, payload)
	headers.Del(HeaderSvixSignature)

	err := svc.HandleEvent(context.Background(), payload, headers)
	assert.ErrorIs(t, err, ErrMissingWebhookHeaders)
}

func TestWebhookRequiresSecret(t *testing.T) {
	svc, users := newTestWebhookService("")
	payload := []byte(userCreatedPayload)

	err := svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload))
	assert.ErrorIs(t, err, ErrWebhookSecretMissing)
	assert.Empty(t, users.users)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	svc, users := newTestWebhookService(testWebhookSecret)
	payload := []byte(`{"type":"user.deleted","object":"event","data":{"id":"user_1"}}`)

	require.NoError(t, svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload)))
	assert.Empty(t, users.users)
}

func TestWebhookMissingPrimaryEmail(t *testing.T) {
	svc, users := newTestWebhookService(testWebhookSecret)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1","email_addresses":[{"id":"a","email_address":"a@example.org"}],"primary_email_address_id":"b"}}`)

	err := svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload))
	assert.ErrorIs(t, err, ErrMissingPrimaryEmail)
	assert.Empty(t, users.users)
}

func TestWebhookMalformedJSON(t *testing.T) {
	svc, _ := newTestWebhookService(testWebhookSecret)
	payload := []byte(`{"type":`)

	err := svc.HandleEvent(context.Background(), payload, signedHeaders(t, payload))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
