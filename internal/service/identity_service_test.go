package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetUserRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk_test_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/users/user_admin":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"user_admin","public_metadata":{"role":"admin"}}`))
		case "/v1/users/user_plain":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"user_plain","public_metadata":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewIdentityService(srv.URL+"/", "sk_test_123", zap.NewNop())

	role, err := svc.GetUserRole(context.Background(), "user_admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = svc.GetUserRole(context.Background(), "user_plain")
	require.NoError(t, err)
	assert.Empty(t, role)

	_, err = svc.GetUserRole(context.Background(), "user_missing")
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
}

func TestGetUserRoleBadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewIdentityService(srv.URL, "wrong", zap.NewNop())
	_, err := svc.GetUserRole(context.Background(), "user_admin")
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
}
