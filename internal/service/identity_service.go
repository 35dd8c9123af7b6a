package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maheshrc27/todo-api/internal/transfer"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const RoleAdmin = "admin"

// IdentityService reads user attributes from the identity provider's backend API.
type IdentityService interface {
	GetUserRole(ctx context.Context, userID string) (string, error)
}

type identityService struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewIdentityService(baseURL, secretKey string, log *zap.Logger) IdentityService {
	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: secretKey,
		TokenType:   "Bearer",
	}))
	client.Timeout = 10 * time.Second

	return &identityService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

func (s *identityService) GetUserRole(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s", s.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("identity provider request", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("identity provider response", zap.String("user_id", userID), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrIdentityUnavailable, resp.StatusCode)
	}

	var user transfer.IdentityUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: decode user: %v", ErrIdentityUnavailable, err)
	}

	return user.PublicMetadata.Role, nil
}
