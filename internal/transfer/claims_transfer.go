package transfer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the identity provider's session token. The subject carries
// the user id; sid is the provider's session id when present.
type SessionClaims struct {
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}
