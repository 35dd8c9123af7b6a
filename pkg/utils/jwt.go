package utils

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/todo-api/internal/transfer"
)

var ErrNoSessionKey = errors.New("no session verification key configured")

// GenerateToken issues an HS256 session token for userID. Production sessions
// come from the identity provider; this is used for local development and tests.
func GenerateToken(secretKey, userID string, tokenDuration time.Duration) (string, error) {
	claims := transfer.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "todo-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signedToken, nil
}

// SessionVerifier validates session tokens with the provider's RSA public key
// when one is configured, falling back to a shared HMAC secret.
type SessionVerifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
}

func NewSessionVerifier(secret, publicKeyPEM string) (*SessionVerifier, error) {
	v := &SessionVerifier{}
	if publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse session public key: %w", err)
		}
		v.publicKey = key
	} else if secret != "" {
		v.secret = []byte(secret)
	} else {
		return nil, ErrNoSessionKey
	}
	return v, nil
}

func (v *SessionVerifier) Validate(tokenString string) (*transfer.SessionClaims, error) {
	var opts []jwt.ParserOption
	var keyFunc jwt.Keyfunc

	if v.publicKey != nil {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
		keyFunc = func(token *jwt.Token) (interface{}, error) { return v.publicKey, nil }
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		keyFunc = func(token *jwt.Token) (interface{}, error) { return v.secret, nil }
	}
	opts = append(opts, jwt.WithExpirationRequired(), jwt.WithLeeway(5*time.Second))

	token, err := jwt.ParseWithClaims(tokenString, &transfer.SessionClaims{}, keyFunc, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*transfer.SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
