package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrNoSecret is returned by a TokenIssuer built without a secret.
var ErrNoSecret = errors.New("jwt secret is not configured")

// TokenIssuer signs and validates admin session tokens.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer returns an issuer for the given HMAC secret.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &TokenIssuer{secret: []byte(secret)}, nil
}

// GenerateToken creates a signed JWT token with the given subject.
// The token expires after the specified duration.
func (ti *TokenIssuer) GenerateToken(subject, role string, duration time.Duration) (string, error) {
	if ti == nil {
		return "", ErrNoSecret
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// ValidateToken parses and validates a token string and returns its claims.
func (ti *TokenIssuer) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	if ti == nil {
		return nil, ErrNoSecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
