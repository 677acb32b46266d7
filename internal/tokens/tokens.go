package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/versegallery/versegallery/internal/config"
)

var (
	ErrInvalidSession = errors.New("invalid session credential")
	ErrExpiredSession = errors.New("expired session credential")
)

// Issuer mints and validates session credentials: HS256 JWTs binding only
// the username claim. Scope decisions are made by re-reading user metadata
// at access time, so the token stays minimal. Every token carries an expiry;
// an empty secret or non-positive TTL is a configuration error.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(cfg *config.Config) (*Issuer, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("session signing secret is required")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	return &Issuer{secret: []byte(cfg.JWT.Secret), ttl: cfg.JWT.AccessTokenTTL}, nil
}

// Issue creates a signed credential for the username with iat/exp claims.
func (i *Issuer) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(i.secret)
}

// Validate parses and verifies the credential and returns the username.
// Tokens without an expiry claim are rejected outright.
func (i *Issuer) Validate(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredSession
		}
		return "", ErrInvalidSession
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidSession
	}
	if _, ok := claims["exp"]; !ok {
		// a credential without a validity window is treated as invalid
		return "", ErrInvalidSession
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidSession
	}
	return sub, nil
}

// TTL exposes the configured validity window (used by the logout blacklist).
func (i *Issuer) TTL() time.Duration { return i.ttl }
