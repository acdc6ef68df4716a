// Package identity verifies bearer credentials and yields the principal
// they name.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnauthenticated means the request carried no usable credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means a credential was presented but could not be
	// validated.
	ErrForbidden = errors.New("forbidden")
)

// Principal is the verified identity behind a request.
type Principal struct {
	Subject string
	Email   string
	Claims  jwt.MapClaims
}

// Config selects how tokens are verified. A public key switches the
// verifier to RS256; otherwise Secret is used with HS256.
type Config struct {
	Secret       string
	PublicKeyPEM []byte
	Issuer       string
	Audience     string
	Leeway       time.Duration
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier struct {
	parser *jwt.Parser
	key    any
}

// NewVerifier builds a Verifier from cfg.
func NewVerifier(cfg Config) (*Verifier, error) {
	var (
		key any
		alg string
	)
	switch {
	case len(cfg.PublicKeyPEM) > 0:
		pub, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		key, alg = pub, jwt.SigningMethodRS256.Alg()
	case cfg.Secret != "":
		key, alg = []byte(cfg.Secret), jwt.SigningMethodHS256.Alg()
	default:
		return nil, errors.New("identity: no verification key configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{alg})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &Verifier{parser: jwt.NewParser(opts...), key: key}, nil
}

// Verify checks an Authorization header value of the form "Bearer <token>".
// A missing header, scheme or token yields ErrUnauthenticated; a token the
// verifier rejects, or one without an email claim, yields ErrForbidden.
func (v *Verifier) Verify(_ context.Context, header string) (Principal, error) {
	raw, ok := bearer(header)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}

	claims := jwt.MapClaims{}
	tok, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if !tok.Valid {
		return Principal{}, ErrForbidden
	}

	email, _ := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Principal{}, fmt.Errorf("%w: token has no email claim", ErrForbidden)
	}
	sub, _ := claims.GetSubject()
	return Principal{Subject: sub, Email: email, Claims: claims}, nil
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return raw, raw != ""
}
