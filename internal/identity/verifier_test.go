package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fastshift/internal/identity"
)

const secret = "test-secret"

func issue(t *testing.T, p identity.IssueParams) string {
	t.Helper()
	if p.Secret == "" {
		p.Secret = secret
	}
	if p.TTL == 0 {
		p.TTL = time.Hour
	}
	tok, err := identity.Issue(p)
	require.NoError(t, err)
	return tok.Token
}

func TestVerify_MissingOrMalformedHeader(t *testing.T) {
	v, err := identity.NewVerifier(identity.Config{Secret: secret})
	require.NoError(t, err)

	for _, h := range []string{"", "Basic abc", "Bearer", "Bearer   ", "bearer abc"} {
		_, err := v.Verify(context.Background(), h)
		assert.ErrorIs(t, err, identity.ErrUnauthenticated, "header %q", h)
	}
}

func TestVerify_RejectedToken(t *testing.T) {
	v, err := identity.NewVerifier(identity.Config{Secret: secret})
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "Bearer not.a.token",
		"wrong secret": "Bearer " + issue(t, identity.IssueParams{Secret: "other", Email: "a@x.com"}),
		"expired":      "Bearer " + issue(t, identity.IssueParams{Email: "a@x.com", TTL: -time.Minute}),
		"no email":     "Bearer " + issue(t, identity.IssueParams{Subject: "u1"}),
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), h)
			assert.ErrorIs(t, err, identity.ErrForbidden)
		})
	}
}

func TestVerify_OK(t *testing.T) {
	v, err := identity.NewVerifier(identity.Config{Secret: secret, Issuer: "fastshift", Audience: "web"})
	require.NoError(t, err)

	tok := issue(t, identity.IssueParams{Subject: "u1", Email: "A@X.com", Issuer: "fastshift", Audience: "web"})
	p, err := v.Verify(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.Subject)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "web", p.Claims["aud"])

	wrongAud := issue(t, identity.IssueParams{Email: "a@x.com", Issuer: "fastshift", Audience: "mobile"})
	_, err = v.Verify(context.Background(), "Bearer "+wrongAud)
	assert.ErrorIs(t, err, identity.ErrForbidden)
}

func TestVerify_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := identity.NewVerifier(identity.Config{PublicKeyPEM: pemBytes})
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"email": "r@x.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	p, err := v.Verify(context.Background(), "Bearer "+signed)
	require.NoError(t, err)
	assert.Equal(t, "r@x.com", p.Email)

	// an HS256 token must not pass an RS256 verifier
	_, err = v.Verify(context.Background(), "Bearer "+issue(t, identity.IssueParams{Email: "r@x.com"}))
	assert.ErrorIs(t, err, identity.ErrForbidden)
}

func TestNewVerifier_NoKey(t *testing.T) {
	_, err := identity.NewVerifier(identity.Config{})
	assert.Error(t, err)
}
