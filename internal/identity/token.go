package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a signed HS256 token with its expiry.
type Token struct {
	Token string
	Exp   time.Time
}

// IssueParams describes a development token.
type IssueParams struct {
	Secret   string
	Subject  string
	Email    string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Issue signs an HS256 token carrying the email claim the verifier
// requires. Production tokens come from the identity provider; this is for
// local runs and tests.
func Issue(p IssueParams) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(p.TTL)
	claims := jwt.MapClaims{
		"sub":   p.Subject,
		"email": p.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	if p.Issuer != "" {
		claims["iss"] = p.Issuer
	}
	if p.Audience != "" {
		claims["aud"] = p.Audience
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.Secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, Exp: exp}, nil
}
