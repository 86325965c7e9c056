package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider issues and verifies signed identity tokens. It is
// stateless beyond its key material and safe for concurrent use.
type TokenProvider struct {
	secret   []byte
	lifetime time.Duration
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewTokenProvider creates a provider signing HS256 tokens that expire
// after the given lifetime.
func NewTokenProvider(secret []byte, lifetime time.Duration) *TokenProvider {
	return &TokenProvider{secret: secret, lifetime: lifetime}
}

// Issue generates a signed token carrying the subject and role claims.
func (p *TokenProvider) Issue(subject, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.lifetime)),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify reports whether the token is well-formed, carries a valid
// signature, and has not expired. There is no leeway window.
func (p *TokenProvider) Verify(tokenString string) bool {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, p.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && token.Valid
}

// SubjectOf extracts the subject claim without re-checking the signature.
// Callers must only use it on tokens that already passed Verify.
func (p *TokenProvider) SubjectOf(tokenString string) string {
	claims := p.parseClaims(tokenString)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// RoleOf extracts the role claim without re-checking the signature.
// Callers must only use it on tokens that already passed Verify.
func (p *TokenProvider) RoleOf(tokenString string) string {
	claims := p.parseClaims(tokenString)
	if claims == nil {
		return ""
	}
	return claims.Role
}

func (p *TokenProvider) parseClaims(tokenString string) *tokenClaims {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return p.secret, nil
}
