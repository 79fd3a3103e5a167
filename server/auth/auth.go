// Package auth holds the admin gate and the session identity plumbing behind it.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// DefaultSessionTTL bounds minted sessions.
const DefaultSessionTTL = 24 * time.Hour

// IdentityResolver resolves an opaque session token to an email identity.
type IdentityResolver interface {
	// Resolve returns the identity email, or an error for any missing,
	// invalid or unverifiable token.
	Resolve(ctx context.Context, token string) (string, error)
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionSigner both mints and resolves HS256-signed session tokens.
type SessionSigner struct {
	secret []byte
}

// NewSessionSigner creates a signer from the instance secret.
func NewSessionSigner(secret string) *SessionSigner {
	return &SessionSigner{secret: []byte(secret)}
}

// Mint issues a signed session token for the given identity.
func (s *SessionSigner) Mint(email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chordsync",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}
	return signed, nil
}

// Resolve verifies a session token and extracts the identity email.
func (s *SessionSigner) Resolve(_ context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("missing session token")
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to parse session token")
	}
	if !token.Valid || claims.Email == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Email, nil
}

// AdminGate decides whether the acting identity may force-regenerate or
// delete cached artifacts.
type AdminGate struct {
	resolver IdentityResolver
	allowed  map[string]struct{}
}

// NewAdminGate creates a gate over the given allow-list.
func NewAdminGate(resolver IdentityResolver, allowedEmails []string) *AdminGate {
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, email := range allowedEmails {
		allowed[email] = struct{}{}
	}
	return &AdminGate{
		resolver: resolver,
		allowed:  allowed,
	}
}

// IsAuthorized reports whether the token resolves to an allow-listed identity.
// Any resolution failure yields false, never an error.
func (g *AdminGate) IsAuthorized(ctx context.Context, token string) bool {
	email, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		slog.Debug("admin check failed", "error", err)
		return false
	}
	_, ok := g.allowed[email]
	return ok
}

// VerifyAdminToken compares a presented bootstrap token against the configured
// bcrypt hash.
func VerifyAdminToken(tokenHash, token string) bool {
	if tokenHash == "" || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) == nil
}
