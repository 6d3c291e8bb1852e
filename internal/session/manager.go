// Package session implements the browser session: a signed JWT carried in an
// HttpOnly cookie, with sliding expiration and Redis-backed revocation.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie.
const CookieName = "quill_session"

const (
	issuer   = "quill"
	audience = "quill-web"
)

// Token is a validated session token.
type Token struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// Manager issues, validates, and revokes session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	now    func() time.Time
	secure bool
}

// NewManager returns a session manager. rdb may be nil; revocation then
// degrades to cookie clearing only. secure controls the cookie Secure flag.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		redis:  rdb,
		now:    time.Now,
		secure: secure,
	}
}

// Issue creates a signed session token for the given user.
func (m *Manager) Issue(userID uint) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": issuer,
		"aud": audience,
		"exp": expires.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expires, nil
}

// Validate parses and verifies a session token and checks it has not been
// revoked. Any failure means the request proceeds as anonymous.
func (m *Manager) Validate(ctx context.Context, tokenString string) (*Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("invalid user ID in session token")
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && m.redis != nil {
		revoked, err := m.redis.Exists(ctx, revocationKey(jti)).Result()
		if err == nil && revoked > 0 {
			return nil, fmt.Errorf("session has been revoked")
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("missing expiry claim")
	}

	return &Token{
		UserID:    uint(userID),
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}

// ShouldRenew reports whether less than half the session TTL remains, the
// trigger for the sliding-expiration reissue.
func (m *Manager) ShouldRenew(t *Token) bool {
	return t.ExpiresAt.Sub(m.now()) < m.ttl/2
}

// Revoke blacklists the token's jti for the remainder of its life. Revoking
// an invalid or already-revoked token is a no-op: logout is idempotent.
func (m *Manager) Revoke(ctx context.Context, tokenString string) {
	if m.redis == nil || tokenString == "" {
		return
	}

	token, err := m.Validate(ctx, tokenString)
	if err != nil {
		return
	}

	remaining := time.Until(token.ExpiresAt)
	if remaining <= 0 || token.JTI == "" {
		return
	}
	m.redis.Set(ctx, revocationKey(token.JTI), "1", remaining)
}

func revocationKey(jti string) string {
	return "session:revoked:" + jti
}

// Cookie builds the session cookie for a token.
func (m *Manager) Cookie(token string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// ClearCookie builds an expired session cookie.
func (m *Manager) ClearCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
