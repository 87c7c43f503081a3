package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var ErrNoSession = errors.New("no session")

// Sessions issues and reads the admin session cookie.
type Sessions struct {
	creds      *Credentials
	jwt        *JWTManager
	cookieName string
	maxAge     time.Duration
	secure     bool
}

type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

func NewSessions(creds *Credentials, jwt *JWTManager, cfg SessionConfig) *Sessions {
	if cfg.CookieName == "" {
		cfg.CookieName = "auth_token"
	}
	return &Sessions{creds: creds, jwt: jwt, cookieName: cfg.CookieName, maxAge: cfg.MaxAge, secure: cfg.Secure}
}

// Login checks the credentials and returns a signed session token.
func (s *Sessions) Login(username, password string) (string, error) {
	if err := s.creds.Verify(username, password); err != nil {
		return "", err
	}
	return s.jwt.GenerateToken(s.creds.Username(), RoleAdmin)
}

func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// FromRequest validates the session cookie of r.
func (s *Sessions) FromRequest(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(s.cookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	claims, err := s.jwt.ValidateToken(c.Value)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, errors.New("not an admin session")
	}
	return claims, nil
}

// RequireAdmin lets requests with a valid admin session through and hands
// the rest to onDenied.
func (s *Sessions) RequireAdmin(onDenied http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.FromRequest(r)
			if err != nil {
				onDenied(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

type claimsKey struct{}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the session claims set by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
