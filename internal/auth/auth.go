// internal/auth/auth.go
//
// Tokens, cookies and request middleware.
// Responsibilities:
//   - HS256 JWT signing/verification with a configurable expiry.
//   - Auth cookie set/clear with production-aware attributes.
//   - Optional and required auth middleware; the caller is put in the context.
//
// Notes:
//   - Tokens are accepted from "Authorization: Bearer" or the auth cookie.
//   - A valid token for a deleted user is treated as no token.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

type Options struct {
	Secret      string
	ExpiresDays int
	CookieName  string
	// Secure marks cookies Secure + SameSite=None (production, cross-site client).
	Secure bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service owns the users table and token handling.
type Service struct {
	db         *sql.DB
	secret     []byte
	expires    time.Duration
	cookieName string
	secure     bool
	cost       int
}

func New(db *sql.DB, opts Options) *Service {
	s := &Service{
		db:         db,
		secret:     []byte(opts.Secret),
		expires:    time.Duration(opts.ExpiresDays) * 24 * time.Hour,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		cost:       opts.BcryptCost,
	}
	if s.expires <= 0 {
		s.expires = 14 * 24 * time.Hour
	}
	if s.cookieName == "" {
		s.cookieName = "cwsimon_token"
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	return s
}

// Identity is placed into the request context by the middleware.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SignToken creates an HS256 JWT carrying id/username.
func (s *Service) SignToken(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.expires)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// ParseToken verifies tok and returns the identity it carries.
func (s *Service) ParseToken(tok string) (*Identity, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: id, Username: username}, nil
}

func (s *Service) sameSite() http.SameSite {
	if s.secure {
		return http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return http.SameSiteLaxMode
}

// SetCookie writes the auth token cookie.
func (s *Service) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

// ClearCookie deletes the auth token cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

// TokenFromRequest extracts a bearer token or the auth cookie value.
func (s *Service) TokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// identify resolves the request's caller, confirming the user still exists.
func (s *Service) identify(r *http.Request) (*Identity, error) {
	tok := s.TokenFromRequest(r)
	if tok == "" {
		return nil, ErrInvalidToken
	}
	id, err := s.ParseToken(tok)
	if err != nil {
		return nil, err
	}
	if _, err := s.FindByID(r.Context(), id.ID); err != nil {
		return nil, ErrInvalidToken
	}
	return id, nil
}

type ctxUserKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, id)
}

// FromContext returns the caller, or nil for guests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxUserKey{}).(*Identity)
	return id
}

// Optional decorates requests with the caller when a valid token is present.
// It never rejects.
func (s *Service) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := s.identify(r); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a valid token.
func (s *Service) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.TokenFromRequest(r) == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			id, err := s.identify(r)
			if err != nil {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
