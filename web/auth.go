/* auth.go
 * Contains the bearer token service and the middleware that turns a token into the acting user
 */

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bolao-bot/api/api"
	"bolao-bot/api/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	tokenIssuer     = "bolao"
	defaultTokenTTL = 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenService(secret string, ttl time.Duration) *tokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &tokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID, returning it with its expiry
func (t *tokenService) Issue(userID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate checks the signature and expiry of a token and returns the user id it was issued to
func (t *tokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

type ctxKey int

const userKey ctxKey = iota

// userFromContext returns the user requireUser stored on the request
func userFromContext(ctx context.Context) (shared.User, bool) {
	user, ok := ctx.Value(userKey).(shared.User)
	return user, ok
}

// newRequest starts the action request for the acting user, or an anonymous one on public routes
func newRequest(r *http.Request) *shared.Request {
	user, _ := userFromContext(r.Context())
	return shared.NewRequest(user)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireUser rejects requests without a valid token. The user is read again from the store on every request so a
// deleted user or a revoked admin flag takes effect immediately
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, r, fmt.Errorf("%w: missing bearer token", api.ErrUnauthorized))
			return
		}
		userID, err := s.tokens.Validate(token)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %w", api.ErrUnauthorized, err))
			return
		}
		user, err := s.api.CurrentUser(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		logger := log.Ctx(r.Context()).With().Str("user", user.Username).Logger()
		ctx := context.WithValue(logger.WithContext(r.Context()), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin is requireUser plus the admin flag
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())
		if !user.IsAdmin {
			s.writeError(w, r, api.ErrForbidden)
			return
		}
		next(w, r)
	})
}
