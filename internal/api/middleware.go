package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dteller/pixelforge/internal/logging"
	"github.com/dteller/pixelforge/internal/service"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRequestID
)

// UserIDFromContext returns the internal user id placed by the identity
// middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(int64)
	return id, ok
}

// RequestID attaches a correlation id to the request context and the
// response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

// Identity verifies the auth provider's bearer token and resolves the
// subject claim to an internal account. Mutating routes sit behind this;
// an unresolvable identity never reaches the ledger or the guard.
type Identity struct {
	users  *service.Users
	secret []byte
	log    logging.Logger
}

func NewIdentity(users *service.Users, secret string, log logging.Logger) *Identity {
	return &Identity{users: users, secret: []byte(secret), log: log}
}

func (m *Identity) authID(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("missing bearer token")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

func (m *Identity) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authID, err := m.authID(r)
		if err != nil {
			m.log.Warn(r.Context(), "authentication failed", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthenticated"}`))
			return
		}

		user, err := m.users.Resolve(r.Context(), authID)
		if err != nil {
			m.log.Warn(r.Context(), "unknown identity", "auth_id", authID)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unknown identity"}`))
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUserID, user.ID)))
	}
}

// WebhookToken guards the webhook intake with a shared secret header.
func WebhookToken(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
