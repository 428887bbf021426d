package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/agripredict/service-api/internal/account/entity"
)

type contextKey struct{}

// FromContext returns the account attached by the auth middleware, or nil
// when the request did not pass through it.
func FromContext(ctx context.Context) *entity.View {
	v, _ := ctx.Value(contextKey{}).(*entity.View)
	return v
}

// WithAccount attaches a resolved account to the context. Exported for tests
// that exercise handlers without the full middleware chain.
func WithAccount(ctx context.Context, v *entity.View) context.Context {
	return context.WithValue(ctx, contextKey{}, v)
}

// AccountSource resolves the account embedded in a verified token. One store
// lookup per authenticated request; there is deliberately no cache.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (*entity.View, error)
}

// Middleware authenticates requests and gates admin-only routes.
type Middleware struct {
	tokens   *TokenService
	accounts AccountSource
	logger   *zap.SugaredLogger
}

func NewMiddleware(tokens *TokenService, accounts AccountSource, logger *zap.SugaredLogger) *Middleware {
	return &Middleware{tokens: tokens, accounts: accounts, logger: logger}
}

// RequireAuth extracts the bearer token, verifies it, resolves the account
// and attaches it to the request context. Any failure ends the request with
// 401; the specific cause is logged but not surfaced.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			m.logger.Debugw("token verification failed", "err", err)
			writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		id, err := claims.AccountID()
		if err != nil {
			m.logger.Debugw("malformed token subject", "sub", claims.Subject)
			writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		view, err := m.accounts.GetByID(r.Context(), id)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, user not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), view)))
	})
}

// RequireAdmin permits the request only when the context carries an elevated
// account. It assumes RequireAuth ran first; a missing context account is
// treated the same as a non-admin one.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := FromContext(r.Context())
		if acct == nil || !acct.IsAdmin {
			writeMessage(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Protected chains RequireAuth in front of a handler func.
func (m *Middleware) Protected(h http.HandlerFunc) http.Handler {
	return m.RequireAuth(h)
}

// AdminOnly chains RequireAuth then RequireAdmin in front of a handler func.
func (m *Middleware) AdminOnly(h http.HandlerFunc) http.Handler {
	return m.RequireAuth(m.RequireAdmin(h))
}

// OptionalAuth attaches the account when a valid token is present but lets
// anonymous requests through untouched. Used by routes that merely
// personalize their behavior for signed-in users.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.tokens.Verify(token)
		if err == nil {
			if id, perr := claims.AccountID(); perr == nil {
				if view, gerr := m.accounts.GetByID(r.Context(), id); gerr == nil {
					r = r.WithContext(WithAccount(r.Context(), view))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
