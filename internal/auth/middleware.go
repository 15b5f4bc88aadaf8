package auth

import (
	"context"
	"net/http"

	"github.com/MinjunBark/ForRev/internal/models"
	"github.com/MinjunBark/ForRev/internal/utils"
)

type contextKey string

const (
	currentUserKey contextKey = "current_user"
	sessionIDKey   contextKey = "session_id"
)

// UserResolver is the slice of the user db layer the middleware needs.
type UserResolver interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionMiddleware resolves the session cookie into the current user. It
// never rejects a request on its own; handlers that need authentication wrap
// themselves with RequireAuth.
type SessionMiddleware struct {
	Sessions   SessionManager
	Users      UserResolver
	CookieName string
}

func (m *SessionMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(m.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := m.Sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				// Stale or forged cookie: treat the request as anonymous.
				next.ServeHTTP(w, r)
				return
			}

			user, err := m.Users.GetUserByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, user)
			ctx = context.WithValue(ctx, sessionIDKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user for this request, if any.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*models.User)
	return user, ok && user != nil
}

// SessionID returns the session ID attached to this request, or "".
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUser returns a context carrying the given user. Used by tests that
// need a request to run as an authenticated actor.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}
