package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionCookieName = "storefront_session"

type ctxKey int

const sessionKey ctxKey = iota

// SessionStore resolves a session id to the live session.
type SessionStore interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// SessionMiddleware attaches the caller's session to the request, issuing a new
// session cookie when the request has none or an unusable one.
func SessionMiddleware(store SessionStore, ttl time.Duration, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = session.NewID()
			}

			cookie := &http.Cookie{
				Name:     SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			}
			if ttl > 0 {
				cookie.MaxAge = int(ttl.Seconds())
			}
			http.SetCookie(w, cookie)

			s, err := store.Get(r.Context(), id)
			if err != nil {
				logger.Error("failed to load session", zap.String("session_id", id), zap.Error(err))
				respondError(w, logger, http.StatusInternalServerError, "session_unavailable", "session could not be loaded")
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
		})
	}
}

// RequestIDMiddleware echoes the request id assigned by chi back to the client
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func getSessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return s
	}
	return nil
}
