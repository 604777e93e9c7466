package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"examcoach/internal/security"
	"examcoach/internal/service"
	"examcoach/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "session"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	gate   *service.GateService
	signer *security.TokenSigner
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(gate *service.GateService, signer *security.TokenSigner) *Middleware {
	return &Middleware{
		gate:   gate,
		signer: signer,
	}
}

// RequireAuth is middleware that requires an authenticated session.
// The signed cookie is resolved to a live session; anything invalid clears
// the cookie and redirects to the login page.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := m.ResolveSession(r)
		if sess == nil || !sess.Authenticated {
			http.SetCookie(w, security.CreateDeleteCookie(r))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// ResolveSession returns the live session for the request cookie, or nil
func (m *Middleware) ResolveSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil {
		return nil
	}

	sessionID, err := m.signer.Parse(cookie.Value)
	if err != nil {
		return nil
	}

	return m.gate.Session(sessionID)
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(SessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
