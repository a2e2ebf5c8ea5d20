package httpx

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anantafoods/storefront/internal/session"
)

const sessionCookie = "session_token"

// Sessions resolves the browser's token cookie, loads the session from the
// store into the request context, and writes it back after the handler when
// something mutated it. A missing cookie gets a fresh token.
func Sessions(store *session.Store, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
				token = c.Value
			} else {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
				})
			}

			s, err := store.Load(r.Context(), token)
			if err != nil {
				// Serve the request on an empty session rather than failing it.
				log.Error().Err(err).Msg("session load failed")
				s = &session.Session{Token: token}
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))

			if s.Dirty() {
				if err := store.Save(r.Context(), s); err != nil {
					log.Error().Err(err).Msg("session save failed")
				}
			}
		})
	}
}

// RequireLogin gates a route on an authenticated session.
func RequireLogin(next http.Handler) http.Handler {
	return RequireRole("")(next)
}

// RequireRole is the role-parameterized gate, composed at route registration.
// An empty role means any logged-in session passes. No route in the current
// surface demands a specific role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if s == nil || !s.LoggedIn || (role != "" && s.Role != role) {
				http.Redirect(w, r, "/login?message="+url.QueryEscape("Please log in to continue."), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
