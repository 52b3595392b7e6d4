package middleware

import (
	"context"
	"log"
	"net/http"

	"shuuro-server/internal/db"
	"shuuro-server/internal/models"
)

type contextKey string

const SessionContextKey contextKey = "session"

// SessionCookie is the cookie name the deployed SPA expects.
const SessionCookie = "axum_session"

// The cookie outlives every session TTL; an expired session behind a
// live cookie is replaced with a fresh anonymous one.
const cookieMaxAge = 365 * 24 * 60 * 60

type SessionMiddleware struct {
	sessions *db.SessionStore
	players  *db.PlayerQueries
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

func NewSessionMiddleware(sessions *db.SessionStore, players *db.PlayerQueries, sameSite string, secure, httpOnly bool) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		players:  players,
		sameSite: parseSameSite(sameSite),
		secure:   secure,
		httpOnly: httpOnly,
	}
}

// WithSession resolves the request's session, minting an anonymous one
// when the cookie is missing or unknown, and refreshes the cookie.
func (m *SessionMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var session *models.UserSession
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			session, _ = m.sessions.GetSession(r.Context(), cookie.Value)
		}
		if session == nil {
			var err error
			session, err = m.sessions.NewSession(r.Context(), m.players)
			if err != nil {
				log.Printf("Warning: could not create a session: %v", err)
				http.Error(w, "Session store unavailable", http.StatusInternalServerError)
				return
			}
		}
		m.SetCookie(w, session)
		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetCookie (re)issues the session cookie. Handlers call it again
// after minting a new session at login and logout.
func (m *SessionMiddleware) SetCookie(w http.ResponseWriter, session *models.UserSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Session,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: m.sameSite,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
	})
}

// GetSessionFromContext retrieves the request's session.
func GetSessionFromContext(ctx context.Context) (*models.UserSession, bool) {
	session, ok := ctx.Value(SessionContextKey).(*models.UserSession)
	return session, ok
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
