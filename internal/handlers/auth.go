package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"shuuro-server/internal/auth"
	"shuuro-server/internal/db"
	"shuuro-server/internal/middleware"
	"shuuro-server/internal/models"
	"shuuro-server/internal/utils"
)

// AuthHandler serves the session identity endpoints and the OAuth
// login round-trip.
type AuthHandler struct {
	oauth       *auth.OAuthService
	states      *auth.StateService
	sessions    *db.SessionStore
	players     *db.PlayerQueries
	cookies     *middleware.SessionMiddleware
	frontendURL string
}

func NewAuthHandler(oauth *auth.OAuthService, states *auth.StateService, sessions *db.SessionStore, players *db.PlayerQueries, cookies *middleware.SessionMiddleware, frontendURL string) *AuthHandler {
	return &AuthHandler{
		oauth:       oauth,
		states:      states,
		sessions:    sessions,
		players:     players,
		cookies:     cookies,
		frontendURL: frontendURL,
	}
}

// VueUser returns the session identity for the SPA shell. The session
// middleware has already minted one if needed.
func (h *AuthHandler) VueUser(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "No session")
		return
	}
	respondWithJSON(w, http.StatusOK, session.VueUser())
}

// Login starts the OAuth round-trip: the PKCE verifier is stashed in
// the session and the browser is sent to the provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "No session")
		return
	}
	verifier := auth.NewVerifier()
	session.CodeVerifier = verifier
	if err := h.sessions.SetSession(r.Context(), session); err != nil {
		log.Printf("Warning: could not store the login verifier: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Session store unavailable")
		return
	}
	state, err := h.states.Mint()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not sign state")
		return
	}
	http.Redirect(w, r, h.oauth.GetAuthURL(state, verifier), http.StatusSeeOther)
}

// Callback finishes the round-trip: code plus verifier become a token,
// the token names the account, and a registered session replaces the
// anonymous one. Any failure falls back to the SPA unauthenticated.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}
	q := r.URL.Query()
	if err := h.states.Verify(q.Get("state")); err != nil {
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}
	token, err := h.oauth.ExchangeCode(r.Context(), q.Get("code"), session.CodeVerifier)
	if err != nil {
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}
	account, err := h.oauth.GetAccount(r.Context(), token)
	if err != nil {
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}
	if err := h.players.EnsureRegistered(r.Context(), account.Username); err != nil {
		log.Printf("Warning: could not register player %s: %v", account.Username, err)
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}
	registered := models.NewUserSession(account.Username, utils.RandomSessionID(), true)
	if err := h.sessions.SetSession(r.Context(), registered); err != nil {
		log.Printf("Warning: could not store session for %s: %v", account.Username, err)
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}
	h.cookies.SetCookie(w, registered)
	http.Redirect(w, r, h.frontendURL+"/logged", http.StatusSeeOther)
}

// Logout swaps the cookie for a fresh anonymous session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.NewSession(r.Context(), h.players)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Session store unavailable")
		return
	}
	h.cookies.SetCookie(w, session)
	respondWithJSON(w, http.StatusOK, session.VueUser())
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
