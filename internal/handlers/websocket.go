package handlers

import (
	"net/http"

	"shuuro-server/internal/middleware"
	"shuuro-server/internal/ws"
)

// WebSocketHandler hands authenticated sockets to the connection
// actor.
type WebSocketHandler struct {
	state *ws.State
}

func NewWebSocketHandler(state *ws.State) *WebSocketHandler {
	return &WebSocketHandler{state: state}
}

func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "No session")
		return
	}
	ws.ServeWs(h.state, w, r, session.Username)
}
