package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"shuuro-server/internal/db"
	"shuuro-server/internal/middleware"
	"shuuro-server/internal/models"
	"shuuro-server/internal/ws"
)

// GameHandler serves game snapshots and player profiles for the SPA.
type GameHandler struct {
	state   *ws.State
	games   *db.GameQueries
	players *db.PlayerQueries
}

func NewGameHandler(state *ws.State, games *db.GameQueries, players *db.PlayerQueries) *GameHandler {
	return &GameHandler{state: state, games: games, players: players}
}

// VueGame returns one game: the live snapshot when the match actor is
// running, otherwise the stored document.
func (h *GameHandler) VueGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if match := h.state.Games.GetGame(id); match != nil {
		reply := make(chan *models.ShuuroGame, 1)
		match.Snapshot(reply)
		select {
		case g := <-reply:
			if g != nil {
				respondWithJSON(w, http.StatusOK, g)
				return
			}
		case <-time.After(time.Second):
		}
	}
	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Game not found")
		return
	}
	respondWithJSON(w, http.StatusOK, g)
}

type profileResponse struct {
	Player *models.Player       `json:"player,omitempty"`
	Games  []*models.ShuuroGame `json:"games"`
}

// Profile returns a page of a player's finished games, newest first.
// The player document rides along on the first pages only.
func (h *GameHandler) Profile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username := vars["username"]
	page, err := strconv.ParseInt(vars["page"], 10, 64)
	if err != nil || page < 0 {
		respondWithError(w, http.StatusBadRequest, "Bad page")
		return
	}
	var player *models.Player
	if page < 2 {
		player, _ = h.players.GetPlayer(r.Context(), username)
	}
	games, err := h.games.PlayerGames(r.Context(), username, page)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Store unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, profileResponse{Player: player, Games: games})
}

// Shutdown is the operator's orderly-stop switch: every live match
// persists and the process exits once the last one is done.
func (h *GameHandler) Shutdown(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || h.state.Moderator == "" || session.Username != h.state.Moderator {
		respondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}
	h.state.Games.SaveState()
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saving"})
}
