package ws

import (
	"context"

	"shuuro-server/internal/models"
)

// GameStore is the slice of persistence the actors touch. Implemented
// by db.GameQueries; tests plug in an in-memory fake.
type GameStore interface {
	GetGame(ctx context.Context, id string) (*models.ShuuroGame, error)
	InsertGame(ctx context.Context, g *models.ShuuroGame) error
	UpdateGame(ctx context.Context, g *models.ShuuroGame) error
	RemoveGame(ctx context.Context, id string) error
	FreshGameID(ctx context.Context) (string, error)
	UnfinishedGames(ctx context.Context) ([]*models.ShuuroGame, error)
}

// State wires the long-lived actors together. Every handle is a
// one-way mailbox sender; no actor owns another.
type State struct {
	Store     GameStore
	TV        *Tv
	Games     *Games
	Lobby     *Lobby
	Players   *Players
	Moderator string
	AiPockets map[string][]string
}

// NewState spawns the four registries. Match actors are spawned later
// by the lobby and by Recover.
func NewState(store GameStore, moderator string, aiPockets map[string][]string) *State {
	s := &State{
		Store:     store,
		Moderator: moderator,
		AiPockets: aiPockets,
	}
	s.TV = newTv()
	s.Games = newGames()
	s.Lobby = newLobby(s)
	s.Players = newPlayers()
	return s
}

// Recover revives every unfinished game with both seats filled. Called
// once at startup, after NewState.
func (s *State) Recover(ctx context.Context) error {
	games, err := s.Store.UnfinishedGames(ctx)
	if err != nil {
		return err
	}
	for _, g := range games {
		match := spawnMatch(s, g, true, "")
		s.Games.InsertGame(match)
		s.Lobby.ReviveGame(g.Players)
		if g.Players[0] == "AI" || g.Players[1] == "AI" {
			spawnAI(s, match, g, 1, true)
		}
	}
	return nil
}
