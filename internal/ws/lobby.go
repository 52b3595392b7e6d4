package ws

import (
	"context"
	"log"

	"shuuro-server/internal/models"
)

const (
	lobbyMailboxSize = 64
	maxPlaying       = 60
	maxAiGames       = 10
)

type lobbyMsg interface{ lobbyMsg() }

type lobbyJoin struct{ w Watcher }
type lobbyLeave struct{ ch chan []byte }
type lobbyAddRequest struct {
	caller string
	req    models.GameRequest
}
type lobbyAddActive struct{ player string }
type lobbyRemovePlayers struct{ players [2]string }
type lobbyRevive struct{ players [2]string }

func (lobbyJoin) lobbyMsg()          {}
func (lobbyLeave) lobbyMsg()         {}
func (lobbyAddRequest) lobbyMsg()    {}
func (lobbyAddActive) lobbyMsg()     {}
func (lobbyRemovePlayers) lobbyMsg() {}
func (lobbyRevive) lobbyMsg()        {}

// Lobby is the mailbox handle to the challenge router.
type Lobby struct {
	mailbox chan lobbyMsg
}

func newLobby(state *State) *Lobby {
	l := &Lobby{mailbox: make(chan lobbyMsg, lobbyMailboxSize)}
	a := &lobbyActor{
		state:   state,
		mailbox: l.mailbox,
		playing: make(map[string]bool),
	}
	go a.run()
	return l
}

func (l *Lobby) send(msg lobbyMsg) {
	select {
	case l.mailbox <- msg:
	default:
	}
}

func (l *Lobby) Join(w Watcher)       { l.send(lobbyJoin{w}) }
func (l *Lobby) Leave(ch chan []byte) { l.send(lobbyLeave{ch}) }
func (l *Lobby) AddGameRequest(caller string, req models.GameRequest) {
	l.send(lobbyAddRequest{caller, req})
}
func (l *Lobby) AddActivePlayer(player string)    { l.send(lobbyAddActive{player}) }
func (l *Lobby) RemovePlayers(players [2]string)  { l.send(lobbyRemovePlayers{players}) }
func (l *Lobby) ReviveGame(players [2]string)     { l.send(lobbyRevive{players}) }

type lobbyActor struct {
	state     *State
	mailbox   chan lobbyMsg
	playing   map[string]bool
	aiGames   int
	gameCount int
	watchers  Watchers
}

func (a *lobbyActor) run() {
	for msg := range a.mailbox {
		switch m := msg.(type) {
		case lobbyJoin:
			a.watchers.Add(m.w)
			data := encode(GamesCount{T: TagGameCount, Count: a.gameCount})
			select {
			case m.w.Ch <- data:
			default:
			}
		case lobbyLeave:
			a.watchers.Remove(m.ch)
		case lobbyAddRequest:
			a.addRequest(m.caller, m.req)
		case lobbyAddActive:
			if m.player != "AI" {
				a.playing[m.player] = true
			}
		case lobbyRemovePlayers:
			a.removePlayers(m.players)
		case lobbyRevive:
			a.revive(m.players)
		}
	}
}

// addRequest validates an open challenge and spawns its match actor.
// Every rejection is silent; the client observes no redirect.
func (a *lobbyActor) addRequest(caller string, req models.GameRequest) {
	if !req.IsValid() {
		return
	}
	if a.playing[caller] || len(a.playing) >= maxPlaying {
		return
	}
	opponent := req.GameType.PlayerName()
	if opponent == caller || (opponent != "" && a.playing[opponent]) {
		return
	}
	if opponent == "AI" {
		if a.aiGames >= maxAiGames {
			return
		}
		a.aiGames++
	}
	a.playing[caller] = true

	ctx := context.Background()
	id, err := a.state.Store.FreshGameID(ctx)
	if err != nil {
		log.Printf("Warning: could not mint a game id: %v", err)
		a.release(caller, opponent)
		return
	}
	g := models.NewShuuroGame(&req, req.Colors(caller, opponent), id)
	match := spawnMatch(a.state, g, false, caller)
	if err := a.state.Store.InsertGame(ctx, g); err != nil {
		log.Printf("Warning: failed to store game %s: %v", id, err)
	}
	a.state.Games.InsertGame(match)
	a.gameCount++
	a.watchers.Notify(Everyone(), GamesCount{T: TagGameCount, Count: a.gameCount})
	a.state.Players.Redirect(caller, id)
	if opponent == "AI" {
		spawnAI(a.state, match, g, req.GameType.Depth(), false)
	}
}

func (a *lobbyActor) release(caller, opponent string) {
	delete(a.playing, caller)
	if opponent == "AI" && a.aiGames > 0 {
		a.aiGames--
	}
}

func (a *lobbyActor) removePlayers(players [2]string) {
	for _, p := range players {
		if p == "AI" {
			if a.aiGames > 0 {
				a.aiGames--
			}
			continue
		}
		delete(a.playing, p)
	}
	if a.gameCount > 0 {
		a.gameCount--
	}
	a.watchers.Notify(Everyone(), GamesCount{T: TagGameCount, Count: a.gameCount})
}

// revive re-seats the players of a recovered game so that the caps and
// the home counter stay truthful after a restart.
func (a *lobbyActor) revive(players [2]string) {
	for _, p := range players {
		if p == "AI" {
			a.aiGames++
			continue
		}
		a.playing[p] = true
	}
	a.gameCount++
	a.watchers.Notify(Everyone(), GamesCount{T: TagGameCount, Count: a.gameCount})
}
