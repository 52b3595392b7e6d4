package ws

import (
	"log"
	"os"
	"time"
)

const gamesMailboxSize = 64

type gamesMsg interface{ gamesMsg() }

type gamesInsert struct{ match *Match }
type gamesRemove struct{ id string }
type gamesGet struct {
	id    string
	reply chan *Match
}
type gamesSaveState struct{}

func (gamesInsert) gamesMsg()    {}
func (gamesRemove) gamesMsg()    {}
func (gamesGet) gamesMsg()       {}
func (gamesSaveState) gamesMsg() {}

// Games is the mailbox handle to the live-match registry: id to match
// mailbox, plus the orderly-shutdown fan-out.
type Games struct {
	mailbox chan gamesMsg
}

func newGames() *Games {
	g := &Games{mailbox: make(chan gamesMsg, gamesMailboxSize)}
	a := &gamesActor{
		mailbox: g.mailbox,
		matches: make(map[string]*Match),
	}
	go a.run()
	return g
}

func (g *Games) send(msg gamesMsg) {
	select {
	case g.mailbox <- msg:
	default:
	}
}

func (g *Games) InsertGame(m *Match) { g.send(gamesInsert{m}) }
func (g *Games) RemoveGame(id string) { g.send(gamesRemove{id}) }

// SaveState tells every live match to persist and exit. Once the last
// one reports back the process terminates.
func (g *Games) SaveState() { g.send(gamesSaveState{}) }

// GetGame resolves a game id to its match handle, or nil.
func (g *Games) GetGame(id string) *Match {
	reply := make(chan *Match, 1)
	g.send(gamesGet{id, reply})
	select {
	case m := <-reply:
		return m
	case <-time.After(time.Second):
		return nil
	}
}

type gamesActor struct {
	mailbox      chan gamesMsg
	matches      map[string]*Match
	shuttingDown bool
}

func (a *gamesActor) run() {
	for msg := range a.mailbox {
		switch m := msg.(type) {
		case gamesInsert:
			a.matches[m.match.ID] = m.match
		case gamesRemove:
			delete(a.matches, m.id)
			a.maybeExit()
		case gamesGet:
			m.reply <- a.matches[m.id]
		case gamesSaveState:
			a.shuttingDown = true
			log.Printf("Saving state for %d live games", len(a.matches))
			for _, match := range a.matches {
				match.SaveState()
			}
			a.maybeExit()
		}
	}
}

func (a *gamesActor) maybeExit() {
	if a.shuttingDown && len(a.matches) == 0 {
		log.Println("All games saved, exiting")
		os.Exit(0)
	}
}
