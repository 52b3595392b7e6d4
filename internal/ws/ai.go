package ws

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"shuuro-server/internal/agent"
	"shuuro-server/internal/game"
	"shuuro-server/internal/models"
	"shuuro-server/internal/shuuro"
)

const (
	aiMailboxSize = 20
	aiName        = "AI"
	aiJoinDelay   = 3 * time.Second

	// A stalled game is reaped by the clock ticker long before this.
	aiIdleTimeout = 2 * time.Hour
)

// defaultPockets seeds the AI's selection when the config has no
// presets for a variant. Letters are white-cased; the actor flips them
// when seated black.
var defaultPockets = map[string][]string{
	"shuuro":          {"QQRRBBNNPPPPPP", "QRRRBBBNNNPPPPPPPP", "QQRRBBBBNNPPPP"},
	"shuuroFairy":     {"CAQRRBBNNPPPP", "CAGQRBNPPPPPP", "CGQQRRBBPPPP"},
	"standard":        {"QRRBBNNPPPPPPPP", "QQRRBNNPPPPPP"},
	"standardFairy":   {"CAQRBNPPPPPP", "CAGQRRBBPPPP"},
	"shuuroMini":      {"QRRBNPPPP", "QRBBNNPPP"},
	"shuuroMiniFairy": {"CGQRBNPPP", "CAQRNPPPP"},
}

// aiActor plays one seat of one match. It subscribes to the match
// watchers like any remote player and mirrors the game on its own
// engine; every broadcast frame, including its own move echo, is
// applied exactly once.
type aiActor struct {
	state    *State
	match    *Match
	ch       chan []byte
	variant  shuuro.Variant
	myColor  shuuro.Color
	depth    uint8
	stage    uint8
	started  bool
	position *shuuro.Position
}

// spawnAI seats the AI in one match. started marks a revived game; the
// actor then moves on its own after joining, since a join on a running
// match emits no StartClock.
func spawnAI(state *State, match *Match, g *models.ShuuroGame, depth uint8, started bool) {
	idx, ok := g.PlayerIndex(aiName)
	if !ok {
		return
	}
	a := &aiActor{
		state:    state,
		match:    match,
		ch:       make(chan []byte, aiMailboxSize),
		variant:  shuuro.VariantFromTag(g.Variant),
		myColor:  shuuro.ColorFromIndex(idx),
		depth:    depth,
		stage:    g.CurrentStage,
		started:  started,
		position: shuuro.NewPosition(shuuro.VariantFromTag(g.Variant)),
	}
	if a.stage >= game.StagePlacement && g.Sfen != "" {
		a.position.SetSfen(g.Sfen)
	}
	go a.run()
}

func (a *aiActor) run() {
	time.Sleep(aiJoinDelay)
	a.match.Join(Watcher{Username: aiName, Ch: a.ch})
	if a.started {
		a.act()
	}
	for {
		select {
		case data := <-a.ch:
			if !a.observe(data) {
				return
			}
		case <-time.After(aiIdleTimeout):
			return
		}
	}
}

// observe reacts to one broadcast frame; false means the game is over.
func (a *aiActor) observe(data []byte) bool {
	var head struct {
		T MessageTag `json:"t"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return true
	}
	switch head.T {
	case TagStartClock:
		a.act()
	case TagRedirectToGame:
		var msg RedirectToPlacement
		if err := json.Unmarshal(data, &msg); err != nil || msg.Sfen == "" {
			return true
		}
		a.stage = game.StagePlacement
		a.position.SetSfen(msg.Sfen)
		a.playPlacement()
	case TagPlacePiece:
		var msg PlacePiece
		if err := json.Unmarshal(data, &msg); err != nil {
			return true
		}
		if m, ok := shuuro.ParseMove(msg.Sfen); ok && m.Kind == shuuro.MovePut {
			a.position.Place(m.Piece, m.To)
		}
		if msg.FirstMoveError {
			return false
		}
		if msg.NextStage {
			a.stage = game.StageFight
			a.playFight()
		} else {
			a.playPlacement()
		}
	case TagMovePiece:
		var msg MovePiece
		if err := json.Unmarshal(data, &msg); err != nil {
			return true
		}
		a.position.Play(msg.GameMove)
		if msg.Status > 0 {
			return false
		}
		a.playFight()
	case TagDraw:
		// Offers reach only the targeted seat; the AI always accepts.
		a.match.Draw(aiName)
	case TagGameEnd:
		return false
	}
	return true
}

// act plays whatever the current stage asks of the AI seat.
func (a *aiActor) act() {
	switch a.stage {
	case game.StageSelection:
		a.playSelection()
	case game.StagePlacement:
		a.playPlacement()
	case game.StageFight:
		a.playFight()
	}
}

// playSelection buys a random pocket preset and confirms.
func (a *aiActor) playSelection() {
	pockets := a.state.AiPockets[a.variant.String()]
	if len(pockets) == 0 {
		pockets = defaultPockets[a.variant.String()]
	}
	if len(pockets) == 0 {
		a.match.GameMove(aiName, "")
		return
	}
	pocket := pockets[rand.Intn(len(pockets))]
	if a.myColor == shuuro.Black {
		pocket = strings.ToLower(pocket)
	} else {
		pocket = strings.ToUpper(pocket)
	}
	for _, r := range pocket {
		a.match.GameMove(aiName, "+"+string(r))
	}
	a.match.GameMove(aiName, "")
}

// playPlacement drops one random hand piece on a random legal square.
// The move echo drives the next drop.
func (a *aiActor) playPlacement() {
	if a.stage != game.StagePlacement || a.position.SideToMove() != a.myColor {
		return
	}
	squares := a.position.PlacementSquares()
	kinds := make([]rune, 0, len(squares))
	for kind, targets := range squares {
		if len(targets) > 0 {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		a.match.Resign(aiName)
		return
	}
	kind := kinds[rand.Intn(len(kinds))]
	targets := squares[kind]
	to := targets[rand.Intn(len(targets))]
	piece := shuuro.Piece{Type: kind, Color: a.myColor}
	a.match.GameMove(aiName, fmt.Sprintf("%s@%s", piece, to))
}

func (a *aiActor) playFight() {
	if a.stage != game.StageFight || a.position.SideToMove() != a.myColor {
		return
	}
	move, ok := agent.Search(a.position, a.myColor, a.depth)
	if !ok {
		a.match.Resign(aiName)
		return
	}
	a.match.GameMove(aiName, move.Fen())
}
