package ws

import (
	"context"
	"log"

	"shuuro-server/internal/game"
	"shuuro-server/internal/models"
	"shuuro-server/internal/shuuro"
)

const (
	matchMailboxSize = 30
	maxWatchers      = 10
	abortAfterTicks  = 4
)

type matchMsg interface{ matchMsg() }

type matchJoin struct{ w Watcher }
type matchLeave struct{ ch chan []byte }
type matchGetGame struct{ ch chan []byte }
type matchSnapshot struct{ reply chan *models.ShuuroGame }
type matchGetHand struct{ player string }
type matchGameMove struct{ player, move string }
type matchDraw struct{ player string }
type matchResign struct{ player string }
type matchAbort struct{}
type matchCheckClock struct{}
type matchSaveState struct{}

func (matchJoin) matchMsg()       {}
func (matchLeave) matchMsg()      {}
func (matchGetGame) matchMsg()    {}
func (matchSnapshot) matchMsg()   {}
func (matchGetHand) matchMsg()    {}
func (matchGameMove) matchMsg()   {}
func (matchDraw) matchMsg()       {}
func (matchResign) matchMsg()     {}
func (matchAbort) matchMsg()      {}
func (matchCheckClock) matchMsg() {}
func (matchSaveState) matchMsg()  {}

// Match is the mailbox handle to one live game. Sends never block; a
// full mailbox drops the message.
type Match struct {
	ID      string
	mailbox chan matchMsg
}

func (m *Match) send(msg matchMsg) {
	select {
	case m.mailbox <- msg:
	default:
	}
}

func (m *Match) Join(w Watcher)          { m.send(matchJoin{w}) }
func (m *Match) Leave(ch chan []byte)    { m.send(matchLeave{ch}) }
func (m *Match) GetGame(ch chan []byte)  { m.send(matchGetGame{ch}) }
func (m *Match) GetHand(player string)   { m.send(matchGetHand{player}) }
func (m *Match) Draw(player string)      { m.send(matchDraw{player}) }
func (m *Match) Resign(player string)    { m.send(matchResign{player}) }
func (m *Match) Abort()                  { m.send(matchAbort{}) }
func (m *Match) CheckClock()             { m.send(matchCheckClock{}) }
func (m *Match) SaveState()              { m.send(matchSaveState{}) }
func (m *Match) GameMove(player, move string) {
	m.send(matchGameMove{player, move})
}

// Snapshot asks for a copy of the game with hands blanked. Used by the
// HTTP game page; returns nil when the actor is gone or slow.
func (m *Match) Snapshot(reply chan *models.ShuuroGame) {
	m.send(matchSnapshot{reply})
}

type matchActor struct {
	state      *State
	mailbox    chan matchMsg
	g          *models.ShuuroGame
	variant    shuuro.Variant
	caller     string
	selection  *shuuro.Selection
	position   *shuuro.Position
	watchers   Watchers
	started    bool
	abortTicks int
	tickerCtrl chan int64
	interval   int64
}

// spawnMatch builds the engines for the game's stage, starts the clock
// ticker and the actor loop, and returns the mailbox handle. For fresh
// games caller is the request's author; revived games pass started=true
// and replay their history.
func spawnMatch(state *State, g *models.ShuuroGame, started bool, caller string) *Match {
	shuuro.InitAttacks()
	variant := shuuro.VariantFromTag(g.Variant)
	a := &matchActor{
		state:     state,
		mailbox:   make(chan matchMsg, matchMailboxSize),
		g:         g,
		variant:   variant,
		caller:    caller,
		selection: shuuro.NewSelection(variant),
		position:  shuuro.NewPosition(variant),
		interval:  initialTickMs,
	}
	if g.TC == nil {
		g.TC = game.NewTimeControl(g.Min/60_000, g.Incr/1000)
	}
	g.TC.Stage = g.CurrentStage
	g.TC.Incr = g.Incr / 1000

	if !started && g.SubVariant != uint8(shuuro.SubVariantNone) {
		a.seedSubVariant(shuuro.SubVariant(g.SubVariant))
	}
	if started {
		a.started = true
		a.replay()
	}

	a.tickerCtrl = make(chan int64, 20)
	m := &Match{ID: g.ID, mailbox: a.mailbox}
	startTicker(a.tickerCtrl, m.CheckClock)
	go a.run()
	return m
}

// seedSubVariant opens the game directly at the placement or fight
// stage with the classic chess setup.
func (a *matchActor) seedSubVariant(sv shuuro.SubVariant) {
	stage := sv.StartingStage()
	a.g.CurrentStage = stage
	a.g.TC.Stage = stage
	a.position.SetSfen(sv.StartingPosition())
	a.g.Sfen = a.position.GenerateSfen()
	a.g.Hands = [2]string{a.position.GetHand(shuuro.White), a.position.GetHand(shuuro.Black)}
	if stage == game.StagePlacement {
		a.g.PlacementStart = a.g.Sfen
	} else {
		a.g.GameStart = a.g.Sfen
	}
}

// replay rebuilds the engines of a revived game from its persisted
// stage seed and move history.
func (a *matchActor) replay() {
	switch a.g.CurrentStage {
	case game.StageSelection:
		a.selection.SetHand(a.g.Hands[0] + a.g.Hands[1])
	case game.StagePlacement:
		if _, err := a.position.SetSfen(a.g.PlacementStart); err != nil {
			log.Printf("Warning: game %s has a bad placement seed: %v", a.g.ID, err)
			return
		}
		for _, mv := range a.g.History[1] {
			if m, ok := shuuro.ParseMove(mv); ok && m.Kind == shuuro.MovePut {
				a.position.Place(m.Piece, m.To)
			}
		}
	case game.StageFight:
		if _, err := a.position.SetSfen(a.g.GameStart); err != nil {
			log.Printf("Warning: game %s has a bad fight seed: %v", a.g.ID, err)
			return
		}
		for _, mv := range a.g.History[2] {
			a.position.Play(mv)
		}
	}
}

func (a *matchActor) run() {
	for msg := range a.mailbox {
		if !a.handle(msg) {
			return
		}
	}
}

func (a *matchActor) handle(msg matchMsg) bool {
	switch m := msg.(type) {
	case matchJoin:
		a.join(m.w)
	case matchLeave:
		a.watchers.Remove(m.ch)
	case matchGetGame:
		data := encode(LiveGame{T: TagGetGame, Game: a.snapshot()})
		select {
		case m.ch <- data:
		default:
		}
	case matchSnapshot:
		select {
		case m.reply <- a.snapshot():
		default:
		}
	case matchGetHand:
		a.getHand(m.player)
	case matchGameMove:
		return a.gameMove(m.player, m.move)
	case matchDraw:
		return a.draw(m.player)
	case matchResign:
		return a.resign(m.player)
	case matchAbort:
		return a.abort()
	case matchCheckClock:
		return a.checkClock()
	case matchSaveState:
		return a.saveState()
	}
	return true
}

func (a *matchActor) join(w Watcher) {
	if a.watchers.Len() >= maxWatchers {
		return
	}
	a.watchers.Add(w)
	if a.started || w.Username == a.caller {
		return
	}
	for i, seat := range a.g.Players {
		if seat != "" && seat != w.Username {
			continue
		}
		a.g.Players[i] = w.Username
		a.started = true
		a.g.TC.UpdateStage(a.g.CurrentStage)
		a.g.LastClock = a.g.TC.LastClick
		a.watchers.Notify(Everyone(), StartClock{
			T:       TagStartClock,
			Players: a.g.Players,
			Click:   a.g.TC.LastClick,
		})
		a.state.Lobby.AddActivePlayer(w.Username)
		return
	}
}

// snapshot copies the game for consumers outside the actor. Hands are
// private until placement is published through the sfen.
func (a *matchActor) snapshot() *models.ShuuroGame {
	a.syncClocks()
	cp := *a.g
	cp.Hands = [2]string{"", ""}
	tc := *a.g.TC
	cp.TC = &tc
	for i := range cp.History {
		cp.History[i] = append([]string(nil), a.g.History[i]...)
	}
	return &cp
}

func (a *matchActor) syncClocks() {
	a.g.Clocks = a.g.TC.Clocks
	a.g.LastClock = a.g.TC.LastClick
}

func (a *matchActor) getHand(player string) {
	if !a.started || a.g.CurrentStage != game.StageSelection {
		return
	}
	idx, ok := a.g.PlayerIndex(player)
	if !ok {
		return
	}
	hand := a.selection.ToSfen(shuuro.ColorFromIndex(idx))
	a.watchers.Notify(ToPlayers(player), PlayerSelection{T: TagGetHand, Hand: hand})
}

func (a *matchActor) gameMove(player, move string) bool {
	if !a.started {
		return true
	}
	idx, ok := a.g.PlayerIndex(player)
	if !ok {
		return true
	}
	me := shuuro.ColorFromIndex(idx)
	switch a.g.CurrentStage {
	case game.StageSelection:
		return a.selectMove(idx, me, player, move)
	case game.StagePlacement:
		return a.placeMove(idx, me, move)
	case game.StageFight:
		return a.fightMove(idx, me, move)
	}
	return true
}

func (a *matchActor) selectMove(idx int, me shuuro.Color, player, move string) bool {
	m, ok := shuuro.ParseMove(move)
	if !ok || m.Kind != shuuro.MoveSelect {
		// Anything that is not a selection is a confirm.
		return a.confirmSelection(idx, me)
	}
	if m.Piece.Color != me {
		return true
	}
	if !a.selection.Play(m) {
		return true
	}
	a.g.Draws = [2]bool{}
	a.g.Credits[idx] = uint16(a.selection.Credits(me))
	a.g.Hands[idx] = a.selection.ToSfen(me)
	a.g.History[0] = append(a.g.History[0], m.Fen())
	a.watchers.Notify(ToPlayers(player), PlayerSelection{T: TagGetHand, Hand: a.g.Hands[idx]})
	return true
}

func (a *matchActor) confirmSelection(idx int, me shuuro.Color) bool {
	if a.selection.IsConfirmed(me) {
		return true
	}
	a.selection.Confirm(me)
	a.watchers.Notify(Everyone(), ConfirmSelection{
		T: TagConfirmSelection,
		Confirmed: [2]bool{
			a.selection.IsConfirmed(shuuro.White),
			a.selection.IsConfirmed(shuuro.Black),
		},
	})
	a.g.Clocks = a.g.TC.Select(idx)
	if !a.selection.IsConfirmed(me.Flip()) {
		return true
	}
	a.startPlacement()
	return true
}

// startPlacement moves a doubly-confirmed game into stage 1: both
// hands become the placement seed and the plinths are drawn.
func (a *matchActor) startPlacement() {
	a.g.CurrentStage = game.StagePlacement
	a.g.TC.UpdateStage(game.StagePlacement)
	a.g.LastClock = a.g.TC.LastClick

	hands := a.selection.ToSfen(shuuro.White) + a.selection.ToSfen(shuuro.Black)
	a.g.Hands = [2]string{a.selection.ToSfen(shuuro.White), a.selection.ToSfen(shuuro.Black)}
	seed := shuuro.EmptyPlacementBoard(a.variant) + " " + hands + " 1"
	if _, err := a.position.SetSfen(seed); err != nil {
		log.Printf("Warning: game %s placement seed rejected: %v", a.g.ID, err)
		return
	}
	a.position.GeneratePlinths()
	a.g.SideToMove = 0
	a.g.Sfen = a.position.GenerateSfen()
	a.g.PlacementStart = a.g.Sfen

	entry := RedirectToPlacement{
		T:         TagRedirectToGame,
		ID:        a.g.ID,
		LastClock: a.g.TC.LastClick,
		Players:   a.g.Players,
		Sfen:      a.g.Sfen,
		Variant:   a.g.Variant,
	}
	a.watchers.Notify(Everyone(), entry)
	a.state.TV.AddGame(entry)
}

func (a *matchActor) placeMove(idx int, me shuuro.Color, move string) bool {
	m, ok := shuuro.ParseMove(move)
	if !ok || m.Kind != shuuro.MovePut || m.Piece.Color != me {
		return true
	}
	if a.position.SideToMove() != me {
		return true
	}
	clocks, ok := a.g.TC.Play(idx)
	if !ok {
		// Flag has fallen; the ticker ends the game.
		return true
	}
	sfen, placed := a.position.Place(m.Piece, m.To)
	if !placed {
		return true
	}
	a.g.Clocks = clocks
	a.g.LastClock = a.g.TC.LastClick
	a.g.SideToMove = uint8(a.position.SideToMove().Index())
	a.g.Sfen = sfen
	a.g.Hands = [2]string{a.position.GetHand(shuuro.White), a.position.GetHand(shuuro.Black)}
	a.g.History[1] = append(a.g.History[1], m.Fen())
	a.g.Draws = [2]bool{}

	nextStage := a.position.IsHandEmpty(shuuro.White) && a.position.IsHandEmpty(shuuro.Black)
	firstMoveError := false
	if nextStage {
		firstMoveError = a.position.InCheck(a.position.SideToMove())
		a.g.CurrentStage = game.StageFight
		a.g.TC.UpdateStage(game.StageFight)
		a.g.LastClock = a.g.TC.LastClick
		a.g.GameStart = a.position.GenerateSfen()
		a.g.Sfen = a.g.GameStart
	}
	a.watchers.Notify(Everyone(), PlacePiece{
		T:              TagPlacePiece,
		Clocks:         clocks,
		FirstMoveError: firstMoveError,
		NextStage:      nextStage,
		Sfen:           m.Fen(),
	})
	a.state.TV.MoveGame(a.g.ID, a.g.Sfen, m.Fen(), firstMoveError)
	if firstMoveError {
		a.g.Status = models.StatusFirstMoveError
		a.g.Result = uint8(a.position.SideToMove().Index())
		a.persist()
		return a.close(true)
	}
	return true
}

func (a *matchActor) fightMove(idx int, me shuuro.Color, move string) bool {
	m, ok := shuuro.ParseMove(move)
	if !ok || m.Kind != shuuro.MoveNormal {
		return true
	}
	if a.position.SideToMove() != me {
		return true
	}
	if piece, found := a.position.PieceAt(m.From); !found || piece.Color != me {
		return true
	}
	clocks, ok := a.g.TC.Play(idx)
	if !ok {
		return true
	}
	outcome, err := a.position.Play(m.Fen())
	if err != nil {
		return true
	}
	status, result := models.StatusLive, models.ResultNone
	switch outcome.Kind {
	case shuuro.Checkmate:
		status, result = models.StatusCheckmate, uint8(outcome.Color.Index())
	case shuuro.Stalemate:
		status = models.StatusStalemate
	case shuuro.DrawByRepetition:
		status = models.StatusRepetition
	case shuuro.DrawByMaterial:
		status = models.StatusDrawMaterial
	}
	a.g.Status, a.g.Result = status, result
	a.g.Clocks = clocks
	a.g.LastClock = a.g.TC.LastClick
	a.g.SideToMove = uint8(a.position.SideToMove().Index())
	a.g.Sfen = a.position.GenerateSfen()
	a.g.History[2] = append(a.g.History[2], m.Fen())
	a.g.Draws = [2]bool{}

	a.watchers.Notify(Everyone(), MovePiece{
		T:        TagMovePiece,
		Clocks:   clocks,
		Status:   status,
		Result:   result,
		GameMove: m.Fen(),
	})
	a.state.TV.MoveGame(a.g.ID, a.g.Sfen, m.Fen(), false)
	if status > 0 {
		a.persist()
		a.state.TV.RemoveGame(a.g.ID)
		return a.close(true)
	}
	return true
}

func (a *matchActor) draw(player string) bool {
	idx, ok := a.g.PlayerIndex(player)
	if !ok {
		return true
	}
	a.g.Draws[idx] = true
	if a.g.Draws[0] && a.g.Draws[1] {
		a.g.Status = models.StatusDrawAgreed
		a.g.Result = models.ResultNone
		a.persist()
		a.state.TV.RemoveGame(a.g.ID)
		return a.close(true)
	}
	opponent := a.g.Players[1-idx]
	a.watchers.Notify(ToPlayers(opponent), GameDraw{T: TagDraw, DrawOffer: true, End: -2})
	return true
}

func (a *matchActor) resign(player string) bool {
	idx, ok := a.g.PlayerIndex(player)
	if !ok {
		return true
	}
	a.g.Status = models.StatusResigned
	a.g.Result = uint8(idx)
	if clocks, ok := a.g.TC.Play(idx); ok {
		a.g.Clocks = clocks
	}
	a.persist()
	a.state.TV.RemoveGame(a.g.ID)
	return a.close(true)
}

func (a *matchActor) abort() bool {
	if err := a.state.Store.RemoveGame(context.Background(), a.g.ID); err != nil {
		log.Printf("Warning: failed to delete aborted game %s: %v", a.g.ID, err)
	}
	a.g.Status = models.StatusAborted
	a.g.Result = models.ResultNone
	return a.close(true)
}

func (a *matchActor) checkClock() bool {
	if !a.started {
		a.abortTicks++
		if a.abortTicks >= abortAfterTicks {
			a.send(matchAbort{})
		}
		return true
	}
	if a.g.CurrentStage == game.StageSelection {
		return a.checkSelectionClock()
	}
	ticking := int(a.g.SideToMove)
	if _, ok := a.g.TC.CurrentDuration(ticking); !ok {
		a.g.Status = models.StatusLostOnTime
		a.g.Result = uint8(ticking)
		a.g.TC.SetToZero(ticking)
		a.persist()
		a.state.TV.RemoveGame(a.g.ID)
		return a.close(true)
	}
	a.retune()
	return true
}

// checkSelectionClock polls the shared selection budget. While neither
// side has confirmed, white's clock stands in for both.
func (a *matchActor) checkSelectionClock() bool {
	wConf := a.selection.IsConfirmed(shuuro.White)
	bConf := a.selection.IsConfirmed(shuuro.Black)
	if wConf && bConf {
		return true
	}
	ticking := 0
	if wConf {
		ticking = 1
	}
	if _, ok := a.g.TC.CurrentDuration(ticking); !ok {
		a.g.Status = models.StatusLostOnTime
		if !wConf && !bConf {
			a.g.Result = models.ResultNone
			a.g.TC.SetToZero(0)
			a.g.TC.SetToZero(1)
		} else {
			a.g.Result = uint8(ticking)
			a.g.TC.SetToZero(ticking)
		}
		a.persist()
		return a.close(true)
	}
	a.retune()
	return true
}

// retune adapts the ticker cadence to the lower of the two clocks.
func (a *matchActor) retune() {
	min := int64(1<<62 - 1)
	for c := 0; c < 2; c++ {
		d, ok := a.g.TC.CurrentDuration(c)
		if !ok {
			d = 0
		}
		if d < min {
			min = d
		}
	}
	next := tickInterval(min)
	if next == a.interval {
		return
	}
	a.interval = next
	select {
	case a.tickerCtrl <- next:
	default:
	}
}

func (a *matchActor) saveState() bool {
	a.g.Status = models.StatusNotStarted
	a.persist()
	return a.close(false)
}

func (a *matchActor) persist() {
	a.syncClocks()
	if err := a.state.Store.UpdateGame(context.Background(), a.g); err != nil {
		log.Printf("Warning: failed to save game %s: %v", a.g.ID, err)
	}
}

// close tears the match down: the ticker stops, both seats are
// released, and the registry forgets the game. SaveState closes
// without the terminal broadcast.
func (a *matchActor) close(notify bool) bool {
	close(a.tickerCtrl)
	if notify {
		a.watchers.Notify(Everyone(), GameEnd{T: TagGameEnd, Result: a.g.Result, Status: a.g.Status})
	}
	a.state.Lobby.RemovePlayers(a.g.Players)
	a.state.Games.RemoveGame(a.g.ID)
	return false
}

func (a *matchActor) send(msg matchMsg) {
	select {
	case a.mailbox <- msg:
	default:
	}
}
