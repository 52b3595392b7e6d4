package ws

const (
	tvMailboxSize = 64
	maxTvGames    = 10
)

type tvMsg interface{ tvMsg() }

type tvJoin struct{ w Watcher }
type tvLeave struct{ ch chan []byte }
type tvAdd struct{ game RedirectToPlacement }
type tvMove struct {
	id       string
	sfen     string
	gameMove string
	remove   bool
}
type tvRemove struct{ id string }
type tvGet struct {
	player string
	ch     chan []byte
}

func (tvJoin) tvMsg()   {}
func (tvLeave) tvMsg()  {}
func (tvAdd) tvMsg()    {}
func (tvMove) tvMsg()   {}
func (tvRemove) tvMsg() {}
func (tvGet) tvMsg()    {}

// Tv is the mailbox handle to the spectator aggregator. It mirrors at
// most maxTvGames in-progress games for the TV page.
type Tv struct {
	mailbox chan tvMsg
}

func newTv() *Tv {
	t := &Tv{mailbox: make(chan tvMsg, tvMailboxSize)}
	a := &tvActor{
		mailbox: t.mailbox,
		entries: make(map[string]RedirectToPlacement),
	}
	go a.run()
	return t
}

func (t *Tv) send(msg tvMsg) {
	select {
	case t.mailbox <- msg:
	default:
	}
}

func (t *Tv) Join(w Watcher)                  { t.send(tvJoin{w}) }
func (t *Tv) Leave(ch chan []byte)            { t.send(tvLeave{ch}) }
func (t *Tv) AddGame(g RedirectToPlacement)   { t.send(tvAdd{g}) }
func (t *Tv) RemoveGame(id string)            { t.send(tvRemove{id}) }
func (t *Tv) GetGames(player string, ch chan []byte) {
	t.send(tvGet{player, ch})
}

// MoveGame updates a mirrored game after a placement or fight move.
// remove marks a terminal first-move error; the entry is dropped right
// after the move is shown.
func (t *Tv) MoveGame(id, sfen, gameMove string, remove bool) {
	t.send(tvMove{id, sfen, gameMove, remove})
}

type tvActor struct {
	mailbox  chan tvMsg
	entries  map[string]RedirectToPlacement
	watchers Watchers
}

func (a *tvActor) run() {
	for msg := range a.mailbox {
		switch m := msg.(type) {
		case tvJoin:
			a.watchers.Add(m.w)
		case tvLeave:
			a.watchers.Remove(m.ch)
		case tvAdd:
			if len(a.entries) >= maxTvGames {
				continue
			}
			a.entries[m.game.ID] = m.game
			a.watchers.Notify(Everyone(), NewTvGame{T: TagAddTvGame, Game: m.game})
		case tvMove:
			entry, ok := a.entries[m.id]
			if !ok {
				continue
			}
			entry.Sfen = m.sfen
			a.entries[m.id] = entry
			a.watchers.Notify(Everyone(), NewTvMove{T: TagNewTvMove, Game: m.id, GameMove: m.gameMove})
			if m.remove {
				a.remove(m.id)
			}
		case tvRemove:
			a.remove(m.id)
		case tvGet:
			games := make([]RedirectToPlacement, 0, len(a.entries))
			for _, entry := range a.entries {
				games = append(games, entry)
			}
			data := encode(AllTvGames{T: TagGetTv, Games: games})
			select {
			case m.ch <- data:
			default:
			}
		}
	}
}

func (a *tvActor) remove(id string) {
	if _, ok := a.entries[id]; !ok {
		return
	}
	delete(a.entries, id)
	a.watchers.Notify(Everyone(), RemoveTvGame{T: TagRemoveTVGame, Game: id})
}
