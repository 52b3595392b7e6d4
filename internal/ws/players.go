package ws

const playersMailboxSize = 1024

type playersMsg interface{ playersMsg() }

type playersJoin struct{ w Watcher }
type playersLeave struct {
	player       string
	ch           chan []byte
	disconnected bool
}
type playersRedirect struct {
	player string
	game   string
}

func (playersJoin) playersMsg()     {}
func (playersLeave) playersMsg()    {}
func (playersRedirect) playersMsg() {}

// Players is the mailbox handle to the connected-players registry. It
// publishes the player count and delivers per-player redirect hints.
type Players struct {
	mailbox chan playersMsg
}

func newPlayers() *Players {
	p := &Players{mailbox: make(chan playersMsg, playersMailboxSize)}
	a := &playersActor{
		mailbox: p.mailbox,
		names:   make(map[string]int),
	}
	go a.run()
	return p
}

func (p *Players) send(msg playersMsg) {
	select {
	case p.mailbox <- msg:
	default:
	}
}

func (p *Players) Join(w Watcher) { p.send(playersJoin{w}) }

// Leave removes a connection; disconnected drops the player from the
// count as well.
func (p *Players) Leave(player string, ch chan []byte, disconnected bool) {
	p.send(playersLeave{player, ch, disconnected})
}

// Redirect points one player at a freshly spawned game.
func (p *Players) Redirect(player, game string) {
	p.send(playersRedirect{player, game})
}

type playersActor struct {
	mailbox  chan playersMsg
	names    map[string]int
	watchers Watchers
}

func (a *playersActor) run() {
	for msg := range a.mailbox {
		switch m := msg.(type) {
		case playersJoin:
			a.watchers.Add(m.w)
			a.names[m.w.Username]++
			a.broadcastCount()
		case playersLeave:
			a.watchers.Remove(m.ch)
			if m.disconnected {
				a.names[m.player]--
				if a.names[m.player] <= 0 {
					delete(a.names, m.player)
				}
				a.broadcastCount()
			}
		case playersRedirect:
			a.watchers.Notify(ToPlayers(m.player), RedirectPlayer{T: TagRedirectToGame, Game: m.game})
		}
	}
}

func (a *playersActor) broadcastCount() {
	a.watchers.Notify(Everyone(), PlayersCount{T: TagPlayerCount, Count: len(a.names)})
}
