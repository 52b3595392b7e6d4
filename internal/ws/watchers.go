package ws

// Watcher is one connected client as a room sees it: the username and
// the connection's outbound mailbox. The channel is the identity; one
// user may watch from several tabs.
type Watcher struct {
	Username string
	Ch       chan []byte
}

// SendTo selects which watchers receive a notification.
type SendTo struct {
	players []string
	exclude bool
}

// Everyone addresses all watchers of the room.
func Everyone() SendTo {
	return SendTo{}
}

// ToPlayers addresses only the named usernames.
func ToPlayers(names ...string) SendTo {
	return SendTo{players: names}
}

// ExceptPlayers addresses all watchers but the named usernames.
func ExceptPlayers(names ...string) SendTo {
	return SendTo{players: names, exclude: true}
}

func (s SendTo) matches(username string) bool {
	if s.players == nil {
		return true
	}
	for _, name := range s.players {
		if name == username {
			return !s.exclude
		}
	}
	return s.exclude
}

// Watchers is the subscriber list of one room actor. It is owned by
// the actor goroutine and never locked.
type Watchers struct {
	list []Watcher
}

func (w *Watchers) Len() int {
	return len(w.list)
}

// Add registers a watcher unless the same channel is already present.
func (w *Watchers) Add(watcher Watcher) {
	for _, existing := range w.list {
		if existing.Ch == watcher.Ch {
			return
		}
	}
	w.list = append(w.list, watcher)
}

// Remove drops the watcher with the given channel.
func (w *Watchers) Remove(ch chan []byte) {
	for i, existing := range w.list {
		if existing.Ch == ch {
			w.list = append(w.list[:i], w.list[i+1:]...)
			return
		}
	}
}

// Contains reports whether any watcher carries the username.
func (w *Watchers) Contains(username string) bool {
	for _, existing := range w.list {
		if existing.Username == username {
			return true
		}
	}
	return false
}

// Notify marshals the payload once and hands it to every addressed
// watcher. Sends never block; a client whose mailbox is full misses
// the frame.
func (w *Watchers) Notify(to SendTo, payload any) {
	data := encode(payload)
	if data == nil {
		return
	}
	for _, watcher := range w.list {
		if !to.matches(watcher.Username) {
			continue
		}
		select {
		case watcher.Ch <- data:
		default:
		}
	}
}
