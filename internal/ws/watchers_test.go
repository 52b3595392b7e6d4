package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case data := <-ch:
			out = append(out, string(data))
		default:
			return out
		}
	}
}

func TestWatchersAddDeduplicatesByChannel(t *testing.T) {
	var w Watchers
	ch := make(chan []byte, 1)

	w.Add(Watcher{Username: "alice", Ch: ch})
	w.Add(Watcher{Username: "alice", Ch: ch})
	assert.Equal(t, 1, w.Len())

	// A second tab of the same user is a distinct watcher.
	w.Add(Watcher{Username: "alice", Ch: make(chan []byte, 1)})
	assert.Equal(t, 2, w.Len())
}

func TestWatchersRemove(t *testing.T) {
	var w Watchers
	ch1 := make(chan []byte, 1)
	ch2 := make(chan []byte, 1)
	w.Add(Watcher{Username: "alice", Ch: ch1})
	w.Add(Watcher{Username: "bob", Ch: ch2})

	w.Remove(ch1)
	assert.Equal(t, 1, w.Len())
	assert.False(t, w.Contains("alice"))
	assert.True(t, w.Contains("bob"))

	// Removing an unknown channel is a no-op.
	w.Remove(make(chan []byte))
	assert.Equal(t, 1, w.Len())
}

func TestNotifyTargeting(t *testing.T) {
	var w Watchers
	alice := make(chan []byte, 4)
	bob := make(chan []byte, 4)
	carol := make(chan []byte, 4)
	w.Add(Watcher{Username: "alice", Ch: alice})
	w.Add(Watcher{Username: "bob", Ch: bob})
	w.Add(Watcher{Username: "carol", Ch: carol})

	w.Notify(Everyone(), PlayersCount{T: TagPlayerCount, Count: 3})
	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(bob), 1)
	assert.Len(t, drain(carol), 1)

	w.Notify(ToPlayers("bob"), PlayersCount{T: TagPlayerCount, Count: 3})
	assert.Empty(t, drain(alice))
	assert.Len(t, drain(bob), 1)

	w.Notify(ExceptPlayers("bob"), PlayersCount{T: TagPlayerCount, Count: 3})
	assert.Len(t, drain(alice), 1)
	assert.Empty(t, drain(bob))
	assert.Len(t, drain(carol), 1)
}

func TestNotifyDropsFramesForFullMailboxes(t *testing.T) {
	var w Watchers
	full := make(chan []byte, 1)
	ok := make(chan []byte, 2)
	w.Add(Watcher{Username: "slow", Ch: full})
	w.Add(Watcher{Username: "fast", Ch: ok})

	w.Notify(Everyone(), GamesCount{T: TagGameCount, Count: 1})
	w.Notify(Everyone(), GamesCount{T: TagGameCount, Count: 2})

	// The slow client misses the second frame; the fast one sees both.
	assert.Len(t, drain(full), 1)
	assert.Len(t, drain(ok), 2)
}

func TestNotifyPayloadShape(t *testing.T) {
	var w Watchers
	ch := make(chan []byte, 1)
	w.Add(Watcher{Username: "alice", Ch: ch})

	w.Notify(Everyone(), GamesCount{T: TagGameCount, Count: 7})
	frames := drain(ch)
	require.Len(t, frames, 1)

	var decoded struct {
		T     MessageTag `json:"t"`
		Count int        `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(frames[0]), &decoded))
	assert.Equal(t, TagGameCount, decoded.T)
	assert.Equal(t, 7, decoded.Count)
}
