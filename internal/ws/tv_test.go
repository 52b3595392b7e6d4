package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shuuro-server/internal/shuuro"
)

func tvEntry(id string) RedirectToPlacement {
	return RedirectToPlacement{
		T:       TagRedirectToGame,
		ID:      id,
		Players: [2]string{"alice", "bob"},
		Sfen:    shuuro.EmptyPlacementBoard(shuuro.VariantShuuro) + " - 1",
		Variant: uint8(shuuro.VariantShuuro),
	}
}

func TestTvAnnouncesNewGames(t *testing.T) {
	tv := newTv()
	ch := make(chan []byte, 8)
	tv.Join(Watcher{Username: "viewer", Ch: ch})

	tv.AddGame(tvEntry("g1"))
	var announce NewTvGame
	awaitFrame(t, ch, TagAddTvGame, &announce)
	assert.Equal(t, "g1", announce.Game.ID)
}

func TestTvRelaysMovesAndRemovals(t *testing.T) {
	tv := newTv()
	ch := make(chan []byte, 8)
	tv.Join(Watcher{Username: "viewer", Ch: ch})

	tv.AddGame(tvEntry("g1"))
	tv.MoveGame("g1", "some-sfen", "a1_b2", false)

	var move NewTvMove
	awaitFrame(t, ch, TagNewTvMove, &move)
	assert.Equal(t, "g1", move.Game)
	assert.Equal(t, "a1_b2", move.GameMove)

	tv.RemoveGame("g1")
	var removed RemoveTvGame
	awaitFrame(t, ch, TagRemoveTVGame, &removed)
	assert.Equal(t, "g1", removed.Game)

	// Moves for unknown games are dropped silently.
	tv.MoveGame("g1", "some-sfen", "b2_c3", false)
	reply := make(chan []byte, 1)
	tv.GetGames("viewer", reply)
	var all AllTvGames
	awaitFrame(t, reply, TagGetTv, &all)
	assert.Empty(t, all.Games)
}

func TestTvTerminalMoveRemovesTheEntry(t *testing.T) {
	tv := newTv()
	ch := make(chan []byte, 8)
	tv.Join(Watcher{Username: "viewer", Ch: ch})

	tv.AddGame(tvEntry("g1"))
	tv.MoveGame("g1", "some-sfen", "+K@a1", true)

	awaitFrame(t, ch, TagNewTvMove, nil)
	awaitFrame(t, ch, TagRemoveTVGame, nil)
}

func TestTvReportsCurrentGamesWithLatestSfen(t *testing.T) {
	tv := newTv()

	tv.AddGame(tvEntry("g1"))
	tv.MoveGame("g1", "updated-sfen", "a1_b2", false)

	reply := make(chan []byte, 1)
	tv.GetGames("viewer", reply)
	var all AllTvGames
	awaitFrame(t, reply, TagGetTv, &all)
	assert.Len(t, all.Games, 1)
	assert.Equal(t, "updated-sfen", all.Games[0].Sfen)
}

func TestTvCapsMirroredGames(t *testing.T) {
	tv := newTv()

	for i := 0; i < maxTvGames+3; i++ {
		tv.AddGame(tvEntry(fmt.Sprintf("g%d", i)))
	}
	reply := make(chan []byte, 1)
	tv.GetGames("viewer", reply)
	var all AllTvGames
	awaitFrame(t, reply, TagGetTv, &all)
	assert.Len(t, all.Games, maxTvGames)
}

func TestPlayersCountTracksDistinctNames(t *testing.T) {
	players := newPlayers()

	alice1 := make(chan []byte, 8)
	alice2 := make(chan []byte, 8)
	bob := make(chan []byte, 8)
	players.Join(Watcher{Username: "alice", Ch: alice1})
	players.Join(Watcher{Username: "alice", Ch: alice2})
	players.Join(Watcher{Username: "bob", Ch: bob})

	// Two tabs of the same user still count once.
	var count PlayersCount
	awaitFrame(t, bob, TagPlayerCount, &count)
	assert.Equal(t, 2, count.Count)

	// Closing one of alice's tabs changes nothing; closing the last
	// drops her from the count.
	players.Leave("alice", alice2, true)
	awaitFrame(t, bob, TagPlayerCount, &count)
	assert.Equal(t, 2, count.Count)
	players.Leave("alice", alice1, true)
	awaitFrame(t, bob, TagPlayerCount, &count)
	assert.Equal(t, 1, count.Count)
}

func TestPlayersRedirectIsTargeted(t *testing.T) {
	players := newPlayers()

	alice := make(chan []byte, 8)
	bob := make(chan []byte, 8)
	players.Join(Watcher{Username: "alice", Ch: alice})
	players.Join(Watcher{Username: "bob", Ch: bob})

	players.Redirect("alice", "g1")
	var redirect RedirectPlayer
	awaitFrame(t, alice, TagRedirectToGame, &redirect)
	assert.Equal(t, "g1", redirect.Game)

	select {
	case data := <-bob:
		var head struct {
			T MessageTag `json:"t"`
		}
		if json.Unmarshal(data, &head) == nil {
			assert.NotEqual(t, TagRedirectToGame, head.T)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
