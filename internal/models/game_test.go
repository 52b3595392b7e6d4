package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shuuro-server/internal/shuuro"
)

func validRequest() *GameRequest {
	return &GameRequest{Minutes: 5, Incr: 3, Variant: "shuuro", Color: "white"}
}

func TestGameRequestValidation(t *testing.T) {
	assert.True(t, validRequest().IsValid())

	r := validRequest()
	r.Variant = "checkers"
	assert.False(t, r.IsValid())

	r = validRequest()
	r.Minutes = 23
	assert.False(t, r.IsValid())

	r = validRequest()
	r.Incr = 0
	assert.True(t, r.IsValid())

	r = validRequest()
	r.Incr = 99
	assert.False(t, r.IsValid())
}

func TestGameRequestVariantTag(t *testing.T) {
	r := validRequest()
	r.Variant = "shuuroMiniFairy"
	assert.Equal(t, shuuro.VariantShuuroMiniFairy, r.VariantTag())
}

func TestGameRequestColors(t *testing.T) {
	r := validRequest()
	r.Color = "white"
	assert.Equal(t, [2]string{"alice", "bob"}, r.Colors("alice", "bob"))

	r.Color = "black"
	assert.Equal(t, [2]string{"bob", "alice"}, r.Colors("alice", "bob"))

	// A random preference still seats both players.
	r.Color = "random"
	players := r.Colors("alice", "bob")
	assert.Contains(t, players, "alice")
	assert.Contains(t, players, "bob")
}

func TestGameRequestSubVariant(t *testing.T) {
	placement := uint8(0)
	r := validRequest()
	r.SubVariant = &placement
	// Sub-variants only exist on 8x8 boards.
	assert.Equal(t, shuuro.SubVariantNone, r.ResolvedSubVariant())

	r.Variant = "standard"
	assert.Equal(t, shuuro.SubVariantPlacement, r.ResolvedSubVariant())

	bogus := uint8(7)
	r.SubVariant = &bogus
	assert.Equal(t, shuuro.SubVariantNone, r.ResolvedSubVariant())

	r.SubVariant = nil
	assert.Equal(t, shuuro.SubVariantNone, r.ResolvedSubVariant())
}

func TestGameTypeOpponent(t *testing.T) {
	assert.Equal(t, "", GameType{}.PlayerName())

	name := "bob smith"
	assert.Equal(t, "bobsmith", GameType{VsFriend: &name}.PlayerName())

	depth := uint8(2)
	ai := GameType{VsAi: &depth}
	assert.Equal(t, "AI", ai.PlayerName())
	assert.Equal(t, uint8(2), ai.Depth())
	assert.Equal(t, uint8(0), GameType{}.Depth())
}

func TestNewShuuroGame(t *testing.T) {
	g := NewShuuroGame(validRequest(), [2]string{"alice", "bob"}, "g1")

	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, StatusNotStarted, g.Status)
	assert.Equal(t, ResultNone, g.Result)
	assert.Equal(t, int64(300_000), g.Min)
	assert.Equal(t, int64(3_000), g.Incr)
	assert.Equal(t, [2]int64{303_000, 303_000}, g.Clocks)
	assert.Equal(t, uint16(shuuro.StartingCredits), g.Credits[0])
	require.NotNil(t, g.TC)
	assert.Equal(t, g.Clocks, g.TC.Clocks)
	assert.Equal(t, uint8(shuuro.SubVariantNone), g.SubVariant)
}

func TestPlayerIndex(t *testing.T) {
	g := NewShuuroGame(validRequest(), [2]string{"alice", "bob"}, "g1")

	i, ok := g.PlayerIndex("alice")
	require.True(t, ok)
	assert.Equal(t, 0, i)
	i, ok = g.PlayerIndex("bob")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = g.PlayerIndex("mallory")
	assert.False(t, ok)
}
