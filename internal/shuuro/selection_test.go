package shuuro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buy(t *testing.T, s *Selection, move string) bool {
	t.Helper()
	m, ok := ParseMove(move)
	require.True(t, ok, "move %q should parse", move)
	return s.Play(m)
}

func TestSelectionStartsWithKingAndFullBudget(t *testing.T) {
	s := NewSelection(VariantShuuro)

	assert.Equal(t, StartingCredits, s.Credits(White))
	assert.Equal(t, StartingCredits, s.Credits(Black))
	assert.Equal(t, "K", s.ToSfen(White))
	assert.Equal(t, "k", s.ToSfen(Black))
}

func TestSelectionChargesCredits(t *testing.T) {
	s := NewSelection(VariantShuuro)

	require.True(t, buy(t, s, "+Q"))
	assert.Equal(t, StartingCredits-110, s.Credits(White))
	assert.Equal(t, StartingCredits, s.Credits(Black))

	require.True(t, buy(t, s, "+n"))
	assert.Equal(t, StartingCredits-40, s.Credits(Black))
}

func TestSelectionRejectsUnaffordablePiece(t *testing.T) {
	s := NewSelection(VariantShuuro)

	// Drain white's budget on queens, then one more purchase must fail.
	require.True(t, buy(t, s, "+Q"))
	require.True(t, buy(t, s, "+Q"))
	require.True(t, buy(t, s, "+Q"))
	for buy(t, s, "+R") {
	}
	credits := s.Credits(White)
	assert.Less(t, credits, 70)
	assert.False(t, buy(t, s, "+R"))
	assert.Equal(t, credits, s.Credits(White))
}

func TestSelectionEnforcesPieceCaps(t *testing.T) {
	s := NewSelection(VariantShuuroMini)

	// Mini boards allow a single queen per side.
	require.True(t, buy(t, s, "+Q"))
	assert.False(t, buy(t, s, "+Q"))
	assert.Equal(t, StartingCredits-110, s.Credits(White))
}

func TestSelectionRejectsKingsAndFairyPiecesOutsideFairy(t *testing.T) {
	s := NewSelection(VariantShuuro)

	assert.False(t, buy(t, s, "+K"))
	assert.False(t, buy(t, s, "+C"))
	assert.False(t, buy(t, s, "+A"))
	assert.False(t, buy(t, s, "+G"))

	fairy := NewSelection(VariantShuuroFairy)
	assert.True(t, buy(t, fairy, "+C"))
	assert.True(t, buy(t, fairy, "+a"))
	assert.True(t, buy(t, fairy, "+G"))
}

func TestSelectionConfirmLocksHand(t *testing.T) {
	s := NewSelection(VariantShuuro)

	require.True(t, buy(t, s, "+N"))
	s.Confirm(White)
	assert.True(t, s.IsConfirmed(White))
	assert.False(t, s.IsConfirmed(Black))

	assert.False(t, buy(t, s, "+N"))
	assert.True(t, buy(t, s, "+n"))
}

func TestSelectionHandOrderedByValue(t *testing.T) {
	s := NewSelection(VariantShuuro)

	require.True(t, buy(t, s, "+P"))
	require.True(t, buy(t, s, "+Q"))
	require.True(t, buy(t, s, "+N"))
	require.True(t, buy(t, s, "+R"))

	assert.Equal(t, "KQRNP", s.ToSfen(White))
}

func TestSetHandReplays(t *testing.T) {
	s := NewSelection(VariantShuuro)
	s.SetHand("QRRqn")

	assert.Equal(t, "KQRR", s.ToSfen(White))
	assert.Equal(t, "kqn", s.ToSfen(Black))
	assert.Equal(t, StartingCredits-110-70-70, s.Credits(White))
	assert.Equal(t, StartingCredits-110-40, s.Credits(Black))
}
