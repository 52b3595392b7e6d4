package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shuuro-server/internal/shuuro"
)

func setupPosition(t *testing.T, variant shuuro.Variant, sfen string) *shuuro.Position {
	t.Helper()
	shuuro.InitAttacks()
	p := shuuro.NewPosition(variant)
	_, err := p.SetSfen(sfen)
	require.NoError(t, err)
	return p
}

func TestSearchFindsMateInOne(t *testing.T) {
	// The rook lift to a6 is the only mate on the board.
	p := setupPosition(t, shuuro.VariantShuuroMini, "5k/R5/5K/6/6/6 w - 1")

	move, ok := Search(p, shuuro.White, 1)
	require.True(t, ok)
	assert.Equal(t, "a5_a6", move.Fen())
}

func TestSearchPrefersWinningMaterial(t *testing.T) {
	// The queen hangs; at depth 2 taking it is far outside the
	// randomness window of every alternative.
	p := setupPosition(t, shuuro.VariantShuuroMini, "k4r/6/2q3/2R3/6/K5 w - 1")

	move, ok := Search(p, shuuro.White, 2)
	require.True(t, ok)
	assert.Equal(t, "c3_c4", move.Fen())
}

func TestSearchReturnsLegalMoves(t *testing.T) {
	p := setupPosition(t, shuuro.VariantShuuroMini, "5k/6/6/6/6/R4K w - 1")

	for depth := uint8(0); depth <= 3; depth++ {
		move, ok := Search(p.Clone(), shuuro.White, depth)
		require.True(t, ok, "depth %d", depth)
		_, err := p.Clone().Play(move.Fen())
		assert.NoError(t, err, "depth %d returned illegal %s", depth, move.Fen())
	}
}

func TestSearchFailsWithNoMoves(t *testing.T) {
	// Black has no pieces at all.
	p := setupPosition(t, shuuro.VariantShuuroMini, "6/R5/5K/6/6/6 w - 1")

	_, ok := Search(p, shuuro.Black, 2)
	assert.False(t, ok)
}

func TestEvaluateIsAntisymmetric(t *testing.T) {
	p := setupPosition(t, shuuro.VariantShuuroMini, "5k/r5/6/6/1Q4/K5 w - 1")

	white := Evaluate(p, shuuro.White)
	black := Evaluate(p, shuuro.Black)
	assert.Equal(t, white, -black)
	// A queen against a rook favours white.
	assert.Positive(t, white)
}
