package shuuro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSetSfen(t *testing.T, p *Position, sfen string) Outcome {
	t.Helper()
	outcome, err := p.SetSfen(sfen)
	require.NoError(t, err)
	return outcome
}

func TestSfenRoundTrip(t *testing.T) {
	InitAttacks()
	sfens := []string{
		"5k/R5/5K/6/6/6 w - 1",
		"6/6/2_3/6/6/6 w Kk 1",
		"5k/6/2LN3/6/6/K5 b - 7",
	}
	for _, sfen := range sfens {
		p := NewPosition(VariantShuuroMini)
		mustSetSfen(t, p, sfen)
		assert.Equal(t, sfen, p.GenerateSfen())
	}
}

func TestSetSfenFlagsStandingCheck(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)

	// Black king on f6 stares down a rook on f1.
	outcome := mustSetSfen(t, p, "5k/6/6/6/K5/5R b - 1")
	assert.Equal(t, Check, outcome.Kind)
	assert.Equal(t, Black, outcome.Color)
}

func TestSetSfenRejectsMalformedBoards(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)

	for _, sfen := range []string{"", "6/6 w", "7/6/6/6/6/6 w - 1", "5kX/6/6/6/6/6 w - 1"} {
		_, err := p.SetSfen(sfen)
		assert.Error(t, err, "sfen %q should be rejected", sfen)
	}
}

func TestPlacementZones(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, EmptyPlacementBoard(VariantShuuroMini)+" Kk 1")

	// White may only use its first two ranks on a mini board.
	_, ok := p.Place(Piece{Type: King, Color: White}, Square{File: 0, Rank: 2})
	assert.False(t, ok)
	_, ok = p.Place(Piece{Type: King, Color: White}, Square{File: 0, Rank: 0})
	assert.True(t, ok)

	// Turn passes to black, whose zone is the top two ranks.
	assert.Equal(t, Black, p.SideToMove())
	_, ok = p.Place(Piece{Type: King, Color: Black}, Square{File: 5, Rank: 3})
	assert.False(t, ok)
	_, ok = p.Place(Piece{Type: King, Color: Black}, Square{File: 5, Rank: 5})
	assert.True(t, ok)
}

func TestPlacementKingGoesFirst(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, EmptyPlacementBoard(VariantShuuroMini)+" KNk 1")

	_, ok := p.Place(Piece{Type: Knight, Color: White}, Square{File: 1, Rank: 0})
	assert.False(t, ok)

	squares := p.PlacementSquares()
	assert.Len(t, squares, 1)
	assert.Contains(t, squares, rune(King))

	_, ok = p.Place(Piece{Type: King, Color: White}, Square{File: 0, Rank: 0})
	require.True(t, ok)
	assert.Equal(t, Black, p.SideToMove())
}

func TestPlacementRejectsOccupiedAndPlinthSquares(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	// A plinth sits on a1; the white king cannot land there.
	mustSetSfen(t, p, "6/6/6/6/6/_5 w Kk 1")

	_, ok := p.Place(Piece{Type: King, Color: White}, Square{File: 0, Rank: 0})
	assert.False(t, ok)
	_, ok = p.Place(Piece{Type: King, Color: White}, Square{File: 1, Rank: 0})
	require.True(t, ok)

	kp := NewPosition(VariantShuuroMini)
	mustSetSfen(t, kp, "6/6/6/6/6/N5 w Kk 1")
	_, ok = kp.Place(Piece{Type: King, Color: White}, Square{File: 0, Rank: 0})
	assert.False(t, ok)
}

func TestGeneratePlinthsStaysOutOfPlacementZones(t *testing.T) {
	InitAttacks()
	for _, variant := range []Variant{VariantShuuroMini, VariantStandard, VariantShuuro} {
		p := NewPosition(variant)
		p.GeneratePlinths()
		size := variant.BoardSize()
		k := placementRanks(size)
		count := 0
		for rank := 0; rank < size; rank++ {
			for file := 0; file < size; file++ {
				if !p.plinths[rank*size+file] {
					continue
				}
				count++
				assert.GreaterOrEqual(t, rank, k, "plinth in white's zone on %s", variant)
				assert.Less(t, rank, size-k, "plinth in black's zone on %s", variant)
			}
		}
		assert.Greater(t, count, 0, "no plinths generated on %s", variant)
	}
}

func TestPlinthsBlockSlidersButNotKnights(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	// Rook on a1, plinth on a3: the rook stops short of the plinth.
	mustSetSfen(t, p, "5k/6/6/_5/6/R4K w - 1")

	targets := p.moveTargets(Square{File: 0, Rank: 0})
	assert.Contains(t, targets, Square{File: 0, Rank: 1})
	assert.NotContains(t, targets, Square{File: 0, Rank: 2})
	assert.NotContains(t, targets, Square{File: 0, Rank: 3})

	// A knight jumps onto plinths.
	np := NewPosition(VariantShuuroMini)
	mustSetSfen(t, np, "5k/6/6/2_3/6/1N3K w - 1")
	nTargets := np.moveTargets(Square{File: 1, Rank: 0})
	assert.Contains(t, nTargets, Square{File: 2, Rank: 2})
}

func TestPlayRejectsIllegalMoves(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, "5k/6/6/6/6/R4K w - 1")

	for _, mv := range []string{"nonsense", "a1_b2", "f6_f5", "a2_a3"} {
		outcome, err := p.Play(mv)
		assert.Error(t, err, "move %q should be rejected", mv)
		assert.Equal(t, MoveNotOk, outcome.Kind)
	}
	// The board is untouched and white is still to move.
	assert.Equal(t, White, p.SideToMove())
}

func TestPlayRefusesToExposeOwnKing(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	// The white rook on f3 is pinned against its king by the f6 rook.
	mustSetSfen(t, p, "5r/4k1/6/5R/6/5K w - 1")

	_, err := p.Play("f3_e3")
	assert.Error(t, err)
	_, err2 := p.Play("f3_f5")
	assert.NoError(t, err2)
}

func TestPlayDetectsCheckmate(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	// Rook lift to the sixth rank mates the cornered king.
	mustSetSfen(t, p, "5k/R5/5K/6/6/6 w - 1")

	outcome, err := p.Play("a5_a6")
	require.NoError(t, err)
	assert.Equal(t, Checkmate, outcome.Kind)
	assert.Equal(t, White, outcome.Color)
}

func TestPlayDetectsStalemate(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	// After Qb3-b4 the a6 king has no move but is not in check.
	mustSetSfen(t, p, "k5/6/6/1Q4/6/3K2 w - 1")

	outcome, err := p.Play("b3_b4")
	require.NoError(t, err)
	assert.Equal(t, Stalemate, outcome.Kind)
}

func TestPlayDetectsBareKings(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, "5k/6/6/r5/K5/6 w - 1")

	outcome, err := p.Play("a2_a3")
	require.NoError(t, err)
	assert.Equal(t, DrawByMaterial, outcome.Kind)
}

func TestPlayDetectsRepetition(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, "k5/3n2/6/6/3N2/K5 w - 1")

	shuffle := []string{"d2_b1", "d5_b6", "b1_d2", "b6_d5"}
	var last Outcome
	for i := 0; i < 2; i++ {
		for _, mv := range shuffle {
			outcome, err := p.Play(mv)
			require.NoError(t, err)
			last = outcome
		}
	}
	assert.Equal(t, DrawByRepetition, last.Kind)
}

func TestPawnPromotesToQueen(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, "6/P4k/6/6/6/K5 w - 1")

	_, err := p.Play("a5_a6")
	require.NoError(t, err)
	piece, ok := p.PieceAt(Square{File: 0, Rank: 5})
	require.True(t, ok)
	assert.Equal(t, rune(Queen), piece.Type)
	assert.Equal(t, White, piece.Color)
}

func TestCloneIsIndependent(t *testing.T) {
	InitAttacks()
	p := NewPosition(VariantShuuroMini)
	mustSetSfen(t, p, "5k/6/6/6/6/R4K w - 1")

	q := p.Clone()
	_, err := q.Play("a1_a6")
	require.NoError(t, err)
	assert.NotEqual(t, p.GenerateSfen(), q.GenerateSfen())
	assert.Equal(t, White, p.SideToMove())
}
