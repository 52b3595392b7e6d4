package shuuro

import "strings"

// Price in credits for each piece type. Kings are implicit and free.
var piecePrices = map[rune]int{
	King:       0,
	Queen:      110,
	Rook:       70,
	Bishop:     40,
	Knight:     40,
	Pawn:       10,
	Chancellor: 130,
	ArchBishop: 130,
	Giraffe:    70,
}

// StartingCredits is the per-side selection budget.
const StartingCredits = 800

// pieceCaps returns how many copies of each type a side may buy on the
// given board size.
func pieceCaps(size int) map[rune]int {
	switch size {
	case 6:
		return map[rune]int{Queen: 1, Rook: 2, Bishop: 2, Knight: 2, Pawn: 6, Chancellor: 1, ArchBishop: 1, Giraffe: 1}
	case 8:
		return map[rune]int{Queen: 2, Rook: 4, Bishop: 4, Knight: 4, Pawn: 8, Chancellor: 2, ArchBishop: 2, Giraffe: 2}
	default:
		return map[rune]int{Queen: 3, Rook: 6, Bishop: 9, Knight: 9, Pawn: 18, Chancellor: 3, ArchBishop: 3, Giraffe: 4}
	}
}

// selectionOrder fixes how a hand is rendered: king first, then by value.
var selectionOrder = []rune{King, Chancellor, ArchBishop, Queen, Rook, Giraffe, Bishop, Knight, Pawn}

// Selection is the stage-0 engine: both sides buy armies against a
// credit budget, then confirm.
type Selection struct {
	variant   Variant
	hands     [2]map[rune]int
	credits   [2]int
	confirmed [2]bool
	caps      map[rune]int
}

// NewSelection starts an empty selection for the variant. Each side
// begins with its king already in hand.
func NewSelection(variant Variant) *Selection {
	s := &Selection{
		variant: variant,
		credits: [2]int{StartingCredits, StartingCredits},
		caps:    pieceCaps(variant.BoardSize()),
	}
	s.hands[0] = map[rune]int{King: 1}
	s.hands[1] = map[rune]int{King: 1}
	return s
}

// UpdateVariant resets the selection for a different variant.
func (s *Selection) UpdateVariant(variant Variant) {
	*s = *NewSelection(variant)
}

func (s *Selection) Variant() Variant { return s.variant }

// Play buys one piece for the piece's own color. Returns false when the
// piece is unknown for the variant, over its cap, or unaffordable.
func (s *Selection) Play(m Move) bool {
	if m.Kind != MoveSelect {
		return false
	}
	p := m.Piece
	if p.Color != White && p.Color != Black {
		return false
	}
	if p.Type == King {
		return false
	}
	if !s.variant.Fairy() && (p.Type == Chancellor || p.Type == ArchBishop || p.Type == Giraffe) {
		return false
	}
	price, ok := piecePrices[p.Type]
	if !ok {
		return false
	}
	i := p.Color.Index()
	if s.confirmed[i] {
		return false
	}
	if s.hands[i][p.Type] >= s.caps[p.Type] {
		return false
	}
	if s.credits[i] < price {
		return false
	}
	s.credits[i] -= price
	s.hands[i][p.Type]++
	return true
}

// SetHand replaces a side's purchases with the pieces encoded in
// letters, buying each in turn. Used to seed AI pockets.
func (s *Selection) SetHand(letters string) {
	for _, r := range letters {
		piece, ok := PieceFromLetter(r)
		if !ok {
			continue
		}
		s.Play(Move{Kind: MoveSelect, Piece: piece})
	}
}

// Confirm locks in the given side's hand.
func (s *Selection) Confirm(c Color) {
	if c == White || c == Black {
		s.confirmed[c.Index()] = true
	}
}

func (s *Selection) IsConfirmed(c Color) bool {
	if c != White && c != Black {
		return false
	}
	return s.confirmed[c.Index()]
}

// Credits returns the remaining budget for a side.
func (s *Selection) Credits(c Color) int {
	return s.credits[c.Index()]
}

// ToSfen renders a side's hand as a letter string, king first.
func (s *Selection) ToSfen(c Color) string {
	var b strings.Builder
	for _, t := range selectionOrder {
		n := s.hands[c.Index()][t]
		for j := 0; j < n; j++ {
			b.WriteRune(Piece{Type: t, Color: c}.Letter())
		}
	}
	return b.String()
}
