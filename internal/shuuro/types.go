package shuuro

import (
	"fmt"
	"strings"
	"unicode"
)

// Piece types
const (
	King       = 'K'
	Queen      = 'Q'
	Rook       = 'R'
	Bishop     = 'B'
	Knight     = 'N'
	Pawn       = 'P'
	Chancellor = 'C' // rook + knight, fairy variants only
	ArchBishop = 'A' // bishop + knight, fairy variants only
	Giraffe    = 'G' // (1,4) leaper, fairy variants only
	Plinth     = 'L'
)

// Color of a side. Requests may carry NoColor, meaning "pick at random".
type Color int

const (
	White Color = iota
	Black
	NoColor
)

func (c Color) Flip() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Index() int {
	return int(c)
}

func ColorFromIndex(i int) Color {
	if i == 1 {
		return Black
	}
	if i == 0 {
		return White
	}
	return NoColor
}

// Piece is a typed piece with its owning color.
type Piece struct {
	Type  rune
	Color Color
}

// Letter renders the piece as a single rune, uppercase for white.
func (p Piece) Letter() rune {
	if p.Color == White {
		return unicode.ToUpper(p.Type)
	}
	return unicode.ToLower(p.Type)
}

func (p Piece) String() string {
	return string(p.Letter())
}

// PieceFromLetter decodes a board letter into a typed piece.
func PieceFromLetter(r rune) (Piece, bool) {
	up := unicode.ToUpper(r)
	switch up {
	case King, Queen, Rook, Bishop, Knight, Pawn, Chancellor, ArchBishop, Giraffe:
	default:
		return Piece{}, false
	}
	color := White
	if unicode.IsLower(r) {
		color = Black
	}
	return Piece{Type: up, Color: color}, true
}

// Square is a board coordinate. File 0 is 'a', rank 0 is '1'.
type Square struct {
	File int
	Rank int
}

func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+s.File, s.Rank+1)
}

// ParseSquare converts algebraic notation (e.g. "e4", "l12") to a Square.
// Bounds against a concrete board size are checked by the position.
func ParseSquare(s string) (Square, bool) {
	if len(s) < 2 || len(s) > 3 {
		return Square{}, false
	}
	file := int(s[0] - 'a')
	if file < 0 || file > 11 {
		return Square{}, false
	}
	rank := 0
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return Square{}, false
		}
		rank = rank*10 + int(c-'0')
	}
	if rank < 1 || rank > 12 {
		return Square{}, false
	}
	return Square{File: file, Rank: rank - 1}, true
}

// Move kinds, one per game stage.
type MoveKind int

const (
	MoveSelect MoveKind = iota // "+P"
	MovePut                    // "P@a1", canonical fen "+P@a1"
	MoveNormal                 // "a1_b2"
)

type Move struct {
	Kind  MoveKind
	Piece Piece  // Select, Put
	From  Square // Normal
	To    Square // Put, Normal
}

// ParseMove decodes the wire move grammar. Anything that does not decode
// is not a move; at selection stage the caller treats that as a confirm.
func ParseMove(s string) (Move, bool) {
	if strings.ContainsRune(s, '@') {
		body := strings.TrimPrefix(s, "+")
		parts := strings.SplitN(body, "@", 2)
		if len(parts) != 2 || len(parts[0]) != 1 {
			return Move{}, false
		}
		piece, ok := PieceFromLetter(rune(parts[0][0]))
		if !ok {
			return Move{}, false
		}
		to, ok := ParseSquare(parts[1])
		if !ok {
			return Move{}, false
		}
		return Move{Kind: MovePut, Piece: piece, To: to}, true
	}
	if strings.HasPrefix(s, "+") {
		rest := []rune(s[1:])
		if len(rest) != 1 {
			return Move{}, false
		}
		piece, ok := PieceFromLetter(rest[0])
		if !ok {
			return Move{}, false
		}
		return Move{Kind: MoveSelect, Piece: piece}, true
	}
	if strings.ContainsRune(s, '_') {
		parts := strings.SplitN(s, "_", 2)
		from, ok := ParseSquare(parts[0])
		if !ok {
			return Move{}, false
		}
		to, ok := ParseSquare(parts[1])
		if !ok {
			return Move{}, false
		}
		return Move{Kind: MoveNormal, From: from, To: to}, true
	}
	return Move{}, false
}

// Fen renders the canonical move text recorded in game history.
func (m Move) Fen() string {
	switch m.Kind {
	case MoveSelect:
		return "+" + m.Piece.String()
	case MovePut:
		return fmt.Sprintf("+%s@%s", m.Piece, m.To)
	default:
		return fmt.Sprintf("%s_%s", m.From, m.To)
	}
}

// Outcome is the verdict on a position after a move or an sfen load.
type OutcomeKind int

const (
	MoveOk OutcomeKind = iota
	MoveNotOk
	Check
	Checkmate
	Stalemate
	DrawByRepetition
	DrawByMaterial
	DrawByAgreement
	ResignedOutcome
	LostOnTime
	FirstMoveError
)

type Outcome struct {
	Kind  OutcomeKind
	Color Color // winner for Checkmate; subject side otherwise
}
