package shuuro

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// EmptyPlacementBoard renders an all-empty board for the variant with
// white to move, ready to take a hand suffix.
func EmptyPlacementBoard(v Variant) string {
	size := v.BoardSize()
	rows := make([]string, size)
	for i := range rows {
		rows[i] = strconv.Itoa(size)
	}
	return strings.Join(rows, "/") + " w"
}

// boardKey is the repetition key: squares plus side to move.
func (p *Position) boardKey() string {
	return p.renderBoard() + " " + p.stm.sfenLetter()
}

func (c Color) sfenLetter() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// renderBoard encodes ranks from the top down, counting runs of empty
// squares, with "_" for an empty plinth and "L<piece>" for an occupied
// one.
func (p *Position) renderBoard() string {
	var b strings.Builder
	for rank := p.size - 1; rank >= 0; rank-- {
		if rank < p.size-1 {
			b.WriteByte('/')
		}
		empty := 0
		flush := func() {
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
		}
		for file := 0; file < p.size; file++ {
			i := rank*p.size + file
			piece, plinth := p.board[i], p.plinths[i]
			switch {
			case piece.Type == 0 && !plinth:
				empty++
			case piece.Type == 0:
				flush()
				b.WriteByte('_')
			case plinth:
				flush()
				b.WriteByte('L')
				b.WriteRune(piece.Letter())
			default:
				flush()
				b.WriteRune(piece.Letter())
			}
		}
		flush()
	}
	return b.String()
}

// GenerateSfen renders the full position: board, side to move, both
// hands and the ply counter.
func (p *Position) GenerateSfen() string {
	hands := p.GetHand(White) + p.GetHand(Black)
	if hands == "" {
		hands = "-"
	}
	return fmt.Sprintf("%s %s %s %d", p.renderBoard(), p.stm.sfenLetter(), hands, p.ply)
}

// SetSfen loads a position. The returned outcome flags a check already
// standing against the side to move.
func (p *Position) SetSfen(sfen string) (Outcome, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 2 {
		return Outcome{Kind: MoveNotOk}, fmt.Errorf("malformed sfen %q", sfen)
	}
	board := make([]Piece, p.size*p.size)
	plinths := make([]bool, p.size*p.size)
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != p.size {
		return Outcome{Kind: MoveNotOk}, fmt.Errorf("sfen has %d ranks, want %d", len(ranks), p.size)
	}
	for r, row := range ranks {
		rank := p.size - 1 - r
		file := 0
		runes := []rune(row)
		for j := 0; j < len(runes); j++ {
			ch := runes[j]
			switch {
			case unicode.IsDigit(ch):
				n := int(ch - '0')
				for j+1 < len(runes) && unicode.IsDigit(runes[j+1]) {
					j++
					n = n*10 + int(runes[j]-'0')
				}
				file += n
			case ch == '_':
				if file >= p.size {
					return Outcome{Kind: MoveNotOk}, fmt.Errorf("rank overflow in %q", row)
				}
				plinths[rank*p.size+file] = true
				file++
			case ch == 'L':
				if j+1 >= len(runes) {
					return Outcome{Kind: MoveNotOk}, fmt.Errorf("dangling plinth in %q", row)
				}
				j++
				piece, ok := PieceFromLetter(runes[j])
				if !ok || file >= p.size {
					return Outcome{Kind: MoveNotOk}, fmt.Errorf("bad plinth piece in %q", row)
				}
				plinths[rank*p.size+file] = true
				board[rank*p.size+file] = piece
				file++
			default:
				piece, ok := PieceFromLetter(ch)
				if !ok || file >= p.size {
					return Outcome{Kind: MoveNotOk}, fmt.Errorf("bad square %q in %q", string(ch), row)
				}
				board[rank*p.size+file] = piece
				file++
			}
		}
		if file != p.size {
			return Outcome{Kind: MoveNotOk}, fmt.Errorf("rank %q covers %d files, want %d", row, file, p.size)
		}
	}
	stm := White
	if fields[1] == "b" {
		stm = Black
	}
	hands := [2]map[rune]int{{}, {}}
	if len(fields) > 2 && fields[2] != "-" {
		for _, r := range fields[2] {
			piece, ok := PieceFromLetter(r)
			if !ok {
				return Outcome{Kind: MoveNotOk}, fmt.Errorf("bad hand letter %q", string(r))
			}
			hands[piece.Color.Index()][piece.Type]++
		}
	}
	ply := 1
	if len(fields) > 3 {
		if n, err := strconv.Atoi(fields[3]); err == nil && n > 0 {
			ply = n
		}
	}
	p.board = board
	p.plinths = plinths
	p.stm = stm
	p.hands = hands
	p.ply = ply
	p.seen = make(map[string]int)
	p.seen[p.boardKey()]++
	if p.InCheck(p.stm) {
		return Outcome{Kind: Check, Color: p.stm}, nil
	}
	return Outcome{Kind: MoveOk}, nil
}
