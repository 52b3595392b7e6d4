package shuuro

import (
	"fmt"
	"math/rand"
)

// placementRanks is how many of its own first ranks a side may place
// pieces on, per board size.
func placementRanks(size int) int {
	if size == 12 {
		return 3
	}
	return 2
}

// Position is the board engine used for both the placement and fight
// stages. A fresh Position has an empty board and empty hands; state
// arrives through SetSfen.
type Position struct {
	variant Variant
	size    int
	board   []Piece
	plinths []bool
	stm     Color
	ply     int
	hands   [2]map[rune]int
	seen    map[string]int
}

func NewPosition(variant Variant) *Position {
	size := variant.BoardSize()
	p := &Position{
		variant: variant,
		size:    size,
		board:   make([]Piece, size*size),
		plinths: make([]bool, size*size),
		stm:     White,
		ply:     1,
		seen:    make(map[string]int),
	}
	p.hands[0] = map[rune]int{}
	p.hands[1] = map[rune]int{}
	return p
}

// UpdateVariant resets the position for a different variant.
func (p *Position) UpdateVariant(variant Variant) {
	*p = *NewPosition(variant)
}

func (p *Position) Variant() Variant { return p.variant }
func (p *Position) Size() int        { return p.size }
func (p *Position) SideToMove() Color {
	return p.stm
}

func (p *Position) index(sq Square) int {
	return sq.Rank*p.size + sq.File
}

func (p *Position) inBounds(sq Square) bool {
	return sq.File >= 0 && sq.File < p.size && sq.Rank >= 0 && sq.Rank < p.size
}

// PieceAt returns the piece on sq, if any.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !p.inBounds(sq) {
		return Piece{}, false
	}
	piece := p.board[p.index(sq)]
	return piece, piece.Type != 0
}

// GetHand renders a side's undeployed pieces as a letter string.
func (p *Position) GetHand(c Color) string {
	out := make([]rune, 0, 8)
	for _, t := range selectionOrder {
		n := p.hands[c.Index()][t]
		for j := 0; j < n; j++ {
			out = append(out, Piece{Type: t, Color: c}.Letter())
		}
	}
	return string(out)
}

// IsHandEmpty reports whether a side has nothing left to place.
func (p *Position) IsHandEmpty(c Color) bool {
	for _, n := range p.hands[c.Index()] {
		if n > 0 {
			return false
		}
	}
	return true
}

// GeneratePlinths scatters plinths over the middle ranks, one per file
// sector. Placement zones on the first ranks are never touched.
func (p *Position) GeneratePlinths() {
	for i := range p.plinths {
		p.plinths[i] = false
	}
	lo, hi := p.size/3, p.size-p.size/3 // middle band, [lo, hi)
	width := p.size / 4
	if width < 3 {
		width = p.size / 2
	}
	for f0 := 0; f0 < p.size; f0 += width {
		f1 := f0 + width
		if f1 > p.size {
			f1 = p.size
		}
		sq := Square{
			File: f0 + rand.Intn(f1-f0),
			Rank: lo + rand.Intn(hi-lo),
		}
		p.plinths[p.index(sq)] = true
	}
}

// placementZone returns the rank interval [lo, hi) a side places in.
func (p *Position) placementZone(c Color) (int, int) {
	k := placementRanks(p.size)
	if c == White {
		return 0, k
	}
	return p.size - k, p.size
}

// PlacementSquares maps each placeable piece letter of the side to move
// to its legal target squares. While the king is in hand only the king
// is offered.
func (p *Position) PlacementSquares() map[rune][]Square {
	out := make(map[rune][]Square)
	c := p.stm
	hand := p.hands[c.Index()]
	lo, hi := p.placementZone(c)
	var free []Square
	for rank := lo; rank < hi; rank++ {
		for file := 0; file < p.size; file++ {
			sq := Square{File: file, Rank: rank}
			i := p.index(sq)
			if p.board[i].Type == 0 && !p.plinths[i] {
				free = append(free, sq)
			}
		}
	}
	if hand[King] > 0 {
		out[King] = free
		return out
	}
	for t, n := range hand {
		if n > 0 {
			out[t] = free
		}
	}
	return out
}

// Place drops a hand piece onto its side's placement ranks and passes
// the turn to the opponent if they still hold pieces. Returns the new
// sfen, or false when the placement is illegal.
func (p *Position) Place(piece Piece, to Square) (string, bool) {
	if piece.Color != p.stm {
		return "", false
	}
	hand := p.hands[piece.Color.Index()]
	if hand[piece.Type] == 0 {
		return "", false
	}
	if hand[King] > 0 && piece.Type != King {
		return "", false
	}
	if !p.inBounds(to) {
		return "", false
	}
	lo, hi := p.placementZone(piece.Color)
	if to.Rank < lo || to.Rank >= hi {
		return "", false
	}
	i := p.index(to)
	if p.board[i].Type != 0 || p.plinths[i] {
		return "", false
	}
	hand[piece.Type]--
	p.board[i] = piece
	p.ply++
	if !p.IsHandEmpty(piece.Color.Flip()) {
		p.stm = piece.Color.Flip()
	} else if p.IsHandEmpty(piece.Color) {
		p.stm = piece.Color.Flip()
	}
	return p.GenerateSfen(), true
}

// jumper reports whether the piece type may land on plinths.
func jumper(t rune) bool {
	return t == Knight || t == Giraffe
}

// moveTargets generates pseudo-legal destinations for the piece on from.
func (p *Position) moveTargets(from Square) []Square {
	piece, ok := p.PieceAt(from)
	if !ok {
		return nil
	}
	t := tableFor(p.size)
	i := p.index(from)
	var out []Square

	landable := func(sq Square) bool {
		j := p.index(sq)
		if p.plinths[j] && !jumper(piece.Type) {
			return false
		}
		occ := p.board[j]
		return occ.Type == 0 || occ.Color != piece.Color
	}

	steps := func(targets []Square) {
		for _, sq := range targets {
			if landable(sq) {
				out = append(out, sq)
			}
		}
	}

	// Sliders stop at the first occupant and cannot pass plinths.
	slide := func(dirs []int) {
		for _, d := range dirs {
			for _, sq := range t.rays[i][d] {
				j := p.index(sq)
				if p.plinths[j] {
					break
				}
				occ := p.board[j]
				if occ.Type == 0 {
					out = append(out, sq)
					continue
				}
				if occ.Color != piece.Color {
					out = append(out, sq)
				}
				break
			}
		}
	}

	rookDirs := []int{0, 1, 2, 3}
	bishopDirs := []int{4, 5, 6, 7}

	switch piece.Type {
	case King:
		steps(t.king[i])
	case Knight:
		steps(t.knight[i])
	case Giraffe:
		steps(t.giraffe[i])
	case Rook:
		slide(rookDirs)
	case Bishop:
		slide(bishopDirs)
	case Queen:
		slide(rookDirs)
		slide(bishopDirs)
	case Chancellor:
		slide(rookDirs)
		steps(t.knight[i])
	case ArchBishop:
		slide(bishopDirs)
		steps(t.knight[i])
	case Pawn:
		dir := 1
		if piece.Color == Black {
			dir = -1
		}
		fwd := Square{File: from.File, Rank: from.Rank + dir}
		if p.inBounds(fwd) {
			j := p.index(fwd)
			if p.board[j].Type == 0 && !p.plinths[j] {
				out = append(out, fwd)
			}
		}
		for _, df := range []int{-1, 1} {
			cap := Square{File: from.File + df, Rank: from.Rank + dir}
			if !p.inBounds(cap) {
				continue
			}
			j := p.index(cap)
			if p.plinths[j] {
				continue
			}
			if occ := p.board[j]; occ.Type != 0 && occ.Color != piece.Color {
				out = append(out, cap)
			}
		}
	}
	return out
}

// attacked reports whether sq is attacked by the given side. Plinths
// shield sliding attacks but not knight or giraffe jumps.
func (p *Position) attacked(sq Square, by Color) bool {
	t := tableFor(p.size)
	i := p.index(sq)
	has := func(s Square, types ...rune) bool {
		occ := p.board[p.index(s)]
		if occ.Type == 0 || occ.Color != by {
			return false
		}
		for _, want := range types {
			if occ.Type == want {
				return true
			}
		}
		return false
	}
	for _, s := range t.knight[i] {
		if has(s, Knight, Chancellor, ArchBishop) {
			return true
		}
	}
	for _, s := range t.giraffe[i] {
		if has(s, Giraffe) {
			return true
		}
	}
	for _, s := range t.king[i] {
		if has(s, King) {
			return true
		}
	}
	// Pawns attack diagonally forward, so look one rank behind them.
	dir := 1
	if by == Black {
		dir = -1
	}
	for _, df := range []int{-1, 1} {
		s := Square{File: sq.File + df, Rank: sq.Rank - dir}
		if p.inBounds(s) && has(s, Pawn) {
			return true
		}
	}
	ray := func(dirs []int, types ...rune) bool {
		for _, d := range dirs {
			for _, s := range t.rays[i][d] {
				j := p.index(s)
				if p.plinths[j] {
					break
				}
				occ := p.board[j]
				if occ.Type == 0 {
					continue
				}
				if occ.Color == by {
					for _, want := range types {
						if occ.Type == want {
							return true
						}
					}
				}
				break
			}
		}
		return false
	}
	if ray([]int{0, 1, 2, 3}, Rook, Queen, Chancellor) {
		return true
	}
	return ray([]int{4, 5, 6, 7}, Bishop, Queen, ArchBishop)
}

// kingSquare finds a side's king; ok is false on a corrupt board.
func (p *Position) kingSquare(c Color) (Square, bool) {
	for rank := 0; rank < p.size; rank++ {
		for file := 0; file < p.size; file++ {
			sq := Square{File: file, Rank: rank}
			if occ := p.board[p.index(sq)]; occ.Type == King && occ.Color == c {
				return sq, true
			}
		}
	}
	return Square{}, false
}

// InCheck reports whether a side's king is attacked.
func (p *Position) InCheck(c Color) bool {
	sq, ok := p.kingSquare(c)
	if !ok {
		return false
	}
	return p.attacked(sq, c.Flip())
}

// apply moves the piece without legality checks. Pawns promote to
// queens on their last rank.
func (p *Position) apply(m Move) {
	from, to := p.index(m.From), p.index(m.To)
	piece := p.board[from]
	p.board[from] = Piece{}
	if piece.Type == Pawn {
		last := p.size - 1
		if piece.Color == Black {
			last = 0
		}
		if m.To.Rank == last {
			piece.Type = Queen
		}
	}
	p.board[to] = piece
}

// leavesOwnKingExposed simulates m and checks the mover's king.
func (p *Position) leavesOwnKingExposed(m Move, mover Color) bool {
	saved := make([]Piece, len(p.board))
	copy(saved, p.board)
	p.apply(m)
	exposed := p.InCheck(mover)
	p.board = saved
	return exposed
}

// LegalMoves generates every legal fight move for the side.
func (p *Position) LegalMoves(c Color) []Move {
	var out []Move
	for rank := 0; rank < p.size; rank++ {
		for file := 0; file < p.size; file++ {
			from := Square{File: file, Rank: rank}
			piece, ok := p.PieceAt(from)
			if !ok || piece.Color != c {
				continue
			}
			for _, to := range p.moveTargets(from) {
				m := Move{Kind: MoveNormal, From: from, To: to}
				if !p.leavesOwnKingExposed(m, c) {
					out = append(out, m)
				}
			}
		}
	}
	return out
}

func (p *Position) hasLegalMove(c Color) bool {
	for rank := 0; rank < p.size; rank++ {
		for file := 0; file < p.size; file++ {
			from := Square{File: file, Rank: rank}
			piece, ok := p.PieceAt(from)
			if !ok || piece.Color != c {
				continue
			}
			for _, to := range p.moveTargets(from) {
				if !p.leavesOwnKingExposed(Move{Kind: MoveNormal, From: from, To: to}, c) {
					return true
				}
			}
		}
	}
	return false
}

// bareKings reports whether only the two kings remain.
func (p *Position) bareKings() bool {
	for _, occ := range p.board {
		if occ.Type != 0 && occ.Type != King {
			return false
		}
	}
	return true
}

// Play validates and applies a fight move, returning the verdict on
// the resulting position.
func (p *Position) Play(moveStr string) (Outcome, error) {
	m, ok := ParseMove(moveStr)
	if !ok || m.Kind != MoveNormal {
		return Outcome{Kind: MoveNotOk}, fmt.Errorf("unparseable move %q", moveStr)
	}
	piece, ok := p.PieceAt(m.From)
	if !ok || piece.Color != p.stm {
		return Outcome{Kind: MoveNotOk}, fmt.Errorf("no movable piece at %s", m.From)
	}
	legal := false
	for _, to := range p.moveTargets(m.From) {
		if to == m.To {
			legal = true
			break
		}
	}
	if !legal {
		return Outcome{Kind: MoveNotOk}, fmt.Errorf("illegal move %s", moveStr)
	}
	if p.leavesOwnKingExposed(m, p.stm) {
		return Outcome{Kind: MoveNotOk}, fmt.Errorf("move %s leaves king in check", moveStr)
	}
	mover := p.stm
	p.apply(m)
	p.stm = mover.Flip()
	p.ply++
	key := p.boardKey()
	p.seen[key]++

	switch {
	case p.bareKings():
		return Outcome{Kind: DrawByMaterial}, nil
	case p.seen[key] >= 3:
		return Outcome{Kind: DrawByRepetition}, nil
	}
	check := p.InCheck(p.stm)
	if !p.hasLegalMove(p.stm) {
		if check {
			return Outcome{Kind: Checkmate, Color: mover}, nil
		}
		return Outcome{Kind: Stalemate}, nil
	}
	if check {
		return Outcome{Kind: Check, Color: p.stm}, nil
	}
	return Outcome{Kind: MoveOk}, nil
}

// Clone deep-copies the position; the repetition book is shared state
// only within the copy.
func (p *Position) Clone() *Position {
	q := &Position{
		variant: p.variant,
		size:    p.size,
		board:   make([]Piece, len(p.board)),
		plinths: make([]bool, len(p.plinths)),
		stm:     p.stm,
		ply:     p.ply,
		seen:    make(map[string]int, len(p.seen)),
	}
	copy(q.board, p.board)
	copy(q.plinths, p.plinths)
	for i := 0; i < 2; i++ {
		q.hands[i] = make(map[rune]int, len(p.hands[i]))
		for t, n := range p.hands[i] {
			q.hands[i][t] = n
		}
	}
	for k, v := range p.seen {
		q.seen[k] = v
	}
	return q
}
