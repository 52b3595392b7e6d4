package agent

import "shuuro-server/internal/shuuro"

// Material values in centipawns
const (
	pawnValue       = 100
	knightValue     = 320
	bishopValue     = 330
	rookValue       = 500
	queenValue      = 950
	chancellorValue = 900
	archbishopValue = 850
	giraffeValue    = 420
)

const (
	mobilityWeight = 2
	checkPenalty   = 40
)

func pieceValue(t rune) int {
	switch t {
	case shuuro.Pawn:
		return pawnValue
	case shuuro.Knight:
		return knightValue
	case shuuro.Bishop:
		return bishopValue
	case shuuro.Rook:
		return rookValue
	case shuuro.Queen:
		return queenValue
	case shuuro.Chancellor:
		return chancellorValue
	case shuuro.ArchBishop:
		return archbishopValue
	case shuuro.Giraffe:
		return giraffeValue
	}
	return 0
}

// Evaluate returns a score for the position in centipawns from the
// given side's perspective: material and mobility difference, with a
// nudge against standing in check. Antisymmetric, so the search can
// negate it across plies.
func Evaluate(p *shuuro.Position, c shuuro.Color) int {
	score := 0
	size := p.Size()
	for rank := 0; rank < size; rank++ {
		for file := 0; file < size; file++ {
			piece, ok := p.PieceAt(shuuro.Square{File: file, Rank: rank})
			if !ok {
				continue
			}
			v := pieceValue(piece.Type)
			if piece.Color == c {
				score += v
			} else {
				score -= v
			}
		}
	}
	score += mobilityWeight * (len(p.LegalMoves(c)) - len(p.LegalMoves(c.Flip())))
	if p.InCheck(c) {
		score -= checkPenalty
	}
	if p.InCheck(c.Flip()) {
		score += checkPenalty
	}
	return score
}
