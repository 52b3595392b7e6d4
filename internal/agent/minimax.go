package agent

import (
	"crypto/rand"
	"math/big"

	"shuuro-server/internal/shuuro"
)

const (
	infinity  = 999999
	mateScore = 100000
)

const maxDepth = 3

// randomnessThreshold is the centipawn window within which moves are
// considered equally good. This adds variety without sacrificing
// quality.
const randomnessThreshold = 30

// Search finds a move for the given side using negamax with
// alpha-beta pruning. depth is clamped to 0..3, and 3 is downgraded to
// 2 on 12x12 boards. Among moves within randomnessThreshold of the
// best score, one is chosen at random. ok is false when the side has
// no legal move.
func Search(p *shuuro.Position, c shuuro.Color, depth uint8) (shuuro.Move, bool) {
	d := int(depth)
	if d > maxDepth {
		d = maxDepth
	}
	if p.Size() == 12 && d == maxDepth {
		d = maxDepth - 1
	}

	moves := p.LegalMoves(c)
	if len(moves) == 0 {
		return shuuro.Move{}, false
	}

	type scoredMove struct {
		move  shuuro.Move
		score int
	}
	scored := make([]scoredMove, 0, len(moves))
	bestScore := -infinity
	alpha, beta := -infinity, infinity

	for _, m := range moves {
		child := p.Clone()
		outcome, err := child.Play(m.Fen())
		if err != nil {
			continue
		}
		var score int
		switch outcome.Kind {
		case shuuro.Checkmate:
			score = mateScore + d
		case shuuro.Stalemate, shuuro.DrawByRepetition, shuuro.DrawByMaterial:
			score = 0
		default:
			score = -negamax(child, c.Flip(), d-1, -beta, -alpha)
		}
		scored = append(scored, scoredMove{move: m, score: score})
		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
		}
	}
	if len(scored) == 0 {
		return shuuro.Move{}, false
	}

	// Collect all moves within the randomness threshold of the best
	var candidates []shuuro.Move
	for _, sm := range scored {
		if sm.score >= bestScore-randomnessThreshold {
			candidates = append(candidates, sm.move)
		}
	}
	if len(candidates) == 0 {
		return scored[0].move, true
	}

	idx := 0
	if len(candidates) > 1 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
		if err == nil {
			idx = int(n.Int64())
		}
	}
	return candidates[idx], true
}

// negamax scores the position for the side to move.
func negamax(p *shuuro.Position, toMove shuuro.Color, depth, alpha, beta int) int {
	if depth <= 0 {
		return Evaluate(p, toMove)
	}
	moves := p.LegalMoves(toMove)
	if len(moves) == 0 {
		if p.InCheck(toMove) {
			return -mateScore - depth // Side to move is mated
		}
		return 0
	}

	best := -infinity
	for _, m := range moves {
		child := p.Clone()
		outcome, err := child.Play(m.Fen())
		if err != nil {
			continue
		}
		var score int
		switch outcome.Kind {
		case shuuro.Checkmate:
			score = mateScore + depth
		case shuuro.Stalemate, shuuro.DrawByRepetition, shuuro.DrawByMaterial:
			score = 0
		default:
			score = -negamax(child, toMove.Flip(), depth-1, -beta, -alpha)
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break // beta cutoff
		}
	}
	return best
}
