// Package ai picks moves for the computer player.
//
// The search is exhaustive: at most nine plies remain on a 3x3 board, so
// every line of play is followed to its end. Scores are biased by the ply at
// which the game ends, so a quicker win outranks a slower one and a loss is
// postponed as long as possible.
package ai

import "github.com/jaminalder/codex-tic-tac-toe/internal/domain"

// NoMove is returned when the board has no empty cell.
const NoMove = -1

// winScore is larger than the deepest possible ply so every win stays
// positive and every loss negative.
const winScore = 10

const (
	minScore = -winScore - 1
	maxScore = winScore + 1
)

// SelectMove returns the best empty cell for mover, assuming opponent replies
// optimally. Ties go to the lowest index. The board is taken by value and is
// never modified. A full board yields NoMove.
func SelectMove(b domain.Board, mover, opponent domain.Cell) int {
	best, bestScore := NoMove, minScore
	alpha := minScore
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = mover
		score := minimax(&b, 1, false, mover, opponent, alpha, maxScore)
		b[i] = domain.Empty
		// Strictly greater keeps the first of equal moves. A pruned child
		// returns at most alpha, so it never displaces the current best.
		if score > bestScore {
			best, bestScore = i, score
			alpha = score
		}
	}
	return best
}

// Scores returns the exact minimax value of every empty cell for mover.
func Scores(b domain.Board, mover, opponent domain.Cell) map[int]int {
	out := make(map[int]int)
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = mover
		out[i] = minimax(&b, 1, false, mover, opponent, minScore, maxScore)
		b[i] = domain.Empty
	}
	return out
}

// minimax scores the position after depth plies. maximizing is true when
// mover is to play. The board is restored before returning.
func minimax(b *domain.Board, depth int, maximizing bool, mover, opponent domain.Cell, alpha, beta int) int {
	if s, done := terminal(*b, depth, mover); done {
		return s
	}

	if maximizing {
		best := minScore
		for i := range b {
			if b[i] != domain.Empty {
				continue
			}
			b[i] = mover
			s := minimax(b, depth+1, false, mover, opponent, alpha, beta)
			b[i] = domain.Empty
			if s > best {
				best = s
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}

	best := maxScore
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = opponent
		s := minimax(b, depth+1, true, mover, opponent, alpha, beta)
		b[i] = domain.Empty
		if s < best {
			best = s
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// terminal scores a finished board. Any winner other than mover counts as a
// loss for mover.
func terminal(b domain.Board, depth int, mover domain.Cell) (int, bool) {
	o := domain.Evaluate(b)
	switch o.Status {
	case domain.Win:
		if o.Winner == mover {
			return winScore - depth, true
		}
		return depth - winScore, true
	case domain.Draw:
		return 0, true
	}
	return 0, false
}
