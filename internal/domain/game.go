package domain

import "errors"

// Game holds the current state of a Tic-Tac-Toe match. The board carries no
// notion of whose turn it is; Turn and First do.
type Game struct {
	Board   Board
	Turn    Cell
	First   Cell
	Outcome Outcome
	Moves   int
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
)

// New returns a new game with first to move. Anything but O starts with X.
func New(first Cell) Game {
	if first != O {
		first = X
	}
	return Game{Turn: first, First: first}
}

// Over reports whether the game has been won or drawn.
func (g *Game) Over() bool { return g.Outcome.Over() }

// Winner returns the winning mark, or Empty.
func (g *Game) Winner() Cell {
	if g.Outcome.Status != Win {
		return Empty
	}
	return g.Outcome.Winner
}

// MovesLeft counts the empty cells.
func (g *Game) MovesLeft() int { return len(g.Board) - g.Moves }

// PlayAt plays the current turn at row r, column c (0..2).
func (g *Game) PlayAt(r, c int) error {
	if r < 0 || r > 2 || c < 0 || c > 2 {
		return ErrOutOfBounds
	}
	return g.Play(r*3 + c)
}

// Play places the current turn's mark at idx, re-evaluates the board and
// hands the turn over if play continues.
func (g *Game) Play(idx int) error {
	if g.Over() {
		return ErrGameOver
	}
	if idx < 0 || idx >= len(g.Board) {
		return ErrOutOfBounds
	}
	if g.Board[idx] != Empty {
		return ErrOccupied
	}

	g.Board[idx] = g.Turn
	g.Moves++

	g.Outcome = Evaluate(g.Board)
	if g.Over() {
		return nil
	}
	g.Turn = g.Turn.Opponent()
	return nil
}

// Reset empties the board and restarts the turn sequence at First.
func (g *Game) Reset() {
	*g = New(g.First)
}

// SetFirst changes the first mover and resets the game.
func (g *Game) SetFirst(first Cell) {
	*g = New(first)
}
