package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other mark. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// ParseCell accepts "X" or "O" in either case.
func ParseCell(s string) (Cell, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrBadMark, s)
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Lines lists the winning triples in scan order: rows, columns, diagonals.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Status is the coarse result of evaluating a board.
type Status uint8

const (
	InProgress Status = iota
	Win
	Draw
)

func (s Status) String() string {
	switch s {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}

// Outcome is what Evaluate reports. Winner and Line are set only for Win.
type Outcome struct {
	Status Status
	Winner Cell
	Line   [3]int
}

// Over reports whether the outcome is terminal.
func (o Outcome) Over() bool { return o.Status != InProgress }

// OnLine reports whether idx is part of the winning line.
func (o Outcome) OnLine(idx int) bool {
	if o.Status != Win {
		return false
	}
	return o.Line[0] == idx || o.Line[1] == idx || o.Line[2] == idx
}

// Errors returned by board construction.
var (
	ErrBoardLength = errors.New("board must have 9 cells")
	ErrBadCell     = errors.New("invalid cell")
	ErrBadMark     = errors.New("mark must be X or O")
)

// Evaluate scans Lines in order and returns the first win found. Without a
// win the board is a draw when full and in progress otherwise. Boards that
// could not arise in play are accepted as-is.
func Evaluate(b Board) Outcome {
	for _, ln := range Lines {
		c := b[ln[0]]
		if c != Empty && b[ln[1]] == c && b[ln[2]] == c {
			return Outcome{Status: Win, Winner: c, Line: ln}
		}
	}
	if IsFull(b) {
		return Outcome{Status: Draw}
	}
	return Outcome{Status: InProgress}
}

// EmptyIndices returns the free cells in ascending order.
func EmptyIndices(b Board) []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// IsFull reports whether no empty cell remains.
func IsFull(b Board) bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// BoardFromCells copies cells into a Board, rejecting anything but 9 cells.
func BoardFromCells(cells []Cell) (Board, error) {
	var b Board
	if len(cells) != len(b) {
		return b, fmt.Errorf("%w: got %d", ErrBoardLength, len(cells))
	}
	for i, c := range cells {
		if c > O {
			return Board{}, fmt.Errorf("%w at %d: %d", ErrBadCell, i, c)
		}
		b[i] = c
	}
	return b, nil
}

// ParseBoard reads 9 characters, row-major. X and O are marks; '.', '-',
// '_' and ' ' are empty. Slashes and newlines between rows are ignored.
func ParseBoard(s string) (Board, error) {
	cells := make([]Cell, 0, 9)
	for _, r := range s {
		switch r {
		case 'x', 'X':
			cells = append(cells, X)
		case 'o', 'O':
			cells = append(cells, O)
		case '.', '-', '_', ' ':
			cells = append(cells, Empty)
		case '/', '\n', '\r', '|':
		default:
			return Board{}, fmt.Errorf("%w: %q", ErrBadCell, r)
		}
	}
	return BoardFromCells(cells)
}

// String renders the board in the ParseBoard format, rows split by '/'.
func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 && i%3 == 0 {
			sb.WriteByte('/')
		}
		if c == Empty {
			sb.WriteByte('.')
		} else {
			sb.WriteString(c.String())
		}
	}
	return sb.String()
}
