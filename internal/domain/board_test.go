package domain

import (
	"errors"
	"reflect"
	"testing"
)

func mustBoard(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q): %v", s, err)
	}
	return b
}

func TestEvaluateEveryLine(t *testing.T) {
	for _, mark := range []Cell{X, O} {
		for _, ln := range Lines {
			var b Board
			for _, i := range ln {
				b[i] = mark
			}
			got := Evaluate(b)
			if got.Status != Win || got.Winner != mark || got.Line != ln {
				t.Fatalf("line %v for %v: got %+v", ln, mark, got)
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		board  string
		status Status
		winner Cell
		line   [3]int
	}{
		{"empty", ".../.../...", InProgress, Empty, [3]int{}},
		{"row 0 X wins", "XXX/.O./.O.", Win, X, [3]int{0, 1, 2}},
		{"col 1 O wins", "XO./.OX/.O.", Win, O, [3]int{1, 4, 7}},
		{"anti diagonal", "X.O/XO./O..", Win, O, [3]int{2, 4, 6}},
		{"draw", "XOX/XOO/OXX", Draw, Empty, [3]int{}},
		{"in progress", "XOX/.O./OX.", InProgress, Empty, [3]int{}},
		// unreachable: two lines at once, row scanned before column
		{"two lines row first", "OOO/X../X..", Win, O, [3]int{0, 1, 2}},
		{"two marks win", "XXX/OOO/...", Win, X, [3]int{0, 1, 2}},
		{"column before diagonal", "X.O/X.O/XO.", Win, X, [3]int{0, 3, 6}},
		{"full board with win is a win", "XXX/OOX/OXO", Win, X, [3]int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(mustBoard(t, tt.board))
			if got.Status != tt.status {
				t.Fatalf("expected %v, got %v", tt.status, got.Status)
			}
			if got.Winner != tt.winner {
				t.Fatalf("expected winner %v, got %v", tt.winner, got.Winner)
			}
			if tt.status == Win && got.Line != tt.line {
				t.Fatalf("expected line %v, got %v", tt.line, got.Line)
			}
		})
	}
}

func TestOutcomeOnLine(t *testing.T) {
	o := Evaluate(mustBoard(t, "X.O/XO./O.."))
	for i := 0; i < 9; i++ {
		want := i == 2 || i == 4 || i == 6
		if o.OnLine(i) != want {
			t.Fatalf("OnLine(%d) = %v", i, !want)
		}
	}
	if (Outcome{Status: Draw}).OnLine(0) {
		t.Fatalf("draw has no line")
	}
}

func TestEmptyIndicesAndIsFull(t *testing.T) {
	b := mustBoard(t, "X.O/.X./O..")
	if got, want := EmptyIndices(b), []int{1, 3, 5, 7, 8}; !reflect.DeepEqual(got, want) {
		t.Fatalf("EmptyIndices = %v, want %v", got, want)
	}
	if IsFull(b) {
		t.Fatalf("board with empties reported full")
	}
	full := mustBoard(t, "XOX/XOO/OXX")
	if !IsFull(full) || len(EmptyIndices(full)) != 0 {
		t.Fatalf("full board not detected")
	}
}

func TestBoardFromCellsRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 8, 10} {
		if _, err := BoardFromCells(make([]Cell, n)); !errors.Is(err, ErrBoardLength) {
			t.Fatalf("len %d: expected ErrBoardLength, got %v", n, err)
		}
	}
	if _, err := BoardFromCells([]Cell{X, O, Empty, 7, 0, 0, 0, 0, 0}); !errors.Is(err, ErrBadCell) {
		t.Fatalf("expected ErrBadCell, got %v", err)
	}
	b, err := BoardFromCells([]Cell{X, O, Empty, Empty, X, Empty, Empty, Empty, O})
	if err != nil || b[0] != X || b[8] != O {
		t.Fatalf("unexpected board %v err=%v", b, err)
	}
}

func TestParseBoard(t *testing.T) {
	b := mustBoard(t, "x_o\n-X.\n o.")
	want := Board{X, Empty, O, Empty, X, Empty, Empty, O, Empty}
	if b != want {
		t.Fatalf("got %v, want %v", b, want)
	}
	if b.String() != "X.O/.X./.O." {
		t.Fatalf("String() = %q", b.String())
	}
	if _, err := ParseBoard("XO"); !errors.Is(err, ErrBoardLength) {
		t.Fatalf("expected ErrBoardLength, got %v", err)
	}
	if _, err := ParseBoard("XOZ......"); !errors.Is(err, ErrBadCell) {
		t.Fatalf("expected ErrBadCell, got %v", err)
	}
}

func TestParseCell(t *testing.T) {
	if c, err := ParseCell(" o "); err != nil || c != O {
		t.Fatalf("ParseCell(o) = %v, %v", c, err)
	}
	if _, err := ParseCell("Z"); !errors.Is(err, ErrBadMark) {
		t.Fatalf("expected ErrBadMark, got %v", err)
	}
	if X.Opponent() != O || O.Opponent() != X || Empty.Opponent() != Empty {
		t.Fatalf("Opponent mapping broken")
	}
}
