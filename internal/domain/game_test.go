package domain

import (
	"errors"
	"testing"
)

// helper to apply a sequence of moves
func playMoves(t *testing.T, g *Game, moves [][2]int) {
	t.Helper()
	for i, m := range moves {
		if err := g.PlayAt(m[0], m[1]); err != nil {
			t.Fatalf("move %d (%v) failed: %v", i, m, err)
		}
	}
}

func TestNewGameInitialState(t *testing.T) {
	g := New(X)
	if g.Turn != X || g.First != X {
		t.Fatalf("expected X to start, got turn=%v first=%v", g.Turn, g.First)
	}
	if g.Moves != 0 || g.MovesLeft() != 9 {
		t.Fatalf("expected 0 moves / 9 left, got %d / %d", g.Moves, g.MovesLeft())
	}
	if g.Over() {
		t.Fatalf("expected game not over")
	}
	if g.Winner() != Empty {
		t.Fatalf("expected no winner, got %v", g.Winner())
	}
	for i, c := range g.Board {
		if c != Empty {
			t.Fatalf("expected empty board, cell %d = %v", i, c)
		}
	}
}

func TestNewGameFirstMover(t *testing.T) {
	if g := New(O); g.Turn != O {
		t.Fatalf("expected O to start, got %v", g.Turn)
	}
	if g := New(Empty); g.Turn != X {
		t.Fatalf("expected fallback to X, got %v", g.Turn)
	}
}

func TestPlayOutOfBounds(t *testing.T) {
	g := New(X)
	cases := [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}}
	for _, m := range cases {
		if err := g.PlayAt(m[0], m[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds for %v, got %v", m, err)
		}
	}
	for _, idx := range []int{-1, 9, 42} {
		if err := g.Play(idx); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds for index %d, got %v", idx, err)
		}
	}
}

func TestPlayOccupied(t *testing.T) {
	g := New(X)
	if err := g.Play(0); err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	if err := g.Play(0); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected ErrOccupied on same cell, got %v", err)
	}
	if g.Turn != O {
		t.Fatalf("rejected move must not flip the turn")
	}
}

func TestTurnFlipsAfterValidMove(t *testing.T) {
	g := New(X)
	if err := g.PlayAt(1, 1); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if g.Turn != O {
		t.Fatalf("expected turn to flip to O, got %v", g.Turn)
	}
	if g.Board[4] != X {
		t.Fatalf("expected X at center, got %v", g.Board[4])
	}
}

func TestWinRecordsLine(t *testing.T) {
	g := New(X)
	// X: 0, 1, 2; O: 3, 4
	playMoves(t, &g, [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}})
	if !g.Over() || g.Winner() != X {
		t.Fatalf("expected X win, got %+v", g.Outcome)
	}
	if g.Outcome.Line != [3]int{0, 1, 2} {
		t.Fatalf("expected top row, got %v", g.Outcome.Line)
	}
	if g.Turn != X {
		t.Fatalf("turn should stay with the winner, got %v", g.Turn)
	}
}

func TestOWinsWhenStartingSecond(t *testing.T) {
	g := New(X)
	// X: 1, 2, 7; O: 0, 4, 8
	for _, idx := range []int{1, 0, 2, 4, 7, 8} {
		if err := g.Play(idx); err != nil {
			t.Fatalf("play %d: %v", idx, err)
		}
	}
	if g.Winner() != O || g.Outcome.Line != [3]int{0, 4, 8} {
		t.Fatalf("expected O on main diagonal, got %+v", g.Outcome)
	}
	if g.Moves != 6 {
		t.Fatalf("expected 6 moves, got %d", g.Moves)
	}
}

func TestDrawNoWinner(t *testing.T) {
	g := New(X)
	// Draw pattern (no three in a row)
	seq := [][2]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 1}, {1, 0}, {1, 2},
		{2, 1}, {2, 0}, {2, 2},
	}
	playMoves(t, &g, seq)
	if !g.Over() || g.Outcome.Status != Draw {
		t.Fatalf("expected draw, got %+v", g.Outcome)
	}
	if g.Winner() != Empty {
		t.Fatalf("expected no winner on draw, got %v", g.Winner())
	}
	if g.MovesLeft() != 0 {
		t.Fatalf("expected no moves left, got %d", g.MovesLeft())
	}
}

func TestGameOverBlocksFurtherMoves(t *testing.T) {
	g := New(X)
	playMoves(t, &g, [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}})
	if err := g.PlayAt(2, 2); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestResetRestartsAtFirstMover(t *testing.T) {
	g := New(O)
	playMoves(t, &g, [][2]int{{0, 0}, {1, 1}})
	g.Reset()
	if g.Turn != O || g.Moves != 0 || g.Board != (Board{}) {
		t.Fatalf("reset should empty board and restart at O, got %+v", g)
	}
	g.SetFirst(X)
	if g.Turn != X || g.First != X {
		t.Fatalf("SetFirst should restart at X, got turn=%v first=%v", g.Turn, g.First)
	}
}
