package ai

import (
	"testing"

	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
)

func mustBoard(t *testing.T, s string) domain.Board {
	t.Helper()
	b, err := domain.ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q): %v", s, err)
	}
	return b
}

func TestSelectMoveTakesWinOverBlock(t *testing.T) {
	b := mustBoard(t, "XX./OO./...")
	if got := SelectMove(b, domain.X, domain.O); got != 2 {
		t.Fatalf("expected 2 (complete the row), got %d", got)
	}
	if got := SelectMove(b, domain.O, domain.X); got != 5 {
		t.Fatalf("expected 5 for O, got %d", got)
	}
}

func TestSelectMoveBlocksThreat(t *testing.T) {
	b := mustBoard(t, "X../OO./X..")
	if got := SelectMove(b, domain.X, domain.O); got != 5 {
		t.Fatalf("expected block at 5, got %d", got)
	}
}

func TestSelectMoveFullBoard(t *testing.T) {
	for _, s := range []string{"XOX/XOO/OXX", "XXX/OOX/OXO"} {
		if got := SelectMove(mustBoard(t, s), domain.X, domain.O); got != NoMove {
			t.Fatalf("%s: expected NoMove, got %d", s, got)
		}
	}
}

func TestSelectMoveDoesNotMutateInput(t *testing.T) {
	b := mustBoard(t, "X../.O./...")
	before := b
	_ = SelectMove(b, domain.X, domain.O)
	_ = Scores(b, domain.X, domain.O)
	if b != before {
		t.Fatalf("board changed: %v -> %v", before, b)
	}
}

func TestSelectMoveDeterministic(t *testing.T) {
	boards := []string{".../.../...", "X../.../...", ".../.X./...", "XO./.X./..O"}
	for _, s := range boards {
		b := mustBoard(t, s)
		first := SelectMove(b, domain.O, domain.X)
		for i := 0; i < 3; i++ {
			if got := SelectMove(b, domain.O, domain.X); got != first {
				t.Fatalf("%s: run %d returned %d, first run %d", s, i, got, first)
			}
		}
	}
}

func TestSelectMoveAlreadyWonBoard(t *testing.T) {
	// A line already exists; every reply scores the same and the lowest
	// empty index wins the tie.
	b := mustBoard(t, "OOO/X../X..")
	if got := SelectMove(b, domain.X, domain.O); got != 4 {
		t.Fatalf("expected first empty cell 4, got %d", got)
	}
}

func TestScoresPreferFastWinsAndSlowLosses(t *testing.T) {
	b := mustBoard(t, "XX./OO./...")
	sc := Scores(b, domain.X, domain.O)
	if sc[2] != winScore-1 {
		t.Fatalf("immediate win should score %d, got %d", winScore-1, sc[2])
	}
	for idx, s := range sc {
		if idx != 2 && s >= sc[2] {
			t.Fatalf("cell %d scored %d, not below immediate win %d", idx, s, sc[2])
		}
	}

	blk := mustBoard(t, "X../OO./X..")
	sc = Scores(blk, domain.X, domain.O)
	if sc[1] != 2-winScore {
		t.Fatalf("ignoring the threat loses on the next ply, want %d got %d", 2-winScore, sc[1])
	}
	if sc[5] <= sc[1] {
		t.Fatalf("block should outscore ignoring the threat: %v", sc)
	}
	if _, ok := sc[0]; ok {
		t.Fatalf("occupied cell scored: %v", sc)
	}
}

func TestSelfPlayDraws(t *testing.T) {
	for _, first := range []domain.Cell{domain.X, domain.O} {
		g := domain.New(first)
		for !g.Over() {
			idx := SelectMove(g.Board, g.Turn, g.Turn.Opponent())
			if idx == NoMove {
				t.Fatalf("NoMove on unfinished board %v", g.Board)
			}
			if err := g.Play(idx); err != nil {
				t.Fatalf("play %d on %v: %v", idx, g.Board, err)
			}
		}
		if g.Outcome.Status != domain.Draw {
			t.Fatalf("first=%v: optimal self-play should draw, got %+v on %v", first, g.Outcome, g.Board)
		}
	}
}

// reference is plain minimax without pruning, picking the first best index.
func reference(b domain.Board, mover, opponent domain.Cell) int {
	var search func(depth int, toMove domain.Cell) int
	search = func(depth int, toMove domain.Cell) int {
		if s, done := terminal(b, depth, mover); done {
			return s
		}
		best := maxScore
		if toMove == mover {
			best = minScore
		}
		for i := range b {
			if b[i] != domain.Empty {
				continue
			}
			b[i] = toMove
			s := search(depth+1, toMove.Opponent())
			b[i] = domain.Empty
			if (toMove == mover && s > best) || (toMove != mover && s < best) {
				best = s
			}
		}
		return best
	}
	best, bestScore := NoMove, minScore
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = mover
		s := search(1, opponent)
		b[i] = domain.Empty
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func TestSelectMoveMatchesUnprunedSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("walks every reachable position")
	}
	var seen map[domain.Board]bool
	var walk func(g domain.Game)
	walk = func(g domain.Game) {
		if seen[g.Board] || g.Over() {
			return
		}
		seen[g.Board] = true
		got := SelectMove(g.Board, g.Turn, g.Turn.Opponent())
		want := reference(g.Board, g.Turn, g.Turn.Opponent())
		if got != want {
			t.Fatalf("%v mover %v: pruned search chose %d, reference %d", g.Board, g.Turn, got, want)
		}
		if g.Board[got] != domain.Empty {
			t.Fatalf("%v: chose occupied cell %d", g.Board, got)
		}
		for _, idx := range domain.EmptyIndices(g.Board) {
			next := g
			if err := next.Play(idx); err != nil {
				t.Fatalf("play %d: %v", idx, err)
			}
			walk(next)
		}
	}
	// The mover is implied by who started, so each start gets its own set.
	for _, first := range []domain.Cell{domain.X, domain.O} {
		seen = make(map[domain.Board]bool)
		walk(domain.New(first))
		if len(seen) < 1000 {
			t.Fatalf("first=%v: only %d positions visited", first, len(seen))
		}
	}
}
