// Package term is the terminal front end: it renders a game with termenv
// styling and reads moves and commands line by line.
package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jaminalder/codex-tic-tac-toe/internal/ai"
	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
	"github.com/muesli/termenv"
)

const localPlayer = "local"

var errQuit = errors.New("quit")

// ErrBadInput is returned by ParseMove for anything that is not a cell.
var ErrBadInput = errors.New("enter 1-9 or a cell like B2")

// Session is one interactive game on a terminal.
type Session struct {
	svc *app.Service
	id  string
	in  *bufio.Scanner
	out *termenv.Output

	xColor, oColor termenv.Color
}

// NewSession creates a game in svc owned by the terminal user.
func NewSession(svc *app.Service, mode app.Mode, first domain.Cell, in io.Reader, out *termenv.Output) (*Session, error) {
	gs, err := svc.CreateGame(mode, first)
	if err != nil {
		return nil, err
	}
	if _, _, err := svc.Claim(gs.ID, localPlayer); err != nil {
		return nil, err
	}
	return &Session{
		svc:    svc,
		id:     gs.ID,
		in:     bufio.NewScanner(in),
		out:    out,
		xColor: out.Color("#2563eb"),
		oColor: out.Color("#0f766e"),
	}, nil
}

// Run plays until the input ends, the user quits, or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.println("Moves: 1-9 or A1-C3. Commands: hint, reset, first, mode pvp|cpu, quit.")
	for {
		gs, ok := s.svc.Get(s.id)
		if !ok {
			return app.ErrNotFound
		}
		s.render(*gs)
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			s.println("")
			return s.in.Err()
		}
		if err := s.handle(*gs, strings.TrimSpace(s.in.Text())); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.println(s.out.String(err.Error()).Foreground(s.out.Color("#ef4444")).String())
		}
	}
}

func (s *Session) handle(gs app.GameState, line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}
	var err error
	switch fields[0] {
	case "q", "quit", "exit":
		return errQuit
	case "reset":
		_, err = s.svc.Reset(s.id, localPlayer)
	case "first":
		_, err = s.svc.ToggleFirst(s.id, localPlayer)
	case "mode":
		if len(fields) < 2 {
			return fmt.Errorf("usage: mode pvp|cpu")
		}
		var mode app.Mode
		if mode, err = app.ParseMode(fields[1]); err == nil {
			_, err = s.svc.SetMode(s.id, localPlayer, mode)
		}
	case "hint":
		if gs.Game.Over() {
			return domain.ErrGameOver
		}
		idx := ai.SelectMove(gs.Game.Board, gs.Game.Turn, gs.Game.Turn.Opponent())
		s.println(fmt.Sprintf("Best for %s: %d (%s)", gs.Game.Turn, idx+1, CellName(idx)))
	default:
		var idx int
		if idx, err = ParseMove(fields[0]); err == nil {
			_, err = s.svc.Play(s.id, localPlayer, idx)
		}
	}
	return err
}

// ParseMove reads "1".."9" (row-major) or a column letter and row digit
// such as "a1" (top left) through "c3" (bottom right).
func ParseMove(in string) (int, error) {
	in = strings.ToUpper(strings.TrimSpace(in))
	if n, err := strconv.Atoi(in); err == nil {
		if n < 1 || n > 9 {
			return 0, domain.ErrOutOfBounds
		}
		return n - 1, nil
	}
	if len(in) != 2 || in[0] < 'A' || in[0] > 'C' || in[1] < '1' || in[1] > '3' {
		return 0, ErrBadInput
	}
	col := int(in[0] - 'A')
	row := int(in[1] - '1')
	return row*3 + col, nil
}

// CellName is the letter-digit name of idx, e.g. 4 is "B2".
func CellName(idx int) string {
	if idx < 0 || idx > 8 {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'A'+idx%3, idx/3+1)
}

func (s *Session) println(line string) { fmt.Fprintln(s.out, line) }

func (s *Session) render(gs app.GameState) {
	fmt.Fprint(s.out, RenderBoard(s.out, gs.Game.Board, gs.Game.Outcome, s.xColor, s.oColor))
	s.println(StatusLine(gs))
}

// RenderBoard draws the grid. Empty squares show their move number and the
// winning line is highlighted.
func RenderBoard(out *termenv.Output, b domain.Board, o domain.Outcome, xColor, oColor termenv.Color) string {
	var sb strings.Builder
	sb.WriteString("   A   B   C\n")
	for r := 0; r < 3; r++ {
		fmt.Fprintf(&sb, "%d ", r+1)
		for c := 0; c < 3; c++ {
			idx := r*3 + c
			var st termenv.Style
			switch b[idx] {
			case domain.X:
				st = out.String(" X ").Foreground(xColor).Bold()
			case domain.O:
				st = out.String(" O ").Foreground(oColor).Bold()
			default:
				st = out.String(fmt.Sprintf(" %d ", idx+1)).Faint()
			}
			if o.OnLine(idx) {
				st = st.Reverse()
			}
			sb.WriteString(st.String())
			if c < 2 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
		if r < 2 {
			sb.WriteString("  ---+---+---\n")
		}
	}
	return sb.String()
}

// StatusLine mirrors the web status text.
func StatusLine(gs app.GameState) string {
	g := gs.Game
	switch {
	case g.Outcome.Status == domain.Win:
		return "Winner: " + g.Outcome.Winner.String()
	case g.Outcome.Status == domain.Draw:
		return "Draw"
	case gs.Pending || gs.ComputerTurn():
		return "Computer thinking..."
	case gs.Mode == app.CPU:
		return fmt.Sprintf("Turn: %s (you)", g.Turn)
	default:
		return fmt.Sprintf("Turn: %s, %d moves left", g.Turn, g.MovesLeft())
	}
}

// Analyze writes the outcome of b and, if play continues, the chosen move
// and every cell's score for mover.
func Analyze(w io.Writer, b domain.Board, mover domain.Cell) {
	o := domain.Evaluate(b)
	switch o.Status {
	case domain.Win:
		fmt.Fprintf(w, "winner: %s on %v\n", o.Winner, o.Line)
		return
	case domain.Draw:
		fmt.Fprintln(w, "draw")
		return
	}
	idx := ai.SelectMove(b, mover, mover.Opponent())
	fmt.Fprintf(w, "best move for %s: %d (%s)\n", mover, idx, CellName(idx))
	scores := ai.Scores(b, mover, mover.Opponent())
	cells := make([]int, 0, len(scores))
	for i := range scores {
		cells = append(cells, i)
	}
	sort.Ints(cells)
	for _, i := range cells {
		fmt.Fprintf(w, "  %d (%s): %+d\n", i, CellName(i), scores[i])
	}
}
