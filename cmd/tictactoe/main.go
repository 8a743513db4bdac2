// Command tictactoe plays in the terminal, or analyzes a single position
// when -board is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
	"github.com/jaminalder/codex-tic-tac-toe/internal/term"
	"github.com/muesli/termenv"
)

func main() {
	modeFlag := flag.String("mode", "cpu", "pvp (hot seat) or cpu (you are X, the computer is O)")
	firstFlag := flag.String("first", "X", "mark that moves first")
	boardFlag := flag.String("board", "", "analyze a position instead of playing, e.g. XX./OO./...")
	moverFlag := flag.String("mover", "X", "mark to move when analyzing -board")
	noColor := flag.Bool("no-color", false, "disable colors")
	flag.Parse()

	if *boardFlag != "" {
		b, err := domain.ParseBoard(*boardFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -board: %v\n", err)
			os.Exit(2)
		}
		mover, err := domain.ParseCell(*moverFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -mover: %v\n", err)
			os.Exit(2)
		}
		term.Analyze(os.Stdout, b, mover)
		return
	}

	mode, err := app.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -mode: %v\n", err)
		os.Exit(2)
	}
	first, err := domain.ParseCell(*firstFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -first: %v\n", err)
		os.Exit(2)
	}

	var opts []termenv.OutputOption
	if *noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	out := termenv.NewOutput(os.Stdout, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := term.NewSession(app.NewService(), mode, first, os.Stdin, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start: %v\n", err)
		os.Exit(1)
	}
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
