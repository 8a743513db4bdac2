package app

import (
	"fmt"
	"strings"

	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
)

// Mode selects who plays the second mark.
type Mode uint8

const (
	// PvP is hot-seat play: both marks are entered from the same session.
	PvP Mode = iota
	// CPU pairs the human (X) with the computer (O).
	CPU
)

// ComputerMark is the mark the computer plays in CPU mode.
const ComputerMark = domain.O

// HumanMark is the mark the owner plays in CPU mode.
const HumanMark = domain.X

func (m Mode) String() string {
	if m == CPU {
		return "cpu"
	}
	return "pvp"
}

// ParseMode accepts "pvp" and "cpu". An empty string means PvP.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pvp":
		return PvP, nil
	case "cpu":
		return CPU, nil
	}
	return PvP, fmt.Errorf("%w: %q", ErrBadMode, s)
}
