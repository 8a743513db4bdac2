package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/codex-tic-tac-toe/internal/ai"
	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound         = errors.New("game not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotAPlayer       = errors.New("not a player")
	ErrComputerThinking = errors.New("computer is thinking")
	ErrBadMode          = errors.New("unknown mode")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	Mode    Mode
	Owner   string
	Pending bool
	Created time.Time
	Updated time.Time

	// gen changes on every mutation; a scheduled computer move only applies
	// to the generation it was computed for.
	gen uint64
}

// ComputerTurn reports whether the computer owes the next move.
func (gs GameState) ComputerTurn() bool {
	return gs.Mode == CPU && !gs.Game.Over() && gs.Game.Turn == ComputerMark
}

// AcceptsInput reports whether the owner may place a mark right now.
func (gs GameState) AcceptsInput() bool {
	return !gs.Game.Over() && !gs.Pending && !gs.ComputerTurn()
}

type subscriber struct {
	ch        chan GameState
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// subscriberBuffer is how many updates a subscriber may lag before it is
// dropped.
const subscriberBuffer = 4

// Options configures a Service.
type Options struct {
	// ThinkDelay postpones computer replies. Zero plays them synchronously.
	ThinkDelay time.Duration
	Logger     *slog.Logger
}

// Service manages games and subscribers.
type Service struct {
	mu    sync.Mutex
	games map[string]*GameState
	subs  map[string]map[*subscriber]struct{}

	delay    time.Duration
	log      *slog.Logger
	schedule func(time.Duration, func())
}

// NewService creates a service whose computer replies immediately.
func NewService() *Service { return NewServiceWithOptions(Options{}) }

// NewServiceWithOptions creates a service from opts.
func NewServiceWithOptions(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		games: make(map[string]*GameState),
		subs:  make(map[string]map[*subscriber]struct{}),
		delay: opts.ThinkDelay,
		log:   logger,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame(mode Mode, first domain.Cell) (*GameState, error) {
	now := time.Now()
	gs := &GameState{ID: uuid.NewString(), Game: domain.New(first), Mode: mode, Created: now, Updated: now}

	s.mu.Lock()
	s.games[gs.ID] = gs
	s.scheduleComputerLocked(gs)
	cp := *gs
	s.mu.Unlock()

	s.log.Info("game created", "game", cp.ID, "mode", cp.Mode.String(), "first", cp.Game.First.String())
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Claim makes playerID the owner of an unowned game. It reports whether
// playerID owns the game; everyone else spectates.
func (s *Service) Claim(id, playerID string) (bool, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return false, nil, ErrNotFound
	}
	if gs.Owner == "" && playerID != "" {
		gs.Owner = playerID
		gs.Updated = time.Now()
	}
	cp := *gs
	return gs.Owner == playerID, &cp, nil
}

// Play validates ownership and turn, applies a move at idx, lets the
// computer answer when it is its turn, and broadcasts.
func (s *Service) Play(id, playerID string, idx int) (*GameState, error) {
	return s.mutate(id, playerID, func(gs *GameState) error {
		if gs.Pending {
			return ErrComputerThinking
		}
		if gs.ComputerTurn() {
			return ErrNotYourTurn
		}
		if err := gs.Game.Play(idx); err != nil {
			return err
		}
		s.log.Debug("move", "game", gs.ID, "index", idx, "board", gs.Game.Board.String())
		return nil
	})
}

// Reset clears the board and restarts at the current first mover.
func (s *Service) Reset(id, playerID string) (*GameState, error) {
	return s.mutate(id, playerID, func(gs *GameState) error {
		gs.Game.Reset()
		gs.Pending = false
		return nil
	})
}

// SetMode switches between hot-seat and computer play and resets.
func (s *Service) SetMode(id, playerID string, mode Mode) (*GameState, error) {
	return s.mutate(id, playerID, func(gs *GameState) error {
		gs.Mode = mode
		gs.Game.Reset()
		gs.Pending = false
		return nil
	})
}

// ToggleFirst swaps the first mover and resets.
func (s *Service) ToggleFirst(id, playerID string) (*GameState, error) {
	return s.mutate(id, playerID, func(gs *GameState) error {
		gs.Game.SetFirst(gs.Game.First.Opponent())
		gs.Pending = false
		return nil
	})
}

// mutate runs fn on the owned game, schedules the computer if needed, and
// broadcasts the result.
func (s *Service) mutate(id, playerID string, fn func(*GameState) error) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Owner == "" || gs.Owner != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if err := fn(gs); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.touchLocked(gs)
	s.scheduleComputerLocked(gs)

	cp := *gs
	s.fanOutLocked(id, cp)
	s.mu.Unlock()
	return &cp, nil
}

func (s *Service) touchLocked(gs *GameState) {
	gs.gen++
	gs.Updated = time.Now()
}

// scheduleComputerLocked plays the computer's reply now, or marks the game
// pending and plays it after the think delay.
func (s *Service) scheduleComputerLocked(gs *GameState) {
	if !gs.ComputerTurn() {
		return
	}
	if s.delay <= 0 {
		s.computerMoveLocked(gs, gs.Game.Board)
		return
	}
	gs.Pending = true
	id, gen, board := gs.ID, gs.gen, gs.Game.Board
	s.schedule(s.delay, func() { s.applyComputer(id, gen, board) })
}

// applyComputer runs a delayed reply. The game may have been reset, ended or
// removed in the meantime, in which case the reply is dropped.
func (s *Service) applyComputer(id string, gen uint64, board domain.Board) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok || gs.gen != gen || !gs.ComputerTurn() {
		s.mu.Unlock()
		s.log.Debug("stale computer move dropped", "game", id)
		return
	}
	gs.Pending = false
	s.computerMoveLocked(gs, board)
	s.fanOutLocked(id, *gs)
	s.mu.Unlock()
}

func (s *Service) computerMoveLocked(gs *GameState, board domain.Board) {
	idx := ai.SelectMove(board, ComputerMark, ComputerMark.Opponent())
	if idx == ai.NoMove {
		return
	}
	if err := gs.Game.Play(idx); err != nil {
		s.log.Error("computer move rejected", "game", gs.ID, "index", idx, "err", err)
		return
	}
	s.touchLocked(gs)
	s.log.Debug("computer move", "game", gs.ID, "index", idx, "board", gs.Game.Board.String())
}

// fanOutLocked delivers a snapshot without blocking; subscribers whose
// buffer is full are closed and dropped. Sends and closes both happen under
// s.mu so a dropped channel is never written to again.
func (s *Service) fanOutLocked(id string, cp GameState) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- cp:
		default:
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Warn("dropped slow subscribers", "game", id, "count", dropped)
	}
}

// Subscribe registers a subscriber for a game. It returns a channel of state
// snapshots and an unsubscribe func; both end when ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, subscriberBuffer)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
