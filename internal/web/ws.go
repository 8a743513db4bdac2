package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
)

// stateJSON is the wire form of a game for /state and the websocket.
type stateJSON struct {
	ID        string    `json:"id"`
	Board     [9]string `json:"board"`
	Turn      string    `json:"turn"`
	First     string    `json:"first"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	Winner    string    `json:"winner,omitempty"`
	Line      []int     `json:"line,omitempty"`
	Pending   bool      `json:"pending"`
	MovesLeft int       `json:"movesLeft"`
	Owner     bool      `json:"owner"`
}

func newStateJSON(gs app.GameState, pid string) stateJSON {
	g := gs.Game
	out := stateJSON{
		ID:        gs.ID,
		Turn:      g.Turn.String(),
		First:     g.First.String(),
		Mode:      gs.Mode.String(),
		Status:    g.Outcome.Status.String(),
		Pending:   gs.Pending || gs.ComputerTurn(),
		MovesLeft: g.MovesLeft(),
		Owner:     isOwner(gs, pid),
	}
	for i, c := range g.Board {
		out.Board[i] = c.String()
	}
	if g.Outcome.Status == domain.Win {
		out.Winner = g.Outcome.Winner.String()
		out.Line = g.Outcome.Line[:]
	}
	return out
}

type errorJSON struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// wsCommand is a client message on the websocket.
type wsCommand struct {
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// wsMessage is a server message on the websocket.
type wsMessage struct {
	Type  string     `json:"type"`
	State *stateJSON `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

const wsWriteWait = 5 * time.Second

// checkOrigin allows same-host pages plus one configured origin.
func checkOrigin(allowed string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allowed != "" && origin == allowed {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	pid := playerID(r)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "game", id, "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	updates, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()

	// The read loop only reports errors; state changes come back through the
	// subscription so every connection sees the same sequence.
	replies := make(chan wsMessage, 8)
	go func() {
		defer cancel()
		for {
			var cmd wsCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.log.Debug("websocket read", "game", id, "err", err)
				}
				return
			}
			if err := h.apply(id, pid, cmd); err != nil {
				select {
				case replies <- wsMessage{Type: "error", Error: errorMessage(err)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	send := func(m wsMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(m) == nil
	}
	if gs, ok := h.svc.Get(id); ok {
		st := newStateJSON(*gs, pid)
		if !send(wsMessage{Type: "state", State: &st}) {
			return
		}
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case m := <-replies:
			if !send(m) {
				return
			}
		case gs, ok := <-updates:
			if !ok {
				return
			}
			st := newStateJSON(gs, pid)
			if !send(wsMessage{Type: "state", State: &st}) {
				return
			}
		}
	}
}

// apply runs one websocket command against the service.
func (h *handlers) apply(id, pid string, cmd wsCommand) error {
	var err error
	switch cmd.Type {
	case "move":
		if cmd.Index == nil {
			return domain.ErrOutOfBounds
		}
		_, err = h.svc.Play(id, pid, *cmd.Index)
	case "reset":
		_, err = h.svc.Reset(id, pid)
	case "first":
		_, err = h.svc.ToggleFirst(id, pid)
	case "mode":
		var mode app.Mode
		if mode, err = app.ParseMode(cmd.Mode); err == nil {
			_, err = h.svc.SetMode(id, pid, mode)
		}
	default:
		err = errUnknownCommand
	}
	return err
}
