package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *slog.Logger
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

func isOwner(gs app.GameState, pid string) bool {
	return pid != "" && gs.Owner == pid
}

func (h *handlers) renderBoard(gs app.GameState, owner bool, errMsg string) []byte {
	b, err := renderTemplate(h.tpl.board, newBoardView(gs, owner, errMsg))
	if err != nil {
		h.log.Error("render board", "game", gs.ID, "err", err)
	}
	return b
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// errorMessage maps service and domain errors to user-facing text.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, app.ErrNotAPlayer):
		return "You are a spectator"
	case errors.Is(err, app.ErrComputerThinking):
		return "Computer is thinking"
	case errors.Is(err, app.ErrBadMode):
		return "Unknown mode"
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	default:
		return "Invalid move"
	}
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	body, err := renderTemplate(h.tpl.index, nil)
	if err != nil {
		h.log.Error("render index", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mode, err := app.ParseMode(r.Form.Get("mode"))
	if err != nil {
		http.Error(w, errorMessage(err), http.StatusBadRequest)
		return
	}
	first := domain.X
	if v := r.Form.Get("first"); v != "" {
		if first, err = domain.ParseCell(v); err != nil {
			http.Error(w, "first must be X or O", http.StatusBadRequest)
			return
		}
	}
	gs, err := h.svc.CreateGame(mode, first)
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	// The creator owns the game even before the redirect is followed.
	pid := ensurePlayerCookie(w, r)
	_, _, _ = h.svc.Claim(gs.ID, pid)
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ensure cookie and auto-claim an unowned game
	pid := ensurePlayerCookie(w, r)
	owner, gs, err := h.svc.Claim(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID        string
		BoardHTML template.HTML
	}{ID: gs.ID, BoardHTML: template.HTML(h.renderBoard(*gs, owner, ""))}

	body, err := renderTemplate(h.tpl.game, data)
	if err != nil {
		h.log.Error("render game", "game", id, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (h *handlers) board(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, isOwner(*gs, playerID(r)), ""))
}

// parseIndex reads the cell either as "i" (0..8) or as "r" and "c" (0..2).
func parseIndex(r *http.Request) (int, error) {
	if v := r.Form.Get("i"); v != "" {
		return strconv.Atoi(v)
	}
	ri, err := strconv.Atoi(r.Form.Get("r"))
	if err != nil {
		return 0, err
	}
	ci, err := strconv.Atoi(r.Form.Get("c"))
	if err != nil {
		return 0, err
	}
	if ri < 0 || ri > 2 || ci < 0 || ci > 2 {
		return 0, domain.ErrOutOfBounds
	}
	return ri*3 + ci, nil
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	idx, err := parseIndex(r)
	if err != nil {
		h.respond(w, r, nil, fmt.Errorf("parse cell: %w", err))
		return
	}
	gs, err := h.svc.Play(chi.URLParam(r, "id"), playerID(r), idx)
	h.respond(w, r, gs, err)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.Reset(chi.URLParam(r, "id"), playerID(r))
	h.respond(w, r, gs, err)
}

func (h *handlers) mode(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mode, err := app.ParseMode(r.Form.Get("mode"))
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	gs, err := h.svc.SetMode(chi.URLParam(r, "id"), playerID(r), mode)
	h.respond(w, r, gs, err)
}

func (h *handlers) first(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.ToggleFirst(chi.URLParam(r, "id"), playerID(r))
	h.respond(w, r, gs, err)
}

// respond renders the board fragment after an owner action. On error the
// current board is shown with the message.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, gs *app.GameState, err error) {
	id := chi.URLParam(r, "id")
	var errMsg string
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		errMsg = errorMessage(err)
		h.log.Debug("action rejected", "game", id, "err", err)
		if gs == nil {
			if g, ok := h.svc.Get(id); ok {
				gs = g
			}
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, isOwner(*gs, playerID(r)), errMsg))
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: app.ErrNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newStateJSON(*gs, playerID(r)))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	pid := playerID(r)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, "board", h.renderBoard(gs, isOwner(gs, pid), ""))
			flusher.Flush()
		}
	}
}

// writeSSE emits one event; every payload line gets its own data field.
func writeSSE(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
