package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-tic-tac-toe/internal/domain"
)

type templates struct {
	index *template.Template
	game  *template.Template
	board *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(baseTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(gameTemplate))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{index: index, game: game, board: board}
}

func renderTemplate(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellView is one square of the rendered board.
type cellView struct {
	Index    int
	Symbol   string
	Win      bool
	Disabled bool
}

// boardView is everything the board fragment shows.
type boardView struct {
	ID          string
	Cells       []cellView
	Status      string
	StatusClass string
	Helper      string
	Mode        string
	First       string
	Owner       bool
	CanReset    bool
	Error       string
}

func newBoardView(gs app.GameState, owner bool, errMsg string) boardView {
	g := gs.Game
	v := boardView{
		ID:       gs.ID,
		Mode:     gs.Mode.String(),
		First:    g.First.String(),
		Owner:    owner,
		CanReset: owner && (g.Moves > 0 || g.Over()),
		Error:    errMsg,
	}
	inputOK := owner && gs.AcceptsInput()
	for i, c := range g.Board {
		v.Cells = append(v.Cells, cellView{
			Index:    i,
			Symbol:   c.String(),
			Win:      g.Outcome.OnLine(i),
			Disabled: !inputOK || c != domain.Empty,
		})
	}

	switch {
	case g.Outcome.Status == domain.Win:
		v.Status = "Winner: " + g.Outcome.Winner.String()
		v.StatusClass = "status status--win"
	case g.Outcome.Status == domain.Draw:
		v.Status = "Draw"
		v.StatusClass = "status status--draw"
	case gs.Pending || gs.ComputerTurn():
		v.Status = "Computer thinking..."
		v.StatusClass = "status"
	default:
		v.Status = "Turn: " + g.Turn.String()
		v.StatusClass = "status"
	}

	if gs.Mode == app.CPU {
		v.Helper = "You are " + app.HumanMark.String()
	} else {
		v.Helper = fmt.Sprintf("%d moves left", g.MovesLeft())
	}
	return v
}

const baseTemplate = `<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic Tac Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.board{display:grid;grid-template-columns:repeat(3,4rem);gap:10px}
.square{width:4rem;height:4rem;font-size:2rem}
.square--win{background:#fde68a}
.status--win{color:#2563eb}.status--draw{color:#6b7280}
.alert{color:#ef4444}
</style>
</head><body>{{template "content" .}}</body></html>`

const indexTemplate = `<h1>Tic Tac Toe</h1>
<form action="/game" method="post">
  <label>Mode
    <select name="mode">
      <option value="pvp">Player vs Player</option>
      <option value="cpu">Player vs Computer</option>
    </select>
  </label>
  <label>First
    <select name="first">
      <option value="X">X</option>
      <option value="O">O</option>
    </select>
  </label>
  <button>Create</button>
</form>`

const gameTemplate = `<h1>Tic Tac Toe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-slot" sse-swap="board">{{.BoardHTML}}</div>
</div>`

const boardTemplate = `<div id="board" data-mode="{{.Mode}}">
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  <p class="{{.StatusClass}}" role="status" aria-live="polite">{{.Status}}</p>
  <div class="board" role="grid" aria-label="Tic Tac Toe board">
  {{range .Cells}}
    <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
      <input type="hidden" name="i" value="{{.Index}}">
      <button type="submit" class="square{{if .Win}} square--win{{end}}" data-index="{{.Index}}"{{if .Disabled}} disabled{{end}}>{{.Symbol}}</button>
    </form>
  {{end}}
  </div>
  {{if .Owner}}
  <div class="controls" role="group" aria-label="Game controls - mode {{.Mode}}">
    <form hx-post="/game/{{.ID}}/mode" hx-target="#board" hx-swap="outerHTML" method="post">
      <button name="mode" value="pvp" aria-pressed="{{if eq .Mode "pvp"}}true{{else}}false{{end}}">Player vs Player</button>
      <button name="mode" value="cpu" aria-pressed="{{if eq .Mode "cpu"}}true{{else}}false{{end}}">Player vs Computer</button>
    </form>
    <form hx-post="/game/{{.ID}}/first" hx-target="#board" hx-swap="outerHTML" method="post">
      <button aria-label="Toggle first player">First: {{.First}}</button>
    </form>
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
      <button{{if not .CanReset}} disabled{{end}}>Reset</button>
    </form>
  </div>
  {{end}}
  <p class="helper-text">{{.Helper}}</p>
</div>
`

const playerCookie = "player_id"

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil && c.Value != "" {
		return c.Value
	}
	// Generate UUIDv4 for player ID
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}

// playerID reads the cookie without setting one.
func playerID(r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil {
		return c.Value
	}
	return ""
}
