// Package web holds the control and overlay pages and their static assets,
// embedded into the binary.
package web

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/a-h/templ"

	"github.com/Tyrowin/scoreline/internal/match"
)

// InitialStateID is the id of the JSON script element that carries the
// state a page was rendered with. The page scripts read it before the push
// channel connects.
const InitialStateID = "initial-state"

//go:embed static
var staticFS embed.FS

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body class="%s">
`

const pageTail = `<script src="%s"></script>
</body>
</html>
`

// ControlPage renders the operator page used to edit the match state,
// seeded with state.
func ControlPage(state match.State) templ.Component {
	return layout("Scoreline Control", "control", "/assets/control.js", state, fragment("control_body.html"))
}

// OverlayPage renders the broadcast overlay showing state. Later changes
// arrive over the push channel.
func OverlayPage(state match.State) templ.Component {
	return layout("Scoreline Overlay", "overlay", "/assets/overlay.js", state, scorebar(state))
}

func layout(title, bodyClass, script string, state match.State, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, pageHead, templ.EscapeString(title), templ.EscapeString(bodyClass)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if err := templ.JSONScript(InitialStateID, state).Render(ctx, w); err != nil {
			return fmt.Errorf("render initial state: %w", err)
		}
		_, err := fmt.Fprintf(w, pageTail, templ.EscapeString(script))
		return err
	})
}

func scorebar(state match.State) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		attribution := " hidden"
		if state.ShowSpectraAttribution {
			attribution = ""
		}
		_, err := fmt.Fprintf(w, `<div class="scorebar">
<div class="team team1">
<span id="team1Side" class="side">%s</span>
<span id="team1Name">%s</span>
<span id="team1Score" class="score">%d</span>
</div>
<div class="center">
<div id="eventName" class="event">%s</div>
<div class="round">Round <span id="roundNumber">%d</span></div>
</div>
<div class="team team2">
<span id="team2Score" class="score">%d</span>
<span id="team2Name">%s</span>
<span id="team2Side" class="side">%s</span>
</div>
</div>
<div id="attribution" class="attribution"%s>Powered by Spectra</div>
`,
			sideLabel(state.Team1IsAttacking),
			templ.EscapeString(state.Team1Name),
			state.Team1Score,
			templ.EscapeString(state.EventName),
			state.RoundNumber,
			state.Team2Score,
			templ.EscapeString(state.Team2Name),
			sideLabel(!state.Team1IsAttacking),
			attribution,
		)
		return err
	})
}

func sideLabel(attacking bool) string {
	if attacking {
		return "ATK"
	}
	return "DEF"
}

func fragment(name string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		body, err := staticFS.ReadFile("static/" + name)
		if err != nil {
			return fmt.Errorf("read page %s: %w", name, err)
		}
		_, err = w.Write(body)
		return err
	})
}

// Assets serves the files under static/assets. It expects to be mounted
// at /assets/.
func Assets() http.Handler {
	assets, err := fs.Sub(staticFS, "static/assets")
	if err != nil {
		panic(fmt.Sprintf("embedded assets missing: %v", err))
	}
	return http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))
}
