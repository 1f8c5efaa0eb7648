package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/scoreline/internal/match"
)

func TestPagesRender(t *testing.T) {
	tests := []struct {
		name   string
		page   templ.Component
		title  string
		script string
	}{
		{name: "control", page: ControlPage(match.DefaultState()), title: "<title>Scoreline Control</title>", script: "/assets/control.js"},
		{name: "overlay", page: OverlayPage(match.DefaultState()), title: "<title>Scoreline Overlay</title>", script: "/assets/overlay.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.page.Render(context.Background(), &buf))
			assert.Contains(t, buf.String(), tt.title)
			assert.Contains(t, buf.String(), tt.script)
			assert.Contains(t, buf.String(), `<script id="initial-state" type="application/json">`)
		})
	}
}

func TestOverlayPageRendersState(t *testing.T) {
	state := match.State{
		Team1Name:              "Red <Team>",
		Team2Name:              "Blue & Co",
		Team1Score:             7,
		Team2Score:             3,
		RoundNumber:            11,
		Team1IsAttacking:       false,
		EventName:              "Finals",
		ShowSpectraAttribution: true,
	}

	var buf bytes.Buffer
	require.NoError(t, OverlayPage(state).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `<span id="team1Name">Red &lt;Team&gt;</span>`)
	assert.Contains(t, html, `<span id="team2Name">Blue &amp; Co</span>`)
	assert.Contains(t, html, `<span id="team1Score" class="score">7</span>`)
	assert.Contains(t, html, `<span id="team2Score" class="score">3</span>`)
	assert.Contains(t, html, `<span id="roundNumber">11</span>`)
	assert.Contains(t, html, `<div id="eventName" class="event">Finals</div>`)
	assert.Contains(t, html, `<span id="team1Side" class="side">DEF</span>`)
	assert.Contains(t, html, `<span id="team2Side" class="side">ATK</span>`)
	assert.Contains(t, html, `<div id="attribution" class="attribution">`)
}

func TestOverlayPageHidesAttribution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OverlayPage(match.DefaultState()).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), `<div id="attribution" class="attribution" hidden>`)
	assert.Contains(t, buf.String(), `<span id="team1Side" class="side">DEF</span>`)
}

func TestAssetsServesEmbeddedFiles(t *testing.T) {
	handler := Assets()

	for _, path := range []string{"/assets/app.css", "/assets/control.js", "/assets/overlay.js"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.NotZero(t, rec.Body.Len())
		})
	}
}

func TestAssetsMissingFile(t *testing.T) {
	rec := httptest.NewRecorder()
	Assets().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
