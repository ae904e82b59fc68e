package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/dashboard"
	"github.com/vanderheijden86/spdash/pkg/loader"
	"github.com/vanderheijden86/spdash/pkg/testutil"
)

func testRender() *dashboard.Render {
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "#ff0000", "").
		Tag("g1", "Deep", "#00ff00", "").
		Task("t1", "Report", "p1", 5_400_000,
			testutil.Tags("g1"),
			testutil.SpentOn("2024-03-01", 5_400_000)).
		Build()
	return dashboard.Build(snap, dashboard.DefaultOptions())
}

func readyModel(t *testing.T) Model {
	t.Helper()
	m := New(nil, loader.Options{}, dashboard.DefaultOptions(), nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	updated, _ = m.Update(RenderMsg{Render: testRender()})
	return updated.(Model)
}

func TestUpdateRenderMsg(t *testing.T) {
	m := New(nil, loader.Options{}, dashboard.DefaultOptions(), nil)
	if !m.loading {
		t.Fatal("new model should start loading")
	}

	updated, _ := m.Update(RenderMsg{Render: testRender()})
	m = updated.(Model)
	if m.loading {
		t.Error("render message should clear loading")
	}
	if m.render == nil || m.refreshed.IsZero() {
		t.Error("render and refresh time not recorded")
	}

	// A failed reload keeps the previous render on screen.
	updated, _ = m.Update(RenderMsg{Err: errors.New("boom")})
	m = updated.(Model)
	if m.render == nil {
		t.Error("error reload dropped the previous render")
	}
	if m.loadErr == nil {
		t.Error("load error not recorded")
	}
}

func TestUpdateRenderMsgClampsTab(t *testing.T) {
	m := readyModel(t)
	m.tab = len(m.render.Figures) + 3
	updated, _ := m.Update(RenderMsg{Render: testRender()})
	m = updated.(Model)
	if m.tab != 0 {
		t.Errorf("out-of-range tab not clamped, got %d", m.tab)
	}
}

func TestUpdateTabCycling(t *testing.T) {
	m := readyModel(t)
	n := len(m.render.Figures)
	if n != 12 {
		t.Fatalf("expected 12 figures, got %d", n)
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.tab != 1 {
		t.Errorf("tab = %d after forward cycle", m.tab)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.tab != 0 {
		t.Errorf("tab = %d after backward cycle", m.tab)
	}

	// Backward from the first tab wraps to the last.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m = updated.(Model)
	if m.tab != n-1 {
		t.Errorf("tab = %d, want %d", m.tab, n-1)
	}
}

func TestUpdateTabCyclingBeforeFirstRender(t *testing.T) {
	m := New(nil, loader.Options{}, dashboard.DefaultOptions(), nil)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.tab != 0 {
		t.Errorf("tab moved with no figures: %d", m.tab)
	}
}

func TestUpdateQuit(t *testing.T) {
	m := readyModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.Quit")
	}
}

func TestUpdateRefreshAndFileChanged(t *testing.T) {
	m := readyModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(Model)
	if !m.loading || cmd == nil {
		t.Error("manual refresh should reload")
	}

	updated, cmd = m.Update(FileChangedMsg{})
	m = updated.(Model)
	if !m.loading || cmd == nil {
		t.Error("file change should reload")
	}
}

func TestViewBeforeFirstWindowSize(t *testing.T) {
	m := New(nil, loader.Options{}, dashboard.DefaultOptions(), nil)
	if m.View() != "loading..." {
		t.Errorf("view = %q", m.View())
	}
}

func TestViewRendersSummaryAndTabs(t *testing.T) {
	m := readyModel(t)
	view := m.View()

	// Project and tag rows, the 5,400,000 ms total, the first tab name,
	// and the key help should all be on screen.
	for _, want := range []string{
		"Work",
		"Deep",
		"1h 30m",
		"Accumulated Work Time",
		"tab/←→ switch · ↑↓ scroll · c copy path · r refresh · q quit",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewLoadErrorWithoutRender(t *testing.T) {
	m := New(nil, loader.Options{}, dashboard.DefaultOptions(), nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	updated, _ = m.Update(RenderMsg{Err: errors.New("no backup")})
	m = updated.(Model)

	if view := m.View(); !strings.Contains(view, "no backup") {
		t.Errorf("error not surfaced: %q", view)
	}
}

func TestFigureRows(t *testing.T) {
	t.Run("pie slices", func(t *testing.T) {
		fig := chart.Figure{Traces: []chart.Trace{{
			Type:   chart.TracePie,
			Labels: []string{"📁 Work", "📁 Idle"},
			Values: []float64{90, 30},
			Colors: []string{"#ff0000", "#00ff00"},
		}}}
		rows := figureRows(fig)
		if len(rows) != 2 {
			t.Fatalf("rows = %d", len(rows))
		}
		if rows[0].label != "📁 Work" || rows[0].value != 90 || rows[0].color != "#ff0000" {
			t.Errorf("row 0 = %+v", rows[0])
		}
	})

	t.Run("histogram collapses to sample count", func(t *testing.T) {
		fig := chart.Figure{Traces: []chart.Trace{{
			Type:    chart.TraceHistogram,
			Samples: []float64{10, -20, 30},
		}}}
		rows := figureRows(fig)
		if len(rows) != 1 || rows[0].label != "3 samples" || rows[0].value != 3 {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("bar traces sum per series", func(t *testing.T) {
		fig := chart.Figure{Traces: []chart.Trace{
			{Type: chart.TraceBar, Name: "Work", Y: []float64{60, 30}, Color: "#ff0000"},
			{Type: chart.TraceBar, Name: "Play", Y: []float64{15}},
		}}
		rows := figureRows(fig)
		if len(rows) != 2 {
			t.Fatalf("rows = %d", len(rows))
		}
		if rows[0].value != 90 || rows[0].color != "#ff0000" {
			t.Errorf("row 0 = %+v", rows[0])
		}
		if rows[1].value != 15 || rows[1].color != "#636EFA" {
			t.Errorf("row 1 should fall back to the default color: %+v", rows[1])
		}
	})

	t.Run("placeholder has no rows", func(t *testing.T) {
		if rows := figureRows(chart.Placeholder("water")); len(rows) != 0 {
			t.Errorf("rows = %+v", rows)
		}
	})
}

func TestFormatRowValue(t *testing.T) {
	minuteFig := chart.Figure{
		YAxisTitle: "Minutes",
		Traces:     []chart.Trace{{Type: chart.TraceBar}},
	}
	if got := formatRowValue(minuteFig, 90); got != "1h 30m" {
		t.Errorf("minutes axis = %q", got)
	}

	litersFig := chart.Figure{
		YAxisTitle: "Liters",
		Traces:     []chart.Trace{{Type: chart.TraceBar}},
	}
	if got := formatRowValue(litersFig, 2.5); got != "2.5" {
		t.Errorf("plain axis = %q", got)
	}
}
