package tui

import (
	"strings"
	"testing"

	"lemoncello/app"
	"lemoncello/model"
	"lemoncello/timer"
)

func TestPaneWidths(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		wantLeft int
	}{
		{name: "wide terminal caps the block list", total: 159, wantLeft: 44},
		{name: "medium terminal uses two fifths", total: 90, wantLeft: 36},
		{name: "narrow terminal takes a third", total: 47, wantLeft: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := paneWidths(tt.total, 1)
			if left != tt.wantLeft {
				t.Fatalf("left = %d, want %d", left, tt.wantLeft)
			}
			if left+right+1 != tt.total {
				t.Fatalf("panes %d+%d do not fill %d columns", left, right, tt.total)
			}
			if right < 12 {
				t.Fatalf("right column too narrow: %d", right)
			}
		})
	}
}

func TestFitTruncatesByDisplayWidth(t *testing.T) {
	if got := fit("Write the quarterly report", 10); got != "Write the…" {
		t.Fatalf("fit = %q", got)
	}
	if got := fit("short", 10); got != "short" {
		t.Fatalf("fit changed a short string: %q", got)
	}
	if got := fit("anything", 0); got != "" {
		t.Fatalf("fit with no room = %q", got)
	}
}

func TestTimerHeading(t *testing.T) {
	tm := timer.Timer{
		Block:     model.Block{Name: "Focus Sprint", Icon: "🎯", Kind: model.KindPomodoro, WorkMinutes: 25, RestMinutes: 5, Cycles: 4},
		Cycle:     2,
		WorkPhase: false,
	}
	if got := timerHeading(tm); got != "🎯 Focus Sprint · Break · cycle 2/4" {
		t.Fatalf("heading = %q", got)
	}
	tm.Block = model.Block{Name: "Standup", Kind: model.KindMeeting, WorkMinutes: 15}
	tm.WorkPhase = true
	if got := timerHeading(tm); got != "Standup · Work" {
		t.Fatalf("meeting heading = %q", got)
	}
}

func TestViewShowsTimerPanelOnlyWhileActive(t *testing.T) {
	m, _, _ := newTestModel(t)

	if view := m.View(); strings.Contains(view, "running") {
		t.Fatalf("expected no timer panel while idle, got:\n%s", view)
	}

	press(m, "enter")
	view := m.View()
	if !strings.Contains(view, "25:00") || !strings.Contains(view, "Focus Sprint · Work · cycle 1/4") {
		t.Fatalf("expected timer panel for running block, got:\n%s", view)
	}
}

func TestViewBeforeFirstResizeIsPlaceholder(t *testing.T) {
	m := NewModel(Config{Service: app.NewService(model.NewState()), Engine: timer.New(timer.Config{})})
	if got := m.View(); got != "loading..." {
		t.Fatalf("expected placeholder view, got %q", got)
	}
}
