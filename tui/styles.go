package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var (
	lemon    = lipgloss.Color("220")
	picked   = lipgloss.Color("229")
	muted    = lipgloss.Color("244")
	dim      = lipgloss.Color("240")
	breakClr = lipgloss.Color("39")
	workClr  = lipgloss.Color("70")
	errClr   = lipgloss.Color("9")
)

var (
	brandStyle  = lipgloss.NewStyle().Bold(true).Foreground(lemon)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	phraseStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("143"))
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	promptStyle = lipgloss.NewStyle().Foreground(lemon)
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lemon)
	clockStyle  = lipgloss.NewStyle().Bold(true).Foreground(picked)
	okStyle     = lipgloss.NewStyle().Foreground(workClr)
	errStyle    = lipgloss.NewStyle().Foreground(errClr)
)

var blockColors = map[string]lipgloss.Color{
	"red":     "9",
	"green":   "10",
	"yellow":  "11",
	"blue":    "12",
	"magenta": "13",
	"purple":  "13",
	"cyan":    "14",
}

// blockColor maps a block's color name to a terminal color; unknown names are grey.
func blockColor(name string) lipgloss.Color {
	if c, ok := blockColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return lipgloss.Color("7")
}

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}

// fit truncates s to w display columns, ending with an ellipsis when cut.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	return truncate.StringWithTail(s, uint(w), "…")
}

func panelTitle(title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	return base.Foreground(picked).Render(title) + " " + lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("*")
}

// rowStyle styles a list row: the cursor row is bold, and picked out in
// color when its pane has focus.
func rowStyle(base lipgloss.Style, cursor, focused bool) lipgloss.Style {
	if !cursor {
		return base
	}
	base = base.Bold(true).Faint(false)
	if focused {
		base = base.Foreground(picked)
	}
	return base
}

func panel(width, height int, lines []string) string {
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}
