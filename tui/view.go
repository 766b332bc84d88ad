package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lemoncello/report"
	"lemoncello/timer"
)

// chrome is the number of lines outside the main pane: header, phrase,
// pane border, footer and prompt.
const chrome = 7

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	viewW := m.viewportWidth()

	// Keep a right margin on wide terminals so the border never touches the edge.
	paneW := viewW
	if viewW-6 >= 40 {
		paneW = viewW - 6
	}
	contentW := paneW - 2
	if contentW < 20 {
		contentW = paneW
	}

	var panels []string
	for _, p := range []string{m.renderTimerPanel(paneW), m.renderCallPanel(paneW)} {
		if p != "" {
			panels = append(panels, p)
		}
	}
	used := chrome
	for _, p := range panels {
		used += lipgloss.Height(p)
	}
	paneH := max(m.height-used, 8)
	contentH := max(paneH-2, 6)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.Place(contentW, contentH, lipgloss.Center, lipgloss.Center, m.renderHelpOverlay(helpWidth(viewW)))
	case m.mode == modeReports:
		content = m.renderReportsPanel(contentW, contentH)
	default:
		leftW, rightW := paneWidths(contentW, 1)
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderBlocksPanel(leftW, contentH),
			lipgloss.NewStyle().Foreground(dim).Render("│"),
			m.renderRightColumn(rightW, contentH),
		)
	}

	ring := dim
	if m.mode == modeNormal || m.mode == modeReports {
		ring = breakClr
	}
	pane := boxed(ring).Width(paneW).Height(paneH).Render(content)
	if gap := viewW - paneW; gap > 0 {
		pane += strings.Repeat(" ", gap)
	}

	out := []string{m.renderHeader(), phraseStyle.Render(m.phrase)}
	if m.shouldShowOnboarding() {
		out = append(out, m.renderOnboarding(viewW))
	}
	out = append(out, panels...)
	out = append(out, pane, m.renderFooter(viewW))
	if prompt := m.promptLine(); prompt != "" && !m.showHelp {
		out = append(out, promptStyle.Width(viewW).Render(prompt))
	}
	return strings.Join(out, "\n")
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("focus: %s • today: %s", m.focus, m.todayTotal())
	if _, name := m.pinnedTask(); name != "" {
		summary += fmt.Sprintf(" • task: %q", name)
	}
	return brandStyle.Render("🍋 lemoncello") + headerStyle.Render("  "+summary)
}

func helpWidth(viewW int) int {
	w := min(viewW-8, 96)
	if w < 56 {
		w = viewW - 2
	}
	return max(w, 40)
}

func (m *Model) promptLine() string {
	switch m.mode {
	case modeBlockForm:
		return fmt.Sprintf("%s (%d/%d) %s: %s▌", m.form.title(), m.form.step+1, len(m.form.fields), m.form.label(), m.input)
	case modeAddTask:
		return "New task: " + m.input + "▌"
	case modeEditTask:
		return "Edit task: " + m.input + "▌"
	case modeDescribe:
		return "What are you working on? " + m.input + "▌"
	case modeStopDescription:
		return "Stop timer. Description: " + m.input + "▌  (Enter stops and logs, Esc keeps running)"
	case modeConfirmDelete:
		what := "task"
		if m.confirmKind == deleteBlock {
			what = "block"
		}
		return fmt.Sprintf("Delete %s %q? [y/N]", what, m.confirmName)
	case modeConfirmCancel:
		return "Cancel the timer without logging anything? [y/N]"
	case modeCallDescription:
		return "Stop call. Description: " + m.input + "▌  (Enter logs it, empty means \"" + timer.CallDescription + "\")"
	case modeConfirmCancelCall:
		return "Cancel the call without logging anything? [y/N]"
	case modeConfirmQuit:
		return "Timers are still running and will be discarded. Quit anyway? [y/N]"
	}
	return ""
}

func (m *Model) todayTotal() string {
	day := report.Today(m.svc.Sessions(), m.now())
	return timer.FormatElapsed(time.Duration(day.TotalWorkMinutes) * time.Minute)
}

func (m *Model) renderTimerPanel(width int) string {
	t := m.engine.Active()
	if !t.Active() {
		return ""
	}

	barW := max(width-6, 10)
	m.bar.Width = barW

	details := []string{"Elapsed " + m.engine.Elapsed()}
	if t.TaskName != "" {
		details = append(details, "Task: "+t.TaskName)
	}
	if t.AccumulatedRest > 0 {
		details = append(details, fmt.Sprintf("Rest owed: %d min", t.AccumulatedRest))
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(timerHeading(t)),
		clockStyle.Render(timer.FormatClock(t.Remaining)) + "  " + timerStatusLabel(t),
		m.bar.ViewAs(t.Progress()),
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(strings.Join(details, " • ")),
	}
	if t.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render(fit(t.Description, barW)))
	}
	if prompt := transitionPrompt(t); prompt != "" {
		lines = append(lines, alertStyle.Render(prompt))
	}

	return boxed(timerBorder(t)).Padding(0, 1).Width(width).Render(strings.Join(lines, "\n"))
}

// timerHeading reads like "🎯 Focus Sprint · Work · cycle 1/4".
func timerHeading(t timer.Timer) string {
	phase := "Work"
	if !t.WorkPhase {
		phase = "Break"
	}
	parts := []string{strings.TrimSpace(t.Block.Icon + " " + t.Block.Name), phase}
	switch cycles := t.Block.EffectiveCycles(); {
	case cycles >= 9999:
		parts = append(parts, fmt.Sprintf("cycle %d", t.Cycle))
	case cycles > 1:
		parts = append(parts, fmt.Sprintf("cycle %d/%d", t.Cycle, cycles))
	}
	return strings.Join(parts, " · ")
}

func timerBorder(t timer.Timer) lipgloss.Color {
	switch {
	case t.Status == timer.StatusPaused:
		return muted
	case t.Status == timer.StatusAwaitingTransition:
		return lemon
	case !t.WorkPhase:
		return breakClr
	}
	return workClr
}

// renderCallPanel shows the count-up of a call in progress.
func (m *Model) renderCallPanel(width int) string {
	if !m.engine.ActiveCall().Active() {
		return ""
	}
	line := alertStyle.Render("📞 Call in progress") + "  " +
		clockStyle.Render(timer.FormatCount(m.engine.CallElapsed())) + "  " +
		mutedStyle.Render("c stop and log • C cancel")
	return boxed(lipgloss.Color("213")).Padding(0, 1).Width(width).Render(line)
}

func timerStatusLabel(t timer.Timer) string {
	switch t.Status {
	case timer.StatusRunning:
		return "running"
	case timer.StatusPaused:
		return "paused"
	case timer.StatusAwaitingTransition:
		return "waiting"
	default:
		return string(t.Status)
	}
}

func transitionPrompt(t timer.Timer) string {
	if t.Status != timer.StatusAwaitingTransition {
		return ""
	}
	switch t.Pending {
	case timer.TransitionWorkToBreak:
		return fmt.Sprintf("Break time! Enter: take a %s break • w: keep working", timer.FormatElapsed(time.Duration(t.Remaining)*time.Second))
	case timer.TransitionBreakToWork:
		return fmt.Sprintf("Break over. Enter: start cycle %d", t.Cycle+1)
	}
	return ""
}

// viewportWidth leaves the last column free so terminals do not wrap the right border.
func (m *Model) viewportWidth() int {
	return max(m.width-1, 1)
}

// paneWidths splits total columns, less gap, between the block list and the
// right column. The block list takes about two fifths, capped to 26..44.
func paneWidths(total, gap int) (left, right int) {
	if total <= 0 {
		return 24, 30
	}
	usable := total - max(gap, 0)

	if usable < 50 {
		left = max(usable/3, 10)
		right = usable - left
		if right < 12 {
			right = 12
			left = max(usable-right, 10)
		}
		return left, right
	}

	left = min(max(total*2/5, 26), 44)
	right = usable - left
	if right < 30 {
		left = max(usable-30, 20)
		right = usable - left
	}
	return left, right
}

func (m *Model) renderFooter(width int) string {
	status := strings.TrimSpace(m.status)
	if status == "" {
		status = "Ready"
	}
	hint := "? shortcuts"
	if m.showHelp {
		hint = "Esc/? close shortcuts"
	}
	style := okStyle
	if m.statusErr {
		style = errStyle
	}

	status = fit(status, max(width-lipgloss.Width(hint)-1, 8))
	gap := max(width-lipgloss.Width(status)-lipgloss.Width(hint), 1)
	line := style.Render(status) + strings.Repeat(" ", gap) + lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(hint)
	return lipgloss.NewStyle().Width(width).Render(line)
}

var shortcuts = []struct {
	section string
	keys    []string
}{
	{"Global", []string{
		"Tab switch pane • j/k move • u undo • r reports • q quit",
		"g quick start • n desktop notifications • ? shortcuts",
	}},
	{"Call", []string{"c start, or stop and log • C cancel without logging"}},
	{"Timer", []string{
		"Space/p pause or resume • m minimize • s stop and log",
		"X cancel without logging • D describe the work",
		"Enter confirm a phase change • w keep working through a break",
	}},
	{"Blocks", []string{"Enter start • a create • e edit • d delete • J/K reorder"}},
	{"Tasks", []string{"Enter attach to next timer • a create • e edit • x done • d delete"}},
	{"Minimized", []string{"Enter resume • s stop and log"}},
}

func (m *Model) renderHelpOverlay(width int) string {
	heading := lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	entry := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	rows := []string{lipgloss.NewStyle().Bold(true).Render("Shortcuts")}
	for _, s := range shortcuts {
		rows = append(rows, "", heading.Render(s.section))
		for _, k := range s.keys {
			rows = append(rows, entry.Render("  "+k))
		}
	}
	return boxed(muted).Padding(1, 2).Width(width).Render(strings.Join(rows, "\n"))
}

const onboardingText = `First run:
1) Pick a block and press Enter to start it
2) Tab to Tasks, 'a' adds one, Enter attaches it to the next timer
3) 's' stops and logs a timer, 'r' opens the daily report`

func (m *Model) renderOnboarding(width int) string {
	return boxed(lipgloss.Color("63")).Padding(0, 1).Width(width).Render(onboardingText)
}

func (m *Model) renderBlocksPanel(width, height int) string {
	blocks := m.svc.Blocks()
	lines := []string{panelTitle("Blocks", m.focus == focusBlocks)}
	if len(blocks) == 0 {
		lines = append(lines, mutedStyle.Render("No blocks. Press 'a' to create one."))
	}
	for i, b := range blocks {
		here := i == m.blockCursor
		icon := b.Icon
		if icon == "" {
			icon = lipgloss.NewStyle().Foreground(blockColor(b.Color)).Render("●")
		}
		name := rowStyle(lipgloss.NewStyle(), here, m.focus == focusBlocks).Render(cursorMark(here) + " " + icon + " " + b.Name)
		lines = append(lines, name+mutedStyle.Render(" "+blockShape(b.WorkMinutes, b.RestMinutes, b.EffectiveCycles())))
	}
	return panel(width, height, lines)
}

func cursorMark(here bool) string {
	if here {
		return "▸"
	}
	return " "
}

func blockShape(work, rest, cycles int) string {
	switch {
	case work == 0:
		return fmt.Sprintf("%dm rest", rest)
	case rest == 0:
		return fmt.Sprintf("%dm", work)
	case cycles > 1:
		return fmt.Sprintf("%d/%d ×%d", work, rest, cycles)
	default:
		return fmt.Sprintf("%d/%d", work, rest)
	}
}

func (m *Model) renderRightColumn(width, height int) string {
	minimized := m.engine.Minimized()
	if len(minimized) == 0 {
		return m.renderTasksPanel(width, height)
	}
	minH := len(minimized) + 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTasksPanel(width, max(height-minH, 3)),
		m.renderMinimizedPanel(width, minH),
	)
}

func (m *Model) renderTasksPanel(width, height int) string {
	tasks := m.svc.Tasks()
	lines := []string{panelTitle("Tasks", m.focus == focusTasks)}
	if len(tasks) == 0 {
		lines = append(lines, mutedStyle.Render("No tasks. Press 'a' to add one."))
	}
	for i, t := range tasks {
		here := i == m.taskCursor
		box := "[ ]"
		base := lipgloss.NewStyle()
		if t.IsCompleted {
			box = "[x]"
			base = base.Faint(true)
		} else if m.svc.HasIncompleteSprint(t.ID) {
			t.Title += " ↺"
		}
		pin := "  "
		if t.ID == m.pinnedTaskID {
			pin = promptStyle.Render("● ")
		}
		mark := rowStyle(lipgloss.NewStyle(), here, m.focus == focusTasks)
		lines = append(lines, mark.Render(cursorMark(here)+" "+box+" ")+pin+
			rowStyle(base, here, m.focus == focusTasks).Render(fit(t.Title, width-8)))
	}
	return panel(width, height, lines)
}

func (m *Model) renderMinimizedPanel(width, height int) string {
	lines := []string{panelTitle("Minimized", m.focus == focusMinimized)}
	for i, t := range m.engine.Minimized() {
		here := i == m.minCursor
		line := fmt.Sprintf("%s %s %s %s", cursorMark(here), t.Block.Icon, t.Block.Name, timer.FormatClock(t.Remaining))
		switch t.Pending {
		case timer.TransitionWorkToBreak:
			line += " (break pending)"
		case timer.TransitionBreakToWork:
			line += " (break over)"
		}
		lines = append(lines, rowStyle(lipgloss.NewStyle().Faint(true), here, m.focus == focusMinimized).Render(line))
	}
	return panel(width, height, lines)
}

func (m *Model) renderReportsPanel(width, height int) string {
	days := report.GroupByDate(m.svc.Sessions())
	lines := []string{panelTitle("Reports", true)}
	if len(days) == 0 {
		return panel(width, height, append(lines, mutedStyle.Render("No sessions logged yet.")))
	}

	idx := clamp(m.reportDay, 0, len(days)-1)
	nav := fmt.Sprintf("day %d of %d • h older • l newer • e export CSV", idx+1, len(days))
	lines = append(lines, mutedStyle.Render(nav), "")

	body := strings.Split(strings.TrimRight(report.Plain(days[idx], width), "\n"), "\n")
	if room := height - len(lines); room > 0 && len(body) > room {
		body = append(body[:room-1], "…")
	}
	return panel(width, height, append(lines, body...))
}
