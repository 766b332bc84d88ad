package tui

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lemoncello/app"
	"lemoncello/model"
	"lemoncello/phrase"
	"lemoncello/report"
	"lemoncello/store"
	"lemoncello/timer"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type noticeRecorder struct {
	notices []timer.Notice
}

func (r *noticeRecorder) Notify(n timer.Notice) { r.notices = append(r.notices, n) }

type toggleRecorder struct {
	noticeRecorder
	desktop bool
}

func (r *toggleRecorder) SetDesktop(enabled bool) { r.desktop = enabled }
func (r *toggleRecorder) DesktopEnabled() bool    { return r.desktop }

func newTestModel(t *testing.T) (*Model, *app.Service, *testClock) {
	t.Helper()
	return newTestModelWith(t, nil)
}

func newTestModelWith(t *testing.T, notifier timer.Notifier) (*Model, *app.Service, *testClock) {
	t.Helper()
	svc := app.NewService(model.NewState())
	svc.SeedDefaultBlocks()
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)}
	statePath := filepath.Join(t.TempDir(), "state.json")

	engine := timer.New(timer.Config{
		Clock:  clock,
		Logger: log.New(io.Discard, "", 0),
		Sink: timer.SinkFunc(func(s model.Session) error {
			svc.RecordSession(s)
			return store.Autosave(statePath, svc.State())
		}),
	})
	m := NewModel(Config{
		Service:   svc,
		Engine:    engine,
		StatePath: statePath,
		Notifier:  notifier,
		Phrases:   phrase.NewPicker(7),
		Now:       clock.Now,
	})
	m.width = 120
	m.height = 40
	return m, svc, clock
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func tick(m *Model, clock *testClock, n int) {
	for i := 0; i < n; i++ {
		clock.now = clock.now.Add(time.Second)
		m.Update(tickMsg(clock.now))
	}
}

func TestEnterStartsSelectedBlockWithPinnedTask(t *testing.T) {
	m, svc, _ := newTestModel(t)
	task, err := svc.CreateTask("Write docs", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	press(m, "tab")
	press(m, "enter")
	if m.pinnedTaskID != task.ID {
		t.Fatalf("expected task to be pinned, got %q", m.pinnedTaskID)
	}
	press(m, "tab")
	if m.focus != focusBlocks {
		t.Fatalf("expected focus to return to blocks, got %s", m.focus)
	}
	press(m, "enter")

	active := m.engine.Active()
	if active.Status != timer.StatusRunning {
		t.Fatalf("expected running timer, got %s", active.Status)
	}
	if active.Block.Name != "Focus Sprint" || active.TaskName != "Write docs" || active.TaskID != task.ID {
		t.Fatalf("unexpected timer: %+v", active)
	}
}

func TestQuickStartRunsBuiltInBlock(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "g")

	active := m.engine.Active()
	if active.Status != timer.StatusRunning || active.Block.ID != model.QuickStartBlockID {
		t.Fatalf("expected quick start block running, got %+v", active)
	}
	if m.status != "Started "+model.QuickStartBlock().Name {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestStartWhileActiveKeepsCurrentTimer(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "enter")
	first := m.engine.Active().ID

	press(m, "j")
	press(m, "enter")
	if got := m.engine.Active(); got.ID != first || got.Block.Name != "Focus Sprint" {
		t.Fatalf("expected the original timer to stay in front, got %+v", got)
	}
	if !m.statusErr {
		t.Fatalf("expected an error status, got %q", m.status)
	}
}

func TestStopPromptLogsSessionWithDescription(t *testing.T) {
	m, svc, clock := newTestModel(t)
	press(m, "enter")
	clock.now = clock.now.Add(12*time.Minute + 30*time.Second)

	press(m, "s")
	if m.mode != modeStopDescription {
		t.Fatalf("expected stop prompt, got mode %d", m.mode)
	}
	m.input = "drafted the intro"
	press(m, "enter")

	if m.engine.Active().Active() {
		t.Fatalf("expected idle foreground after stop")
	}
	sessions := svc.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.WorkDescription != "drafted the intro" || !got.StoppedByUser || got.TotalWorkMinutes != 12 {
		t.Fatalf("unexpected session: %+v", got)
	}

	loaded, err := store.Load(m.statePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Sessions) != 1 {
		t.Fatalf("expected session persisted, got %d", len(loaded.Sessions))
	}
}

func TestEscapeFromStopPromptKeepsTimerRunning(t *testing.T) {
	m, svc, _ := newTestModel(t)
	press(m, "enter")
	press(m, "s")
	press(m, "esc")

	if m.mode != modeNormal || !m.engine.Active().IsRunning() {
		t.Fatalf("expected running timer after escaping the prompt")
	}
	if len(svc.Sessions()) != 0 {
		t.Fatalf("expected nothing logged")
	}
}

func TestTransitionKeysKeepWorkingThenBreak(t *testing.T) {
	m, svc, clock := newTestModel(t)
	block, err := svc.CreateBlock(model.Block{Name: "Tiny", Kind: model.KindPomodoro, WorkMinutes: 1, RestMinutes: 2, Cycles: 2})
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	m.blockCursor = m.indexOfBlock(block.ID)
	press(m, "enter")

	tick(m, clock, 60)
	active := m.engine.Active()
	if active.Status != timer.StatusAwaitingTransition || active.Pending != timer.TransitionWorkToBreak {
		t.Fatalf("expected work-to-break prompt, got %s/%s", active.Status, active.Pending)
	}
	if !strings.Contains(m.View(), "w: keep working") {
		t.Fatalf("expected transition prompt in view")
	}

	press(m, "w")
	active = m.engine.Active()
	if !active.IsRunning() || !active.WorkPhase || active.AccumulatedRest != 2 {
		t.Fatalf("expected another work segment with 2 min owed, got %+v", active)
	}

	tick(m, clock, 60)
	press(m, "enter")
	active = m.engine.Active()
	if active.WorkPhase || active.Remaining != 120 {
		t.Fatalf("expected a 2 minute break, got work=%v remaining=%d", active.WorkPhase, active.Remaining)
	}
}

func TestCancelRequiresConfirmationAndLogsNothing(t *testing.T) {
	m, svc, _ := newTestModel(t)
	press(m, "enter")

	press(m, "X")
	press(m, "n")
	if !m.engine.Active().Active() {
		t.Fatalf("expected timer to survive a declined cancel")
	}

	press(m, "X")
	press(m, "y")
	if m.engine.Active().Active() {
		t.Fatalf("expected idle foreground after cancel")
	}
	if len(svc.Sessions()) != 0 {
		t.Fatalf("expected no session after cancel, got %d", len(svc.Sessions()))
	}
}

func TestCallLogsWallClockMinutesBesideBlockTimer(t *testing.T) {
	m, svc, clock := newTestModel(t)
	press(m, "enter")
	press(m, "c")
	if !m.engine.ActiveCall().Active() {
		t.Fatalf("expected a call in progress")
	}
	clock.now = clock.now.Add(9*time.Minute + 45*time.Second)
	if view := m.View(); !strings.Contains(view, "Call in progress") || !strings.Contains(view, "9:45") {
		t.Fatalf("expected call panel in view, got:\n%s", view)
	}

	press(m, "c")
	if m.mode != modeCallDescription {
		t.Fatalf("expected call description prompt, got mode %d", m.mode)
	}
	press(m, "enter")

	sessions := svc.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.BlockID != timer.CallBlockID || got.BlockName != "Call" || got.TotalWorkMinutes != 9 ||
		!got.Completed || got.StoppedByUser || got.TaskID != "" || got.WorkDescription != timer.CallDescription {
		t.Fatalf("unexpected call session: %+v", got)
	}
	if !m.engine.Active().IsRunning() {
		t.Fatalf("expected the block timer to keep running")
	}
}

func TestCancelCallAsksFirstAndLogsNothing(t *testing.T) {
	m, svc, clock := newTestModel(t)
	press(m, "c")
	clock.now = clock.now.Add(20 * time.Minute)

	press(m, "C")
	if m.mode != modeConfirmCancelCall {
		t.Fatalf("expected cancel confirmation, got mode %d", m.mode)
	}
	press(m, "n")
	if !m.engine.ActiveCall().Active() {
		t.Fatalf("expected call to survive a declined cancel")
	}

	press(m, "C")
	press(m, "y")
	if m.engine.ActiveCall().Active() {
		t.Fatalf("expected call to be gone")
	}
	if len(svc.Sessions()) != 0 {
		t.Fatalf("expected nothing logged, got %+v", svc.Sessions())
	}
}

func TestPauseToggle(t *testing.T) {
	m, _, clock := newTestModel(t)
	press(m, "enter")
	press(m, "space")
	if m.engine.Active().Status != timer.StatusPaused {
		t.Fatalf("expected paused timer")
	}
	before := m.engine.Active().Remaining
	tick(m, clock, 5)
	if got := m.engine.Active().Remaining; got != before {
		t.Fatalf("expected frozen countdown, got %d want %d", got, before)
	}
	press(m, "p")
	if !m.engine.Active().IsRunning() {
		t.Fatalf("expected running timer after resume")
	}
}

func TestMinimizeAndResumeFromPane(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "enter")
	press(m, "m")

	if m.engine.Active().Active() || len(m.engine.Minimized()) != 1 {
		t.Fatalf("expected one minimized timer and idle foreground")
	}

	press(m, "tab")
	press(m, "tab")
	if m.focus != focusMinimized {
		t.Fatalf("expected minimized pane focus, got %s", m.focus)
	}
	press(m, "enter")
	if !m.engine.Active().IsRunning() || len(m.engine.Minimized()) != 0 {
		t.Fatalf("expected resumed foreground timer")
	}
	if m.focus != focusBlocks {
		t.Fatalf("expected focus to leave the empty minimized pane, got %s", m.focus)
	}
}

func TestStopMinimizedTimerFromPane(t *testing.T) {
	m, svc, clock := newTestModel(t)
	press(m, "enter")
	press(m, "m")
	clock.now = clock.now.Add(8 * time.Minute)

	press(m, "tab")
	press(m, "tab")
	press(m, "s")
	if m.stopTarget == "" {
		t.Fatalf("expected stop to target the minimized timer")
	}
	press(m, "enter")

	if len(m.engine.Minimized()) != 0 {
		t.Fatalf("expected minimized timer removed")
	}
	sessions := svc.Sessions()
	if len(sessions) != 1 || sessions[0].TotalWorkMinutes != 8 {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestQuitWithRunningTimerAsksFirst(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "enter")

	if cmd := press(m, "q"); cmd != nil {
		t.Fatalf("expected no quit command before confirmation")
	}
	if m.mode != modeConfirmQuit {
		t.Fatalf("expected quit confirmation, got mode %d", m.mode)
	}
	cmd := press(m, "y")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestBlockFormCreatesNormalizedBlock(t *testing.T) {
	m, svc, _ := newTestModel(t)
	press(m, "a")
	if m.mode != modeBlockForm {
		t.Fatalf("expected block form, got mode %d", m.mode)
	}

	for _, value := range []string{"Standup", "m", "15", "5", "3", "📞"} {
		m.input = value
		press(m, "enter")
	}

	if m.mode != modeNormal {
		t.Fatalf("expected form to close, status=%q", m.status)
	}
	blocks := svc.Blocks()
	got := blocks[len(blocks)-1]
	if got.Name != "Standup" || got.Kind != model.KindMeeting || got.WorkMinutes != 15 || got.RestMinutes != 0 || got.Cycles != 1 {
		t.Fatalf("unexpected block: %+v", got)
	}
	if m.blockCursor != len(blocks)-1 {
		t.Fatalf("expected cursor on the new block, got %d", m.blockCursor)
	}
	if _, err := os.Stat(m.statePath); err != nil {
		t.Fatalf("expected state file to be written: %v", err)
	}
}

func TestBlockFormRejectsNonNumericMinutes(t *testing.T) {
	m, svc, _ := newTestModel(t)
	before := len(svc.Blocks())
	press(m, "a")
	for _, value := range []string{"Broken", "p", "abc", "5", "2", ""} {
		m.input = value
		press(m, "enter")
	}

	if m.mode != modeBlockForm || m.form.step != fieldWork {
		t.Fatalf("expected form to return to work minutes, mode=%d step=%d", m.mode, m.form.step)
	}
	if !m.statusErr {
		t.Fatalf("expected error status")
	}
	if len(svc.Blocks()) != before {
		t.Fatalf("expected no block created")
	}
}

func TestDeleteTaskThenUndo(t *testing.T) {
	m, svc, _ := newTestModel(t)
	if _, err := svc.CreateTask("Review PR", ""); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	press(m, "tab")
	press(m, "d")
	if m.mode != modeConfirmDelete {
		t.Fatalf("expected delete confirmation")
	}
	press(m, "y")
	if len(svc.Tasks()) != 0 {
		t.Fatalf("expected task deleted")
	}
	press(m, "u")
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].Title != "Review PR" {
		t.Fatalf("expected task restored, got %+v", tasks)
	}
}

func TestToggleTaskUnpinsCompletedTask(t *testing.T) {
	m, svc, _ := newTestModel(t)
	task, _ := svc.CreateTask("Ship it", "")
	press(m, "tab")
	press(m, "enter")
	press(m, "x")

	got, err := svc.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if !got.IsCompleted {
		t.Fatalf("expected task completed")
	}
	if m.pinnedTaskID != "" {
		t.Fatalf("expected completed task to be unpinned")
	}
}

func TestBackgroundReminderEvery30Seconds(t *testing.T) {
	rec := &noticeRecorder{}
	m, _, clock := newTestModelWith(t, rec)
	press(m, "enter")
	m.Update(tea.BlurMsg{})

	tick(m, clock, 45)
	if len(rec.notices) != 2 {
		t.Fatalf("expected 2 reminders in 45s, got %d", len(rec.notices))
	}
	first := rec.notices[0]
	if first.Kind != timer.NoticeProgress || first.Title != "24:59 - Focus Sprint" || first.Body != "Work in progress" {
		t.Fatalf("unexpected reminder: %+v", first)
	}

	m.Update(tea.FocusMsg{})
	tick(m, clock, 60)
	if len(rec.notices) != 2 {
		t.Fatalf("expected no reminders while focused, got %d", len(rec.notices))
	}
}

func TestReminderSkipsPausedTimer(t *testing.T) {
	rec := &noticeRecorder{}
	m, _, clock := newTestModelWith(t, rec)
	press(m, "enter")
	press(m, "p")
	m.Update(tea.BlurMsg{})
	tick(m, clock, 40)
	if len(rec.notices) != 0 {
		t.Fatalf("expected no reminders for a paused timer, got %d", len(rec.notices))
	}
}

func TestToggleDesktopNotifications(t *testing.T) {
	rec := &toggleRecorder{desktop: true}
	m, _, _ := newTestModelWith(t, rec)

	press(m, "n")
	if rec.desktop {
		t.Fatalf("expected desktop notifications off")
	}
	press(m, "n")
	if !rec.desktop {
		t.Fatalf("expected desktop notifications on")
	}
}

func TestReportsModeShowsLoggedDays(t *testing.T) {
	m, svc, clock := newTestModel(t)
	start := clock.now.Add(-time.Hour)
	if _, err := svc.AddSession(model.Session{
		BlockName:        "Deep Work",
		StartTime:        start,
		EndTime:          start.Add(50 * time.Minute),
		TotalWorkMinutes: 50,
		Completed:        true,
	}); err != nil {
		t.Fatalf("AddSession: %v", err)
	}

	press(m, "r")
	if m.mode != modeReports {
		t.Fatalf("expected reports mode")
	}
	view := m.View()
	if !strings.Contains(view, report.Heading(model.DayOf(start))) || !strings.Contains(view, "Deep Work") {
		t.Fatalf("expected day report in view, got:\n%s", view)
	}

	press(m, "esc")
	if m.mode != modeNormal {
		t.Fatalf("expected normal mode after leaving reports")
	}
}

func TestCompletedEventUpdatesStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	record := model.Session{BlockName: "Quick Meeting", TotalWorkMinutes: 30, Completed: true}
	m.Update(eventMsg(timer.Event{Type: timer.EventCompleted, Record: &record}))

	if m.status != "Quick Meeting complete • 30 min logged" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestFocusRestoredFromState(t *testing.T) {
	state := model.NewState()
	state.Metadata.UI.Focus = model.FocusTasks
	m := NewModel(Config{Service: app.NewService(state), Engine: timer.New(timer.Config{})})
	if m.focus != focusTasks {
		t.Fatalf("expected tasks focus, got %s", m.focus)
	}
}
