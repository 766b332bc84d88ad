package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"lemoncello/app"
	"lemoncello/model"
	"lemoncello/phrase"
	"lemoncello/report"
	"lemoncello/store"
	"lemoncello/timer"
)

const reminderInterval = 30 * time.Second

type focusPane int

const (
	focusBlocks focusPane = iota
	focusTasks
	focusMinimized
)

func (f focusPane) String() string {
	switch f {
	case focusTasks:
		return "tasks"
	case focusMinimized:
		return "minimized"
	default:
		return "blocks"
	}
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeBlockForm
	modeAddTask
	modeEditTask
	modeDescribe
	modeStopDescription
	modeConfirmDelete
	modeConfirmCancel
	modeConfirmQuit
	modeReports
	modeCallDescription
	modeConfirmCancelCall
)

type deleteKind int

const (
	deleteNone deleteKind = iota
	deleteBlock
	deleteTask
)

type tickMsg time.Time

type eventMsg timer.Event

// desktopToggler is implemented by notifiers whose desktop channel can be switched at runtime.
type desktopToggler interface {
	SetDesktop(bool)
	DesktopEnabled() bool
}

// Config wires a Model to its collaborators.
type Config struct {
	Service   *app.Service
	Engine    *timer.Engine
	StatePath string
	// Notifier receives the background progress reminders. Optional.
	Notifier     timer.Notifier
	Phrases      *phrase.Picker
	TickInterval time.Duration
	Status       string
	Now          func() time.Time
}

type Model struct {
	svc          *app.Service
	engine       *timer.Engine
	statePath    string
	notifier     timer.Notifier
	phrases      *phrase.Picker
	events       <-chan timer.Event
	tickInterval time.Duration
	now          func() time.Time

	focus       focusPane
	mode        uiMode
	blockCursor int
	taskCursor  int
	minCursor   int
	input       string
	form        blockForm

	confirmKind deleteKind
	confirmID   string
	confirmName string
	stopTarget  string

	pinnedTaskID string
	phrase       string
	reportDay    int

	blurred      bool
	lastReminder time.Time

	showHelp bool

	status    string
	statusErr bool

	width  int
	height int

	bar progress.Model
}

func NewModel(cfg Config) *Model {
	status := strings.TrimSpace(cfg.Status)
	if status == "" {
		status = "Ready"
	}
	if cfg.Phrases == nil {
		cfg.Phrases = phrase.NewPicker(uint64(time.Now().UnixNano()))
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Model{
		svc:          cfg.Service,
		engine:       cfg.Engine,
		statePath:    cfg.StatePath,
		notifier:     cfg.Notifier,
		phrases:      cfg.Phrases,
		tickInterval: cfg.TickInterval,
		now:          cfg.Now,
		focus:        focusBlocks,
		mode:         modeNormal,
		status:       status,
		bar:          progress.New(progress.WithSolidFill("#F5D547"), progress.WithoutPercentage()),
	}
	m.events = m.engine.Subscribe(16)
	m.phrase = m.phrases.Next()
	m.restoreUIContext()
	m.ensureSelection()

	if cfg.Status == "" && m.shouldShowOnboarding() {
		m.setStatus("Welcome. Press Enter on a block to start your first timer.", false)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.waitForEvent())
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(event)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.engine.Tick()
		m.remindInBackground(time.Time(msg))
		return m, m.tickCmd()
	case eventMsg:
		m.handleEvent(timer.Event(msg))
		return m, m.waitForEvent()
	case tea.FocusMsg:
		m.blurred = false
	case tea.BlurMsg:
		m.blurred = true
		m.lastReminder = time.Time{}
	case tea.KeyMsg:
		switch m.mode {
		case modeBlockForm, modeAddTask, modeEditTask, modeDescribe, modeStopDescription, modeCallDescription:
			m.updateInputMode(msg)
		case modeConfirmDelete, modeConfirmCancel, modeConfirmQuit, modeConfirmCancelCall:
			if quit := m.updateConfirmMode(msg); quit {
				_ = m.persistContextSilently()
				return m, tea.Quit
			}
		case modeReports:
			m.updateReportsMode(msg)
		default:
			if quit := m.updateNormalMode(msg); quit {
				_ = m.persistContextSilently()
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) bool {
	key := msg.String()
	if active := m.engine.Active(); active.Status == timer.StatusAwaitingTransition {
		switch key {
		case "enter":
			m.confirmTransition()
			return false
		case "w":
			m.keepWorking()
			return false
		}
	}

	switch key {
	case "ctrl+c", "q":
		if m.engine.Active().Active() || len(m.engine.Minimized()) > 0 || m.engine.ActiveCall().Active() {
			m.mode = modeConfirmQuit
			return false
		}
		return true
	case "tab":
		m.cycleFocus()
		_ = m.persistContextSilently()
		m.setStatus(fmt.Sprintf("Focus on %s", m.focus.String()), false)
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter":
		m.handleEnter()
	case "a":
		m.startAdd()
	case "e":
		m.startEdit()
	case "d":
		m.startDeleteConfirm()
	case "x":
		m.toggleTaskDone()
	case "J":
		m.moveSelectedBlock(1)
	case "K":
		m.moveSelectedBlock(-1)
	case "u":
		m.undo()
	case " ", "p":
		m.togglePause()
	case "m":
		m.minimize()
	case "s":
		m.startStop()
	case "X":
		m.startCancelConfirm()
	case "D":
		m.startDescribe()
	case "g":
		m.quickStart()
	case "c":
		m.startOrStopCall()
	case "C":
		if m.engine.ActiveCall().Active() {
			m.mode = modeConfirmCancelCall
		} else {
			m.setStatus("No call in progress", false)
		}
	case "r":
		m.mode = modeReports
		m.reportDay = 0
		m.setStatus("Reports • h/l change day • e export CSV • Esc back", false)
	case "n":
		m.toggleDesktopNotifications()
	case "?":
		m.showHelp = !m.showHelp
		if m.showHelp {
			m.setStatus("Shortcuts open (press ? or Esc to close)", false)
		} else {
			m.setStatus("Shortcuts hidden", false)
		}
	case "esc":
		if m.showHelp {
			m.showHelp = false
			m.setStatus("Shortcuts hidden", false)
		}
	}

	m.ensureSelection()
	return false
}

func (m *Model) updateInputMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeNormal
		m.input = ""
		m.stopTarget = ""
		m.setStatus("Cancelled", false)
		return
	case "enter":
		m.applyInput()
		return
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.input = trimLastRune(m.input)
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) bool {
	switch strings.ToLower(msg.String()) {
	case "y":
		switch m.mode {
		case modeConfirmQuit:
			return true
		case modeConfirmCancel:
			m.mode = modeNormal
			if m.engine.Cancel() {
				m.setStatus("Timer cancelled; nothing was logged", false)
			}
		case modeConfirmCancelCall:
			m.mode = modeNormal
			if m.engine.CancelCall() {
				m.setStatus("Call cancelled; nothing was logged", false)
			}
		default:
			m.confirmDelete()
		}
	case "n", "esc", "enter":
		m.confirmKind = deleteNone
		m.confirmID = ""
		m.confirmName = ""
		m.mode = modeNormal
		m.setStatus("Action cancelled", false)
	}
	return false
}

func (m *Model) updateReportsMode(msg tea.KeyMsg) {
	days := report.GroupByDate(m.svc.Sessions())
	switch msg.String() {
	case "esc", "r", "q":
		m.mode = modeNormal
		m.setStatus("Ready", false)
	case "h", "left":
		if m.reportDay < len(days)-1 {
			m.reportDay++
		}
	case "l", "right":
		if m.reportDay > 0 {
			m.reportDay--
		}
	case "e":
		m.exportCSV()
	}
}

func (m *Model) applyInput() {
	text := strings.TrimSpace(m.input)
	switch m.mode {
	case modeBlockForm:
		m.form.set(text)
		if !m.form.last() {
			m.form.step++
			m.input = m.form.current()
			return
		}
		m.submitBlockForm()
	case modeAddTask:
		task, err := m.svc.CreateTask(text, "")
		if err != nil {
			m.setStatus("Could not create task: "+err.Error(), true)
			return
		}
		m.closeInput()
		m.taskCursor = m.indexOfTask(task.ID)
		m.persist("Task created")
	case modeEditTask:
		task, err := m.svc.GetTask(m.confirmID)
		if err != nil {
			m.closeInput()
			m.setStatus("Task no longer exists", true)
			return
		}
		if _, err := m.svc.UpdateTask(task.ID, text, task.Description); err != nil {
			m.setStatus("Could not update task: "+err.Error(), true)
			return
		}
		m.closeInput()
		m.persist("Task updated")
	case modeDescribe:
		m.engine.UpdateWorkDescription(text)
		m.closeInput()
		m.setStatus("Work description updated", false)
	case modeStopDescription:
		target := m.stopTarget
		m.closeInput()
		record, ok := m.engine.StopWithDescription(text, target)
		if !ok {
			m.setStatus("Nothing to stop", true)
			return
		}
		m.setStatus(fmt.Sprintf("Stopped %s after %s", record.BlockName, timer.FormatElapsed(time.Duration(record.TotalWorkMinutes)*time.Minute)), false)
	case modeCallDescription:
		m.closeInput()
		record, ok := m.engine.StopCall(text)
		if !ok {
			m.setStatus("No call in progress", true)
			return
		}
		m.setStatus(fmt.Sprintf("Call logged: %s", timer.FormatElapsed(time.Duration(record.TotalWorkMinutes)*time.Minute)), false)
	}
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input = ""
	m.confirmID = ""
	m.stopTarget = ""
}

func (m *Model) submitBlockForm() {
	block, err := m.form.block()
	if err != nil {
		m.input = m.form.current()
		m.setStatus(err.Error(), true)
		return
	}

	if m.form.editID != "" {
		if _, err := m.svc.UpdateBlock(m.form.editID, block); err != nil {
			m.setStatus("Could not update block: "+err.Error(), true)
			m.reopenFormOn(err)
			return
		}
		m.closeInput()
		m.persist("Block updated")
		return
	}

	created, err := m.svc.CreateBlock(block)
	if err != nil {
		m.setStatus("Could not create block: "+err.Error(), true)
		m.reopenFormOn(err)
		return
	}
	m.closeInput()
	m.blockCursor = m.indexOfBlock(created.ID)
	m.persist("Block created")
}

// reopenFormOn moves the form back to the field a validation error refers to.
func (m *Model) reopenFormOn(err error) {
	switch {
	case errors.Is(err, app.ErrInvalidName):
		m.form.step = fieldName
	case errors.Is(err, app.ErrInvalidKind):
		m.form.step = fieldKind
	case errors.Is(err, app.ErrInvalidDuration):
		m.form.step = fieldWork
	case errors.Is(err, app.ErrInvalidCycles):
		m.form.step = fieldCycles
	}
	m.input = m.form.current()
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusBlocks:
		m.focus = focusTasks
	case focusTasks:
		if len(m.engine.Minimized()) > 0 {
			m.focus = focusMinimized
		} else {
			m.focus = focusBlocks
		}
	default:
		m.focus = focusBlocks
	}
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case focusBlocks:
		if n := len(m.svc.Blocks()); n > 0 {
			m.blockCursor = clamp(m.blockCursor+delta, 0, n-1)
		}
	case focusTasks:
		if n := len(m.svc.Tasks()); n > 0 {
			m.taskCursor = clamp(m.taskCursor+delta, 0, n-1)
		}
	case focusMinimized:
		if n := len(m.engine.Minimized()); n > 0 {
			m.minCursor = clamp(m.minCursor+delta, 0, n-1)
		}
	}
}

func (m *Model) handleEnter() {
	switch m.focus {
	case focusBlocks:
		block, ok := m.selectedBlock()
		if !ok {
			m.setStatus("No blocks. Press 'a' to create one", false)
			return
		}
		m.startBlock(block)
	case focusTasks:
		task, ok := m.selectedTask()
		if !ok {
			m.setStatus("No tasks. Press 'a' to add one", false)
			return
		}
		if m.pinnedTaskID == task.ID {
			m.pinnedTaskID = ""
			m.setStatus("Timers will start without a task", false)
			return
		}
		m.pinnedTaskID = task.ID
		m.setStatus(fmt.Sprintf("Next timer will track \"%s\"", task.Title), false)
	case focusMinimized:
		entry, ok := m.selectedMinimized()
		if !ok {
			return
		}
		if m.engine.ResumeMinimized(entry.ID) {
			m.setStatus(fmt.Sprintf("Resumed %s", entry.Block.Name), false)
		}
	}
}

func (m *Model) startBlock(block model.Block) {
	taskID, taskName := m.pinnedTask()
	m.afterStart(block.Name, m.engine.Start(block, taskID, taskName))
}

func (m *Model) quickStart() {
	taskID, taskName := m.pinnedTask()
	m.afterStart(model.QuickStartBlock().Name, m.engine.StartQuickStart(taskID, taskName))
}

func (m *Model) afterStart(name string, started bool) {
	if !started {
		m.setStatus("A timer is already in the foreground. Minimize (m) or stop (s) it first", true)
		return
	}
	m.phrase = m.phrases.Next()
	m.svc.MarkOnboardingSeen()
	m.setStatus(fmt.Sprintf("Started %s", name), false)
}

func (m *Model) confirmTransition() {
	active := m.engine.Active()
	if !m.engine.ConfirmTransition() {
		return
	}
	if active.Pending == timer.TransitionWorkToBreak {
		m.setStatus("Enjoy the break", false)
		return
	}
	m.setStatus(fmt.Sprintf("Cycle %d started", active.Cycle+1), false)
}

func (m *Model) keepWorking() {
	if !m.engine.KeepWorking() {
		return
	}
	owed := m.engine.Active().AccumulatedRest
	m.setStatus(fmt.Sprintf("Break skipped; %d min of rest owed", owed), false)
}

func (m *Model) togglePause() {
	active := m.engine.Active()
	switch active.Status {
	case timer.StatusRunning:
		m.engine.Pause()
		m.setStatus("Paused", false)
	case timer.StatusPaused:
		m.engine.Resume()
		m.setStatus("Resumed", false)
	default:
		m.setStatus("No running timer", false)
	}
}

func (m *Model) minimize() {
	active := m.engine.Active()
	if !active.Active() {
		m.setStatus("No timer to minimize", false)
		return
	}
	if !m.engine.Minimize() {
		m.setStatus("Minimized timer limit reached", true)
		return
	}
	m.setStatus(fmt.Sprintf("%s minimized", active.Block.Name), false)
}

func (m *Model) startStop() {
	if m.focus == focusMinimized {
		if entry, ok := m.selectedMinimized(); ok {
			m.mode = modeStopDescription
			m.stopTarget = entry.ID
			m.input = entry.Description
			return
		}
	}
	active := m.engine.Active()
	if !active.Active() {
		m.setStatus("No timer running", false)
		return
	}
	m.mode = modeStopDescription
	m.stopTarget = ""
	m.input = active.Description
}

// startOrStopCall starts tracking a call, or asks how to describe the one in progress.
func (m *Model) startOrStopCall() {
	if m.engine.ActiveCall().Active() {
		m.mode = modeCallDescription
		m.input = ""
		return
	}
	if m.engine.StartCall() {
		m.setStatus("Call started • c stops and logs it • C cancels", false)
	}
}

func (m *Model) startCancelConfirm() {
	if !m.engine.Active().Active() {
		m.setStatus("No timer running", false)
		return
	}
	m.mode = modeConfirmCancel
}

func (m *Model) startDescribe() {
	active := m.engine.Active()
	if !active.Active() {
		m.setStatus("No timer running", false)
		return
	}
	m.mode = modeDescribe
	m.input = active.Description
}

func (m *Model) startAdd() {
	switch m.focus {
	case focusBlocks:
		m.mode = modeBlockForm
		m.form = newBlockForm(model.Block{Kind: model.KindPomodoro, WorkMinutes: 25, RestMinutes: 5, Cycles: 4}, "")
		m.input = m.form.current()
	case focusTasks:
		m.mode = modeAddTask
		m.input = ""
	}
}

func (m *Model) startEdit() {
	switch m.focus {
	case focusBlocks:
		block, ok := m.selectedBlock()
		if !ok {
			m.setStatus("No block selected", true)
			return
		}
		m.mode = modeBlockForm
		m.form = newBlockForm(block, block.ID)
		m.input = m.form.current()
	case focusTasks:
		task, ok := m.selectedTask()
		if !ok {
			m.setStatus("No task selected", true)
			return
		}
		m.mode = modeEditTask
		m.confirmID = task.ID
		m.input = task.Title
	}
}

func (m *Model) toggleTaskDone() {
	if m.focus != focusTasks {
		return
	}
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No task selected", true)
		return
	}
	updated, err := m.svc.ToggleTask(task.ID)
	if err != nil {
		m.setStatus("Could not update task: "+err.Error(), true)
		return
	}
	if updated.IsCompleted {
		if m.pinnedTaskID == updated.ID {
			m.pinnedTaskID = ""
		}
		m.persist("Task completed")
		return
	}
	m.persist("Task reopened")
}

func (m *Model) moveSelectedBlock(delta int) {
	if m.focus != focusBlocks {
		return
	}
	block, ok := m.selectedBlock()
	if !ok {
		return
	}
	var err error
	if delta < 0 {
		_, err = m.svc.MoveBlockUp(block.ID)
	} else {
		_, err = m.svc.MoveBlockDown(block.ID)
	}
	if err != nil {
		m.setStatus(err.Error(), errors.Is(err, app.ErrBlockNotFound))
		return
	}
	m.blockCursor = m.indexOfBlock(block.ID)
	m.persist("Block moved")
}

func (m *Model) undo() {
	if err := m.svc.Undo(); err != nil {
		m.setStatus(err.Error(), false)
		return
	}
	m.persist("Undone")
}

func (m *Model) startDeleteConfirm() {
	switch m.focus {
	case focusBlocks:
		block, ok := m.selectedBlock()
		if !ok {
			m.setStatus("No block selected", true)
			return
		}
		m.mode = modeConfirmDelete
		m.confirmKind = deleteBlock
		m.confirmID = block.ID
		m.confirmName = block.Name
	case focusTasks:
		task, ok := m.selectedTask()
		if !ok {
			m.setStatus("No task selected", true)
			return
		}
		m.mode = modeConfirmDelete
		m.confirmKind = deleteTask
		m.confirmID = task.ID
		m.confirmName = task.Title
	}
}

func (m *Model) confirmDelete() {
	kind, id := m.confirmKind, m.confirmID
	m.confirmKind = deleteNone
	m.confirmID = ""
	m.confirmName = ""
	m.mode = modeNormal

	switch kind {
	case deleteBlock:
		if err := m.svc.DeleteBlock(id); err != nil {
			m.setStatus("Could not delete block: "+err.Error(), true)
			return
		}
		m.persist("Block deleted (u to undo)")
	case deleteTask:
		if err := m.svc.DeleteTask(id); err != nil {
			m.setStatus("Could not delete task: "+err.Error(), true)
			return
		}
		if m.pinnedTaskID == id {
			m.pinnedTaskID = ""
		}
		m.persist("Task deleted (u to undo)")
	}
}

func (m *Model) toggleDesktopNotifications() {
	toggler, ok := m.notifier.(desktopToggler)
	if !ok {
		m.setStatus("Desktop notifications are not available", true)
		return
	}
	enabled := !toggler.DesktopEnabled()
	toggler.SetDesktop(enabled)
	if enabled {
		m.setStatus("Desktop notifications on", false)
	} else {
		m.setStatus("Desktop notifications off", false)
	}
}

func (m *Model) exportCSV() {
	name := report.CSVFileName(m.now())
	f, err := os.Create(name)
	if err != nil {
		m.setStatus("Export failed: "+err.Error(), true)
		return
	}
	if err := report.WriteCSV(f, m.svc.Sessions()); err != nil {
		_ = f.Close()
		m.setStatus("Export failed: "+err.Error(), true)
		return
	}
	if err := f.Close(); err != nil {
		m.setStatus("Export failed: "+err.Error(), true)
		return
	}
	m.setStatus("Exported "+name, false)
}

func (m *Model) handleEvent(event timer.Event) {
	switch event.Type {
	case timer.EventCompleted:
		if event.Record != nil {
			m.setStatus(fmt.Sprintf("%s complete • %s logged", event.Record.BlockName,
				timer.FormatElapsed(time.Duration(event.Record.TotalWorkMinutes)*time.Minute)), false)
		}
		m.phrase = m.phrases.Next()
	case timer.EventTransition:
		if event.Timer.Pending == timer.TransitionWorkToBreak {
			m.setStatus("Break time! Enter takes the break • w keeps working", false)
		} else {
			m.setStatus("Back to work! Enter starts the next cycle", false)
		}
	}
	m.ensureSelection()
}

func (m *Model) remindInBackground(now time.Time) {
	if !m.blurred || m.notifier == nil {
		return
	}
	active := m.engine.Active()
	if !active.IsRunning() {
		return
	}
	if !m.lastReminder.IsZero() && now.Sub(m.lastReminder) < reminderInterval {
		return
	}
	m.lastReminder = now
	phase := "Work"
	if !active.WorkPhase {
		phase = "Break"
	}
	m.notifier.Notify(timer.Notice{
		Title: timer.FormatClock(active.Remaining) + " - " + active.Block.Name,
		Body:  phase + " in progress",
		Kind:  timer.NoticeProgress,
	})
}

func (m *Model) persist(success string) {
	m.svc.MarkOnboardingSeen()
	if err := m.svc.SetFocus(m.focusValue()); err != nil {
		m.setStatus("Could not update UI context: "+err.Error(), true)
		return
	}
	if err := store.Autosave(m.statePath, m.svc.State()); err != nil {
		m.setStatus("Change applied, but saving to disk failed: "+err.Error(), true)
		return
	}
	m.ensureSelection()
	m.setStatus(success, false)
}

func (m *Model) persistContextSilently() error {
	if err := m.svc.SetFocus(m.focusValue()); err != nil {
		m.setStatus("Could not update UI context: "+err.Error(), true)
		return err
	}
	if err := store.Autosave(m.statePath, m.svc.State()); err != nil {
		m.setStatus("Could not save UI context: "+err.Error(), true)
		return err
	}
	return nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) focusValue() string {
	switch m.focus {
	case focusTasks:
		return model.FocusTasks
	case focusMinimized:
		return model.FocusMinimized
	default:
		return model.FocusBlocks
	}
}

func (m *Model) restoreUIContext() {
	switch m.svc.State().Metadata.UI.Focus {
	case model.FocusTasks:
		m.focus = focusTasks
	case model.FocusMinimized:
		m.focus = focusMinimized
	}
}

func (m *Model) shouldShowOnboarding() bool {
	return m.svc.State().Metadata.FirstRun
}

func (m *Model) ensureSelection() {
	if n := len(m.svc.Blocks()); n == 0 {
		m.blockCursor = 0
	} else {
		m.blockCursor = clamp(m.blockCursor, 0, n-1)
	}
	if n := len(m.svc.Tasks()); n == 0 {
		m.taskCursor = 0
	} else {
		m.taskCursor = clamp(m.taskCursor, 0, n-1)
	}
	n := len(m.engine.Minimized())
	if n == 0 {
		m.minCursor = 0
		if m.focus == focusMinimized {
			m.focus = focusBlocks
		}
		return
	}
	m.minCursor = clamp(m.minCursor, 0, n-1)
}

func (m *Model) selectedBlock() (model.Block, bool) {
	blocks := m.svc.Blocks()
	if len(blocks) == 0 {
		return model.Block{}, false
	}
	return blocks[clamp(m.blockCursor, 0, len(blocks)-1)], true
}

func (m *Model) selectedTask() (model.Task, bool) {
	tasks := m.svc.Tasks()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	return tasks[clamp(m.taskCursor, 0, len(tasks)-1)], true
}

func (m *Model) selectedMinimized() (timer.Timer, bool) {
	entries := m.engine.Minimized()
	if len(entries) == 0 {
		return timer.Timer{}, false
	}
	return entries[clamp(m.minCursor, 0, len(entries)-1)], true
}

func (m *Model) pinnedTask() (string, string) {
	if m.pinnedTaskID == "" {
		return "", ""
	}
	task, err := m.svc.GetTask(m.pinnedTaskID)
	if err != nil {
		m.pinnedTaskID = ""
		return "", ""
	}
	return task.ID, task.Title
}

func (m *Model) indexOfBlock(id string) int {
	for i, b := range m.svc.Blocks() {
		if b.ID == id {
			return i
		}
	}
	return 0
}

func (m *Model) indexOfTask(id string) int {
	for i, t := range m.svc.Tasks() {
		if t.ID == id {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
