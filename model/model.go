package model

import "time"

// BlockKind selects how a block's work/rest minutes and cycles are interpreted.
type BlockKind string

const (
	KindPomodoro BlockKind = "pomodoro"
	KindMeeting  BlockKind = "meeting"
	KindRest     BlockKind = "rest"
	KindCustom   BlockKind = "custom"
)

// Valid reports whether k is one of the known block kinds.
func (k BlockKind) Valid() bool {
	switch k {
	case KindPomodoro, KindMeeting, KindRest, KindCustom:
		return true
	default:
		return false
	}
}

// QuickStartBlockID identifies the built-in quick start block.
const QuickStartBlockID = "quick-start"

// Block is a reusable timer template.
type Block struct {
	ID          string    `json:"id" yaml:"-"`
	Name        string    `json:"name" yaml:"name"`
	Kind        BlockKind `json:"kind" yaml:"kind"`
	WorkMinutes int       `json:"workMinutes" yaml:"work_minutes"`
	RestMinutes int       `json:"restMinutes" yaml:"rest_minutes"`
	Cycles      int       `json:"cycles" yaml:"cycles"`
	Icon        string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string    `json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

// EffectiveWork returns the work minutes honoured for the block's kind.
// Rest blocks have no work segment.
func (b Block) EffectiveWork() int {
	if b.Kind == KindRest || b.WorkMinutes < 0 {
		return 0
	}
	return b.WorkMinutes
}

// EffectiveRest returns the rest minutes honoured for the block's kind.
// Meetings have no break.
func (b Block) EffectiveRest() int {
	if b.Kind == KindMeeting || b.RestMinutes < 0 {
		return 0
	}
	return b.RestMinutes
}

// EffectiveCycles returns the number of work segments the block runs.
// Only pomodoro blocks cycle.
func (b Block) EffectiveCycles() int {
	if b.Kind != KindPomodoro || b.Cycles < 1 {
		return 1
	}
	return b.Cycles
}

// Task is an optional label a running timer can be attached to.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Session is the log entry produced once per finished or stopped run.
type Session struct {
	ID                          string    `json:"id"`
	BlockID                     string    `json:"blockId"`
	BlockName                   string    `json:"blockName"`
	StartTime                   time.Time `json:"startTime"`
	EndTime                     time.Time `json:"endTime"`
	TotalWorkMinutes            int       `json:"totalWorkMinutes"`
	WorkDescription             string    `json:"workDescription"`
	Date                        string    `json:"date"`
	Completed                   bool      `json:"completed"`
	StoppedByUser               bool      `json:"stoppedByUser"`
	TimeCompletedBeforeStopping *int      `json:"timeCompletedBeforeStopping,omitempty"`
	ExpectedDuration            *int      `json:"expectedDuration,omitempty"`
	TaskID                      string    `json:"taskId,omitempty"`
	TaskName                    string    `json:"taskName,omitempty"`
}

// DateLayout is the calendar-day format used for Session.Date.
const DateLayout = "2006-01-02"

// DayOf returns the local calendar day of t in DateLayout.
func DayOf(t time.Time) string {
	return t.Local().Format(DateLayout)
}

const (
	FocusBlocks    = "blocks"
	FocusTasks     = "tasks"
	FocusMinimized = "minimized"
)

// UIContext stores UI context that should survive restarts.
type UIContext struct {
	Focus string `json:"focus,omitempty"`
}

// Metadata is app-level metadata persisted alongside the state.
type Metadata struct {
	Version  int       `json:"version"`
	FirstRun bool      `json:"firstRun,omitempty"`
	UI       UIContext `json:"ui,omitempty"`
}

// AppState is the full persisted state.
type AppState struct {
	Blocks   []Block   `json:"blocks"`
	Tasks    []Task    `json:"tasks"`
	Sessions []Session `json:"sessions"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// NewState returns an initialized empty state.
func NewState() AppState {
	return AppState{
		Blocks:   []Block{},
		Tasks:    []Task{},
		Sessions: []Session{},
		Metadata: Metadata{
			Version:  1,
			FirstRun: true,
			UI: UIContext{
				Focus: FocusBlocks,
			},
		},
	}
}

// DefaultBlocks returns the templates seeded into an empty library.
// IDs and creation times are assigned by the caller.
func DefaultBlocks() []Block {
	return []Block{
		{Name: "Focus Sprint", Kind: KindPomodoro, WorkMinutes: 25, RestMinutes: 5, Cycles: 4, Icon: "🎯"},
		{Name: "Deep Work", Kind: KindPomodoro, WorkMinutes: 50, RestMinutes: 10, Cycles: 2, Icon: "🧠"},
		{Name: "Quick Meeting", Kind: KindMeeting, WorkMinutes: 30, RestMinutes: 0, Cycles: 1, Icon: "📞"},
		{Name: "Long Rest", Kind: KindRest, WorkMinutes: 0, RestMinutes: 40, Cycles: 1, Icon: "☕"},
	}
}

// QuickStartBlock is an effectively unbounded pomodoro that is never stored in the library.
func QuickStartBlock() Block {
	return Block{
		ID:          QuickStartBlockID,
		Name:        "Quick Start",
		Kind:        KindPomodoro,
		WorkMinutes: 25,
		RestMinutes: 5,
		Cycles:      9999,
		Icon:        "⚡",
	}
}
