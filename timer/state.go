package timer

import (
	"time"

	"lemoncello/model"
)

// Status is the lifecycle position of a timer.
type Status string

const (
	StatusIdle               Status = "idle"
	StatusRunning            Status = "running"
	StatusPaused             Status = "paused"
	StatusAwaitingTransition Status = "awaiting_transition"
	StatusMinimized          Status = "minimized"
)

// Transition is a phase change waiting for the user's confirmation.
type Transition string

const (
	TransitionNone        Transition = ""
	TransitionWorkToBreak Transition = "work_to_break"
	TransitionBreakToWork Transition = "break_to_work"
)

// Command names an operation that may be applied to a timer.
type Command string

const (
	CmdStart       Command = "start"
	CmdTick        Command = "tick"
	CmdPause       Command = "pause"
	CmdResume      Command = "resume"
	CmdConfirm     Command = "confirm"
	CmdKeepWorking Command = "keep_working"
	CmdMinimize    Command = "minimize"
	CmdRestore     Command = "restore"
	CmdStop        Command = "stop"
	CmdCancel      Command = "cancel"
	CmdDescribe    Command = "describe"
)

// transitions lists the commands each status accepts. Anything else is a no-op.
var transitions = map[Status][]Command{
	StatusIdle:               {CmdStart},
	StatusRunning:            {CmdTick, CmdPause, CmdMinimize, CmdStop, CmdCancel, CmdDescribe},
	StatusPaused:             {CmdResume, CmdMinimize, CmdStop, CmdCancel, CmdDescribe},
	StatusAwaitingTransition: {CmdConfirm, CmdKeepWorking, CmdMinimize, CmdStop, CmdCancel, CmdDescribe},
	StatusMinimized:          {CmdRestore, CmdStop},
}

// Allowed reports whether cmd is accepted in status s.
func Allowed(s Status, cmd Command) bool {
	if s == "" {
		s = StatusIdle
	}
	for _, c := range transitions[s] {
		if c == cmd {
			return true
		}
	}
	return false
}

// Timer is the live state of one run. The zero value is not idle; use Idle.
type Timer struct {
	ID              string
	Status          Status
	Block           model.Block
	Cycle           int
	WorkPhase       bool
	Remaining       int
	Segment         int
	Description     string
	StartedAt       time.Time
	TaskID          string
	TaskName        string
	AccumulatedRest int
	SkippedBreaks   int
	Pending         Transition
}

// Idle returns an empty foreground slot.
func Idle() Timer {
	return Timer{
		Status:    StatusIdle,
		Cycle:     1,
		WorkPhase: true,
	}
}

// Active reports whether a block is loaded.
func (t Timer) Active() bool {
	return t.Status != StatusIdle && t.Status != ""
}

// IsRunning reports whether the countdown is advancing.
func (t Timer) IsRunning() bool {
	return t.Status == StatusRunning
}

// IsPaused reports whether a loaded timer is frozen for any reason.
func (t Timer) IsPaused() bool {
	switch t.Status {
	case StatusPaused, StatusAwaitingTransition, StatusMinimized:
		return true
	default:
		return false
	}
}

// IsMinimized reports whether the timer is parked in the registry.
func (t Timer) IsMinimized() bool {
	return t.Status == StatusMinimized
}

// Elapsed returns wall-clock time since the run started.
func (t Timer) Elapsed(now time.Time) time.Duration {
	if t.StartedAt.IsZero() || now.Before(t.StartedAt) {
		return 0
	}
	return now.Sub(t.StartedAt)
}

// Progress returns the completed fraction of the current segment in [0, 1].
func (t Timer) Progress() float64 {
	if t.Segment <= 0 {
		return 0
	}
	done := float64(t.Segment-t.Remaining) / float64(t.Segment)
	if done < 0 {
		return 0
	}
	if done > 1 {
		return 1
	}
	return done
}
