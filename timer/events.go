package timer

import (
	"time"

	"lemoncello/model"
)

// NoticeKind selects the cue that accompanies a notice.
type NoticeKind string

const (
	NoticeStart    NoticeKind = "start"
	NoticeEnd      NoticeKind = "end"
	NoticeProgress NoticeKind = "progress"
)

// Notice is a user-facing side effect. A notice without a title is an audible cue only.
type Notice struct {
	Title string
	Body  string
	Kind  NoticeKind
}

// CueOnly reports whether the notice carries no text.
func (n Notice) CueOnly() bool {
	return n.Title == ""
}

// Effects are the side effects produced by one transition.
type Effects struct {
	Notices []Notice
	Record  *model.Session
}

func (e Effects) empty() bool {
	return len(e.Notices) == 0 && e.Record == nil
}

// EventType defines the type of engine event.
type EventType string

const (
	EventStarted    EventType = "started"
	EventProgress   EventType = "progress"
	EventTransition EventType = "transition"
	EventPhase      EventType = "phase"
	EventPaused     EventType = "paused"
	EventResumed    EventType = "resumed"
	EventMinimized  EventType = "minimized"
	EventRestored   EventType = "restored"
	EventCompleted  EventType = "completed"
	EventStopped    EventType = "stopped"
	EventCancelled  EventType = "cancelled"

	EventCallStarted   EventType = "call-started"
	EventCallStopped   EventType = "call-stopped"
	EventCallCancelled EventType = "call-cancelled"
)

// Event describes an engine update for observers.
type Event struct {
	Type   EventType
	Timer  Timer
	Call   Call
	Record *model.Session
	At     time.Time
}
