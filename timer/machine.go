package timer

import (
	"fmt"
	"time"

	"lemoncello/model"
)

const (
	// maxCreditedCycles caps the cycle multiplier used for credited and expected minutes.
	maxCreditedCycles = 100
	// skipIncrementMinutes is added to the owed break for every skipped break after the first.
	skipIncrementMinutes = 5
)

// Start loads block into an idle timer and starts the countdown.
func Start(t Timer, block model.Block, taskID, taskName, id string, now time.Time) (Timer, Effects) {
	if !Allowed(t.Status, CmdStart) {
		return t, Effects{}
	}

	work := block.Kind != model.KindRest
	seconds := block.EffectiveRest() * 60
	if work {
		seconds = block.EffectiveWork() * 60
	}

	next := Timer{
		ID:          id,
		Status:      StatusRunning,
		Block:       block,
		Cycle:       1,
		WorkPhase:   work,
		Remaining:   seconds,
		Segment:     seconds,
		Description: block.Description,
		StartedAt:   now,
		TaskID:      taskID,
		TaskName:    taskName,
	}
	return next, Effects{Notices: []Notice{{
		Title: "Timer started! 🚀",
		Body:  block.Name + " - Let's go!",
		Kind:  NoticeStart,
	}}}
}

// Tick advances a running countdown by one second and applies the phase policy at zero.
func Tick(t Timer, now time.Time) (Timer, Effects) {
	if !Allowed(t.Status, CmdTick) {
		return t, Effects{}
	}

	t.Remaining--
	if t.Remaining > 0 {
		return t, Effects{}
	}

	block := t.Block
	if block.Kind == model.KindMeeting || block.Kind == model.KindRest {
		return complete(t, now, Notice{
			Title: "Timer complete! ✨",
			Body:  block.Name + " has finished.",
			Kind:  NoticeEnd,
		})
	}

	if t.WorkPhase {
		if t.Cycle >= block.EffectiveCycles() {
			return complete(t, now, Notice{
				Title: "Block complete! 🎉",
				Body:  block.Name + " - All cycles finished!",
				Kind:  NoticeEnd,
			})
		}
		minutes := breakMinutes(t)
		t.Status = StatusAwaitingTransition
		t.Pending = TransitionWorkToBreak
		t.Remaining = minutes * 60
		t.Segment = t.Remaining
		return t, Effects{Notices: []Notice{{
			Title: "Break time! ☕",
			Body:  fmt.Sprintf("Take a %d minute break.", minutes),
			Kind:  NoticeEnd,
		}}}
	}

	t.Status = StatusAwaitingTransition
	t.Pending = TransitionBreakToWork
	t.Remaining = block.EffectiveWork() * 60
	t.Segment = t.Remaining
	return t, Effects{Notices: []Notice{{
		Title: "Back to work! 💪",
		Body:  fmt.Sprintf("Starting cycle %d.", t.Cycle+1),
		Kind:  NoticeStart,
	}}}
}

// ConfirmTransition applies the pending phase change and resumes the countdown.
func ConfirmTransition(t Timer) (Timer, Effects) {
	if !Allowed(t.Status, CmdConfirm) {
		return t, Effects{}
	}

	var cue Notice
	switch t.Pending {
	case TransitionWorkToBreak:
		t.WorkPhase = false
		t.Remaining = breakMinutes(t) * 60
		t.AccumulatedRest = 0
		t.SkippedBreaks = 0
		cue = Notice{Kind: NoticeEnd}
	case TransitionBreakToWork:
		t.WorkPhase = true
		t.Cycle++
		t.Remaining = t.Block.EffectiveWork() * 60
		cue = Notice{Kind: NoticeStart}
	default:
		return t, Effects{}
	}

	t.Segment = t.Remaining
	t.Pending = TransitionNone
	t.Status = StatusRunning
	return t, Effects{Notices: []Notice{cue}}
}

// KeepWorking defers a pending break. The first skip owes the block's rest length,
// every later skip owes another skipIncrementMinutes.
func KeepWorking(t Timer) (Timer, Effects) {
	if !Allowed(t.Status, CmdKeepWorking) || t.Pending != TransitionWorkToBreak {
		return t, Effects{}
	}

	owed := skipIncrementMinutes
	if t.SkippedBreaks == 0 {
		owed = t.Block.EffectiveRest()
	}
	t.AccumulatedRest += owed
	t.SkippedBreaks++
	t.WorkPhase = true
	t.Remaining = t.Block.EffectiveWork() * 60
	t.Segment = t.Remaining
	t.Pending = TransitionNone
	t.Status = StatusRunning
	return t, Effects{Notices: []Notice{{Kind: NoticeStart}}}
}

// Pause freezes a running countdown.
func Pause(t Timer) Timer {
	if !Allowed(t.Status, CmdPause) {
		return t
	}
	t.Status = StatusPaused
	return t
}

// Resume restarts a countdown frozen by Pause.
func Resume(t Timer) (Timer, Effects) {
	if !Allowed(t.Status, CmdResume) {
		return t, Effects{}
	}
	t.Status = StatusRunning
	return t, Effects{Notices: []Notice{{Kind: NoticeStart}}}
}

// Park marks a foreground timer as minimized. A pending transition is kept.
func Park(t Timer) (Timer, bool) {
	if !Allowed(t.Status, CmdMinimize) {
		return t, false
	}
	t.Status = StatusMinimized
	return t, true
}

// Unpark brings a minimized timer back, running unless a transition is still pending.
func Unpark(t Timer) (Timer, Effects) {
	if !Allowed(t.Status, CmdRestore) {
		return t, Effects{}
	}
	t.Status = StatusRunning
	if t.Pending != TransitionNone {
		t.Status = StatusAwaitingTransition
	}
	return t, Effects{Notices: []Notice{{Kind: NoticeStart}}}
}

// Stop ends a run early and credits the wall-clock minutes since it started.
func Stop(t Timer, description string, now time.Time) (Timer, Effects) {
	if !Allowed(t.Status, CmdStop) || t.StartedAt.IsZero() {
		return t, Effects{}
	}

	elapsed := int(t.Elapsed(now) / time.Minute)
	expected := expectedMinutes(t)
	record := baseRecord(t, description, now)
	record.StoppedByUser = true
	record.TotalWorkMinutes = elapsed
	record.TimeCompletedBeforeStopping = &elapsed
	record.ExpectedDuration = &expected
	return Idle(), Effects{Record: &record}
}

// Cancel discards the run without producing a record.
func Cancel(t Timer) Timer {
	if !Allowed(t.Status, CmdCancel) {
		return t
	}
	return Idle()
}

// Describe replaces the live work description.
func Describe(t Timer, description string) Timer {
	if !Allowed(t.Status, CmdDescribe) {
		return t
	}
	t.Description = description
	return t
}

func complete(t Timer, now time.Time, notice Notice) (Timer, Effects) {
	if t.StartedAt.IsZero() {
		return Idle(), Effects{Notices: []Notice{notice}}
	}
	expected := expectedMinutes(t)
	record := baseRecord(t, t.Description, now)
	record.Completed = true
	record.TotalWorkMinutes = creditedMinutes(t)
	record.ExpectedDuration = &expected
	return Idle(), Effects{Notices: []Notice{notice}, Record: &record}
}

func baseRecord(t Timer, description string, now time.Time) model.Session {
	return model.Session{
		BlockID:         t.Block.ID,
		BlockName:       t.Block.Name,
		StartTime:       t.StartedAt,
		EndTime:         now,
		WorkDescription: description,
		Date:            model.DayOf(now),
		TaskID:          t.TaskID,
		TaskName:        t.TaskName,
	}
}

func breakMinutes(t Timer) int {
	if t.AccumulatedRest > 0 {
		return t.AccumulatedRest
	}
	return t.Block.EffectiveRest()
}

func creditedMinutes(t Timer) int {
	if t.Block.Kind == model.KindRest {
		return 0
	}
	return t.Block.EffectiveWork() * cappedCycles(t.Cycle)
}

func expectedMinutes(t Timer) int {
	if t.Block.Kind == model.KindRest {
		return t.Block.EffectiveRest()
	}
	return t.Block.EffectiveWork() * cappedCycles(t.Cycle)
}

func cappedCycles(cycle int) int {
	if cycle < 1 {
		return 1
	}
	if cycle > maxCreditedCycles {
		return maxCreditedCycles
	}
	return cycle
}
