package timer

import (
	"reflect"
	"testing"
	"time"

	"lemoncello/model"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

func pomodoro(work, rest, cycles int) model.Block {
	return model.Block{
		ID:          "b-pomo",
		Name:        "Focus",
		Kind:        model.KindPomodoro,
		WorkMinutes: work,
		RestMinutes: rest,
		Cycles:      cycles,
	}
}

func tickUntil(t *testing.T, tm Timer, n int) (Timer, Effects) {
	t.Helper()
	var effects Effects
	for i := 0; i < n; i++ {
		tm, effects = Tick(tm, epoch.Add(time.Duration(i+1)*time.Second))
	}
	return tm, effects
}

func TestStartOnlyFromIdle(t *testing.T) {
	started, effects := Start(Idle(), pomodoro(25, 5, 4), "t1", "Write", "timer-1", epoch)
	if started.Status != StatusRunning || started.Remaining != 1500 || !started.WorkPhase {
		t.Fatalf("unexpected started timer: %+v", started)
	}
	if started.TaskID != "t1" || started.TaskName != "Write" {
		t.Fatalf("expected task snapshot on timer, got %+v", started)
	}
	if len(effects.Notices) != 1 || effects.Notices[0].Kind != NoticeStart {
		t.Fatalf("expected one start notice, got %+v", effects.Notices)
	}

	again, effects := Start(started, pomodoro(50, 10, 2), "", "", "timer-2", epoch)
	if !reflect.DeepEqual(started, again) || !effects.empty() {
		t.Fatalf("expected start on a running timer to be a no-op")
	}
}

func TestStartRestBlockBeginsInBreakPhase(t *testing.T) {
	rest := model.Block{ID: "b-rest", Name: "Long Rest", Kind: model.KindRest, WorkMinutes: 25, RestMinutes: 40, Cycles: 1}
	started, _ := Start(Idle(), rest, "", "", "timer-1", epoch)
	if started.WorkPhase {
		t.Fatalf("expected rest block to start in break phase")
	}
	if started.Remaining != 40*60 {
		t.Fatalf("expected 2400s remaining, got %d", started.Remaining)
	}
}

func TestNoOpTransitionsLeaveStateUnchanged(t *testing.T) {
	running, _ := Start(Idle(), pomodoro(25, 5, 2), "", "", "timer-1", epoch)
	running, _ = tickUntil(t, running, 10)

	for name, fn := range map[string]func(Timer) (Timer, Effects){
		"confirm":      ConfirmTransition,
		"keep working": KeepWorking,
		"resume":       Resume,
		"unpark":       Unpark,
	} {
		got, effects := fn(running)
		if !reflect.DeepEqual(running, got) {
			t.Fatalf("%s changed state without a pending transition\nwant=%+v\ngot=%+v", name, running, got)
		}
		if !effects.empty() {
			t.Fatalf("%s produced effects: %+v", name, effects)
		}
	}

	idle := Idle()
	if got, _ := Tick(idle, epoch); !reflect.DeepEqual(idle, got) {
		t.Fatalf("tick changed an idle timer: %+v", got)
	}
	if got, effects := Stop(idle, "nothing", epoch); !reflect.DeepEqual(idle, got) || effects.Record != nil {
		t.Fatalf("stop on idle timer should be a no-op")
	}
}

func TestKeepWorkingOnlyForPendingBreak(t *testing.T) {
	tm, _ := Start(Idle(), pomodoro(1, 1, 3), "", "", "timer-1", epoch)
	tm, _ = tickUntil(t, tm, 60)
	tm, _ = ConfirmTransition(tm)
	tm, _ = tickUntil(t, tm, 60)
	if tm.Pending != TransitionBreakToWork {
		t.Fatalf("expected pending break-to-work, got %q", tm.Pending)
	}

	got, effects := KeepWorking(tm)
	if !reflect.DeepEqual(tm, got) || !effects.empty() {
		t.Fatalf("keep working should ignore a pending break-to-work")
	}
}

func TestTickCompletesMeeting(t *testing.T) {
	meeting := model.Block{ID: "b-meet", Name: "Standup", Kind: model.KindMeeting, WorkMinutes: 1, RestMinutes: 10, Cycles: 3}
	tm, _ := Start(Idle(), meeting, "", "", "timer-1", epoch)
	tm = Describe(tm, "sync")

	tm, effects := tickUntil(t, tm, 60)
	if tm.Active() {
		t.Fatalf("expected meeting to finish after its work segment, got %+v", tm)
	}
	if effects.Record == nil {
		t.Fatalf("expected a session record")
	}
	record := *effects.Record
	if !record.Completed || record.StoppedByUser {
		t.Fatalf("expected completed record, got %+v", record)
	}
	if record.TotalWorkMinutes != 1 || record.WorkDescription != "sync" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Date != model.DayOf(record.EndTime) {
		t.Fatalf("expected date to be the local day of end time, got %q", record.Date)
	}
}

func TestRestBlockCreditsNoWork(t *testing.T) {
	rest := model.Block{ID: "b-rest", Name: "Nap", Kind: model.KindRest, RestMinutes: 1, Cycles: 1}
	tm, _ := Start(Idle(), rest, "", "", "timer-1", epoch)
	_, effects := tickUntil(t, tm, 60)
	if effects.Record == nil {
		t.Fatalf("expected a session record")
	}
	if effects.Record.TotalWorkMinutes != 0 {
		t.Fatalf("expected rest to credit 0 minutes, got %d", effects.Record.TotalWorkMinutes)
	}
	if effects.Record.ExpectedDuration == nil || *effects.Record.ExpectedDuration != 1 {
		t.Fatalf("expected rest minutes as expected duration, got %v", effects.Record.ExpectedDuration)
	}
}

func TestStopCreditsWallClockMinutes(t *testing.T) {
	tm, _ := Start(Idle(), pomodoro(25, 5, 4), "t1", "Write", "timer-1", epoch)
	// only a few ticks arrive while the wall clock moves on
	tm, _ = tickUntil(t, tm, 3)

	stopped, effects := Stop(tm, "partial", epoch.Add(17*time.Minute+59*time.Second))
	if stopped.Active() {
		t.Fatalf("expected stop to return an idle timer")
	}
	record := effects.Record
	if record == nil {
		t.Fatalf("expected a record")
	}
	if !record.StoppedByUser || record.Completed {
		t.Fatalf("expected stopped-by-user record, got %+v", record)
	}
	if record.TotalWorkMinutes != 17 || record.TimeCompletedBeforeStopping == nil || *record.TimeCompletedBeforeStopping != 17 {
		t.Fatalf("expected 17 credited minutes, got %+v", record)
	}
	if record.ExpectedDuration == nil || *record.ExpectedDuration != 25 {
		t.Fatalf("expected 25 expected minutes, got %v", record.ExpectedDuration)
	}
	if record.TaskID != "t1" || record.TaskName != "Write" || record.WorkDescription != "partial" {
		t.Fatalf("unexpected snapshot fields: %+v", record)
	}
}

func TestCappedCycles(t *testing.T) {
	if got := cappedCycles(150); got != maxCreditedCycles {
		t.Fatalf("expected cap at %d, got %d", maxCreditedCycles, got)
	}
	if got := cappedCycles(0); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}

func TestAllowedTable(t *testing.T) {
	if !Allowed("", CmdStart) {
		t.Fatalf("expected zero status to behave as idle")
	}
	if Allowed(StatusMinimized, CmdTick) {
		t.Fatalf("minimized timers must not tick")
	}
	if Allowed(StatusPaused, CmdConfirm) {
		t.Fatalf("paused timers have nothing to confirm")
	}
	if !Allowed(StatusAwaitingTransition, CmdMinimize) {
		t.Fatalf("expected awaiting timers to be minimizable")
	}
}

func TestProgress(t *testing.T) {
	tm, _ := Start(Idle(), pomodoro(1, 1, 2), "", "", "timer-1", epoch)
	tm, _ = tickUntil(t, tm, 30)
	if got := tm.Progress(); got != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", got)
	}
	if got := Idle().Progress(); got != 0 {
		t.Fatalf("expected idle progress 0, got %v", got)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatElapsed(75 * time.Minute); got != "1h 15min" {
		t.Fatalf("unexpected elapsed format %q", got)
	}
	if got := FormatElapsed(59 * time.Second); got != "0 min" {
		t.Fatalf("unexpected elapsed format %q", got)
	}
	if got := FormatClock(1500); got != "25:00" {
		t.Fatalf("unexpected clock format %q", got)
	}
	if got := FormatClock(-3); got != "00:00" {
		t.Fatalf("unexpected clock format %q", got)
	}
}
