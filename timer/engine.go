package timer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"lemoncello/model"
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Notifier surfaces notices to the user. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// WakeLock keeps the display awake while the foreground timer runs.
type WakeLock interface {
	SetActive(active bool)
}

// SessionSink receives every finished or stopped session record.
type SessionSink interface {
	Append(model.Session) error
}

// SinkFunc adapts a function to SessionSink.
type SinkFunc func(model.Session) error

// Append calls f.
func (f SinkFunc) Append(s model.Session) error { return f(s) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

type nopWakeLock struct{}

func (nopWakeLock) SetActive(bool) {}

// Config contains collaborators and runtime options for Engine.
type Config struct {
	TickInterval time.Duration
	MaxMinimized int
	Clock        Clock
	NewID        func() string
	Notifier     Notifier
	WakeLock     WakeLock
	Sink         SessionSink
	Logger       *log.Logger
}

// Engine owns the foreground timer and the minimized registry.
// Every command is a no-op when its preconditions do not hold.
type Engine struct {
	mu         sync.Mutex
	options    Config
	active     Timer
	minimized  *Registry
	wakeActive bool
	call       Call
	events     []chan Event
	closed     bool
}

// New creates an idle Engine.
func New(config Config) *Engine {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.Clock == nil {
		config.Clock = systemClock{}
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}
	if config.Notifier == nil {
		config.Notifier = nopNotifier{}
	}
	if config.WakeLock == nil {
		config.WakeLock = nopWakeLock{}
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	return &Engine{
		options:   config,
		active:    Idle(),
		minimized: NewRegistry(config.MaxMinimized),
	}
}

// Active returns a copy of the foreground timer.
func (e *Engine) Active() Timer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Minimized returns the parked timers in parking order.
func (e *Engine) Minimized() []Timer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.minimized.List()
}

// Subscribe registers a new observer channel. After Close the channel
// comes back already closed.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// Close releases the wake lock and closes observers.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	events := e.events
	e.events = nil
	if e.wakeActive {
		e.wakeActive = false
		e.options.WakeLock.SetActive(false)
	}
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Run ticks the engine at the configured interval until ctx is done.
// Ticks are best effort; missed ticks are not replayed.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Start runs block in the foreground. It does nothing unless the foreground is idle.
func (e *Engine) Start(block model.Block, taskID, taskName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.options.Clock.Now()
	next, effects := Start(e.active, block, taskID, taskName, e.options.NewID(), now)
	if !next.Active() {
		return false
	}
	e.options.Logger.Printf("timer %s: start %q (%s)", next.ID, block.Name, block.Kind)
	e.applyLocked(EventStarted, next, effects, now)
	return true
}

// StartQuickStart runs the built-in quick start block.
func (e *Engine) StartQuickStart(taskID, taskName string) bool {
	return e.Start(model.QuickStartBlock(), taskID, taskName)
}

// Tick advances the foreground countdown by one second.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active.IsRunning() {
		return
	}
	now := e.options.Clock.Now()
	next, effects := Tick(e.active, now)

	eventType := EventProgress
	switch {
	case effects.Record != nil:
		eventType = EventCompleted
		e.options.Logger.Printf("timer %s: completed %q", e.active.ID, e.active.Block.Name)
	case next.Status == StatusAwaitingTransition:
		eventType = EventTransition
		e.options.Logger.Printf("timer %s: awaiting %s", next.ID, next.Pending)
	}
	e.applyLocked(eventType, next, effects, now)
}

// ConfirmTransition applies the pending phase change.
func (e *Engine) ConfirmTransition() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, effects := ConfirmTransition(e.active)
	if effects.empty() {
		return false
	}
	e.applyLocked(EventPhase, next, effects, e.options.Clock.Now())
	return true
}

// KeepWorking skips the pending break and starts another work segment.
func (e *Engine) KeepWorking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, effects := KeepWorking(e.active)
	if effects.empty() {
		return false
	}
	e.options.Logger.Printf("timer %s: break skipped (%d owed)", next.ID, next.AccumulatedRest)
	e.applyLocked(EventPhase, next, effects, e.options.Clock.Now())
	return true
}

// Pause freezes the foreground countdown.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !Allowed(e.active.Status, CmdPause) {
		return false
	}
	e.applyLocked(EventPaused, Pause(e.active), Effects{}, e.options.Clock.Now())
	return true
}

// Resume restarts a paused foreground countdown.
func (e *Engine) Resume() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, effects := Resume(e.active)
	if effects.empty() {
		return false
	}
	e.applyLocked(EventResumed, next, effects, e.options.Clock.Now())
	return true
}

// Minimize parks the foreground timer in the registry and frees the foreground.
func (e *Engine) Minimize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.minimized.Full() {
		return false
	}
	parked, ok := Park(e.active)
	if !ok {
		return false
	}
	e.minimized.Put(parked)
	e.options.Logger.Printf("timer %s: minimized", parked.ID)
	e.active = Idle()
	e.emitLocked(Event{Type: EventMinimized, Timer: parked, At: e.options.Clock.Now()})
	e.syncWakeLockLocked()
	return true
}

// ResumeMinimized promotes a parked timer to the foreground, parking the current
// foreground timer first if there is one.
func (e *Engine) ResumeMinimized(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.minimized.Take(id)
	if !ok {
		return false
	}
	now := e.options.Clock.Now()
	if parked, ok := Park(e.active); ok {
		e.minimized.Put(parked)
		e.emitLocked(Event{Type: EventMinimized, Timer: parked, At: now})
	}

	next, effects := Unpark(entry)
	e.options.Logger.Printf("timer %s: restored", next.ID)
	e.applyLocked(EventRestored, next, effects, now)
	return true
}

// StopWithDescription ends a run early and records the wall-clock minutes worked.
// An empty targetID addresses the foreground timer; otherwise a minimized timer.
func (e *Engine) StopWithDescription(description, targetID string) (model.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.options.Clock.Now()
	if targetID == "" || (e.active.Active() && targetID == e.active.ID) {
		stopped := e.active
		next, effects := Stop(e.active, description, now)
		if effects.Record == nil {
			return model.Session{}, false
		}
		e.options.Logger.Printf("timer %s: stopped after %d min", stopped.ID, effects.Record.TotalWorkMinutes)
		record := e.applyLocked(EventStopped, next, effects, now)
		return record, true
	}

	entry, ok := e.minimized.Get(targetID)
	if !ok {
		return model.Session{}, false
	}
	_, effects := Stop(entry, description, now)
	if effects.Record == nil {
		return model.Session{}, false
	}
	e.minimized.Take(targetID)
	e.options.Logger.Printf("timer %s: stopped while minimized after %d min", entry.ID, effects.Record.TotalWorkMinutes)
	record := e.dispatchLocked(effects)
	e.emitLocked(Event{Type: EventStopped, Timer: entry, Record: &record, At: now})
	return record, true
}

// Cancel discards the foreground run. No record is written.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !Allowed(e.active.Status, CmdCancel) {
		return false
	}
	e.options.Logger.Printf("timer %s: cancelled", e.active.ID)
	cancelled := e.active
	e.active = Cancel(e.active)
	e.emitLocked(Event{Type: EventCancelled, Timer: cancelled, At: e.options.Clock.Now()})
	e.syncWakeLockLocked()
	return true
}

// UpdateWorkDescription edits the foreground timer's description.
func (e *Engine) UpdateWorkDescription(description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = Describe(e.active, description)
}

// ActiveCall returns the tracked call, if any.
func (e *Engine) ActiveCall() Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.call
}

// CallElapsed is the wall-clock time since the call started.
func (e *Engine) CallElapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.call.Elapsed(e.options.Clock.Now())
}

// StartCall begins tracking a call. Block timers are unaffected.
// It does nothing while a call is already tracked.
func (e *Engine) StartCall() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.call.Active() {
		return false
	}
	now := e.options.Clock.Now()
	e.call = Call{StartedAt: now}
	e.options.Logger.Printf("call: started")
	e.emitLocked(Event{Type: EventCallStarted, Call: e.call, At: now})
	return true
}

// StopCall ends the call and logs it. An empty description becomes "Call session".
func (e *Engine) StopCall(description string) (model.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.options.Clock.Now()
	session, ok := CallRecord(e.call, description, now)
	if !ok {
		return model.Session{}, false
	}
	ended := e.call
	e.call = Call{}
	e.options.Logger.Printf("call: stopped after %d min", session.TotalWorkMinutes)
	record := e.dispatchLocked(Effects{Record: &session})
	e.emitLocked(Event{Type: EventCallStopped, Call: ended, Record: &record, At: now})
	return record, true
}

// CancelCall discards the call. No record is written.
func (e *Engine) CancelCall() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.call.Active() {
		return false
	}
	ended := e.call
	e.call = Call{}
	e.options.Logger.Printf("call: cancelled")
	e.emitLocked(Event{Type: EventCallCancelled, Call: ended, At: e.options.Clock.Now()})
	return true
}

// Elapsed formats the wall-clock time since the foreground run started.
func (e *Engine) Elapsed() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return FormatElapsed(e.active.Elapsed(e.options.Clock.Now()))
}

func (e *Engine) applyLocked(eventType EventType, next Timer, effects Effects, now time.Time) model.Session {
	event := Event{Type: eventType, Timer: next, At: now}
	if !next.Active() {
		event.Timer = e.active
	}
	e.active = next

	record := e.dispatchLocked(effects)
	if effects.Record != nil {
		event.Record = &record
	}
	e.emitLocked(event)
	e.syncWakeLockLocked()
	return record
}

func (e *Engine) dispatchLocked(effects Effects) model.Session {
	for _, notice := range effects.Notices {
		e.options.Notifier.Notify(notice)
	}
	if effects.Record == nil {
		return model.Session{}
	}

	record := *effects.Record
	record.ID = e.options.NewID()
	if e.options.Sink != nil {
		if err := e.options.Sink.Append(record); err != nil {
			e.options.Logger.Printf("session log: append %s: %v", record.ID, err)
		}
	}
	return record
}

func (e *Engine) syncWakeLockLocked() {
	running := e.active.IsRunning()
	if running == e.wakeActive {
		return
	}
	e.wakeActive = running
	e.options.WakeLock.SetActive(running)
}

func (e *Engine) emitLocked(event Event) {
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}
