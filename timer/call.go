package timer

import (
	"fmt"
	"strings"
	"time"

	"lemoncello/model"
)

const (
	CallBlockID     = "call-tracker"
	CallBlockName   = "Call"
	CallDescription = "Call session"
)

// Call is an open-ended count-up timer that runs beside the block timers.
type Call struct {
	StartedAt time.Time
}

// Active reports whether a call is being tracked.
func (c Call) Active() bool {
	return !c.StartedAt.IsZero()
}

func (c Call) Elapsed(now time.Time) time.Duration {
	if !c.Active() || now.Before(c.StartedAt) {
		return 0
	}
	return now.Sub(c.StartedAt)
}

// CallRecord is the session logged when a call ends: the whole wall-clock
// minutes since it started, always completed, never tied to a task.
func CallRecord(c Call, description string, now time.Time) (model.Session, bool) {
	if !c.Active() {
		return model.Session{}, false
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = CallDescription
	}
	return model.Session{
		BlockID:          CallBlockID,
		BlockName:        CallBlockName,
		StartTime:        c.StartedAt,
		EndTime:          now,
		TotalWorkMinutes: int(c.Elapsed(now) / time.Minute),
		WorkDescription:  description,
		Date:             model.DayOf(now),
		Completed:        true,
	}, true
}

// FormatCount renders a count-up duration as M:SS, or H:MM:SS past the hour.
func FormatCount(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	if h := secs / 3600; h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
