package app

import (
	"fmt"
	"time"

	"lemoncello/model"
)

// RecordSession appends a record produced by the timer engine.
// Missing ids and dates are filled in.
func (s *Service) RecordSession(record model.Session) model.Session {
	if record.ID == "" {
		record.ID = s.newID()
	}
	if record.Date == "" {
		record.Date = model.DayOf(record.EndTime)
	}
	s.state.Sessions = append(s.state.Sessions, record)
	return record
}

// AddSession appends a manually entered record under a fresh id.
func (s *Service) AddSession(record model.Session) (model.Session, error) {
	if record.StartTime.IsZero() || record.EndTime.IsZero() || record.EndTime.Before(record.StartTime) {
		return model.Session{}, ErrInvalidTimeRange
	}
	if record.TotalWorkMinutes < 0 {
		return model.Session{}, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, record.TotalWorkMinutes)
	}
	record.ID = s.newID()
	record.Date = model.DayOf(record.EndTime)
	s.state.Sessions = append(s.state.Sessions, record)
	return record, nil
}

// Sessions returns the session log in append order.
func (s *Service) Sessions() []model.Session {
	out := make([]model.Session, len(s.state.Sessions))
	copy(out, s.state.Sessions)
	return out
}

// SessionsByDate returns the sessions whose date is date (YYYY-MM-DD).
func (s *Service) SessionsByDate(date string) []model.Session {
	return s.filterSessions(func(r model.Session) bool { return r.Date == date })
}

func (s *Service) SessionsByTask(taskID string) []model.Session {
	return s.filterSessions(func(r model.Session) bool { return taskID != "" && r.TaskID == taskID })
}

// TodaySessions returns the sessions dated on the local day of now.
func (s *Service) TodaySessions(now time.Time) []model.Session {
	return s.SessionsByDate(model.DayOf(now))
}

// HasIncompleteSprint reports whether any run for the task was stopped early.
func (s *Service) HasIncompleteSprint(taskID string) bool {
	for _, r := range s.state.Sessions {
		if taskID != "" && r.TaskID == taskID && r.StoppedByUser {
			return true
		}
	}
	return false
}

// ClearSessions empties the session log and returns how many records were removed.
func (s *Service) ClearSessions() (int, error) {
	n := len(s.state.Sessions)
	if n == 0 {
		return 0, ErrNoSessions
	}
	s.state.Sessions = []model.Session{}
	return n, nil
}

func (s *Service) filterSessions(keep func(model.Session) bool) []model.Session {
	out := make([]model.Session, 0)
	for _, r := range s.state.Sessions {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
