// Package report aggregates the session log into per-day summaries and exports.
package report

import (
	"sort"
	"time"

	"lemoncello/model"
)

// TaskGroup holds the sessions of one day that were attached to the same task.
type TaskGroup struct {
	TaskID           string
	TaskName         string
	Sessions         []model.Session
	TotalWorkMinutes int
}

// Day summarises the sessions dated on one calendar day.
type Day struct {
	Date             string
	Sessions         []model.Session
	TotalWorkMinutes int
	Completed        int
	Stopped          int
	Tasks            []TaskGroup
	Taskless         []model.Session
}

// Empty reports whether no session was logged on the day.
func (d Day) Empty() bool {
	return len(d.Sessions) == 0
}

// GroupByDate buckets sessions by their date, newest day first.
// Sessions inside a day are ordered by start time.
func GroupByDate(sessions []model.Session) []Day {
	byDate := map[string][]model.Session{}
	for _, s := range sessions {
		date := s.Date
		if date == "" {
			date = model.DayOf(s.EndTime)
		}
		byDate[date] = append(byDate[date], s)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		days = append(days, buildDay(date, byDate[date]))
	}
	return days
}

// ForDate returns the summary of a single day. The result is empty when nothing was logged.
func ForDate(sessions []model.Session, date string) Day {
	for _, day := range GroupByDate(sessions) {
		if day.Date == date {
			return day
		}
	}
	return Day{Date: date}
}

// Today is ForDate for the local day of now.
func Today(sessions []model.Session, now time.Time) Day {
	return ForDate(sessions, model.DayOf(now))
}

func buildDay(date string, sessions []model.Session) Day {
	sorted := append([]model.Session{}, sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	day := Day{Date: date, Sessions: sorted}
	groups := map[string]int{}
	for _, s := range sorted {
		day.TotalWorkMinutes += s.TotalWorkMinutes
		if s.StoppedByUser {
			day.Stopped++
		} else if s.Completed {
			day.Completed++
		}

		if s.TaskID == "" {
			day.Taskless = append(day.Taskless, s)
			continue
		}
		idx, ok := groups[s.TaskID]
		if !ok {
			idx = len(day.Tasks)
			groups[s.TaskID] = idx
			day.Tasks = append(day.Tasks, TaskGroup{TaskID: s.TaskID, TaskName: s.TaskName})
		}
		day.Tasks[idx].Sessions = append(day.Tasks[idx].Sessions, s)
		day.Tasks[idx].TotalWorkMinutes += s.TotalWorkMinutes
	}
	return day
}

// Status is the label used for a session's outcome.
func Status(s model.Session) string {
	if s.StoppedByUser {
		return "Stopped by user"
	}
	return "Completed"
}

// Heading formats a YYYY-MM-DD date as "Monday, March 2, 2026".
func Heading(date string) string {
	t, err := time.ParseInLocation(model.DateLayout, date, time.Local)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
