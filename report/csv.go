package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"lemoncello/model"
)

var csvHeader = []string{
	"Date",
	"Task",
	"Block Name",
	"Start Time",
	"End Time",
	"Status",
	"Time Worked (min)",
	"Expected (min)",
	"Description",
}

// WriteCSV writes one row per session in log order. Times are RFC 3339 in UTC.
func WriteCSV(w io.Writer, sessions []model.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range sessions {
		expected := ""
		if s.ExpectedDuration != nil {
			expected = strconv.Itoa(*s.ExpectedDuration)
		}
		row := []string{
			s.Date,
			s.TaskName,
			s.BlockName,
			isoTime(s.StartTime),
			isoTime(s.EndTime),
			Status(s),
			strconv.Itoa(s.TotalWorkMinutes),
			expected,
			s.WorkDescription,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFileName is the default export name for a report generated at now.
func CSVFileName(now time.Time) string {
	return "lemoncello-report-" + model.DayOf(now) + ".csv"
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
