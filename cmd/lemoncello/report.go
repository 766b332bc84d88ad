package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lemoncello/app"
	"lemoncello/model"
	"lemoncello/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the daily summary of logged sessions",
	Long: `Show the sessions logged on one day, grouped by task.

--csv writes every logged session instead; pass "-" for stdout.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage the session log",
}

// sessions clear
var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every logged session",
	Args:  cobra.NoArgs,
	RunE:  runSessionsClear,
}

var (
	reportDate  string
	reportCSV   string
	reportPlain bool
	clearYes    bool
)

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "day to report, YYYY-MM-DD (default today)")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "export all sessions as CSV to this file")
	reportCmd.Flags().BoolVar(&reportPlain, "plain", false, "plain text without markdown styling")
	sessionsClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "confirm deleting the log")

	rootCmd.AddCommand(reportCmd, sessionsCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, _, err := env.service()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if reportCSV != "" {
		return exportCSV(out, reportCSV, svc.Sessions())
	}

	date := model.DayOf(time.Now())
	if reportDate != "" {
		if _, err := time.ParseInLocation(model.DateLayout, reportDate, time.Local); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", reportDate)
		}
		date = reportDate
	}
	day := report.ForDate(svc.Sessions(), date)

	fd := int(os.Stdout.Fd())
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	if reportPlain {
		fmt.Fprint(out, report.Plain(day, width))
		return nil
	}
	fmt.Fprint(out, report.Render(day, width, term.IsTerminal(fd)))
	return nil
}

func exportCSV(out io.Writer, path string, sessions []model.Session) error {
	if path == "-" {
		return report.WriteCSV(out, sessions)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, sessions); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %d sessions to %s\n", len(sessions), path)
	return nil
}

func runSessionsClear(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var removed int
	err = env.mutate(func(svc *app.Service) error {
		n := len(svc.Sessions())
		if n > 0 && !clearYes {
			return fmt.Errorf("refusing to delete %d sessions without --yes", n)
		}
		removed, err = svc.ClearSessions()
		return err
	})
	if errors.Is(err, app.ErrNoSessions) {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions to clear.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d sessions\n", removed)
	return nil
}
