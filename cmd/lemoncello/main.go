// Package main implements the lemoncello CLI.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lemoncello/app"
	"lemoncello/config"
	"lemoncello/model"
	"lemoncello/phrase"
	"lemoncello/platform"
	"lemoncello/report"
	"lemoncello/store"
	"lemoncello/timer"
	"lemoncello/tui"
)

var (
	configPath string
	statePath  string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lemoncello",
	Short: "Focus timer with work/rest blocks, tasks and daily reports",
	Long: `lemoncello runs pomodoro-style focus blocks in the terminal.

Without a subcommand it opens the interactive timer. When stdout is not a
terminal it prints today's summary instead.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lemoncello/config.toml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "state file, overrides state-file from the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log timer activity to stderr")
}

// env is what every command needs: the resolved config and the state file.
type env struct {
	cfg  *config.Config
	file *store.File
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if statePath != "" {
		cfg.StateFile = statePath
	}
	return &env{cfg: cfg, file: store.Open(cfg.StateFile)}, nil
}

// service loads the state, seeding the default blocks into an empty library.
// The returned notice is non-empty when the state was recovered from a backup.
func (e *env) service() (*app.Service, string, error) {
	state, notice, err := e.file.Load()
	if err != nil {
		return nil, "", fmt.Errorf("load state %s: %w", e.file.Path(), err)
	}
	svc := app.NewService(state)
	if svc.SeedDefaultBlocks() {
		if err := e.file.Save(svc.State()); err != nil {
			return nil, "", fmt.Errorf("save state: %w", err)
		}
	}
	return svc, notice, nil
}

// mutate applies fn to the stored state and writes it back when fn succeeds.
func (e *env) mutate(fn func(*app.Service) error) error {
	return e.file.Update(func(state *model.AppState) error {
		svc := app.NewService(*state)
		svc.SeedDefaultBlocks()
		if err := fn(svc); err != nil {
			return err
		}
		*state = svc.State()
		return nil
	})
}

// recordSink appends engine records to svc and persists them immediately.
func (e *env) recordSink(svc *app.Service) timer.SessionSink {
	return timer.SinkFunc(func(s model.Session) error {
		svc.RecordSession(s)
		return e.file.Save(svc.State())
	})
}

func (e *env) notifier(logger *log.Logger) *platform.Notifier {
	return platform.NewNotifier(platform.NotifierConfig{
		Desktop: e.cfg.Notify.Enabled,
		Bell:    e.cfg.Notify.Bell,
		Logger:  logger,
	})
}

func (e *env) wakeLock(logger *log.Logger) timer.WakeLock {
	if !e.cfg.WakeLock.Enabled {
		return nil
	}
	return platform.NewInhibitor(logger)
}

func cliLogger(w io.Writer) *log.Logger {
	if !verbose {
		w = io.Discard
	}
	return log.New(w, "lemoncello: ", log.LstdFlags)
}

func runRoot(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		svc, notice, err := env.service()
		if err != nil {
			return err
		}
		if notice != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), notice)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Plain(report.Today(svc.Sessions(), time.Now()), 80))
		return nil
	}
	return runTUI(env)
}

func runTUI(env *env) error {
	closeLog, err := setupTUILogging(env.cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	svc, notice, err := env.service()
	if err != nil {
		return err
	}
	if notice != "" {
		log.Print(notice)
	}

	logger := log.Default()
	notifier := env.notifier(logger)
	engine := timer.New(timer.Config{
		TickInterval: env.cfg.Interval(),
		MaxMinimized: env.cfg.Timer.MaxMinimized,
		Notifier:     notifier,
		WakeLock:     env.wakeLock(logger),
		Sink:         env.recordSink(svc),
		Logger:       logger,
	})
	defer engine.Close()

	m := tui.NewModel(tui.Config{
		Service:      svc,
		Engine:       engine,
		StatePath:    env.file.Path(),
		Notifier:     notifier,
		Phrases:      phrase.NewPicker(uint64(time.Now().UnixNano())),
		TickInterval: env.cfg.Interval(),
		Status:       notice,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// setupTUILogging routes the standard logger away from the terminal the TUI owns.
func setupTUILogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "lemoncello")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return func() { _ = f.Close() }, nil
}
