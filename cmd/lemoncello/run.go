package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lemoncello/model"
	"lemoncello/timer"
)

var (
	runTask        string
	runDescription string
	runAuto        bool
	runCall        bool
)

var runCmd = &cobra.Command{
	Use:   "run [block]",
	Short: "Run a block in the foreground without the interactive view",
	Long: `Run a block by name or id. Without a block the quick start block runs.

Phase changes wait for input: Enter continues, "w" keeps working through a
break, "p" pauses or resumes and "s" stops. With --auto every phase change is
accepted. Ctrl+C stops the timer and logs the time worked.

With --call an open-ended call is tracked instead of a block: "s" or Ctrl+C
logs it and "x" discards it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runTask, "task", "t", "", "task to attach, by id or title")
	runCmd.Flags().StringVarP(&runDescription, "description", "d", "", "what you are working on")
	runCmd.Flags().BoolVar(&runAuto, "auto", false, "accept every phase change without asking")
	runCmd.Flags().BoolVar(&runCall, "call", false, "track a call instead of running a block")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, notice, err := env.service()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if notice != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), notice)
	}

	if runCall && len(args) > 0 {
		return fmt.Errorf("--call does not take a block")
	}
	if runCall && runTask != "" {
		return fmt.Errorf("--call does not take a task")
	}
	block := model.QuickStartBlock()
	if len(args) == 1 {
		block, err = svc.ResolveBlock(args[0])
		if err != nil {
			return err
		}
	}
	var taskID, taskName string
	if runTask != "" {
		task, err := svc.ResolveTask(runTask)
		if err != nil {
			return fmt.Errorf("%w: %q", err, runTask)
		}
		taskID, taskName = task.ID, task.Title
	}

	logger := cliLogger(cmd.ErrOrStderr())
	engine := timer.New(timer.Config{
		TickInterval: env.cfg.Interval(),
		MaxMinimized: env.cfg.Timer.MaxMinimized,
		Notifier:     env.notifier(logger),
		WakeLock:     env.wakeLock(logger),
		Sink:         env.recordSink(svc),
		Logger:       logger,
	})
	defer engine.Close()
	events := engine.Subscribe(256)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runCall {
		return trackCall(ctx, out, engine, readAnswers(ctx, cmd.InOrStdin()))
	}

	if !engine.Start(block, taskID, taskName) {
		return fmt.Errorf("could not start %q", block.Name)
	}
	if runDescription != "" {
		engine.UpdateWorkDescription(runDescription)
	}
	fmt.Fprintf(out, "Started %s (%s)\n", block.Name, describeBlock(block))

	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	go engine.Run(tickCtx)

	var answers <-chan string
	if !runAuto {
		answers = readAnswers(ctx, cmd.InOrStdin())
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return stopRun(out, engine)
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Type {
			case timer.EventTransition:
				announceTransition(out, event.Timer)
				if runAuto {
					engine.ConfirmTransition()
				}
			case timer.EventCompleted:
				if event.Record != nil {
					fmt.Fprintf(out, "Completed %s: %s logged\n", event.Record.BlockName, minutesText(event.Record.TotalWorkMinutes))
				}
				return nil
			}
		case answer, ok := <-answers:
			if !ok {
				answers = nil
				continue
			}
			if done, err := handleAnswer(out, engine, answer); done || err != nil {
				return err
			}
		}
	}
}

func handleAnswer(out io.Writer, engine *timer.Engine, answer string) (bool, error) {
	switch answer {
	case "", "y":
		engine.ConfirmTransition()
	case "w":
		if engine.KeepWorking() {
			fmt.Fprintf(out, "Keeping on; %d min of rest owed\n", engine.Active().AccumulatedRest)
		}
	case "p":
		if engine.Pause() {
			fmt.Fprintln(out, "Paused")
		} else if engine.Resume() {
			fmt.Fprintln(out, "Resumed")
		}
	case "s":
		return true, stopRun(out, engine)
	default:
		fmt.Fprintf(out, "Unknown answer %q (Enter, w, p or s)\n", answer)
	}
	return false, nil
}

func stopRun(out io.Writer, engine *timer.Engine) error {
	active := engine.Active()
	record, ok := engine.StopWithDescription(active.Description, "")
	if !ok {
		return nil
	}
	fmt.Fprintf(out, "Stopped %s after %s\n", record.BlockName, minutesText(record.TotalWorkMinutes))
	return nil
}

func announceTransition(out io.Writer, t timer.Timer) {
	switch t.Pending {
	case timer.TransitionWorkToBreak:
		fmt.Fprintf(out, "Break time: %s\n", minutesText(t.Remaining/60))
	case timer.TransitionBreakToWork:
		fmt.Fprintf(out, "Back to work: cycle %d\n", t.Cycle+1)
	}
	if !runAuto {
		fmt.Fprintln(out, "Enter to continue, w to keep working, s to stop")
	}
}

// trackCall counts a call up until it is stopped, cancelled or interrupted.
func trackCall(ctx context.Context, out io.Writer, engine *timer.Engine, answers <-chan string) error {
	engine.StartCall()
	fmt.Fprintln(out, "Call started: s logs it, x discards it")

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return stopCall(out, engine)
		case answer, ok := <-answers:
			if !ok {
				answers = nil
				continue
			}
			switch answer {
			case "s":
				return stopCall(out, engine)
			case "x":
				if engine.CancelCall() {
					fmt.Fprintln(out, "Call cancelled; nothing was logged")
				}
				return nil
			default:
				fmt.Fprintf(out, "Unknown answer %q (s or x)\n", answer)
			}
		}
	}
}

func stopCall(out io.Writer, engine *timer.Engine) error {
	record, ok := engine.StopCall(runDescription)
	if !ok {
		return nil
	}
	fmt.Fprintf(out, "Call logged: %s\n", minutesText(record.TotalWorkMinutes))
	return nil
}

// readAnswers delivers trimmed input lines until r is exhausted or ctx is done.
func readAnswers(ctx context.Context, r io.Reader) <-chan string {
	answers := make(chan string)
	go func() {
		defer close(answers)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case answers <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()
	return answers
}

func describeBlock(b model.Block) string {
	switch b.Kind {
	case model.KindRest:
		return fmt.Sprintf("%d min rest", b.EffectiveRest())
	case model.KindMeeting:
		return fmt.Sprintf("%d min meeting", b.EffectiveWork())
	}
	if cycles := b.EffectiveCycles(); cycles > 1 && b.ID != model.QuickStartBlockID {
		return fmt.Sprintf("%d/%d min × %d", b.EffectiveWork(), b.EffectiveRest(), cycles)
	}
	return fmt.Sprintf("%d/%d min", b.EffectiveWork(), b.EffectiveRest())
}

func minutesText(n int) string {
	return timer.FormatElapsed(time.Duration(n) * time.Minute)
}
