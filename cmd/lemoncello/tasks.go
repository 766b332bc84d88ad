package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lemoncello/app"
	"lemoncello/model"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "Manage tasks that timers can be attached to",
}

// tasks list
var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE:    runTasksList,
}

// tasks add
var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksAdd,
}

// tasks done
var tasksDoneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskCompleted(cmd, args[0], true)
	},
}

// tasks undone
var tasksUndoneCmd = &cobra.Command{
	Use:   "undone <task>",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskCompleted(cmd, args[0], false)
	},
}

// tasks rm
var tasksRmCmd = &cobra.Command{
	Use:     "rm <task>",
	Aliases: []string{"delete"},
	Short:   "Delete a task. Logged sessions keep its title",
	Args:    cobra.ExactArgs(1),
	RunE:    runTasksRm,
}

var (
	taskDescription string
	tasksShowAll    bool
)

func init() {
	tasksAddCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "task description")
	tasksListCmd.Flags().BoolVarP(&tasksShowAll, "all", "a", false, "include completed tasks")

	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksDoneCmd, tasksUndoneCmd, tasksRmCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, _, err := env.service()
	if err != nil {
		return err
	}

	tasks := svc.ActiveTasks()
	if tasksShowAll {
		tasks = svc.Tasks()
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}

	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		status := "open"
		if t.IsCompleted {
			status = "done"
		} else if svc.HasIncompleteSprint(t.ID) {
			status = "interrupted"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Title,
			status,
			minutesText(taskMinutes(svc.SessionsByTask(t.ID))),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), formatTable([]string{"#", "TITLE", "STATUS", "LOGGED"}, rows))
	return nil
}

func taskMinutes(sessions []model.Session) int {
	total := 0
	for _, s := range sessions {
		total += s.TotalWorkMinutes
	}
	return total
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var created model.Task
	err = env.mutate(func(svc *app.Service) error {
		created, err = svc.CreateTask(args[0], taskDescription)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", created.Title)
	return nil
}

func setTaskCompleted(cmd *cobra.Command, ref string, completed bool) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var task model.Task
	err = env.mutate(func(svc *app.Service) error {
		found, err := svc.ResolveTask(ref)
		if err != nil {
			return fmt.Errorf("%w: %q", err, ref)
		}
		if completed {
			task, err = svc.CompleteTask(found.ID)
		} else {
			task, err = svc.UncompleteTask(found.ID)
		}
		return err
	})
	if err != nil {
		return err
	}
	if completed {
		fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", task.Title)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", task.Title)
	}
	return nil
}

func runTasksRm(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var removed model.Task
	err = env.mutate(func(svc *app.Service) error {
		removed, err = svc.ResolveTask(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q", err, args[0])
		}
		return svc.DeleteTask(removed.ID)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", removed.Title)
	return nil
}
