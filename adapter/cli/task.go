package cli

import (
	"fmt"
	"strings"
	"time"

	taskCommands "github.com/felixgeelhaar/tempora/internal/tasks/application/commands"
	taskQueries "github.com/felixgeelhaar/tempora/internal/tasks/application/queries"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a task",
	Long: `Add a task, either from structured flags or from free-form text.

Free-form text is parsed by the assistant when one is configured;
without one the text becomes the title and defaults apply.

Examples:
  tempora task add "prep the client deck by Friday, about an hour"
  tempora task add --title "Review PR" --estimate 30 --energy high
  tempora task add --title "File taxes" --deadline 2026-09-01T17:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		estimate, _ := cmd.Flags().GetInt("estimate")
		energy, _ := cmd.Flags().GetString("energy")
		deadlineStr, _ := cmd.Flags().GetString("deadline")

		if title == "" && len(args) == 0 {
			return fmt.Errorf("provide free-form text or --title")
		}

		createCmd := taskCommands.CreateTaskCommand{
			UserID:          app.CurrentUserID,
			Text:            strings.Join(args, " "),
			Title:           title,
			Description:     description,
			Category:        category,
			EstimateMinutes: estimate,
			Energy:          energy,
		}
		if deadlineStr != "" {
			deadline, err := parseTimeFlag(deadlineStr)
			if err != nil {
				return err
			}
			createCmd.Deadline = &deadline
		}

		t, err := app.CreateTaskHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Println("Task created!")
		fmt.Printf("  ID:       %s\n", shortID(t.ID()))
		fmt.Printf("  Title:    %s\n", t.Title())
		fmt.Printf("  Priority: %d\n", t.Priority().Int())
		fmt.Printf("  Estimate: %d min\n", t.Estimate().Minutes())
		if t.Deadline() != nil {
			fmt.Printf("  Deadline: %s\n", t.Deadline().Local().Format("Mon, Jan 2 15:04"))
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		all, _ := cmd.Flags().GetBool("all")
		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), taskQueries.ListTasksQuery{
			UserID:     app.CurrentUserID,
			ActiveOnly: !all,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}

		for _, t := range tasks {
			printTaskLine(t)
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}
		t, err := app.GetTaskHandler.Handle(cmd.Context(), taskID)
		if err != nil {
			return err
		}

		fmt.Printf("ID:       %s\n", t.ID())
		fmt.Printf("Title:    %s\n", t.Title())
		if t.Description() != "" {
			fmt.Printf("Notes:    %s\n", t.Description())
		}
		if t.Category() != "" {
			fmt.Printf("Category: %s\n", t.Category())
		}
		fmt.Printf("Status:   %s\n", t.Status())
		fmt.Printf("Priority: %d\n", t.Priority().Int())
		fmt.Printf("Estimate: %d min\n", t.Estimate().Minutes())
		fmt.Printf("Energy:   %s\n", t.Energy())
		if t.Deadline() != nil {
			fmt.Printf("Deadline: %s\n", t.Deadline().Local().Format("Mon, Jan 2 15:04"))
		}
		if t.HasWindow() {
			fmt.Printf("Window:   %s\n", formatWindow(*t.ScheduledStart(), *t.ScheduledEnd()))
		}
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a task",
	Long: `Mark a task as completed.

Finishing a scheduled task early frees its remaining window; the rest
of today's plan is pulled forward automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}
		t, err := app.CompleteTaskHandler.Handle(cmd.Context(), taskCommands.CompleteTaskCommand{TaskID: taskID})
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		fmt.Printf("Completed %q\n", t.Title())
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Long: `Update a task's fields. Only flags you pass are changed.

Raising the priority or tightening the deadline of a scheduled task
re-plans the rest of the day.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		updateCmd := taskCommands.UpdateTaskCommand{TaskID: taskID}
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			updateCmd.Title = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			updateCmd.Description = &v
		}
		if flags.Changed("category") {
			v, _ := flags.GetString("category")
			updateCmd.Category = &v
		}
		if flags.Changed("estimate") {
			v, _ := flags.GetInt("estimate")
			updateCmd.EstimateMinutes = &v
		}
		if flags.Changed("energy") {
			v, _ := flags.GetString("energy")
			updateCmd.Energy = &v
		}
		if flags.Changed("priority") {
			v, _ := flags.GetInt("priority")
			updateCmd.Priority = &v
		}
		if flags.Changed("deadline") {
			v, _ := flags.GetString("deadline")
			deadline, err := parseTimeFlag(v)
			if err != nil {
				return err
			}
			updateCmd.Deadline = &deadline
		}
		if flags.Changed("clear-deadline") {
			updateCmd.ClearDeadline, _ = flags.GetBool("clear-deadline")
		}

		t, err := app.UpdateTaskHandler.Handle(cmd.Context(), updateCmd)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		fmt.Printf("Updated %q\n", t.Title())
		return nil
	},
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}
		if err := app.CancelTaskHandler.Handle(cmd.Context(), taskCommands.CancelTaskCommand{TaskID: taskID}); err != nil {
			return fmt.Errorf("failed to cancel task: %w", err)
		}
		fmt.Println("Task cancelled.")
		return nil
	},
}

func printTaskLine(t *task.Task) {
	line := fmt.Sprintf("%s  [%d] %-8s %s", shortID(t.ID()), t.Priority().Int(), t.Status(), t.Title())
	if t.HasWindow() {
		line += "  @ " + formatWindow(*t.ScheduledStart(), *t.ScheduledEnd())
	} else if t.Deadline() != nil {
		line += "  due " + t.Deadline().Local().Format("Jan 2 15:04")
	}
	fmt.Println(line)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func formatWindow(start, end time.Time) string {
	return fmt.Sprintf("%s-%s",
		start.Local().Format("Mon Jan 2 15:04"),
		end.Local().Format("15:04"))
}

// parseTimeFlag accepts a few common layouts, interpreted in local time.
func parseTimeFlag(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q, use YYYY-MM-DDTHH:MM", value)
}

func init() {
	taskAddCmd.Flags().String("title", "", "task title")
	taskAddCmd.Flags().String("description", "", "longer notes")
	taskAddCmd.Flags().String("category", "", "category, e.g. client or admin")
	taskAddCmd.Flags().Int("estimate", 0, "estimated minutes")
	taskAddCmd.Flags().String("energy", "", "required energy: high, medium or low")
	taskAddCmd.Flags().String("deadline", "", "deadline (YYYY-MM-DDTHH:MM)")

	taskListCmd.Flags().Bool("all", false, "include completed and cancelled tasks")

	taskUpdateCmd.Flags().String("title", "", "task title")
	taskUpdateCmd.Flags().String("description", "", "longer notes")
	taskUpdateCmd.Flags().String("category", "", "category")
	taskUpdateCmd.Flags().Int("estimate", 0, "estimated minutes")
	taskUpdateCmd.Flags().String("energy", "", "required energy: high, medium or low")
	taskUpdateCmd.Flags().Int("priority", 0, "priority 1-5")
	taskUpdateCmd.Flags().String("deadline", "", "deadline (YYYY-MM-DDTHH:MM)")
	taskUpdateCmd.Flags().Bool("clear-deadline", false, "remove the deadline")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskDoneCmd, taskUpdateCmd, taskCancelCmd)
	rootCmd.AddCommand(taskCmd)
}
