package cli

import (
	"fmt"

	scheduleCommands "github.com/felixgeelhaar/tempora/internal/scheduling/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Book all pending tasks into free slots",
	Long: `Plan the day: every pending task is placed into the best free slot
within your working hours, highest priority first. Tasks that do not
fit anywhere in the look-ahead horizon stay pending and raise a
notification.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		result, err := app.ScheduleTaskHandler.HandlePlan(cmd.Context(), scheduleCommands.PlanDayCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("planning failed: %w", err)
		}

		if len(result.Scheduled) == 0 && len(result.Unscheduled) == 0 {
			fmt.Println("Nothing to plan.")
			return nil
		}

		for _, t := range result.Scheduled {
			fmt.Printf("%s  %s  @ %s\n", shortID(t.ID()), t.Title(),
				formatWindow(*t.ScheduledStart(), *t.ScheduledEnd()))
		}
		for _, t := range result.Unscheduled {
			fmt.Printf("%s  %s  (no slot found)\n", shortID(t.ID()), t.Title())
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <task-id>",
	Short: "Book one task into its best free slot",
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

		t, err := app.ScheduleTaskHandler.Handle(cmd.Context(), scheduleCommands.ScheduleTaskCommand{
			TaskID: taskID,
		})
		if err != nil {
			return fmt.Errorf("scheduling failed: %w", err)
		}

		if !t.HasWindow() {
			fmt.Printf("No free slot for %q within the look-ahead horizon.\n", t.Title())
			return nil
		}
		fmt.Printf("Scheduled %q @ %s\n", t.Title(),
			formatWindow(*t.ScheduledStart(), *t.ScheduledEnd()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd, scheduleCmd)
}
