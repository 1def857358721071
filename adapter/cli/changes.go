package cli

import (
	"fmt"

	scheduleQueries "github.com/felixgeelhaar/tempora/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show recent automatic schedule changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		changes, err := app.ListChangesHandler.Handle(cmd.Context(), scheduleQueries.ListChangesQuery{
			UserID: app.CurrentUserID,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list changes: %w", err)
		}
		if len(changes) == 0 {
			fmt.Println("No schedule changes yet.")
			return nil
		}

		for _, change := range changes {
			fmt.Printf("%s  %s  (task %s)\n",
				change.CreatedAt().Local().Format("Jan 2 15:04"),
				change.Trigger(), shortID(change.AffectedTaskID()))
			for _, move := range change.Moves() {
				fmt.Printf("  %s  %s -> %s\n", shortID(move.TaskID),
					formatWindow(move.PreviousStart, move.PreviousEnd),
					formatWindow(move.NewStart, move.NewEnd))
			}
		}
		return nil
	},
}

func init() {
	changesCmd.Flags().Int("limit", scheduleQueries.DefaultChangeLimit, "maximum changes to show")
	rootCmd.AddCommand(changesCmd)
}
