package cli

import (
	"fmt"

	scheduleQueries "github.com/felixgeelhaar/tempora/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Preview where a task of a given size would land",
	Long: `Preview the best free slot for a hypothetical task without booking
anything.

Examples:
  tempora slots --estimate 30
  tempora slots --estimate 60 --energy high --priority 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		estimate, _ := cmd.Flags().GetInt("estimate")
		priority, _ := cmd.Flags().GetInt("priority")
		energy, _ := cmd.Flags().GetString("energy")

		slot, found, err := app.FindSlotHandler.Handle(cmd.Context(), scheduleQueries.FindSlotQuery{
			UserID:          app.CurrentUserID,
			DurationMinutes: estimate,
			Priority:        priority,
			Energy:          energy,
		})
		if err != nil {
			return fmt.Errorf("slot search failed: %w", err)
		}
		if !found {
			fmt.Println("No free slot within the look-ahead horizon.")
			return nil
		}
		fmt.Printf("Best slot: %s\n", formatWindow(slot.Start, slot.End))
		return nil
	},
}

func init() {
	slotsCmd.Flags().Int("estimate", 30, "estimated minutes")
	slotsCmd.Flags().Int("priority", 3, "priority 1-5")
	slotsCmd.Flags().String("energy", "medium", "required energy: high, medium or low")
	rootCmd.AddCommand(slotsCmd)
}
