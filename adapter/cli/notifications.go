package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show scheduler notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		notifications, err := app.Notifier.List(cmd.Context(), app.CurrentUserID, limit)
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		if len(notifications) == 0 {
			fmt.Println("No notifications.")
			return nil
		}

		for _, n := range notifications {
			marker := " "
			if !n.IsRead() {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker,
				n.CreatedAt().Local().Format("Jan 2 15:04"), n.Message())
		}
		return nil
	},
}

func init() {
	notificationsCmd.Flags().Int("limit", 20, "maximum notifications to show")
	rootCmd.AddCommand(notificationsCmd)
}
