package cli

import (
	"fmt"

	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Manage scheduling preferences",
	Long: `Manage the stored preferences the scheduler plans around:
working hours, energy rhythm, buffer and look-ahead horizon.`,
}

var memorySetCmd = &cobra.Command{
	Use:   "set <type> <key> <value>",
	Short: "Set one preference entry",
	Long: `Set one preference entry.

Types and keys:
  working_hours  start_hour, end_hour, max_extension_hours
  energy_map     an HH:MM-HH:MM range, value high/medium/low
  preference     timezone, buffer_minutes, max_days_ahead

Examples:
  tempora memory set working_hours start_hour 8
  tempora memory set energy_map 09:00-12:00 high
  tempora memory set preference timezone Europe/Berlin`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		memoryType := memoryDomain.MemoryType(args[0])
		switch memoryType {
		case memoryDomain.MemoryTypeWorkingHours, memoryDomain.MemoryTypeEnergyMap, memoryDomain.MemoryTypePreference:
		default:
			return fmt.Errorf("unknown memory type %q", args[0])
		}

		if err := app.MemoryService.Set(cmd.Context(), app.CurrentUserID, memoryType, args[1], args[2]); err != nil {
			return fmt.Errorf("failed to store preference: %w", err)
		}
		fmt.Printf("Stored %s %s = %s\n", memoryType, args[1], args[2])
		return nil
	},
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored preferences and effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		entries, err := app.MemoryService.List(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		for _, e := range entries {
			fmt.Printf("%-14s %-20s %s\n", e.Type(), e.Key(), e.Value())
		}

		memory, err := app.MemoryService.Load(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to assemble settings: %w", err)
		}
		fmt.Println()
		fmt.Printf("Effective: %02d:00-%02d:00 %s, buffer %dm, horizon %dd, extension %dh\n",
			memory.WorkingHours.StartHour, memory.WorkingHours.EndHour, memory.Timezone,
			memory.BufferMinutes, memory.MaxDaysAhead, memory.WorkingHours.MaxExtensionHours)
		return nil
	},
}

func init() {
	memoryCmd.AddCommand(memorySetCmd, memoryShowCmd)
	rootCmd.AddCommand(memoryCmd)
}
