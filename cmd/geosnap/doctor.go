// ABOUTME: Environment diagnostics command
// ABOUTME: Reports permission, camera, location, and storage health

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check permissions, camera, and location availability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		state := snap.PermissionSnapshot(ctx)
		if request, _ := cmd.Flags().GetBool("request"); request && !state.AllGranted() {
			state = snap.Gate.RequestAll(ctx)
		}
		fmt.Println("Permissions:")
		fmt.Printf("  camera:    %s\n", ui.FormatPermission(state.Camera))
		fmt.Printf("  location:  %s\n", ui.FormatPermission(state.Location))

		fmt.Println("Location:")
		if snap.Tracker.IsAvailable(ctx) {
			fmt.Printf("  provider:  %s\n", color.GreenString("available"))
		} else {
			fmt.Printf("  provider:  %s\n", color.YellowString("unavailable"))
		}
		if pos, ok := snap.Tracker.Latest(); ok {
			fmt.Printf("  last fix:  %s (%s)\n", ui.FormatPosition(&pos), ui.FormatRelativeTime(pos.ObservedAt))
		} else {
			fmt.Println("  last fix:  none")
		}

		fmt.Println("Storage:")
		fmt.Printf("  media:     %s\n", snap.Store.Dir())
		records, err := snap.ListImages()
		if err != nil {
			fmt.Printf("  records:   %s\n", color.RedString("unreadable: %v", err))
		} else {
			fmt.Printf("  records:   %d\n", len(records))
		}
		if snap.Journal == nil {
			fmt.Printf("  journal:   %s\n", color.YellowString("unavailable"))
		} else {
			fmt.Printf("  journal:   %s\n", color.GreenString("ok"))
		}

		return nil
	},
}

func init() {
	doctorCmd.Flags().Bool("request", false, "prompt for missing permissions before reporting")

	rootCmd.AddCommand(doctorCmd)
}
