// ABOUTME: Capture history command
// ABOUTME: Shows recent capture attempts from the journal

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/journal"
	"github.com/harper/geosnap/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent capture attempts",
	Long: `Show recent capture attempts, newest first, including failed ones
with their failure reason.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snap.Journal == nil {
			return fmt.Errorf("capture journal is unavailable")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := snap.Journal.Recent(limit)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No capture attempts recorded yet.")
			return nil
		}

		for _, e := range entries {
			outcome := color.GreenString(string(e.Outcome))
			detail := e.StorageKey
			if e.Outcome == journal.OutcomeFailed {
				outcome = color.RedString(string(e.Outcome))
				detail = e.Failure
			}
			fmt.Printf("%s  %-6s %s %s\n",
				ui.FormatRelativeTime(e.StartedAt),
				outcome,
				color.New(color.Faint).Sprintf("%.1fs", e.Duration().Seconds()),
				detail)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of attempts to show")

	rootCmd.AddCommand(historyCmd)
}
