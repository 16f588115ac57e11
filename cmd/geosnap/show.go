// ABOUTME: Record detail command
// ABOUTME: Shows the full metadata for a single stored photo

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/store"
	"github.com/harper/geosnap/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a stored photo's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := snap.GetImage(args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("photo '%s' not found", args[0])
			}
			return fmt.Errorf("failed to load record: %w", err)
		}

		fmt.Print(ui.FormatRecordDetail(rec))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
