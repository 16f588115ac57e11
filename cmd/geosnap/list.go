// ABOUTME: Gallery list command
// ABOUTME: Lists all stored records, newest capture first

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := snap.ListImages()
		if err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No photos yet. Use 'geosnap capture' to take one.")
			return nil
		}

		for _, rec := range records {
			fmt.Println(ui.FormatRecord(rec))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
