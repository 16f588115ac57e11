// ABOUTME: Photo remove command
// ABOUTME: Deletes a stored photo and its metadata

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/store"
)

var removeCmd = &cobra.Command{
	Use:     "remove <key>",
	Aliases: []string{"rm"},
	Short:   "Remove a stored photo and its metadata",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		rec, err := snap.GetImage(key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("photo '%s' not found", key)
			}
			return fmt.Errorf("failed to load record: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			fmt.Printf("Remove '%s' and its image file? [y/N] ", key)
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := snap.DeleteImage(rec); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to remove photo: %w", err)
		}

		color.Green("✓ Removed %s", key)
		return nil
	},
}

func init() {
	removeCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}
