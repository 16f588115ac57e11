// ABOUTME: Photo capture command
// ABOUTME: Runs one capture attempt and reports the stored record

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/capture"
	"github.com/harper/geosnap/internal/ui"
)

var captureCmd = &cobra.Command{
	Use:     "capture",
	Aliases: []string{"snap"},
	Short:   "Capture a geotagged photo from the webcam",
	Long: `Capture a photo from the webcam, attach the current device position
and timestamp, and persist it to the local gallery.

The photo is saved even when no position is available; it is stored
untagged rather than failing the capture.

Examples:
  geosnap capture
  geosnap capture --device 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := snap.Capture(cmd.Context())
		if err != nil {
			var perr *capture.PermissionError
			switch {
			case errors.As(err, &perr):
				return fmt.Errorf("%s permission is %s; check 'geosnap doctor'", perr.Capability, perr.Status)
			case errors.Is(err, capture.ErrBusy):
				return fmt.Errorf("another capture is already in flight")
			case errors.Is(err, capture.ErrNoDevice):
				return fmt.Errorf("no usable camera device: %w", err)
			}
			return fmt.Errorf("capture failed: %w", err)
		}

		color.Green("✓ Captured %s", rec.Key)
		fmt.Printf("  %s %s\n", ui.FormatPosition(rec.Position), rec.StoragePath)
		if rec.Position == nil {
			fmt.Println("  saved without a position (no fix available)")
		}
		return nil
	},
}

func init() {
	captureCmd.Flags().IntP("device", "d", 0, "camera device index")

	rootCmd.AddCommand(captureCmd)
}
