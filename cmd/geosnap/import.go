// ABOUTME: Gallery import command
// ABOUTME: Brings an existing image file through the capture pipeline

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an existing image into the gallery",
	Long: `Import an image file into the gallery. The image is geotagged with
the current device position, same as a webcam capture, and its embedded
metadata tags are preserved alongside the record.

Examples:
  geosnap import ~/Pictures/beach.jpg
  geosnap import screenshot.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := snap.CaptureFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %s", rec.Key)
		fmt.Printf("  %dx%d %s %s\n",
			rec.PixelWidth, rec.PixelHeight,
			ui.FormatByteSize(rec.ByteSize),
			ui.FormatPosition(rec.Position))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
