// ABOUTME: Export command for generating GeoJSON output
// ABOUTME: Writes geotagged photos as a FeatureCollection for mapping tools

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/geojson"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export geotagged photos as GeoJSON",
	Long: `Export geotagged photos as a GeoJSON FeatureCollection. Untagged
photos are skipped.

Examples:
  geosnap export
  geosnap export --output photos.geojson`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "geojson" {
			return fmt.Errorf("unsupported format: %s (use 'geojson')", format)
		}

		records, err := snap.ListImages()
		if err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}

		fc := geojson.FromRecords(records)
		if len(fc.Features) == 0 {
			return fmt.Errorf("no geotagged photos to export")
		}

		jsonBytes, err := fc.ToJSONIndent()
		if err != nil {
			return fmt.Errorf("failed to generate GeoJSON: %w", err)
		}

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			if err := os.WriteFile(output, jsonBytes, 0644); err != nil { //nolint:gosec // 0644 is intentional for data export files
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d photos to %s\n", len(fc.Features), output)
		} else {
			fmt.Println(string(jsonBytes))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "geojson", "output format (geojson)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
