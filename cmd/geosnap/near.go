// ABOUTME: Spatial query command
// ABOUTME: Finds geotagged photos near a point using the r-tree index

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/geo"
	"github.com/harper/geosnap/internal/models"
	"github.com/harper/geosnap/internal/ui"
)

var nearCmd = &cobra.Command{
	Use:   "near <latitude> <longitude>",
	Short: "Find photos taken near a point",
	Long: `Find geotagged photos near a point. Untagged photos are never
returned.

With --radius, returns every photo within that many kilometers.
Without it, returns the --count closest photos.

Examples:
  geosnap near 41.8781 -87.6298 --radius 5
  geosnap near 41.8781 -87.6298 --count 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude: %w", err)
		}
		lng, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude: %w", err)
		}
		if err := models.ValidateCoordinates(lat, lng); err != nil {
			return err
		}

		records, err := snap.ListImages()
		if err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}

		byKey := make(map[string]*models.StoredRecord, len(records))
		for _, rec := range records {
			byKey[rec.Key] = rec
		}
		index := geo.FromRecords(records)

		var hits []*geo.Point
		if radius, _ := cmd.Flags().GetFloat64("radius"); radius > 0 {
			hits, err = index.SearchRadius(lat, lng, radius)
			if err != nil {
				return fmt.Errorf("failed to search index: %w", err)
			}
		} else {
			count, _ := cmd.Flags().GetInt("count")
			hits = index.Nearest(lat, lng, count)
		}

		if len(hits) == 0 {
			fmt.Println("No geotagged photos found near that point.")
			return nil
		}

		for _, hit := range hits {
			rec, ok := byKey[hit.Key]
			if !ok {
				continue
			}
			dist := geo.Haversine(lat, lng, hit.Lat, hit.Lng)
			fmt.Printf("%s %s\n",
				color.New(color.Faint).Sprintf("%6.2fkm", dist),
				ui.FormatRecord(rec))
		}
		return nil
	},
}

func init() {
	nearCmd.Flags().Float64P("radius", "r", 0, "search radius in kilometers")
	nearCmd.Flags().IntP("count", "n", 5, "number of nearest photos when no radius given")

	rootCmd.AddCommand(nearCmd)
}
