// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for records, positions, and permissions

package ui

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/harper/geosnap/internal/models"
)

// FormatPosition formats a position for terminal display.
func FormatPosition(pos *models.Position) string {
	if pos == nil {
		return color.New(color.Faint).Sprint("(untagged)")
	}
	coords := fmt.Sprintf("(%.4f, %.4f)", pos.Latitude, pos.Longitude)
	if pos.Accuracy != nil {
		coords = fmt.Sprintf("%s ±%.0fm", coords, *pos.Accuracy)
	}
	return color.CyanString(coords)
}

// FormatRecord formats a stored record for the gallery listing.
func FormatRecord(rec *models.StoredRecord) string {
	dims := fmt.Sprintf("%dx%d", rec.PixelWidth, rec.PixelHeight)
	relTime := FormatRelativeTime(rec.CapturedAt)

	return fmt.Sprintf("%s  %s %s - %s",
		color.GreenString(rec.Key),
		color.New(color.Faint).Sprint(dims),
		FormatPosition(rec.Position),
		color.New(color.Faint).Sprint(relTime))
}

// FormatRecordDetail formats the full record for the detail view.
func FormatRecordDetail(rec *models.StoredRecord) string {
	out := fmt.Sprintf("%s\n", color.GreenString(rec.Key))
	out += fmt.Sprintf("  image:       %s\n", rec.StoragePath)
	out += fmt.Sprintf("  dimensions:  %dx%d\n", rec.PixelWidth, rec.PixelHeight)
	out += fmt.Sprintf("  size:        %s\n", FormatByteSize(rec.ByteSize))
	out += fmt.Sprintf("  captured:    %s (%s)\n", rec.CapturedAt.Format(time.RFC3339), FormatRelativeTime(rec.CapturedAt))
	out += fmt.Sprintf("  saved:       %s\n", rec.SavedAt.Format(time.RFC3339))
	out += fmt.Sprintf("  position:    %s\n", FormatPosition(rec.Position))
	if rec.Position != nil {
		out += fmt.Sprintf("  observed:    %s\n", rec.Position.ObservedAt.Format(time.RFC3339))
	}
	if len(rec.RawTags) > 0 {
		out += fmt.Sprintf("  raw tags:    %d fields\n", len(rec.RawTags))
	}
	return out
}

// FormatPermission formats a three-way status with a color cue.
func FormatPermission(status models.Status) string {
	switch status {
	case models.StatusGranted:
		return color.GreenString(string(status))
	case models.StatusBlocked:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}

// FormatByteSize renders a byte count in human units.
func FormatByteSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	if diff < 30*24*time.Hour {
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("Jan 2, 2006")
}
