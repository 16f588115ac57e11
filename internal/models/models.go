// ABOUTME: Core data models for positions, captured images, and stored records
// ABOUTME: Provides constructor functions and validation for capture entities

package models

import (
	"fmt"
	"math"
	"time"
)

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// Position is a single resolved geographic fix. Immutable once constructed;
// produced only by the location tracker.
type Position struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   *float64  `json:"altitude,omitempty"`
	Accuracy   *float64  `json:"accuracy_meters,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewPosition creates a position observed now.
func NewPosition(lat, lng float64) *Position {
	return &Position{
		Latitude:   lat,
		Longitude:  lng,
		ObservedAt: time.Now(),
	}
}

// NewPositionObservedAt creates a position with a specific observation time.
func NewPositionObservedAt(lat, lng float64, observedAt time.Time) *Position {
	return &Position{
		Latitude:   lat,
		Longitude:  lng,
		ObservedAt: observedAt,
	}
}

// Age returns how stale the fix is relative to now.
func (p *Position) Age() time.Duration {
	return time.Since(p.ObservedAt)
}

// FresherThan reports whether the fix was observed within the given window.
func (p *Position) FresherThan(window time.Duration) bool {
	return p.Age() <= window
}

// CapturedImage is a photo taken or imported during one capture flow.
// Position is attached after construction; capture completes before or
// concurrently with the location fix.
type CapturedImage struct {
	ContentRef  string         `json:"content_ref"`
	PixelWidth  int            `json:"pixel_width"`
	PixelHeight int            `json:"pixel_height"`
	ByteSize    int64          `json:"byte_size,omitempty"`
	CapturedAt  time.Time      `json:"captured_at"`
	Position    *Position      `json:"position,omitempty"`
	RawTags     map[string]any `json:"raw_tags,omitempty"`
}

// NewCapturedImage creates an untagged image captured now.
func NewCapturedImage(contentRef string, width, height int, byteSize int64) *CapturedImage {
	return &CapturedImage{
		ContentRef:  contentRef,
		PixelWidth:  width,
		PixelHeight: height,
		ByteSize:    byteSize,
		CapturedAt:  time.Now(),
	}
}

// Tagged reports whether a position has been attached.
func (c *CapturedImage) Tagged() bool {
	return c.Position != nil
}

// StoredRecord is the on-disk unit of truth: a captured image plus its
// storage key and save time. The image payload and metadata file exist or
// do not exist together.
type StoredRecord struct {
	CapturedImage
	Key         string    `json:"key"`
	StoragePath string    `json:"storage_path"`
	SavedAt     time.Time `json:"saved_at"`
}

// Capability identifies an OS-level grant the capture flow depends on.
type Capability string

const (
	CapabilityCamera   Capability = "camera"
	CapabilityLocation Capability = "location"
)

// Status is the platform's three-way permission outcome. Blocked is distinct
// from denied: it means the user must visit system settings, so collapsing
// the two loses real behavior.
type Status string

const (
	StatusGranted Status = "granted"
	StatusDenied  Status = "denied"
	StatusBlocked Status = "blocked"
)

// Granted reports whether the status permits use of the capability.
func (s Status) Granted() bool {
	return s == StatusGranted
}

// PermissionState is a point-in-time snapshot of both grants. Never cached:
// the underlying OS state can change outside the process.
type PermissionState struct {
	Camera   Status `json:"camera"`
	Location Status `json:"location"`
}

// AllGranted reports whether both capabilities are usable.
func (p PermissionState) AllGranted() bool {
	return p.Camera.Granted() && p.Location.Granted()
}
