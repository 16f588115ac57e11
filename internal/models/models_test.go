// ABOUTME: Tests for core data models
// ABOUTME: Covers coordinate validation, freshness checks, and permission state

package models

import (
	"math"
	"testing"
	"time"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid chicago", 41.8781, -87.6298, false},
		{"valid equator", 0, 0, false},
		{"valid extremes", 90, 180, false},
		{"valid negative extremes", -90, -180, false},
		{"latitude too high", 90.1, 0, true},
		{"latitude too low", -90.1, 0, true},
		{"longitude too high", 0, 180.1, true},
		{"longitude too low", 0, -180.1, true},
		{"NaN latitude", math.NaN(), 0, true},
		{"NaN longitude", 0, math.NaN(), true},
		{"infinite latitude", math.Inf(1), 0, true},
		{"infinite longitude", 0, math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v, %v) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestPositionFresherThan(t *testing.T) {
	fresh := NewPositionObservedAt(41.8781, -87.6298, time.Now().Add(-2*time.Second))
	if !fresh.FresherThan(10 * time.Second) {
		t.Error("2s old fix should be fresher than 10s window")
	}

	stale := NewPositionObservedAt(41.8781, -87.6298, time.Now().Add(-30*time.Second))
	if stale.FresherThan(10 * time.Second) {
		t.Error("30s old fix should not be fresher than 10s window")
	}
}

func TestNewCapturedImageUntagged(t *testing.T) {
	img := NewCapturedImage("/tmp/photo.jpg", 1920, 1080, 123456)
	if img.Tagged() {
		t.Error("new captured image should have no position")
	}
	if img.CapturedAt.IsZero() {
		t.Error("captured_at should be set at construction")
	}

	img.Position = NewPosition(41.8781, -87.6298)
	if !img.Tagged() {
		t.Error("image should be tagged after position attach")
	}
}

func TestStatusGranted(t *testing.T) {
	if !StatusGranted.Granted() {
		t.Error("granted status should report granted")
	}
	if StatusDenied.Granted() {
		t.Error("denied status should not report granted")
	}
	if StatusBlocked.Granted() {
		t.Error("blocked status should not report granted")
	}
}

func TestPermissionStateAllGranted(t *testing.T) {
	tests := []struct {
		name  string
		state PermissionState
		want  bool
	}{
		{"both granted", PermissionState{Camera: StatusGranted, Location: StatusGranted}, true},
		{"camera denied", PermissionState{Camera: StatusDenied, Location: StatusGranted}, false},
		{"location blocked", PermissionState{Camera: StatusGranted, Location: StatusBlocked}, false},
		{"both denied", PermissionState{Camera: StatusDenied, Location: StatusDenied}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.AllGranted(); got != tt.want {
				t.Errorf("AllGranted() = %v, want %v", got, tt.want)
			}
		})
	}
}
