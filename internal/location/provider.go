// ABOUTME: Platform location API boundary and built-in providers
// ABOUTME: One-shot fix plus push subscription, with accuracy/timeout/distance options

package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harper/geosnap/internal/models"
)

// ErrUnavailable is returned when no fix arrives within the allowed time.
var ErrUnavailable = errors.New("location unavailable")

// ErrDenied is returned when the location permission is revoked mid-call.
var ErrDenied = errors.New("location permission denied")

// FixOptions configures a one-shot position query.
type FixOptions struct {
	// Timeout bounds how long the provider may spend acquiring a fix.
	Timeout time.Duration
	// HighAccuracy requests a full-accuracy fix (GPS rather than network).
	HighAccuracy bool
}

// WatchOptions configures a push subscription.
type WatchOptions struct {
	// MinDistanceMeters is the movement threshold between updates.
	MinDistanceMeters float64
	// MinInterval is the elapsed-time threshold between updates.
	MinInterval time.Duration
}

// Provider is the platform location API. WatchPosition delivers updates via
// onUpdate until ctx is cancelled; delivery errors go to onError without
// ending the subscription.
type Provider interface {
	CurrentPosition(ctx context.Context, opts FixOptions) (*models.Position, error)
	WatchPosition(ctx context.Context, opts WatchOptions, onUpdate func(*models.Position), onError func(error))
}

// EnvProvider reads the device position from the GEOSNAP_FIX environment
// variable ("lat,lng" or "lat,lng,alt"). It stands in for a real positioning
// service on hosts without one; an unset variable reads as no coverage.
type EnvProvider struct{}

const fixEnvVar = "GEOSNAP_FIX"

// CurrentPosition parses GEOSNAP_FIX, observed now.
func (p *EnvProvider) CurrentPosition(ctx context.Context, _ FixOptions) (*models.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return parseFixEnv()
}

// WatchPosition polls GEOSNAP_FIX every MinInterval until ctx is cancelled.
func (p *EnvProvider) WatchPosition(ctx context.Context, opts WatchOptions, onUpdate func(*models.Position), onError func(error)) {
	interval := opts.MinInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pos, err := parseFixEnv()
			if err != nil {
				onError(err)
				continue
			}
			onUpdate(pos)
		}
	}
}

func parseFixEnv() (*models.Position, error) {
	raw := os.Getenv(fixEnvVar)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrUnavailable, fixEnvVar)
	}

	parts := strings.Split(raw, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: invalid %s value %q", ErrUnavailable, fixEnvVar, raw)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude in %s: %v", ErrUnavailable, fixEnvVar, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude in %s: %v", ErrUnavailable, fixEnvVar, err)
	}
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	pos := models.NewPosition(lat, lng)
	if len(parts) == 3 {
		alt, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err == nil {
			pos.Altitude = &alt
		}
	}
	return pos, nil
}
