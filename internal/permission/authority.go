// ABOUTME: Platform permission authority boundary and built-in implementations
// ABOUTME: Static and environment-backed authorities for hosts without a broker

package permission

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/harper/geosnap/internal/models"
)

// Authority is the platform permission API. Check probes the current grant
// without user interaction; Request may show a native prompt (at most once
// per capability per call, a platform constraint).
type Authority interface {
	Check(ctx context.Context, cap models.Capability) (models.Status, error)
	Request(ctx context.Context, cap models.Capability) (models.Status, error)
}

// StaticAuthority answers every probe with a fixed status per capability.
// Used on hosts that have no permission broker (plain Linux desktops).
type StaticAuthority struct {
	Camera   models.Status
	Location models.Status
}

// AllGranted returns a StaticAuthority that grants everything.
func AllGranted() *StaticAuthority {
	return &StaticAuthority{Camera: models.StatusGranted, Location: models.StatusGranted}
}

func (a *StaticAuthority) status(cap models.Capability) (models.Status, error) {
	switch cap {
	case models.CapabilityCamera:
		return a.Camera, nil
	case models.CapabilityLocation:
		return a.Location, nil
	default:
		return models.StatusDenied, fmt.Errorf("unknown capability: %q", cap)
	}
}

// Check returns the fixed status for the capability.
func (a *StaticAuthority) Check(_ context.Context, cap models.Capability) (models.Status, error) {
	return a.status(cap)
}

// Request returns the fixed status; a static authority never prompts.
func (a *StaticAuthority) Request(_ context.Context, cap models.Capability) (models.Status, error) {
	return a.status(cap)
}

// EnvAuthority reads grants from environment variables, defaulting to
// granted when unset. GEOSNAP_CAMERA_PERMISSION and
// GEOSNAP_LOCATION_PERMISSION accept granted, denied, or blocked.
type EnvAuthority struct{}

func envVarFor(cap models.Capability) string {
	return "GEOSNAP_" + strings.ToUpper(string(cap)) + "_PERMISSION"
}

func (a *EnvAuthority) status(cap models.Capability) (models.Status, error) {
	raw := os.Getenv(envVarFor(cap))
	switch strings.ToLower(raw) {
	case "", string(models.StatusGranted):
		return models.StatusGranted, nil
	case string(models.StatusDenied):
		return models.StatusDenied, nil
	case string(models.StatusBlocked):
		return models.StatusBlocked, nil
	default:
		return models.StatusDenied, fmt.Errorf("invalid %s value: %q", envVarFor(cap), raw)
	}
}

// Check reads the capability's environment variable.
func (a *EnvAuthority) Check(_ context.Context, cap models.Capability) (models.Status, error) {
	return a.status(cap)
}

// Request re-reads the environment; there is no prompt to show.
func (a *EnvAuthority) Request(_ context.Context, cap models.Capability) (models.Status, error) {
	return a.status(cap)
}
