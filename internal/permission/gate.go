// ABOUTME: Permission gate reducing platform grants to a camera/location pair
// ABOUTME: Read-only checks fail soft; requests evaluate both capabilities independently

package permission

import (
	"context"
	"fmt"
	"os"

	"github.com/harper/geosnap/internal/models"
)

// Gate queries and requests the camera and location capabilities and reduces
// the platform's per-capability answers to a PermissionState. State is never
// cached: each call is authoritative only for its instant.
type Gate struct {
	authority Authority
}

// NewGate creates a gate over the given platform authority.
func NewGate(authority Authority) *Gate {
	return &Gate{authority: authority}
}

// CheckStatus probes current grants without prompting. Probe errors are
// reported as denied, never returned: a gallery should still render when the
// permission broker is unreachable.
func (g *Gate) CheckStatus(ctx context.Context) models.PermissionState {
	return models.PermissionState{
		Camera:   g.checkSoft(ctx, models.CapabilityCamera),
		Location: g.checkSoft(ctx, models.CapabilityLocation),
	}
}

func (g *Gate) checkSoft(ctx context.Context, cap models.Capability) models.Status {
	status, err := g.authority.Check(ctx, cap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s permission probe failed: %v\n", cap, err)
		return models.StatusDenied
	}
	return status
}

// RequestAll prompts for each capability not currently granted. Camera and
// location are requested independently; a denial of one never short-circuits
// the other, and both outcomes are always returned together. On blocked the
// caller is responsible for directing the user to system settings.
func (g *Gate) RequestAll(ctx context.Context) models.PermissionState {
	return models.PermissionState{
		Camera:   g.requestIfNeeded(ctx, models.CapabilityCamera),
		Location: g.requestIfNeeded(ctx, models.CapabilityLocation),
	}
}

func (g *Gate) requestIfNeeded(ctx context.Context, cap models.Capability) models.Status {
	if status := g.checkSoft(ctx, cap); status.Granted() {
		return status
	}
	status, err := g.authority.Request(ctx, cap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s permission request failed: %v\n", cap, err)
		return models.StatusDenied
	}
	return status
}
