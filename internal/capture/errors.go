// ABOUTME: Capture error taxonomy
// ABOUTME: Permission, device, busy, and storage failures with distinct recovery paths

package capture

import (
	"errors"
	"fmt"

	"github.com/harper/geosnap/internal/models"
)

// ErrNoDevice is returned when no usable camera device exists. Fatal for the
// attempt; not recoverable without hardware.
var ErrNoDevice = errors.New("no usable camera device")

// ErrBusy is returned when a capture is invoked while another is in flight.
// The device handle is exclusive, so duplicates are rejected, never queued.
var ErrBusy = errors.New("capture already in flight")

// PermissionError reports a missing capability. Recoverable: the caller may
// re-request the grant or guide the user to settings.
type PermissionError struct {
	Capability models.Capability
	Status     models.Status
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s permission %s", e.Capability, e.Status)
}

// StorageError reports a failed persist. Fatal for the attempt; the captured
// bytes are discarded rather than left unreferenced.
type StorageError struct {
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
