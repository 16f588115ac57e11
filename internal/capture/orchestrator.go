// ABOUTME: Capture orchestrator driving one attempt through its state machine
// ABOUTME: Gate check, device activation, shutter, best-effort geotag, durable save

package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harper/geosnap/internal/camera"
	"github.com/harper/geosnap/internal/journal"
	"github.com/harper/geosnap/internal/location"
	"github.com/harper/geosnap/internal/models"
	"github.com/harper/geosnap/internal/permission"
	"github.com/harper/geosnap/internal/store"
)

// State is the orchestrator's position in a capture attempt.
type State string

const (
	StateIdle            State = "idle"
	StatePermissionCheck State = "permission_check"
	StateDeviceReady     State = "device_ready"
	StateCapturing       State = "capturing"
	StateTagging         State = "tagging"
	StatePersisting      State = "persisting"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Config holds the orchestrator's tagging policy knobs.
type Config struct {
	// DeviceID selects the camera device for live capture.
	DeviceID int
	// FreshnessWindow is how recent a watched fix must be to be attached
	// without a fresh acquisition.
	FreshnessWindow time.Duration
	// TagTimeout bounds the fresh fix in the tagging step, keeping
	// shutter-to-save latency bounded.
	TagTimeout time.Duration
	// TagMaxStaleness is the oldest cached fix the tagging step will
	// accept before falling back to a fresh acquisition.
	TagMaxStaleness time.Duration
}

// DefaultConfig returns the stock tagging policy.
func DefaultConfig() Config {
	return Config{
		FreshnessWindow: 10 * time.Second,
		TagTimeout:      3 * time.Second,
		TagMaxStaleness: 30 * time.Second,
	}
}

// Orchestrator drives a single capture attempt: gate check, open device, take
// photo, attach best-available position, hand off to storage. One attempt may
// be in flight at a time; concurrent calls get ErrBusy.
type Orchestrator struct {
	gate    *permission.Gate
	tracker *location.Tracker
	driver  camera.Driver
	store   *store.MediaStore
	journal *journal.Journal
	cfg     Config

	mu       sync.Mutex
	inFlight bool
	state    State
}

// New creates an orchestrator. jnl may be nil to disable attempt journaling.
func New(gate *permission.Gate, tracker *location.Tracker, driver camera.Driver, st *store.MediaStore, jnl *journal.Journal, cfg Config) *Orchestrator {
	return &Orchestrator{
		gate:    gate,
		tracker: tracker,
		driver:  driver,
		store:   st,
		journal: jnl,
		cfg:     cfg,
		state:   StateIdle,
	}
}

// State returns the current attempt state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// acquire marks an attempt in flight, or reports ErrBusy. The previous
// attempt's terminal state is cleared here, not on release, so Done and
// Failed stay observable between attempts.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return ErrBusy
	}
	o.inFlight = true
	o.state = StateIdle
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

// Capture runs one live capture attempt through the shutter.
func (o *Orchestrator) Capture(ctx context.Context) (*models.StoredRecord, error) {
	return o.run(ctx, o.takePhoto)
}

// CaptureFile runs one attempt through the gallery-pick path, importing an
// existing image file instead of actuating the shutter. The rest of the
// machine (permission gate, tagging, persisting) is shared.
func (o *Orchestrator) CaptureFile(ctx context.Context, path string) (*models.StoredRecord, error) {
	return o.run(ctx, func(ctx context.Context) (*models.CapturedImage, []byte, string, string, error) {
		return o.pickFile(path)
	})
}

// shot produces an untagged captured image plus its raw bytes, encoded
// extension, and name hint.
type shot func(ctx context.Context) (*models.CapturedImage, []byte, string, string, error)

func (o *Orchestrator) run(ctx context.Context, take shot) (*models.StoredRecord, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	startedAt := time.Now()
	rec, err := o.attempt(ctx, take)
	o.journalAttempt(startedAt, rec, err)

	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	o.setState(StateDone)
	return rec, nil
}

func (o *Orchestrator) attempt(ctx context.Context, take shot) (*models.StoredRecord, error) {
	o.setState(StatePermissionCheck)
	perms := o.gate.CheckStatus(ctx)
	if !perms.Camera.Granted() {
		return nil, &PermissionError{Capability: models.CapabilityCamera, Status: perms.Camera}
	}
	if !perms.Location.Granted() {
		return nil, &PermissionError{Capability: models.CapabilityLocation, Status: perms.Location}
	}

	img, data, ext, nameHint, err := take(ctx)
	if err != nil {
		return nil, err
	}

	// The image exists but carries no position yet; it is attached now, at
	// the instant capture completed.
	o.setState(StateTagging)
	img.Position = o.bestPosition(ctx)

	o.setState(StatePersisting)
	rec, err := o.store.Save(img, data, ext, nameHint)
	if err != nil {
		return nil, &StorageError{Cause: err}
	}
	return rec, nil
}

// takePhoto confirms a usable device exists, activates it, and actuates the
// shutter.
func (o *Orchestrator) takePhoto(ctx context.Context) (*models.CapturedImage, []byte, string, string, error) {
	o.setState(StateDeviceReady)
	devices, err := o.driver.Devices(ctx)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if len(devices) == 0 {
		return nil, nil, "", "", ErrNoDevice
	}

	deviceID := o.cfg.DeviceID
	found := false
	for _, d := range devices {
		if d.ID == deviceID {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, "", "", fmt.Errorf("%w: device %d not present", ErrNoDevice, deviceID)
	}

	capturer, err := o.driver.Open(ctx, deviceID)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	defer func() { _ = capturer.Close() }()

	o.setState(StateCapturing)
	frame, err := capturer.TakePhoto(ctx)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("take photo: %w", err)
	}

	img := models.NewCapturedImage("", frame.Width, frame.Height, int64(len(frame.Data)))
	return img, frame.Data, frame.Ext, "", nil
}

// pickFile imports an existing image file.
func (o *Orchestrator) pickFile(path string) (*models.CapturedImage, []byte, string, string, error) {
	o.setState(StateCapturing)
	picked, err := camera.PickFile(path)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("pick file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("read image: %w", err)
	}

	img := models.NewCapturedImage(path, picked.Width, picked.Height, picked.ByteSize)
	img.RawTags = picked.RawTags

	ext := filepath.Ext(path)
	hint := strings.TrimSuffix(filepath.Base(path), ext)
	return img, data, ext, hint, nil
}

// bestPosition applies the three-tier tagging rule, evaluated at the instant
// capture completes:
//
//  1. the latest watched fix, if observed within the freshness window;
//  2. a cached fix no older than TagMaxStaleness, or failing that a fresh
//     acquisition bounded by TagTimeout;
//  3. no position at all.
//
// Location failures never abort a capture: the image is saved untagged.
// Availability beats completeness here.
func (o *Orchestrator) bestPosition(ctx context.Context) *models.Position {
	if latest, ok := o.tracker.Latest(); ok && latest.FresherThan(o.cfg.FreshnessWindow) {
		pos := latest
		return &pos
	}

	pos, err := o.tracker.Current(ctx, o.cfg.TagTimeout, o.cfg.TagMaxStaleness)
	if err != nil {
		return nil
	}
	return pos
}

func (o *Orchestrator) journalAttempt(startedAt time.Time, rec *models.StoredRecord, attemptErr error) {
	if o.journal == nil {
		return
	}

	entry := &journal.Entry{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if attemptErr != nil {
		entry.Outcome = journal.OutcomeFailed
		entry.Failure = attemptErr.Error()
	} else {
		entry.Outcome = journal.OutcomeDone
		entry.StorageKey = rec.Key
	}

	if err := o.journal.Record(entry); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not journal capture attempt: %v\n", err)
	}
}
