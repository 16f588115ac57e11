// ABOUTME: Tests for the capture orchestrator state machine
// ABOUTME: Covers permission gating, tagging priority, busy rejection, and journaling

package capture

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/geosnap/internal/camera"
	"github.com/harper/geosnap/internal/journal"
	"github.com/harper/geosnap/internal/location"
	"github.com/harper/geosnap/internal/models"
	"github.com/harper/geosnap/internal/permission"
	"github.com/harper/geosnap/internal/store"
)

// --- Fakes ---

type fakeDriver struct {
	devices     []camera.Device
	devicesErr  error
	deviceCalls atomic.Int64
	opens       atomic.Int64
	// block, when non-nil, stalls TakePhoto until closed.
	block chan struct{}
}

func (f *fakeDriver) Devices(_ context.Context) ([]camera.Device, error) {
	f.deviceCalls.Add(1)
	return f.devices, f.devicesErr
}

func (f *fakeDriver) Open(_ context.Context, id int) (camera.Capturer, error) {
	f.opens.Add(1)
	return &fakeCapturer{driver: f}, nil
}

type fakeCapturer struct {
	driver *fakeDriver
}

func (c *fakeCapturer) TakePhoto(ctx context.Context) (*camera.Frame, error) {
	if c.driver.block != nil {
		select {
		case <-c.driver.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &camera.Frame{Data: []byte("jpegbytes"), Width: 640, Height: 480, Ext: ".jpg"}, nil
}

func (c *fakeCapturer) Close() error { return nil }

type fakeProvider struct {
	mu     sync.Mutex
	fix    *models.Position
	fixErr error
	calls  atomic.Int64
	pushes chan *models.Position
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{pushes: make(chan *models.Position)}
}

func (f *fakeProvider) setFix(pos *models.Position, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fix = pos
	f.fixErr = err
}

func (f *fakeProvider) CurrentPosition(ctx context.Context, _ location.FixOptions) (*models.Position, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fixErr != nil {
		return nil, f.fixErr
	}
	return f.fix, nil
}

func (f *fakeProvider) WatchPosition(ctx context.Context, _ location.WatchOptions, onUpdate func(*models.Position), _ func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case pos := <-f.pushes:
			onUpdate(pos)
		}
	}
}

// --- Harness ---

type harness struct {
	orch     *Orchestrator
	driver   *fakeDriver
	provider *fakeProvider
	tracker  *location.Tracker
	store    *store.MediaStore
	journal  *journal.Journal
	auth     *permission.StaticAuthority
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := store.NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	jnl, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { _ = jnl.Close() })

	provider := newFakeProvider()
	trackerCfg := location.DefaultConfig()
	trackerCfg.CurrentTimeout = 100 * time.Millisecond
	tracker := location.NewTracker(provider, nil, trackerCfg)
	t.Cleanup(tracker.Close)

	driver := &fakeDriver{devices: []camera.Device{{ID: 0, Name: "video0"}}}
	auth := permission.AllGranted()

	cfg := DefaultConfig()
	cfg.TagTimeout = 100 * time.Millisecond

	return &harness{
		orch:     New(permission.NewGate(auth), tracker, driver, st, jnl, cfg),
		driver:   driver,
		provider: provider,
		tracker:  tracker,
		store:    st,
		journal:  jnl,
		auth:     auth,
	}
}

// --- Tests ---

func TestCapture_Done(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(models.NewPosition(41.8781, -87.6298), nil)

	rec, err := h.orch.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if rec.Position == nil {
		t.Fatal("record should be tagged")
	}
	if rec.Position.Latitude != 41.8781 {
		t.Errorf("latitude = %v, want 41.8781", rec.Position.Latitude)
	}
	if rec.PixelWidth != 640 || rec.PixelHeight != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", rec.PixelWidth, rec.PixelHeight)
	}

	records, err := h.store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || records[0].Key != rec.Key {
		t.Errorf("saved record not listed exactly once")
	}
	if h.orch.State() != StateDone {
		t.Errorf("state = %v, want done", h.orch.State())
	}
}

func TestCapture_CameraDeniedNeverTouchesDeviceOrLocation(t *testing.T) {
	h := newHarness(t)
	h.auth.Camera = models.StatusDenied

	_, err := h.orch.Capture(context.Background())

	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want PermissionError", err)
	}
	if perr.Capability != models.CapabilityCamera {
		t.Errorf("capability = %v, want camera", perr.Capability)
	}
	if h.driver.deviceCalls.Load() != 0 {
		t.Error("device must never be probed when camera permission is missing")
	}
	if h.provider.calls.Load() != 0 {
		t.Error("location must never be requested when camera permission is missing")
	}
}

func TestCapture_LocationNotGranted(t *testing.T) {
	h := newHarness(t)
	h.auth.Location = models.StatusBlocked

	_, err := h.orch.Capture(context.Background())

	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want PermissionError", err)
	}
	if perr.Capability != models.CapabilityLocation {
		t.Errorf("capability = %v, want location", perr.Capability)
	}
	if perr.Status != models.StatusBlocked {
		t.Errorf("status = %v, want blocked", perr.Status)
	}
}

func TestCapture_NoDevice(t *testing.T) {
	h := newHarness(t)
	h.driver.devices = nil

	_, err := h.orch.Capture(context.Background())
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("got %v, want ErrNoDevice", err)
	}
	if h.orch.State() != StateFailed {
		t.Errorf("state = %v, want failed", h.orch.State())
	}
}

func TestCapture_TerminalStateClearedOnNextAttempt(t *testing.T) {
	h := newHarness(t)
	h.driver.devices = nil

	if _, err := h.orch.Capture(context.Background()); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
	if h.orch.State() != StateFailed {
		t.Fatalf("state = %v, want failed", h.orch.State())
	}

	h.driver.devices = []camera.Device{{ID: 0, Name: "video0"}}
	h.provider.setFix(models.NewPosition(1, 2), nil)
	if _, err := h.orch.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if h.orch.State() != StateDone {
		t.Errorf("state = %v, want done", h.orch.State())
	}
}

func TestCapture_PrefersFreshWatchedFix(t *testing.T) {
	h := newHarness(t)
	// A fresh Current would return Paris; the watch has already delivered
	// Chicago within the freshness window.
	h.provider.setFix(models.NewPosition(48.8566, 2.3522), nil)

	w := h.tracker.StartWatch(nil, nil)
	defer h.tracker.Stop(w)
	watched := models.NewPositionObservedAt(41.8781, -87.6298, time.Now())
	select {
	case h.provider.pushes <- watched:
	case <-time.After(time.Second):
		t.Fatal("watch never consumed the push")
	}
	waitForLatest(t, h.tracker)

	callsBefore := h.provider.calls.Load()
	rec, err := h.orch.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if rec.Position == nil || rec.Position.Latitude != 41.8781 {
		t.Errorf("position = %+v, want the watched fix", rec.Position)
	}
	if h.provider.calls.Load() != callsBefore {
		t.Error("a fresh watched fix must preempt a one-shot acquisition")
	}
}

func TestCapture_StaleWatchedFixFallsBackToFreshFix(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(models.NewPosition(48.8566, 2.3522), nil)

	w := h.tracker.StartWatch(nil, nil)
	stale := models.NewPositionObservedAt(41.8781, -87.6298, time.Now().Add(-time.Minute))
	select {
	case h.provider.pushes <- stale:
	case <-time.After(time.Second):
		t.Fatal("watch never consumed the push")
	}
	waitForLatest(t, h.tracker)
	h.tracker.Stop(w)

	rec, err := h.orch.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if rec.Position == nil || rec.Position.Latitude != 48.8566 {
		t.Errorf("position = %+v, want a fresh fix over the stale watched one", rec.Position)
	}
}

func TestCapture_CachedFixTagsWhenAcquisitionFails(t *testing.T) {
	st, err := store.NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	cache, err := location.OpenFixCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open fix cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	// A fix cached by an earlier run: too old for the freshness window,
	// recent enough for the staleness bound.
	cached := models.NewPositionObservedAt(35.6762, 139.6503, time.Now().Add(-20*time.Second))
	if err := cache.Store(cached); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	provider := newFakeProvider()
	provider.setFix(nil, location.ErrUnavailable)
	trackerCfg := location.DefaultConfig()
	trackerCfg.CurrentTimeout = 100 * time.Millisecond
	tracker := location.NewTracker(provider, cache, trackerCfg)
	t.Cleanup(tracker.Close)

	driver := &fakeDriver{devices: []camera.Device{{ID: 0, Name: "video0"}}}
	cfg := DefaultConfig()
	cfg.TagTimeout = 100 * time.Millisecond
	orch := New(permission.NewGate(permission.AllGranted()), tracker, driver, st, nil, cfg)

	rec, err := orch.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if rec.Position == nil || rec.Position.Latitude != 35.6762 {
		t.Errorf("position = %+v, want the cached fix", rec.Position)
	}
	if provider.calls.Load() != 0 {
		t.Error("a cached fix within the staleness bound must preempt acquisition")
	}
}

func TestCapture_LocationUnavailableSavesUntaggedWithinBound(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(nil, location.ErrUnavailable)

	start := time.Now()
	rec, err := h.orch.Capture(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("capture must complete when location is unavailable, got %v", err)
	}
	if rec.Position != nil {
		t.Error("record should be untagged")
	}
	if elapsed > 2*time.Second {
		t.Errorf("capture took %v, want bounded latency", elapsed)
	}
}

func TestCapture_LocationDeniedMidCallSavesUntagged(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(nil, location.ErrDenied)

	rec, err := h.orch.Capture(context.Background())
	if err != nil {
		t.Fatalf("capture must complete when the fix is denied mid-call, got %v", err)
	}
	if rec.Position != nil {
		t.Error("record should be untagged")
	}
}

func TestCapture_SecondCallWhileInFlightIsBusy(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(models.NewPosition(1, 2), nil)
	h.driver.block = make(chan struct{})

	type result struct {
		rec *models.StoredRecord
		err error
	}
	first := make(chan result, 1)
	go func() {
		rec, err := h.orch.Capture(context.Background())
		first <- result{rec, err}
	}()

	// Wait for the first attempt to reach the blocked shutter
	deadline := time.Now().Add(time.Second)
	for h.driver.opens.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first capture never opened the device")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := h.orch.Capture(context.Background())
	if !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent capture = %v, want ErrBusy", err)
	}

	close(h.driver.block)
	res := <-first
	if res.err != nil {
		t.Fatalf("first capture failed: %v", res.err)
	}

	records, err := h.store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want exactly 1 (busy call must not produce one)", len(records))
	}
}

func TestCapture_JournalsOutcomes(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(models.NewPosition(1, 2), nil)

	rec, err := h.orch.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	h.driver.devices = nil
	if _, err := h.orch.Capture(context.Background()); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}

	entries, err := h.journal.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d journal entries, want 2", len(entries))
	}
	if entries[0].Outcome != journal.OutcomeFailed || entries[0].Failure == "" {
		t.Errorf("latest entry = %+v, want a failed outcome with reason", entries[0])
	}
	if entries[1].Outcome != journal.OutcomeDone || entries[1].StorageKey != rec.Key {
		t.Errorf("first entry = %+v, want done with storage key", entries[1])
	}
}

func TestCaptureFile(t *testing.T) {
	h := newHarness(t)
	h.provider.setFix(models.NewPosition(41.8781, -87.6298), nil)
	// The pick path never touches the camera hardware
	h.driver.devices = nil

	path := writeTestPNG(t, 64, 48)
	rec, err := h.orch.CaptureFile(context.Background(), path)
	if err != nil {
		t.Fatalf("CaptureFile failed: %v", err)
	}
	if rec.PixelWidth != 64 || rec.PixelHeight != 48 {
		t.Errorf("dimensions = %dx%d, want 64x48", rec.PixelWidth, rec.PixelHeight)
	}
	if rec.Position == nil {
		t.Error("imported record should be tagged")
	}
	if h.driver.deviceCalls.Load() != 0 {
		t.Error("gallery pick must bypass the device")
	}
}

// waitForLatest blocks until the tracker snapshot is populated.
func waitForLatest(t *testing.T, tracker *location.Tracker) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := tracker.Latest(); ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("tracker snapshot never populated")
		}
		time.Sleep(time.Millisecond)
	}
}

// writeTestPNG writes a small PNG and returns its path.
func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return path
}
