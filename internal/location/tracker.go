// ABOUTME: Location tracker with one-shot fixes and a single push subscription
// ABOUTME: Caches the latest fix for non-blocking snapshot reads during capture

package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/harper/geosnap/internal/models"
)

// Config holds the tracker's timing and movement thresholds. Thresholds live
// here, not at call sites.
type Config struct {
	// ProbeTimeout bounds the IsAvailable probe.
	ProbeTimeout time.Duration
	// CurrentTimeout is the default bound for one-shot fixes.
	CurrentTimeout time.Duration
	// FreshnessWindow is how recent a watched fix must be to be used as-is.
	FreshnessWindow time.Duration
	// WatchMinDistanceMeters is the movement threshold between watch updates.
	WatchMinDistanceMeters float64
	// WatchMinInterval is the elapsed-time threshold between watch updates.
	WatchMinInterval time.Duration
}

// DefaultConfig returns the stock tracker thresholds.
func DefaultConfig() Config {
	return Config{
		ProbeTimeout:           time.Second,
		CurrentTimeout:         3 * time.Second,
		FreshnessWindow:        10 * time.Second,
		WatchMinDistanceMeters: 10,
		WatchMinInterval:       5 * time.Second,
	}
}

// Watch is a handle to an active position subscription.
type Watch struct {
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// Tracker obtains positions from a Provider with bounded latency and keeps a
// non-blocking snapshot of the latest pushed fix. At most one watch is active
// per tracker; the OS-level location session is a real resource.
type Tracker struct {
	provider Provider
	cache    *FixCache
	cfg      Config

	mu     sync.Mutex
	latest *models.Position
	active *Watch
}

// NewTracker creates a tracker. cache may be nil to disable the cross-process
// fix cache.
func NewTracker(provider Provider, cache *FixCache, cfg Config) *Tracker {
	return &Tracker{provider: provider, cache: cache, cfg: cfg}
}

// Config returns the tracker's thresholds.
func (t *Tracker) Config() Config {
	return t.cfg
}

// IsAvailable reports whether position acquisition currently succeeds at all.
// Implemented as a short-timeout probe, not a persistent capability flag.
func (t *Tracker) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, t.cfg.ProbeTimeout)
	defer cancel()

	_, err := t.provider.CurrentPosition(probeCtx, FixOptions{Timeout: t.cfg.ProbeTimeout})
	return err == nil
}

// Current returns a one-shot high-accuracy fix. A cached fix younger than
// maxStaleness is returned without touching the sensor; this latency/accuracy
// trade-off is the caller's to make. Fails with ErrUnavailable when no fix
// arrives within timeout, or ErrDenied when permission was revoked mid-call.
func (t *Tracker) Current(ctx context.Context, timeout, maxStaleness time.Duration) (*models.Position, error) {
	if timeout <= 0 {
		timeout = t.cfg.CurrentTimeout
	}

	if maxStaleness > 0 {
		if pos := t.cachedFix(maxStaleness); pos != nil {
			return pos, nil
		}
	}

	fixCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := t.provider.CurrentPosition(fixCtx, FixOptions{Timeout: timeout, HighAccuracy: true})
	if err != nil {
		if errors.Is(err, ErrDenied) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fixCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no fix within %s", ErrUnavailable, timeout)
		}
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	t.remember(pos)
	return pos, nil
}

// cachedFix returns the freshest known fix younger than maxStaleness, first
// from the in-memory snapshot, then from the cross-process cache.
func (t *Tracker) cachedFix(maxStaleness time.Duration) *models.Position {
	t.mu.Lock()
	latest := t.latest
	t.mu.Unlock()

	if latest != nil && latest.FresherThan(maxStaleness) {
		return latest
	}

	if t.cache != nil {
		pos, err := t.cache.Load()
		if err == nil && pos.FresherThan(maxStaleness) {
			return pos
		}
	}
	return nil
}

// remember updates the in-memory snapshot and the cross-process cache.
func (t *Tracker) remember(pos *models.Position) {
	t.mu.Lock()
	t.latest = pos
	t.mu.Unlock()

	if t.cache != nil {
		if err := t.cache.Store(pos); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not cache fix: %v\n", err)
		}
	}
}

// Latest returns a non-blocking snapshot of the last pushed fix. Never waits
// on an in-flight acquisition.
func (t *Tracker) Latest() (models.Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return models.Position{}, false
	}
	return *t.latest, true
}

// StartWatch begins a continuous stream of position updates using the
// configured movement and interval thresholds. Starting a second watch stops
// the first: leaked OS-level location sessions are a real resource cost.
// onUpdate and onError may be nil.
func (t *Tracker) StartWatch(onUpdate func(*models.Position), onError func(error)) *Watch {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watch{cancel: cancel, done: make(chan struct{})}

	t.mu.Lock()
	prev := t.active
	t.active = w
	t.mu.Unlock()
	if prev != nil {
		t.Stop(prev)
	}

	opts := WatchOptions{
		MinDistanceMeters: t.cfg.WatchMinDistanceMeters,
		MinInterval:       t.cfg.WatchMinInterval,
	}

	go func() {
		defer close(w.done)
		t.provider.WatchPosition(ctx, opts,
			func(pos *models.Position) {
				t.remember(pos)
				if onUpdate != nil {
					onUpdate(pos)
				}
			},
			func(err error) {
				if onError != nil {
					onError(err)
				}
			})
	}()

	return w
}

// Stop ends a watch. Idempotent: stopping an already-stopped, unknown, or nil
// handle is a no-op.
func (t *Tracker) Stop(w *Watch) {
	if w == nil {
		return
	}

	t.mu.Lock()
	if w.stopped {
		t.mu.Unlock()
		return
	}
	w.stopped = true
	if t.active == w {
		t.active = nil
	}
	t.mu.Unlock()

	w.cancel()
	<-w.done
}

// Close stops any active watch.
func (t *Tracker) Close() {
	t.mu.Lock()
	active := t.active
	t.mu.Unlock()
	t.Stop(active)
}
