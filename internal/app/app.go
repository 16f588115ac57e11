// ABOUTME: Application wiring for the capture pipeline
// ABOUTME: Assembles permission gate, tracker, orchestrator, store, and journal from config

package app

import (
	"context"
	"fmt"
	"os"

	"github.com/harper/geosnap/internal/camera"
	"github.com/harper/geosnap/internal/capture"
	"github.com/harper/geosnap/internal/config"
	"github.com/harper/geosnap/internal/journal"
	"github.com/harper/geosnap/internal/location"
	"github.com/harper/geosnap/internal/models"
	"github.com/harper/geosnap/internal/permission"
	"github.com/harper/geosnap/internal/store"
)

// App owns the assembled capture pipeline and its backing resources.
type App struct {
	Config       *config.Config
	Gate         *permission.Gate
	Tracker      *location.Tracker
	Store        *store.MediaStore
	Journal      *journal.Journal
	Orchestrator *capture.Orchestrator

	fixCache *location.FixCache
}

// Options overrides individual collaborators, mainly for tests.
type Options struct {
	Authority permission.Authority
	Provider  location.Provider
	Driver    camera.Driver
}

// New assembles an App from config. The fix cache and journal are
// best-effort: when either fails to open the app runs without it.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	authority := opts.Authority
	if authority == nil {
		authority = &permission.EnvAuthority{}
	}
	provider := opts.Provider
	if provider == nil {
		provider = &location.EnvProvider{}
	}
	driver := opts.Driver
	if driver == nil {
		driver = camera.NewWebcamDriver()
	}

	st, err := store.NewMediaStore(cfg.MediaDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open media store: %w", err)
	}

	fixCache, err := location.OpenFixCache(cfg.FixCacheDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: fix cache unavailable: %v\n", err)
		fixCache = nil
	}

	jnl, err := journal.Open(cfg.JournalPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: capture journal unavailable: %v\n", err)
		jnl = nil
	}

	gate := permission.NewGate(authority)
	tracker := location.NewTracker(provider, fixCache, cfg.TrackerConfig())
	orch := capture.New(gate, tracker, driver, st, jnl, cfg.CaptureConfig())

	return &App{
		Config:       cfg,
		Gate:         gate,
		Tracker:      tracker,
		Store:        st,
		Journal:      jnl,
		Orchestrator: orch,
		fixCache:     fixCache,
	}, nil
}

// Capture runs one webcam capture attempt.
func (a *App) Capture(ctx context.Context) (*models.StoredRecord, error) {
	return a.Orchestrator.Capture(ctx)
}

// CaptureFile imports an existing image file through the capture pipeline.
func (a *App) CaptureFile(ctx context.Context, path string) (*models.StoredRecord, error) {
	return a.Orchestrator.CaptureFile(ctx, path)
}

// ListImages returns all stored records, most recent capture first.
func (a *App) ListImages() ([]*models.StoredRecord, error) {
	return a.Store.List()
}

// GetImage looks up a single record by key.
func (a *App) GetImage(key string) (*models.StoredRecord, error) {
	return a.Store.Get(key)
}

// DeleteImage removes a record's image and metadata.
func (a *App) DeleteImage(rec *models.StoredRecord) error {
	return a.Store.Delete(rec)
}

// PermissionSnapshot reports current capability statuses without prompting.
func (a *App) PermissionSnapshot(ctx context.Context) models.PermissionState {
	return a.Gate.CheckStatus(ctx)
}

// Close releases the tracker, journal, and fix cache.
func (a *App) Close() {
	a.Tracker.Close()
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close journal: %v\n", err)
		}
	}
	if a.fixCache != nil {
		if err := a.fixCache.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close fix cache: %v\n", err)
		}
	}
}
