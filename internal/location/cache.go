// ABOUTME: Badger-backed cache for the last known position fix
// ABOUTME: Lets max-staleness reads skip a fresh radio/GPS acquisition across runs

package location

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/harper/geosnap/internal/models"
)

// ErrNoCachedFix is returned when the cache holds no previous fix.
var ErrNoCachedFix = errors.New("no cached fix")

var lastFixKey = []byte("fix:last")

// FixCache persists the most recent fix so a new process can honor
// max-staleness reads without waiting on the sensor.
type FixCache struct {
	db *badger.DB
}

// OpenFixCache opens (or creates) the cache database at dir.
func OpenFixCache(dir string) (*FixCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open fix cache: %w", err)
	}
	return &FixCache{db: db}, nil
}

// Store saves a fix as the last known position.
func (c *FixCache) Store(pos *models.Position) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("marshal fix: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(lastFixKey, data)
	})
	if err != nil {
		return fmt.Errorf("store fix: %w", err)
	}
	return nil
}

// Load returns the last stored fix, or ErrNoCachedFix.
func (c *FixCache) Load() (*models.Position, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(lastFixKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoCachedFix
	}
	if err != nil {
		return nil, fmt.Errorf("load fix: %w", err)
	}

	var pos models.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil, fmt.Errorf("unmarshal fix: %w", err)
	}
	return &pos, nil
}

// Close releases the underlying database.
func (c *FixCache) Close() error {
	return c.db.Close()
}
