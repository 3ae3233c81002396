package pantry

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
)

const snapshotKey = "pantry/snapshot"

// snapshot is the cached pantry with its fetch time, so stale data can be
// labeled in the UI.
type snapshot struct {
	Items   []domain.PantryItem `json:"items"`
	SavedAt time.Time           `json:"saved_at"`
}

// Cache is a BadgerDB-backed snapshot of the last known pantry. It keeps
// the pantry browsable when the backend is unreachable or the user is
// logged out.
type Cache struct {
	db  *badger.DB
	log *zap.SugaredLogger
}

// OpenCache opens (or creates) the cache under dataDir.
func OpenCache(dataDir string, log *zap.SugaredLogger) (*Cache, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	opts := badger.DefaultOptions(absPath)
	opts.Logger = nil // Badger's own logger is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open pantry cache: %w", err)
	}

	log.Debugw("pantry cache opened", "path", absPath)
	return &Cache{db: db, log: log}, nil
}

// Put overwrites the cached snapshot.
func (c *Cache) Put(items []domain.PantryItem) error {
	data, err := json.Marshal(snapshot{Items: items, SavedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), data)
	})
}

// Get returns the cached snapshot and when it was taken. Returns
// domain.ErrNotFound when nothing has been cached yet.
func (c *Cache) Get() ([]domain.PantryItem, time.Time, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, time.Time{}, domain.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Items, snap.SavedAt, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
