package source

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hqwei/stockdash/internal/extract"
)

// CachedSnapshot is the on-disk copy of the last good snapshot. It lets the
// server come up with data even when the CSV source is missing at boot.
type CachedSnapshot struct {
	Snapshot *extract.Snapshot `msgpack:"snapshot"`
	Source   string            `msgpack:"source"`
	LoadedAt time.Time         `msgpack:"loaded_at"`
}

// Cache persists the latest snapshot to a msgpack file.
type Cache struct {
	path string
	log  zerolog.Logger
}

// NewCache creates a snapshot cache at the given path.
func NewCache(path string, log zerolog.Logger) *Cache {
	return &Cache{
		path: path,
		log:  log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// Write stores a snapshot, replacing any previous cache entry.
func (c *Cache) Write(snapshot *extract.Snapshot, source string, loadedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := msgpack.Marshal(&CachedSnapshot{
		Snapshot: snapshot,
		Source:   source,
		LoadedAt: loadedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot cache: %w", err)
	}

	c.log.Debug().Str("path", c.path).Msg("Snapshot cache written")
	return nil
}

// Read loads the cached snapshot. Returns an error when the cache is absent
// or unreadable; callers treat that as "no cache", not a failure.
func (c *Cache) Read() (*CachedSnapshot, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	var cached CachedSnapshot
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot cache: %w", err)
	}
	if cached.Snapshot == nil {
		return nil, fmt.Errorf("snapshot cache is empty")
	}

	return &cached, nil
}
