package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hqwei/stockdash/internal/dashboard"
	"github.com/hqwei/stockdash/internal/events"
	"github.com/hqwei/stockdash/internal/extract"
	"github.com/hqwei/stockdash/internal/store"
)

// Loader runs one full load cycle: resolve the export, read it, tokenize,
// extract, attach aggregates, publish the snapshot, persist it and cache it.
// Persistence and caching are best-effort; only acquisition and extraction
// failures fail the cycle.
type Loader struct {
	detector  *Detector
	extractor *extract.Extractor
	state     *dashboard.State
	store     *store.Store
	cache     *Cache
	bus       *events.Bus
	client    *http.Client
	log       zerolog.Logger
}

// NewLoader wires a loader. store, cache and bus may be nil, disabling the
// corresponding side effects (used by tests and by diagnostic tooling).
func NewLoader(
	detector *Detector,
	extractor *extract.Extractor,
	state *dashboard.State,
	st *store.Store,
	cache *Cache,
	bus *events.Bus,
	log zerolog.Logger,
) *Loader {
	return &Loader{
		detector:  detector,
		extractor: extractor,
		state:     state,
		store:     st,
		cache:     cache,
		bus:       bus,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("component", "loader").Logger(),
	}
}

// Reload performs one load cycle and returns the published snapshot. On
// failure the previous snapshot stays in place.
func (l *Loader) Reload(ctx context.Context) (*extract.Snapshot, error) {
	path, err := l.detector.Resolve()
	if err != nil {
		l.publishFailure(err)
		return nil, fmt.Errorf("failed to locate csv export: %w", err)
	}

	data, err := l.read(ctx, path)
	if err != nil {
		l.publishFailure(err)
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rows, err := Tokenize(bytes.NewReader(data))
	if err != nil {
		l.publishFailure(err)
		return nil, err
	}

	snapshot, err := l.extractor.Extract(rows)
	if err != nil {
		l.publishFailure(err)
		return nil, err
	}

	agg := extract.ComputeAggregates(snapshot.Holdings)
	snapshot.Calculated = &agg

	loadedAt := time.Now()
	l.state.Set(snapshot, path, loadedAt)

	if l.store != nil {
		if _, err := l.store.Save(snapshot, path, loadedAt); err != nil {
			l.log.Warn().Err(err).Msg("Failed to persist snapshot history")
		}
	}

	if l.cache != nil {
		if err := l.cache.Write(snapshot, path, loadedAt); err != nil {
			l.log.Warn().Err(err).Msg("Failed to write snapshot cache")
		}
	}

	if l.bus != nil {
		l.bus.Publish(events.SnapshotLoaded, map[string]interface{}{
			"source":   path,
			"holdings": len(snapshot.Holdings),
		})
	}

	l.log.Info().
		Str("source", path).
		Int("holdings", len(snapshot.Holdings)).
		Msg("Snapshot loaded")

	return snapshot, nil
}

// RestoreFromCache publishes the cached snapshot when no live load has
// happened yet. Used at boot so the dashboard has data while the source is
// unreachable.
func (l *Loader) RestoreFromCache() bool {
	if l.cache == nil {
		return false
	}

	cached, err := l.cache.Read()
	if err != nil {
		l.log.Debug().Err(err).Msg("No usable snapshot cache")
		return false
	}

	if _, _, _, ok := l.state.Current(); ok {
		return false
	}

	l.state.Set(cached.Snapshot, cached.Source, cached.LoadedAt)
	l.log.Info().
		Str("source", cached.Source).
		Time("loaded_at", cached.LoadedAt).
		Msg("Restored snapshot from cache")
	return true
}

// read fetches the export body from a local file or an HTTP(S) URL. HTTP
// requests carry a cache-busting query parameter because the exports are
// served with long-lived caching headers by simple file hosts.
func (l *Loader) read(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return l.fetch(ctx, path)
	}
	return os.ReadFile(path)
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}

	q := u.Query()
	q.Set("t", fmt.Sprintf("%d", time.Now().UnixMilli()))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching export", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (l *Loader) publishFailure(err error) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.SnapshotLoadFailed, map[string]interface{}{
		"error": err.Error(),
	})
}
