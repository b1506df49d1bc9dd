package dashboard

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hqwei/stockdash/internal/extract"
)

// State holds the snapshot currently served to the dashboard. A successful
// load fully replaces the previous snapshot; there are no partial updates.
// Load cycles build their snapshots independently, this is the only
// synchronized point between them (last write wins).
type State struct {
	mu       sync.RWMutex
	snapshot *extract.Snapshot
	source   string
	loadedAt time.Time
	log      zerolog.Logger
}

// NewState creates an empty snapshot state holder.
func NewState(log zerolog.Logger) *State {
	return &State{
		log: log.With().Str("component", "snapshot_state").Logger(),
	}
}

// Set publishes a new snapshot, replacing any previous one.
func (s *State) Set(snapshot *extract.Snapshot, source string, loadedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	s.source = source
	s.loadedAt = loadedAt

	s.log.Info().
		Str("source", source).
		Int("holdings", len(snapshot.Holdings)).
		Msg("Snapshot state updated")
}

// Current returns the active snapshot along with its source and load time.
// ok is false until the first successful load.
func (s *State) Current() (snapshot *extract.Snapshot, source string, loadedAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, "", time.Time{}, false
	}
	return s.snapshot, s.source, s.loadedAt, true
}
