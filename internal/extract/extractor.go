package extract

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrEmptySource is returned when the tokenized CSV contains no rows at
// all. This is the only fatal condition in the pipeline; every other
// failure degrades to an empty or absent part of the snapshot.
var ErrEmptySource = errors.New("csv source contains no rows")

// Extractor assembles a Snapshot from a tokenized row grid. It holds no
// state across calls, so concurrent extractions are independent.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates a new snapshot extractor.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		log: log.With().Str("component", "extractor").Logger(),
	}
}

// Extract runs the full pipeline over the grid: locate the holdings block,
// parse its rows, then run the summary, category and metadata scans over
// the whole grid. The returned snapshot has no Calculated block; attach one
// with ComputeAggregates once the snapshot is accepted.
func (e *Extractor) Extract(rows [][]string) (*Snapshot, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	snapshot := &Snapshot{
		Holdings: e.parseHoldings(rows),
	}

	snapshot.Summary = extractSummary(rows)
	snapshot.Categories = extractCategories(rows)
	snapshot.Metadata = extractMetadata(rows)

	e.log.Debug().
		Int("rows", len(rows)).
		Int("holdings", len(snapshot.Holdings)).
		Int("categories", len(snapshot.Categories)).
		Msg("Snapshot extracted")

	return snapshot, nil
}

// parseHoldings parses every row inside the holdings block, dropping rows
// that fail mandatory-field validation.
func (e *Extractor) parseHoldings(rows [][]string) []Holding {
	start, end := locateHoldingsBlock(rows)
	if start < 0 {
		e.log.Warn().Msg("No holdings header found, holdings list is empty")
		return nil
	}

	var holdings []Holding
	dropped := 0
	for i := start; i < end; i++ {
		h := parseHoldingRow(rows[i])
		if h == nil {
			dropped++
			e.log.Warn().Int("row", i).Msg("Dropped holdings row missing symbol or quantity")
			continue
		}
		holdings = append(holdings, *h)
	}

	if dropped > 0 {
		e.log.Warn().
			Int("dropped", dropped).
			Int("kept", len(holdings)).
			Msg("Some holdings rows were dropped")
	}

	return holdings
}
