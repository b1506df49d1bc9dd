package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hqwei/stockdash/internal/extract"
)

// Store persists snapshot history. Every accepted load cycle appends one
// snapshot row plus its holdings; the dashboard history chart reads the
// per-day totals back out.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// SnapshotRecord is one persisted snapshot header row.
type SnapshotRecord struct {
	ID               string  `json:"id"`
	LoadedAt         string  `json:"loaded_at"` // RFC3339
	SourcePath       string  `json:"source_path"`
	DataDate         string  `json:"data_date"` // from file metadata, may be empty
	TotalMarketValue float64 `json:"total_market_value"`
	TotalPnL         float64 `json:"total_pnl"`
	DailyTotalPnL    float64 `json:"daily_total_pnl"`
	TotalReturnPct   float64 `json:"total_return_pct"`
	HoldingsCount    int     `json:"holdings_count"`
}

// New creates a new snapshot store
func New(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Migrate creates the store's tables if they do not exist yet.
func (s *Store) Migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			loaded_at TEXT NOT NULL,
			source_path TEXT NOT NULL DEFAULT '',
			data_date TEXT NOT NULL DEFAULT '',
			total_market_value REAL NOT NULL DEFAULT 0,
			total_pnl REAL NOT NULL DEFAULT 0,
			daily_total_pnl REAL NOT NULL DEFAULT 0,
			total_return_pct REAL NOT NULL DEFAULT 0,
			holdings_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_loaded_at ON snapshots(loaded_at)`,
		`CREATE TABLE IF NOT EXISTS snapshot_holdings (
			snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			name_localized TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			quantity REAL,
			cost_price REAL,
			close_price REAL,
			market_value REAL,
			position_ratio REAL,
			prev_close_price REAL,
			daily_pnl REAL,
			total_pnl REAL,
			PRIMARY KEY (snapshot_id, position)
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

// Save persists one snapshot with its holdings and returns the snapshot ID.
// The snapshot must already carry its Calculated block.
func (s *Store) Save(snap *extract.Snapshot, sourcePath string, loadedAt time.Time) (string, error) {
	if snap == nil {
		return "", errors.New("nil snapshot")
	}

	var agg extract.Aggregates
	if snap.Calculated != nil {
		agg = *snap.Calculated
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()
	_, err = tx.Exec(`
		INSERT INTO snapshots (
			id, loaded_at, source_path, data_date,
			total_market_value, total_pnl, daily_total_pnl, total_return_pct,
			holdings_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, loadedAt.UTC().Format(time.RFC3339), sourcePath, snap.Metadata.CurrentDate,
		agg.TotalMarketValue, agg.TotalPnL, agg.DailyTotalPnL, agg.TotalReturnPct,
		len(snap.Holdings),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i, h := range snap.Holdings {
		_, err = tx.Exec(`
			INSERT INTO snapshot_holdings (
				snapshot_id, position, symbol, name_localized, description,
				quantity, cost_price, close_price, market_value,
				position_ratio, prev_close_price, daily_pnl, total_pnl
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, h.Symbol, h.NameLocalized, h.Description,
			h.Quantity, h.CostPrice, h.ClosePrice, h.MarketValue,
			h.PositionRatio, h.PrevClosePrice, h.DailyPnL, h.TotalPnL,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert holding %s: %w", h.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.log.Debug().
		Str("snapshot_id", id).
		Int("holdings", len(snap.Holdings)).
		Msg("Snapshot persisted")

	return id, nil
}

// Latest returns the most recently loaded snapshot record, or nil when the
// store is empty.
func (s *Store) Latest() (*SnapshotRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, loaded_at, source_path, data_date,
			total_market_value, total_pnl, daily_total_pnl, total_return_pct,
			holdings_count
		FROM snapshots
		ORDER BY loaded_at DESC
		LIMIT 1`)

	rec, err := scanSnapshotRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return rec, nil
}

// History returns the most recent snapshot records, newest first.
func (s *Store) History(limit int) ([]SnapshotRecord, error) {
	if limit <= 0 {
		limit = 90
	}

	rows, err := s.db.Query(`
		SELECT id, loaded_at, source_path, data_date,
			total_market_value, total_pnl, daily_total_pnl, total_return_pct,
			holdings_count
		FROM snapshots
		ORDER BY loaded_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshotRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return records, nil
}

// GetByDataDate returns the newest snapshot for a given file data date, or
// nil when none exists.
func (s *Store) GetByDataDate(date string) (*SnapshotRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, loaded_at, source_path, data_date,
			total_market_value, total_pnl, daily_total_pnl, total_return_pct,
			holdings_count
		FROM snapshots
		WHERE data_date = ?
		ORDER BY loaded_at DESC
		LIMIT 1`, date)

	rec, err := scanSnapshotRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot by date: %w", err)
	}

	return rec, nil
}

// Holdings returns the persisted holdings of one snapshot in source order.
func (s *Store) Holdings(snapshotID string) ([]extract.Holding, error) {
	rows, err := s.db.Query(`
		SELECT symbol, name_localized, description,
			quantity, cost_price, close_price, market_value,
			position_ratio, prev_close_price, daily_pnl, total_pnl
		FROM snapshot_holdings
		WHERE snapshot_id = ?
		ORDER BY position`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []extract.Holding
	for rows.Next() {
		var h extract.Holding
		var quantity, costPrice, closePrice, marketValue sql.NullFloat64
		var positionRatio, prevClose, dailyPnL, totalPnL sql.NullFloat64

		err := rows.Scan(
			&h.Symbol, &h.NameLocalized, &h.Description,
			&quantity, &costPrice, &closePrice, &marketValue,
			&positionRatio, &prevClose, &dailyPnL, &totalPnL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		h.Quantity = nullableFloat(quantity)
		h.CostPrice = nullableFloat(costPrice)
		h.ClosePrice = nullableFloat(closePrice)
		h.MarketValue = nullableFloat(marketValue)
		h.PositionRatio = nullableFloat(positionRatio)
		h.PrevClosePrice = nullableFloat(prevClose)
		h.DailyPnL = nullableFloat(dailyPnL)
		h.TotalPnL = nullableFloat(totalPnL)

		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshotRecord(row rowScanner) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	err := row.Scan(
		&rec.ID, &rec.LoadedAt, &rec.SourcePath, &rec.DataDate,
		&rec.TotalMarketValue, &rec.TotalPnL, &rec.DailyTotalPnL, &rec.TotalReturnPct,
		&rec.HoldingsCount,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
