package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqwei/stockdash/internal/database"
	"github.com/hqwei/stockdash/internal/extract"
	"github.com/hqwei/stockdash/internal/store"
)

type stubReloader struct {
	snapshot *extract.Snapshot
	err      error
	calls    int
}

func (s *stubReloader) Reload(ctx context.Context) (*extract.Snapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func fv(v float64) *float64 { return &v }

func loadedSnapshot() *extract.Snapshot {
	return &extract.Snapshot{
		Holdings: []extract.Holding{
			{Symbol: "AAPL", NameLocalized: "苹果", Quantity: fv(100), MarketValue: fv(18000), TotalPnL: fv(3000)},
			{Symbol: "MSFT", NameLocalized: "微软", Quantity: fv(30), MarketValue: fv(10200), TotalPnL: fv(1200)},
		},
		Summary: extract.Summary{
			TotalAmount:   fv(28200),
			PositionUsage: fv(94),
			DailyPnL:      fv(260),
		},
		Categories: []extract.Category{
			{Label: "科技", Weight: 80},
			{Label: "现金", Weight: 20},
		},
		Metadata:   extract.Metadata{CurrentDate: "9.22", PreviousDate: "9.21"},
		Calculated: &extract.Aggregates{TotalMarketValue: 28200, TotalPnL: 4200, DailyTotalPnL: 260, TotalReturnPct: 17.5},
	}
}

func newTestHandler(t *testing.T, reloader Reloader) (*Handler, *State, *store.Store) {
	t.Helper()
	log := testLogger()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(db.Conn(), log)
	require.NoError(t, st.Migrate())

	state := NewState(log)
	return NewHandler(state, st, reloader, log), state, st
}

func serve(h *Handler, method, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/api/portfolio", h.Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandlersWithoutSnapshot(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubReloader{})

	for _, path := range []string{
		"/api/portfolio/",
		"/api/portfolio/holdings",
		"/api/portfolio/summary",
		"/api/portfolio/categories",
		"/api/portfolio/metadata",
		"/api/portfolio/analytics",
	} {
		rec := serve(h, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), path)
		assert.Equal(t, "no snapshot loaded yet", body["error"], path)
	}
}

func TestHandleGetSnapshot(t *testing.T) {
	h, state, _ := newTestHandler(t, &stubReloader{})
	state.Set(loadedSnapshot(), "stockperformance-9.22.csv", time.Now())

	rec := serve(h, http.MethodGet, "/api/portfolio/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Snapshot extract.Snapshot `json:"snapshot"`
		Source   string           `json:"source"`
		LoadedAt string           `json:"loaded_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "stockperformance-9.22.csv", body.Source)
	assert.Len(t, body.Snapshot.Holdings, 2)
	assert.NotEmpty(t, body.LoadedAt)
}

func TestHandleGetHoldings(t *testing.T) {
	h, state, _ := newTestHandler(t, &stubReloader{})
	state.Set(loadedSnapshot(), "a.csv", time.Now())

	rec := serve(h, http.MethodGet, "/api/portfolio/holdings")
	require.Equal(t, http.StatusOK, rec.Code)

	var holdings []extract.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdings))
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "MSFT", holdings[1].Symbol)
}

func TestHandleGetSummary(t *testing.T) {
	h, state, _ := newTestHandler(t, &stubReloader{})
	state.Set(loadedSnapshot(), "a.csv", time.Now())

	rec := serve(h, http.MethodGet, "/api/portfolio/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary    extract.Summary     `json:"summary"`
		Calculated *extract.Aggregates `json:"calculated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Summary.TotalAmount)
	assert.Equal(t, 28200.0, *body.Summary.TotalAmount)
	require.NotNil(t, body.Calculated)
	assert.InDelta(t, 17.5, body.Calculated.TotalReturnPct, 1e-9)
}

func TestHandleGetCategories(t *testing.T) {
	h, state, _ := newTestHandler(t, &stubReloader{})
	state.Set(loadedSnapshot(), "a.csv", time.Now())

	rec := serve(h, http.MethodGet, "/api/portfolio/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []extract.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Equal(t, []extract.Category{
		{Label: "科技", Weight: 80},
		{Label: "现金", Weight: 20},
	}, categories, "source order is preserved")
}

func TestHandleGetAnalytics(t *testing.T) {
	h, state, _ := newTestHandler(t, &stubReloader{})
	state.Set(loadedSnapshot(), "a.csv", time.Now())

	rec := serve(h, http.MethodGet, "/api/portfolio/analytics")
	require.Equal(t, http.StatusOK, rec.Code)

	var analytics Analytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analytics))
	assert.Equal(t, 2, analytics.PositionCount)
	assert.InDelta(t, 50, analytics.MeanWeight, 1e-9)
}

func TestHandleGetHistory(t *testing.T) {
	h, _, st := newTestHandler(t, &stubReloader{})

	base := time.Date(2026, 9, 20, 16, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := loadedSnapshot()
		snap.Metadata.CurrentDate = base.AddDate(0, 0, i).Format("1.2")
		snap.Calculated.TotalMarketValue = float64(28000 + i*100)
		_, err := st.Save(snap, "a.csv", base.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	rec := serve(h, http.MethodGet, "/api/portfolio/history?days=30&sma=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Snapshots []store.SnapshotRecord `json:"snapshots"`
		SMA       []float64              `json:"sma"`
		SMAPeriod int                    `json:"sma_period"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Snapshots, 3)
	// Chronological order for charting.
	assert.Equal(t, 28000.0, body.Snapshots[0].TotalMarketValue)
	assert.Equal(t, 28200.0, body.Snapshots[2].TotalMarketValue)

	require.Len(t, body.SMA, 3)
	assert.Equal(t, 2, body.SMAPeriod)
	assert.InDelta(t, 28050, body.SMA[1], 1e-9)
	assert.InDelta(t, 28150, body.SMA[2], 1e-9)
}

func TestHandleGetHistoryLimit(t *testing.T) {
	h, _, st := newTestHandler(t, &stubReloader{})

	base := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		snap := loadedSnapshot()
		_, err := st.Save(snap, "a.csv", base.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	rec := serve(h, http.MethodGet, "/api/portfolio/history?days=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Snapshots []store.SnapshotRecord `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Snapshots, 2)
}

func TestHandleRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		reloader := &stubReloader{snapshot: loadedSnapshot()}
		h, _, _ := newTestHandler(t, reloader)

		rec := serve(h, http.MethodPost, "/api/portfolio/refresh")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, reloader.calls)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, float64(2), body["holdings"])
	})

	t.Run("load failure", func(t *testing.T) {
		reloader := &stubReloader{err: errors.New("no csv export found")}
		h, _, _ := newTestHandler(t, reloader)

		rec := serve(h, http.MethodPost, "/api/portfolio/refresh")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
