package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hqwei/stockdash/internal/extract"
	"github.com/hqwei/stockdash/internal/store"
)

// Reloader triggers a full load cycle on demand.
type Reloader interface {
	Reload(ctx context.Context) (*extract.Snapshot, error)
}

// Handler serves the portfolio JSON API consumed by the dashboard.
type Handler struct {
	state    *State
	store    *store.Store
	reloader Reloader
	log      zerolog.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(state *State, st *store.Store, reloader Reloader, log zerolog.Logger) *Handler {
	return &Handler{
		state:    state,
		store:    st,
		reloader: reloader,
		log:      log.With().Str("handler", "dashboard").Logger(),
	}
}

// Routes mounts the portfolio API on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleGetSnapshot)
	r.Get("/holdings", h.HandleGetHoldings)
	r.Get("/summary", h.HandleGetSummary)
	r.Get("/categories", h.HandleGetCategories)
	r.Get("/metadata", h.HandleGetMetadata)
	r.Get("/analytics", h.HandleGetAnalytics)
	r.Get("/history", h.HandleGetHistory)
	r.Post("/refresh", h.HandleRefresh)
}

// HandleGetSnapshot returns the full current snapshot.
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, source, loadedAt, ok := h.state.Current()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot":  snap,
		"source":    source,
		"loaded_at": loadedAt.UTC().Format(time.RFC3339),
	})
}

// HandleGetHoldings returns the holdings list in source order.
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	snap, _, _, ok := h.state.Current()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}

	h.writeJSON(w, http.StatusOK, snap.Holdings)
}

// HandleGetSummary returns both the file's own totals and the recomputed
// aggregates. The two may disagree; the dashboard chooses per field.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	snap, _, _, ok := h.state.Current()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":    snap.Summary,
		"calculated": snap.Calculated,
	})
}

// HandleGetCategories returns allocation categories in source order.
func (h *Handler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	snap, _, _, ok := h.state.Current()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}

	h.writeJSON(w, http.StatusOK, snap.Categories)
}

// HandleGetMetadata returns the export's date stamps.
func (h *Handler) HandleGetMetadata(w http.ResponseWriter, r *http.Request) {
	snap, _, _, ok := h.state.Current()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}

	h.writeJSON(w, http.StatusOK, snap.Metadata)
}

// HandleGetAnalytics returns concentration metrics for the current holdings.
func (h *Handler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	snap, _, _, ok := h.state.Current()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return
	}

	h.writeJSON(w, http.StatusOK, ComputeAnalytics(snap.Holdings))
}

// HandleGetHistory returns persisted snapshot totals, oldest first, with an
// optional moving average over total market value (?sma=N).
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 90
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.store.History(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load snapshot history")
		h.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	// History is stored newest first; charts want chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	response := map[string]interface{}{"snapshots": records}

	if v := r.URL.Query().Get("sma"); v != "" {
		if period, err := strconv.Atoi(v); err == nil && period > 0 {
			values := make([]float64, len(records))
			for i, rec := range records {
				values[i] = rec.TotalMarketValue
			}
			if sma := SMASeries(values, period); sma != nil {
				response["sma"] = sma
				response["sma_period"] = period
			}
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleRefresh runs one load cycle immediately.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reloader.Reload(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual refresh failed")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"holdings": len(snap.Holdings),
	})
}

// Helper methods

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
