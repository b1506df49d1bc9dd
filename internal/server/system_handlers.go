package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hqwei/stockdash/internal/dashboard"
)

// SystemHandlers exposes process and host health for the dashboard's status
// footer.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	state       *dashboard.State
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(state *dashboard.State, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		state:       state,
	}
}

// HandleStatus returns uptime, resource usage and snapshot freshness.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		status["cpu_percent"] = percentages[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_percent"] = vm.UsedPercent
		status["memory_used_mb"] = vm.Used / 1024 / 1024
	}

	snapshot := map[string]interface{}{"loaded": false}
	if snap, source, loadedAt, ok := h.state.Current(); ok {
		snapshot = map[string]interface{}{
			"loaded":    true,
			"source":    source,
			"loaded_at": loadedAt.UTC().Format(time.RFC3339),
			"holdings":  len(snap.Holdings),
			"data_date": snap.Metadata.CurrentDate,
		}
	}
	status["snapshot"] = snapshot

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode status response")
	}
}
