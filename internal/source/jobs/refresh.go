package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hqwei/stockdash/internal/source"
)

// RefreshJob reloads the snapshot on a schedule so the dashboard tracks new
// exports without manual refreshes.
type RefreshJob struct {
	loader  *source.Loader
	timeout time.Duration
	log     zerolog.Logger
}

// NewRefreshJob creates a scheduled refresh job.
func NewRefreshJob(loader *source.Loader, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &RefreshJob{
		loader:  loader,
		timeout: timeout,
		log:     log.With().Str("job", "snapshot_refresh").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string {
	return "snapshot_refresh"
}

// Run implements scheduler.Job.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.loader.Reload(ctx)
	return err
}
