package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/config"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// refresher reloads the configured statuses of every content kind on a cron schedule
type refresher struct {
	cron     *cron.Cron
	enabled  bool
	schedule string
	statuses []models.Status
	content  []ContentService
	timeout  time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
}

func newRefresher(cfg config.RefreshConfig, timeout time.Duration, content []ContentService, log zerolog.Logger) *refresher {
	var statuses []models.Status
	for _, s := range cfg.Statuses {
		if s == "all" {
			statuses = []models.Status{""}
			break
		}
		statuses = append(statuses, models.Status(s))
	}
	if len(statuses) == 0 {
		statuses = []models.Status{models.StatusPendingApproval}
	}

	return &refresher{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		enabled:  cfg.Enabled,
		schedule: cfg.Schedule,
		statuses: statuses,
		content:  content,
		timeout:  timeout,
		log:      log.With().Str("service", "refresher").Logger(),
	}
}

// Start registers the refresh job and starts the scheduler. It is a no-op when disabled.
func (r *refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled || r.running {
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			r.log.Warn().Err(err).Msg("Scheduled refresh finished with errors")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.running = true
	r.log.Info().Str("schedule", r.schedule).Int("statuses", len(r.statuses)).Msg("Refresh scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (r *refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
	r.log.Info().Msg("Refresh scheduler stopped")
}

// RunOnce refreshes every configured status of every content kind.
// Without a session there is nothing to load, so it returns quietly.
func (r *refresher) RunOnce(ctx context.Context) error {
	var errs []error
	for _, svc := range r.content {
		for _, status := range r.statuses {
			runCtx, cancel := ctx, context.CancelFunc(func() {})
			if r.timeout > 0 {
				// a refresh spans several pages, each bounded by the client timeout
				runCtx, cancel = context.WithTimeout(ctx, 4*r.timeout)
			}
			res, err := svc.Refresh(runCtx, status)
			cancel()

			if err != nil {
				if apperr.KindOf(err) == apperr.KindAuthenticationFailed {
					r.log.Debug().Str("kind", string(svc.Kind())).Msg("Skipping refresh, no valid session")
					return nil
				}
				errs = append(errs, fmt.Errorf("refresh %s %q: %w", svc.Kind().Plural(), status, err))
				continue
			}

			r.log.Debug().
				Str("kind", string(svc.Kind())).
				Str("status", string(status)).
				Int("fetched", res.Fetched).
				Int("pruned", res.Pruned).
				Msg("Refresh completed")
		}
	}
	return errors.Join(errs...)
}
