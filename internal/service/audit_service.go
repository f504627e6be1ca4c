package service

import (
	"context"
	"sync"
	"time"

	"github.com/content-lifecycle-console/internal/config"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// auditService buffers moderation events and writes them in batches.
// Before Start and after Stop, Record writes synchronously.
type auditService struct {
	repo      repository.EventRepository
	log       zerolog.Logger
	events    chan *models.ModerationEvent
	batchSize int
	interval  time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func newAuditService(repo repository.EventRepository, cfg config.AuditConfig, log zerolog.Logger) *auditService {
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &auditService{
		repo:      repo,
		log:       log.With().Str("service", "audit").Logger(),
		events:    make(chan *models.ModerationEvent, max(cfg.BufferSize, 1)),
		batchSize: max(cfg.BatchSize, 1),
		interval:  interval,
	}
}

// Record stamps the event and queues it for writing. Failures are logged, never returned.
func (s *auditService) Record(ctx context.Context, event *models.ModerationEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if s.enqueue(event) {
		return
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), event); err != nil {
		auditDroppedTotal.Inc()
		s.log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to write moderation event")
	}
}

// enqueue hands the event to the background writer if it is running
func (s *auditService) enqueue(event *models.ModerationEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	select {
	case s.events <- event:
		return true
	default:
		s.log.Warn().Str("event_id", event.ID).Msg("Audit buffer full, writing synchronously")
		return false
	}
}

// List returns recorded events, newest first
func (s *auditService) List(ctx context.Context, filter models.EventFilter) ([]*models.ModerationEvent, error) {
	return s.repo.List(ctx, filter)
}

// Start launches the background writer
func (s *auditService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.log.Info().Int("batch_size", s.batchSize).Dur("interval", s.interval).Msg("Audit writer started")
}

// Stop flushes queued events and stops the background writer
func (s *auditService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("Audit writer stopped")
}

func (s *auditService) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	batch := make([]*models.ModerationEvent, 0, s.batchSize)
	for {
		select {
		case <-s.ctx.Done():
			// Drain whatever was queued before shutdown
			for drained := false; !drained; {
				select {
				case e := <-s.events:
					batch = append(batch, e)
				default:
					drained = true
				}
			}
			s.flush(batch)
			return
		case e := <-s.events:
			batch = append(batch, e)
			if len(batch) >= s.batchSize {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *auditService) flush(batch []*models.ModerationEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inserted, err := s.repo.BatchInsert(ctx, batch)
	if err != nil {
		auditDroppedTotal.Add(float64(len(batch)))
		s.log.Error().Err(err).Int("events", len(batch)).Msg("Failed to write moderation events")
		return
	}
	s.log.Debug().Int("events", inserted).Msg("Moderation events written")
}
