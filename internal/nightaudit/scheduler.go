package nightaudit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/hotelpms/internal/clock"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	"go.uber.org/zap"
)

// Scheduler triggers the audit for each business date once.
type Scheduler struct {
	audit *Service
	clock clock.Clock
	cfg   Config
	log   *zap.Logger

	mu        sync.Mutex
	lastAudit time.Time
}

func NewScheduler(audit *Service, clk clock.Clock, cfg Config, log *zap.Logger) *Scheduler {
	return &Scheduler{
		audit: audit,
		clock: clk,
		cfg:   cfg.withDefaults(),
		log:   log.Named("nightaudit.scheduler"),
	}
}

// BusinessDate maps a wall-clock instant to the hotel day it belongs to.
// Until the rollover hour the previous day is still open.
func BusinessDate(now time.Time, rollover time.Duration) time.Time {
	return foliodomain.DayStart(now.Add(-rollover))
}

// ClosedBusinessDate is the most recent business date whose rollover has
// passed. The open day is never audited, since its departures may still post.
func ClosedBusinessDate(now time.Time, rollover time.Duration) time.Time {
	return BusinessDate(now, rollover).AddDate(0, 0, -1)
}

// RunOnce audits the last closed business date. A date that already
// completed on this replica is not audited twice.
func (s *Scheduler) RunOnce(parent context.Context) (*Report, error) {
	day := ClosedBusinessDate(s.clock.Now(), s.cfg.DayRollover)

	s.mu.Lock()
	done := s.lastAudit.Equal(day)
	s.mu.Unlock()
	if done {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	report, err := s.audit.Run(ctx, day)
	switch {
	case errors.Is(err, ErrAuditInProgress):
		s.log.Info("night audit already running elsewhere", zap.String("business_date", day.Format(time.DateOnly)))
		return nil, nil
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn("night audit timed out", zap.Duration("timeout", s.cfg.Timeout), zap.Error(err))
		return nil, err
	case err != nil:
		return nil, err
	}

	s.mu.Lock()
	s.lastAudit = day
	s.mu.Unlock()
	return report, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("night audit run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
