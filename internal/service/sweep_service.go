package service

import (
	"context"
	"fmt"
	"time"

	"veritas/ranking-service/internal/repository"
	"veritas/ranking-service/pkg/logger"
	"veritas/ranking-service/pkg/metrics"
)

// rankSweepLimit bounds the candidate set of a full re-rank pass
const rankSweepLimit = 500

// SweepService runs the periodic batch recomputations: the full trust-score
// sweep that corrects drift from missed event-driven updates, and the full
// two-pass re-rank that recomputes diversity against the whole candidate set.
// Both are idempotent and safe to run alongside live traffic: they write only
// derived fields with last-writer-wins semantics.
type SweepService interface {
	TrustSweep(ctx context.Context) (int, error)
	RankSweep(ctx context.Context) (int, error)
}

type sweepService struct {
	statsRepo repository.UserStatsRepository
	eventRepo repository.EventRepository
	trust     TrustService
	rank      RankService
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewSweepService(
	statsRepo repository.UserStatsRepository,
	eventRepo repository.EventRepository,
	trust TrustService,
	rank RankService,
	log *logger.Logger,
	m *metrics.Metrics,
) SweepService {
	return &sweepService{
		statsRepo: statsRepo,
		eventRepo: eventRepo,
		trust:     trust,
		rank:      rank,
		log:       log,
		metrics:   m,
	}
}

// TrustSweep recalculates every user's trust score from current counters and
// overwrites the cache. Per-user failures are logged and skipped; the next
// sweep retries them.
func (s *sweepService) TrustSweep(ctx context.Context) (int, error) {
	start := time.Now()

	userIDs, err := s.statsRepo.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users for trust sweep: %w", err)
	}

	updated := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		if _, err := s.trust.Recompute(ctx, userID); err != nil {
			s.log.WithUserID(userID).WithField("error", err.Error()).
				Warn("trust sweep skipped user")
			continue
		}
		updated++
	}

	if s.metrics != nil {
		s.metrics.SweepDuration.WithLabelValues("trust").Observe(time.Since(start).Seconds())
	}
	s.log.WithComponent("sweep").WithField("users", updated).Info("trust sweep completed")
	return updated, nil
}

// RankSweep loads the rankable candidate set, runs the coordinated two-pass
// ranking and persists the scores last-writer-wins.
func (s *sweepService) RankSweep(ctx context.Context) (int, error) {
	start := time.Now()

	events, err := s.eventRepo.ListRankable(ctx, rankSweepLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list events for rank sweep: %w", err)
	}

	scored := s.rank.RankAll(events)

	updated := 0
	for _, se := range scored {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		if err := s.eventRepo.SaveRankScore(ctx, se.Event.ID, se.Score); err != nil {
			s.log.WithEventID(se.Event.ID).WithField("error", err.Error()).
				Warn("rank sweep skipped event")
			if s.metrics != nil {
				s.metrics.DerivedWriteErrors.WithLabelValues("rank_score").Inc()
			}
			continue
		}
		updated++
		if s.metrics != nil {
			s.metrics.EventsRanked.Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.SweepDuration.WithLabelValues("rank").Observe(time.Since(start).Seconds())
	}
	s.log.WithComponent("sweep").WithField("events", updated).Info("rank sweep completed")
	return updated, nil
}
