package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veritas/ranking-service/internal/constants"
	"veritas/ranking-service/internal/models"
	"veritas/ranking-service/internal/ratelimit"
	"veritas/ranking-service/internal/repository"
	"veritas/ranking-service/pkg/logger"
	"veritas/ranking-service/pkg/metrics"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrVoteRateLimited  = errors.New("vote rate limit exceeded")
	ErrDuplicateVote    = errors.New("vote already recorded in this direction")
)

// RankRefresher refreshes a single event's derived rank score
type RankRefresher interface {
	RefreshEvent(ctx context.Context, eventID string)
}

// VoteService owns vote casting: the rate-limit gate, the exact tally
// adjustments on direction changes, and the trust feedback loop.
type VoteService interface {
	CastVote(ctx context.Context, userID uint64, eventID string, direction models.VoteDirection) error
	SettleConsensus(ctx context.Context, eventID string) error
}

type voteService struct {
	voteRepo  repository.VoteRepository
	eventRepo repository.EventRepository
	statsRepo repository.UserStatsRepository
	trust     TrustService
	limiter   *ratelimit.Limiter
	refresher RankRefresher
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewVoteService(
	voteRepo repository.VoteRepository,
	eventRepo repository.EventRepository,
	statsRepo repository.UserStatsRepository,
	trust TrustService,
	limiter *ratelimit.Limiter,
	refresher RankRefresher,
	log *logger.Logger,
	m *metrics.Metrics,
) VoteService {
	return &voteService{
		voteRepo:  voteRepo,
		eventRepo: eventRepo,
		statsRepo: statsRepo,
		trust:     trust,
		limiter:   limiter,
		refresher: refresher,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *voteService) CastVote(ctx context.Context, userID uint64, eventID string, direction models.VoteDirection) error {
	// Rate limit gate: one reservation per attempt, consulted before any
	// state mutation
	decision := s.limiter.Reserve(ctx, userID, ratelimit.ActionVote)
	if !decision.Allowed {
		if s.metrics != nil {
			s.metrics.VotesProcessed.WithLabelValues("rate_limited").Inc()
		}
		return fmt.Errorf("%w: resets at %s", ErrVoteRateLimited, decision.ResetAt.Format(time.RFC3339))
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return ErrEventNotFound
	}

	stats, err := s.statsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}
	if stats == nil {
		return ErrUserNotFound
	}

	existing, err := s.voteRepo.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to load existing vote: %w", err)
	}

	from := models.VoteNone
	if existing != nil {
		from = existing.Direction
	}
	if from == direction {
		return ErrDuplicateVote
	}

	// Low-trust users' votes are recorded for audit but carry no consensus
	// weight
	influence := s.trust.HasVotingInfluence(stats)

	vote := &models.Vote{
		UserID:             userID,
		EventID:            eventID,
		Direction:          direction,
		CountedInConsensus: influence,
	}
	if err := s.voteRepo.Upsert(ctx, vote); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	// Each side touched by the transition moves by exactly one
	upDelta, downDelta := models.TallyDelta(from, direction)
	if err := s.eventRepo.AdjustVoteTallies(ctx, eventID, upDelta, downDelta); err != nil {
		return fmt.Errorf("failed to adjust vote tallies: %w", err)
	}

	if err := s.trust.RecordVote(ctx, userID, s.now()); err != nil {
		// Trust counters feed derived scores; the sweep repairs drift
		s.log.WithUserID(userID).WithField("error", err.Error()).
			Warn("failed to update trust counters after vote")
	}

	// Upvoting a low-credibility event counts against the voter
	if direction == models.VoteUp && event.CredibilityScore != nil &&
		*event.CredibilityScore < constants.LowCredibilityThreshold {
		if err := s.statsRepo.IncrementLowCredibilityUpvotes(ctx, userID); err != nil {
			s.log.WithUserID(userID).WithField("error", err.Error()).
				Warn("failed to record low-credibility upvote")
		} else if _, err := s.trust.Recompute(ctx, userID); err != nil {
			s.log.WithUserID(userID).WithField("error", err.Error()).
				Warn("failed to refresh trust after low-credibility upvote")
		}
	}

	if s.refresher != nil {
		s.refresher.RefreshEvent(ctx, eventID)
	}
	if s.metrics != nil {
		s.metrics.VotesProcessed.WithLabelValues("accepted").Inc()
	}
	return nil
}

// SettleConsensus compares each consensus-weighted vote against the majority
// direction and applies the alignment deltas. Called once an event's eventual
// consensus is considered settled (after fact-check completion).
func (s *voteService) SettleConsensus(ctx context.Context, eventID string) error {
	up, down, err := s.voteRepo.CountConsensusVotes(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to count consensus votes: %w", err)
	}
	if up == down {
		// No majority, nothing to settle
		return nil
	}

	majority := models.VoteUp
	if down > up {
		majority = models.VoteDown
	}

	votes, err := s.voteRepo.ListConsensusVotes(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list consensus votes: %w", err)
	}

	for _, vote := range votes {
		aligned := vote.Direction == majority
		if err := s.trust.ApplyVoteAlignment(ctx, vote.UserID, aligned); err != nil {
			s.log.WithUserID(vote.UserID).WithField("event_id", eventID).
				WithField("error", err.Error()).Warn("failed to apply vote alignment")
		}
	}
	return nil
}
