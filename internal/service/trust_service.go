package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veritas/ranking-service/internal/constants"
	"veritas/ranking-service/internal/models"
	"veritas/ranking-service/internal/repository"
	"veritas/ranking-service/pkg/logger"
)

var ErrUserNotFound = errors.New("user stats not found")

// TrustService owns the user trust score: the pure formula over a UserStats
// snapshot, the event-driven counter deltas that feed it, and the cached
// derived score.
type TrustService interface {
	ComputeTrustScore(stats *models.UserStats) int
	HasVotingInfluence(stats *models.UserStats) bool
	RefreshIfStale(ctx context.Context, userID uint64) (int, error)
	Recompute(ctx context.Context, userID uint64) (int, error)
	ApplyVoteAlignment(ctx context.Context, userID uint64, aligned bool) error
	ApplyCorrectionOutcome(ctx context.Context, userID uint64, approved bool) error
	ApplyContentFlag(ctx context.Context, userID uint64) error
	ApplyIPViolation(ctx context.Context, userID uint64) error
	RecordVote(ctx context.Context, userID uint64, votedAt time.Time) error
}

type trustService struct {
	statsRepo repository.UserStatsRepository
	log       *logger.Logger
	now       func() time.Time
}

func NewTrustService(statsRepo repository.UserStatsRepository, log *logger.Logger) TrustService {
	return &trustService{
		statsRepo: statsRepo,
		log:       log,
		now:       time.Now,
	}
}

// ComputeTrustScore derives the 0-100 trust score from a UserStats snapshot.
// No hidden state: the same snapshot always produces the same score.
func (s *trustService) ComputeTrustScore(stats *models.UserStats) int {
	return ComputeTrustScoreAt(stats, s.now())
}

// ComputeTrustScoreAt is the pure scoring function at a fixed instant
func ComputeTrustScoreAt(stats *models.UserStats, now time.Time) int {
	score := constants.TrustBase

	// Account age bonus: largest applicable tier wins
	ageDays := int(now.Sub(stats.AccountCreatedAt).Hours() / 24)
	switch {
	case ageDays > 365:
		score += constants.TrustAgeBonusOneYear
	case ageDays > 180:
		score += constants.TrustAgeBonusSixMonths
	case ageDays > 30:
		score += constants.TrustAgeBonusOneMonth
	}

	if stats.EmailVerified {
		score += constants.TrustEmailVerifiedBonus
	}

	// Voting accuracy only kicks in with a large enough sample
	if stats.TotalVotes > constants.TrustAccuracyMinVotes {
		accuracy := float64(stats.AlignedVotes) / float64(stats.TotalVotes)
		if accuracy > constants.TrustAccuracyHighRatio {
			score += constants.TrustAccuracyBonus
		} else if accuracy < constants.TrustAccuracyLowRatio {
			score -= constants.TrustAccuracyPenalty
		}
	}

	score -= constants.TrustLowCredUpvotePenalty * int(stats.LowCredibilityUpvotes)

	if stats.BurstVotingFlag {
		score -= constants.TrustBurstVotingPenalty
	}

	score -= constants.TrustIPViolationPenalty * int(stats.IPViolations)

	correctionBonus := constants.TrustCorrectionBonus * int(stats.ApprovedCorrections)
	if correctionBonus > constants.TrustCorrectionBonusCap {
		correctionBonus = constants.TrustCorrectionBonusCap
	}
	score += correctionBonus

	score -= constants.TrustFlaggedContentPenalty * int(stats.FlaggedContentCount)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// HasVotingInfluence reports whether the user's votes count toward consensus.
// Low-trust votes are still recorded for audit.
func (s *trustService) HasVotingInfluence(stats *models.UserStats) bool {
	return s.ComputeTrustScore(stats) >= constants.VotingInfluenceFloor
}

// RefreshIfStale recomputes the cached score when it is older than the TTL
func (s *trustService) RefreshIfStale(ctx context.Context, userID uint64) (int, error) {
	stats, err := s.statsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user stats: %w", err)
	}
	if stats == nil {
		return 0, ErrUserNotFound
	}

	if s.now().Sub(stats.TrustCachedAt) <= constants.TrustCacheTTL {
		return stats.CachedTrustScore, nil
	}
	return s.recompute(ctx, stats)
}

// Recompute recalculates and caches the score from current counters
func (s *trustService) Recompute(ctx context.Context, userID uint64) (int, error) {
	stats, err := s.statsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user stats: %w", err)
	}
	if stats == nil {
		return 0, ErrUserNotFound
	}
	return s.recompute(ctx, stats)
}

func (s *trustService) recompute(ctx context.Context, stats *models.UserStats) (int, error) {
	score := s.ComputeTrustScore(stats)
	if err := s.statsRepo.SaveTrustCache(ctx, stats.UserID, score, s.now()); err != nil {
		// The cache is derived; a failed write is repaired by the next sweep
		s.log.WithUserID(stats.UserID).WithField("error", err.Error()).
			Warn("failed to persist trust cache")
		return score, nil
	}
	return score, nil
}

// ApplyVoteAlignment records a vote whose alignment with eventual consensus is
// now known, then refreshes the cached score
func (s *trustService) ApplyVoteAlignment(ctx context.Context, userID uint64, aligned bool) error {
	if aligned {
		if err := s.statsRepo.IncrementAlignedVotes(ctx, userID); err != nil {
			return fmt.Errorf("failed to record aligned vote: %w", err)
		}
	}
	_, err := s.Recompute(ctx, userID)
	return err
}

func (s *trustService) ApplyCorrectionOutcome(ctx context.Context, userID uint64, approved bool) error {
	if approved {
		if err := s.statsRepo.IncrementApprovedCorrections(ctx, userID); err != nil {
			return fmt.Errorf("failed to record approved correction: %w", err)
		}
	}
	_, err := s.Recompute(ctx, userID)
	return err
}

func (s *trustService) ApplyContentFlag(ctx context.Context, userID uint64) error {
	if err := s.statsRepo.IncrementFlaggedContent(ctx, userID); err != nil {
		return fmt.Errorf("failed to record content flag: %w", err)
	}
	_, err := s.Recompute(ctx, userID)
	return err
}

func (s *trustService) ApplyIPViolation(ctx context.Context, userID uint64) error {
	if err := s.statsRepo.IncrementIPViolations(ctx, userID); err != nil {
		return fmt.Errorf("failed to record ip violation: %w", err)
	}
	_, err := s.Recompute(ctx, userID)
	return err
}

// RecordVote bumps the vote total, pushes the timestamp into the bounded
// ring and runs burst detection: a full ring spanning less than the burst
// window sets the flag.
func (s *trustService) RecordVote(ctx context.Context, userID uint64, votedAt time.Time) error {
	if err := s.statsRepo.IncrementTotalVotes(ctx, userID); err != nil {
		return fmt.Errorf("failed to record vote total: %w", err)
	}

	stats, err := s.statsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}
	if stats == nil {
		return ErrUserNotFound
	}

	stats.PushVoteTimestamp(votedAt, constants.BurstRingSize)
	burst := stats.BurstVotingFlag
	if len(stats.RecentVoteTimestamps) == constants.BurstRingSize {
		oldest := stats.RecentVoteTimestamps[0]
		newest := stats.RecentVoteTimestamps[len(stats.RecentVoteTimestamps)-1]
		if newest.Sub(oldest) < constants.BurstWindow {
			burst = true
		}
	}
	if burst && !stats.BurstVotingFlag {
		s.log.WithUserID(userID).Warn("burst voting detected")
	}

	if err := s.statsRepo.SaveVoteRing(ctx, userID, stats.RecentVoteTimestamps, burst); err != nil {
		return fmt.Errorf("failed to save vote ring: %w", err)
	}

	stats.BurstVotingFlag = burst
	_, err = s.recompute(ctx, stats)
	return err
}
