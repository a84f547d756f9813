package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veritas/ranking-service/internal/models"
	"veritas/ranking-service/internal/moderation"
	"veritas/ranking-service/internal/ratelimit"
	"veritas/ranking-service/internal/repository"
	"veritas/ranking-service/pkg/helpers"
	"veritas/ranking-service/pkg/logger"
	"veritas/ranking-service/pkg/metrics"
)

var (
	ErrCommentRateLimited = errors.New("comment rate limit exceeded")
	ErrContentFlagged     = errors.New("content flagged for review")
	ErrAlreadyLiked       = errors.New("event already liked by user")
	ErrNotLiked           = errors.New("event not liked by user")
)

// peerWindowSize bounds how many top-ranked peers a single-event refresh
// considers for the diversity penalty
const peerWindowSize = 100

// EngagementService records view/like/comment/share activity, applies the
// moderation and rate-limit gates, and refreshes the touched event's rank.
type EngagementService interface {
	RecordView(ctx context.Context, eventID string) error
	RecordLike(ctx context.Context, eventID string, userID uint64) error
	RecordUnlike(ctx context.Context, eventID string, userID uint64) error
	RecordComment(ctx context.Context, eventID string, userID uint64, content string) error
	RecordShare(ctx context.Context, eventID string, userID uint64) error
	RefreshEvent(ctx context.Context, eventID string)
}

type engagementService struct {
	eventRepo  repository.EventRepository
	reviewRepo repository.ReviewQueueRepository
	moderator  *moderation.Moderator
	limiter    *ratelimit.Limiter
	trust      TrustService
	rank       RankService
	idGen      *helpers.IDGenerator
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewEngagementService(
	eventRepo repository.EventRepository,
	reviewRepo repository.ReviewQueueRepository,
	moderator *moderation.Moderator,
	limiter *ratelimit.Limiter,
	trust TrustService,
	rank RankService,
	idGen *helpers.IDGenerator,
	log *logger.Logger,
	m *metrics.Metrics,
) EngagementService {
	return &engagementService{
		eventRepo:  eventRepo,
		reviewRepo: reviewRepo,
		moderator:  moderator,
		limiter:    limiter,
		trust:      trust,
		rank:       rank,
		idGen:      idGen,
		log:        log,
		metrics:    m,
	}
}

// RecordView bumps the view counter. Views alone do not trigger a rank
// refresh; the batched sweep folds them in.
func (s *engagementService) RecordView(ctx context.Context, eventID string) error {
	if err := s.eventRepo.IncrementViews(ctx, eventID); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// RecordLike adds the user to the event's liked-by set before touching the
// counter: a duplicate like is rejected without a double increment.
func (s *engagementService) RecordLike(ctx context.Context, eventID string, userID uint64) error {
	inserted, err := s.eventRepo.AddLike(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to record like: %w", err)
	}
	if !inserted {
		return ErrAlreadyLiked
	}

	if err := s.eventRepo.AdjustVoteTallies(ctx, eventID, 1, 0); err != nil {
		return fmt.Errorf("failed to increment upvotes: %w", err)
	}

	s.RefreshEvent(ctx, eventID)
	return nil
}

func (s *engagementService) RecordUnlike(ctx context.Context, eventID string, userID uint64) error {
	removed, err := s.eventRepo.RemoveLike(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to record unlike: %w", err)
	}
	if !removed {
		return ErrNotLiked
	}

	if err := s.eventRepo.AdjustVoteTallies(ctx, eventID, -1, 0); err != nil {
		return fmt.Errorf("failed to decrement upvotes: %w", err)
	}

	s.RefreshEvent(ctx, eventID)
	return nil
}

// RecordComment gates the comment through the rate limiter and the content
// moderator. Flagged content goes to the review queue with the triggering
// reason; it is never silently dropped.
func (s *engagementService) RecordComment(ctx context.Context, eventID string, userID uint64, content string) error {
	decision := s.limiter.Reserve(ctx, userID, ratelimit.ActionComment)
	if !decision.Allowed {
		return fmt.Errorf("%w: resets at %s", ErrCommentRateLimited, decision.ResetAt.Format(time.RFC3339))
	}

	result := s.moderator.Moderate(content)
	if !result.Clean {
		entry := &models.ReviewQueueEntry{
			ID:       s.idGen.GenerateReviewID(),
			AuthorID: userID,
			EventID:  eventID,
			Content:  content,
			Reason:   result.Reason,
			Severity: string(result.Severity),
		}
		if err := s.reviewRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to queue flagged comment: %w", err)
		}
		if err := s.trust.ApplyContentFlag(ctx, userID); err != nil {
			s.log.WithUserID(userID).WithField("error", err.Error()).
				Warn("failed to apply content flag")
		}
		if s.metrics != nil {
			s.metrics.ModerationFlags.WithLabelValues(result.Reason).Inc()
		}
		return fmt.Errorf("%w: %s", ErrContentFlagged, result.Reason)
	}

	if err := s.eventRepo.IncrementComments(ctx, eventID); err != nil {
		return fmt.Errorf("failed to record comment: %w", err)
	}

	s.RefreshEvent(ctx, eventID)
	return nil
}

func (s *engagementService) RecordShare(ctx context.Context, eventID string, userID uint64) error {
	if err := s.eventRepo.IncrementShares(ctx, eventID); err != nil {
		return fmt.Errorf("failed to record share: %w", err)
	}

	s.RefreshEvent(ctx, eventID)
	return nil
}

// RefreshEvent recomputes the rank of a single event against the current
// order of its peers. A failed derived-field write is logged and repaired by
// the next sweep; it never propagates to the caller.
func (s *engagementService) RefreshEvent(ctx context.Context, eventID string) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil || event == nil {
		s.log.WithEventID(eventID).Warn("failed to load event for rank refresh")
		return
	}

	peers, err := s.eventRepo.ListRankable(ctx, peerWindowSize)
	if err != nil {
		s.log.WithEventID(eventID).WithField("error", err.Error()).
			Warn("failed to load peers for rank refresh")
		return
	}

	score := s.rank.RankOne(event, peers)
	if err := s.eventRepo.SaveRankScore(ctx, eventID, score); err != nil {
		s.log.WithEventID(eventID).WithField("error", err.Error()).
			Warn("failed to persist refreshed rank score")
		if s.metrics != nil {
			s.metrics.DerivedWriteErrors.WithLabelValues("rank_score").Inc()
		}
	}
}
