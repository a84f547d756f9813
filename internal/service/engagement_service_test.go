package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veritas/ranking-service/internal/models"
	"veritas/ranking-service/internal/moderation"
	"veritas/ranking-service/pkg/helpers"
)

type engagementFixture struct {
	svc        *engagementService
	eventRepo  *mockEventRepository
	reviewRepo *mockReviewQueueRepository
	statsRepo  *mockUserStatsRepository
}

func newEngagementFixture(now time.Time, event *models.Event) *engagementFixture {
	eventRepo := &mockEventRepository{
		findByIDFunc: func(ctx context.Context, id string) (*models.Event, error) {
			return event, nil
		},
		listRankableFunc: func(ctx context.Context, limit int) ([]*models.Event, error) {
			return nil, nil
		},
	}
	reviewRepo := &mockReviewQueueRepository{}
	statsRepo := &mockUserStatsRepository{
		findByUserIDFunc: func(ctx context.Context, userID uint64) (*models.UserStats, error) {
			return baselineStats(now), nil
		},
	}
	trust := &trustService{statsRepo: statsRepo, log: testLogger(), now: fixedClock(now)}

	return &engagementFixture{
		svc: &engagementService{
			eventRepo:  eventRepo,
			reviewRepo: reviewRepo,
			moderator:  moderation.NewModerator(),
			limiter:    allowAllLimiter(),
			trust:      trust,
			rank:       &rankService{now: fixedClock(now)},
			idGen:      helpers.NewIDGenerator(),
			log:        testLogger(),
		},
		eventRepo:  eventRepo,
		reviewRepo: reviewRepo,
		statsRepo:  statsRepo,
	}
}

func TestRecordViewSkipsRankRefresh(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	views := 0
	f.eventRepo.incrementViewsFunc = func(ctx context.Context, id string) error {
		views++
		return nil
	}
	refreshed := false
	f.eventRepo.saveRankScoreFunc = func(ctx context.Context, id string, rankScore float64) error {
		refreshed = true
		return nil
	}

	require.NoError(t, f.svc.RecordView(context.Background(), "evt-1"))
	assert.Equal(t, 1, views)
	assert.False(t, refreshed, "views are folded in by the batched sweep")
}

func TestRecordLikeIncrementsOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	liked := map[uint64]struct{}{}
	f.eventRepo.addLikeFunc = func(ctx context.Context, eventID string, userID uint64) (bool, error) {
		if _, ok := liked[userID]; ok {
			return false, nil
		}
		liked[userID] = struct{}{}
		return true, nil
	}
	increments := 0
	f.eventRepo.adjustVoteTalliesFunc = func(ctx context.Context, id string, up, down int) error {
		increments += up
		return nil
	}

	require.NoError(t, f.svc.RecordLike(context.Background(), "evt-1", 42))
	err := f.svc.RecordLike(context.Background(), "evt-1", 42)
	assert.ErrorIs(t, err, ErrAlreadyLiked)
	assert.Equal(t, 1, increments, "a duplicate like must not double-count")
}

func TestRecordUnlikeRequiresExistingLike(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	f.eventRepo.removeLikeFunc = func(ctx context.Context, eventID string, userID uint64) (bool, error) {
		return false, nil
	}
	adjusted := false
	f.eventRepo.adjustVoteTalliesFunc = func(ctx context.Context, id string, up, down int) error {
		adjusted = true
		return nil
	}

	err := f.svc.RecordUnlike(context.Background(), "evt-1", 42)
	assert.ErrorIs(t, err, ErrNotLiked)
	assert.False(t, adjusted)
}

func TestRecordCommentClean(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	comments := 0
	f.eventRepo.incrementCommentsFunc = func(ctx context.Context, id string) error {
		comments++
		return nil
	}

	require.NoError(t, f.svc.RecordComment(context.Background(), "evt-1", 42,
		"Good coverage, the second source adds useful context."))
	assert.Equal(t, 1, comments)
	assert.Empty(t, f.reviewRepo.createdEntries)
}

func TestRecordCommentFlaggedGoesToReviewQueue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	comments := 0
	f.eventRepo.incrementCommentsFunc = func(ctx context.Context, id string) error {
		comments++
		return nil
	}

	err := f.svc.RecordComment(context.Background(), "evt-1", 42,
		"wake up sheeple, the mainstream media is lying about this")
	assert.ErrorIs(t, err, ErrContentFlagged)
	assert.Equal(t, 0, comments, "flagged comments never reach the counter")

	require.Len(t, f.reviewRepo.createdEntries, 1)
	entry := f.reviewRepo.createdEntries[0]
	assert.Equal(t, "evt-1", entry.EventID)
	assert.Equal(t, uint64(42), entry.AuthorID)
	assert.Equal(t, moderation.ReasonExtremeBias, entry.Reason)
	assert.NotEmpty(t, entry.ID)

	assert.Contains(t, f.statsRepo.incrementedColumns, "flagged_content_count")
}

func TestRecordCommentHateSpeechHighSeverity(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	err := f.svc.RecordComment(context.Background(), "evt-1", 42, "death to all dissenters")
	assert.ErrorIs(t, err, ErrContentFlagged)

	require.Len(t, f.reviewRepo.createdEntries, 1)
	assert.Equal(t, moderation.ReasonHateSpeech, f.reviewRepo.createdEntries[0].Reason)
	assert.Equal(t, string(moderation.SeverityHigh), f.reviewRepo.createdEntries[0].Severity)
}

func TestRecordCommentRateLimited(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))
	f.svc.limiter = denyAllLimiter(now.Add(time.Minute))

	comments := 0
	f.eventRepo.incrementCommentsFunc = func(ctx context.Context, id string) error {
		comments++
		return nil
	}

	err := f.svc.RecordComment(context.Background(), "evt-1", 42, "perfectly fine comment")
	assert.ErrorIs(t, err, ErrCommentRateLimited)
	assert.Equal(t, 0, comments)
	assert.Empty(t, f.reviewRepo.createdEntries, "rate-limited comments are not moderated")
}

func TestRecordShareRefreshesRank(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	var savedScore float64
	saved := false
	f.eventRepo.saveRankScoreFunc = func(ctx context.Context, id string, rankScore float64) error {
		saved = true
		savedScore = rankScore
		return nil
	}

	require.NoError(t, f.svc.RecordShare(context.Background(), "evt-1", 42))
	assert.True(t, saved)
	assert.Equal(t, 68.0, savedScore)
}

func TestRefreshEventSurvivesWriteFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEngagementFixture(now, plainEvent("evt-1", now))

	f.eventRepo.saveRankScoreFunc = func(ctx context.Context, id string, rankScore float64) error {
		return assert.AnError
	}

	// Derived-score write failures are logged, not propagated
	f.svc.RefreshEvent(context.Background(), "evt-1")
}
