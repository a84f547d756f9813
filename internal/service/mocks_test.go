package service

import (
	"context"
	"errors"
	"time"

	"veritas/ranking-service/internal/models"
)

// Mock repositories

type mockEventRepository struct {
	findByIDFunc             func(ctx context.Context, id string) (*models.Event, error)
	listRankableFunc         func(ctx context.Context, limit int) ([]*models.Event, error)
	saveRankScoreFunc        func(ctx context.Context, id string, rankScore float64) error
	saveFactCheckOutcomeFunc func(ctx context.Context, id string, credibility float64, status models.FactCheckStatus, summary string, rejections []string) error
	adjustVoteTalliesFunc    func(ctx context.Context, id string, upDelta, downDelta int) error
	incrementViewsFunc       func(ctx context.Context, id string) error
	incrementCommentsFunc    func(ctx context.Context, id string) error
	incrementSharesFunc      func(ctx context.Context, id string) error
	addLikeFunc              func(ctx context.Context, eventID string, userID uint64) (bool, error)
	removeLikeFunc           func(ctx context.Context, eventID string, userID uint64) (bool, error)
}

func (m *mockEventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockEventRepository) ListRankable(ctx context.Context, limit int) ([]*models.Event, error) {
	if m.listRankableFunc != nil {
		return m.listRankableFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockEventRepository) SaveRankScore(ctx context.Context, id string, rankScore float64) error {
	if m.saveRankScoreFunc != nil {
		return m.saveRankScoreFunc(ctx, id, rankScore)
	}
	return nil
}

func (m *mockEventRepository) SaveFactCheckOutcome(ctx context.Context, id string, credibility float64, status models.FactCheckStatus, summary string, rejections []string) error {
	if m.saveFactCheckOutcomeFunc != nil {
		return m.saveFactCheckOutcomeFunc(ctx, id, credibility, status, summary, rejections)
	}
	return nil
}

func (m *mockEventRepository) AdjustVoteTallies(ctx context.Context, id string, upDelta, downDelta int) error {
	if m.adjustVoteTalliesFunc != nil {
		return m.adjustVoteTalliesFunc(ctx, id, upDelta, downDelta)
	}
	return nil
}

func (m *mockEventRepository) IncrementViews(ctx context.Context, id string) error {
	if m.incrementViewsFunc != nil {
		return m.incrementViewsFunc(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) IncrementComments(ctx context.Context, id string) error {
	if m.incrementCommentsFunc != nil {
		return m.incrementCommentsFunc(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) IncrementShares(ctx context.Context, id string) error {
	if m.incrementSharesFunc != nil {
		return m.incrementSharesFunc(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) AddLike(ctx context.Context, eventID string, userID uint64) (bool, error) {
	if m.addLikeFunc != nil {
		return m.addLikeFunc(ctx, eventID, userID)
	}
	return false, errors.New("not implemented")
}

func (m *mockEventRepository) RemoveLike(ctx context.Context, eventID string, userID uint64) (bool, error) {
	if m.removeLikeFunc != nil {
		return m.removeLikeFunc(ctx, eventID, userID)
	}
	return false, errors.New("not implemented")
}

type mockUserStatsRepository struct {
	findByUserIDFunc            func(ctx context.Context, userID uint64) (*models.UserStats, error)
	listUserIDsFunc             func(ctx context.Context) ([]uint64, error)
	saveTrustCacheFunc          func(ctx context.Context, userID uint64, score int, cachedAt time.Time) error
	saveVoteRingFunc            func(ctx context.Context, userID uint64, ring []time.Time, burstFlag bool) error
	incrementedColumns          []string
}

func (m *mockUserStatsRepository) FindByUserID(ctx context.Context, userID uint64) (*models.UserStats, error) {
	if m.findByUserIDFunc != nil {
		return m.findByUserIDFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserStatsRepository) ListUserIDs(ctx context.Context) ([]uint64, error) {
	if m.listUserIDsFunc != nil {
		return m.listUserIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserStatsRepository) SaveTrustCache(ctx context.Context, userID uint64, score int, cachedAt time.Time) error {
	if m.saveTrustCacheFunc != nil {
		return m.saveTrustCacheFunc(ctx, userID, score, cachedAt)
	}
	return nil
}

func (m *mockUserStatsRepository) SaveVoteRing(ctx context.Context, userID uint64, ring []time.Time, burstFlag bool) error {
	if m.saveVoteRingFunc != nil {
		return m.saveVoteRingFunc(ctx, userID, ring, burstFlag)
	}
	return nil
}

func (m *mockUserStatsRepository) IncrementTotalVotes(ctx context.Context, userID uint64) error {
	m.incrementedColumns = append(m.incrementedColumns, "total_votes")
	return nil
}

func (m *mockUserStatsRepository) IncrementAlignedVotes(ctx context.Context, userID uint64) error {
	m.incrementedColumns = append(m.incrementedColumns, "aligned_votes")
	return nil
}

func (m *mockUserStatsRepository) IncrementLowCredibilityUpvotes(ctx context.Context, userID uint64) error {
	m.incrementedColumns = append(m.incrementedColumns, "low_credibility_upvotes")
	return nil
}

func (m *mockUserStatsRepository) IncrementApprovedCorrections(ctx context.Context, userID uint64) error {
	m.incrementedColumns = append(m.incrementedColumns, "approved_corrections")
	return nil
}

func (m *mockUserStatsRepository) IncrementFlaggedContent(ctx context.Context, userID uint64) error {
	m.incrementedColumns = append(m.incrementedColumns, "flagged_content_count")
	return nil
}

func (m *mockUserStatsRepository) IncrementIPViolations(ctx context.Context, userID uint64) error {
	m.incrementedColumns = append(m.incrementedColumns, "ip_violations")
	return nil
}

type mockVoteRepository struct {
	findByUserAndEventFunc  func(ctx context.Context, userID uint64, eventID string) (*models.Vote, error)
	upsertFunc              func(ctx context.Context, vote *models.Vote) error
	countConsensusVotesFunc func(ctx context.Context, eventID string) (int64, int64, error)
	listConsensusVotesFunc  func(ctx context.Context, eventID string) ([]*models.Vote, error)
}

func (m *mockVoteRepository) FindByUserAndEvent(ctx context.Context, userID uint64, eventID string) (*models.Vote, error) {
	if m.findByUserAndEventFunc != nil {
		return m.findByUserAndEventFunc(ctx, userID, eventID)
	}
	return nil, nil
}

func (m *mockVoteRepository) Upsert(ctx context.Context, vote *models.Vote) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, vote)
	}
	return nil
}

func (m *mockVoteRepository) CountConsensusVotes(ctx context.Context, eventID string) (int64, int64, error) {
	if m.countConsensusVotesFunc != nil {
		return m.countConsensusVotesFunc(ctx, eventID)
	}
	return 0, 0, nil
}

func (m *mockVoteRepository) ListConsensusVotes(ctx context.Context, eventID string) ([]*models.Vote, error) {
	if m.listConsensusVotesFunc != nil {
		return m.listConsensusVotesFunc(ctx, eventID)
	}
	return nil, nil
}

type mockSourceTrustRepository struct {
	findFunc         func(ctx context.Context, domain string) (*models.SourceTrustRecord, error)
	findManyFunc     func(ctx context.Context, domains []string) (map[string]*models.SourceTrustRecord, error)
	applyOutcomeFunc func(ctx context.Context, domain string, delta float64, corroborated bool) error
}

func (m *mockSourceTrustRepository) Find(ctx context.Context, domain string) (*models.SourceTrustRecord, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, domain)
	}
	return nil, nil
}

func (m *mockSourceTrustRepository) FindMany(ctx context.Context, domains []string) (map[string]*models.SourceTrustRecord, error) {
	if m.findManyFunc != nil {
		return m.findManyFunc(ctx, domains)
	}
	return map[string]*models.SourceTrustRecord{}, nil
}

func (m *mockSourceTrustRepository) ApplyOutcome(ctx context.Context, domain string, delta float64, corroborated bool) error {
	if m.applyOutcomeFunc != nil {
		return m.applyOutcomeFunc(ctx, domain, delta, corroborated)
	}
	return nil
}

type mockReviewQueueRepository struct {
	createFunc      func(ctx context.Context, entry *models.ReviewQueueEntry) error
	createdEntries  []*models.ReviewQueueEntry
}

func (m *mockReviewQueueRepository) Create(ctx context.Context, entry *models.ReviewQueueEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	m.createdEntries = append(m.createdEntries, entry)
	return nil
}

func (m *mockReviewQueueRepository) ListPending(ctx context.Context, limit int) ([]*models.ReviewQueueEntry, error) {
	return m.createdEntries, nil
}

// Mock external capabilities

type mockEvidenceProvider struct {
	name       string
	searchFunc func(ctx context.Context, claim string) ([]models.Citation, error)
}

func (m *mockEvidenceProvider) Name() string { return m.name }

func (m *mockEvidenceProvider) Search(ctx context.Context, claim string) ([]models.Citation, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, claim)
	}
	return nil, nil
}

type mockClaimReasoner struct {
	analyzeFunc func(ctx context.Context, claim string, citations []models.Citation) (*models.ReasonerVerdict, error)
}

func (m *mockClaimReasoner) Analyze(ctx context.Context, claim string, citations []models.Citation) (*models.ReasonerVerdict, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, claim, citations)
	}
	return nil, errors.New("not implemented")
}
