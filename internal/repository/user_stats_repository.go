package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"veritas/ranking-service/internal/models"
)

type UserStatsRepository interface {
	FindByUserID(ctx context.Context, userID uint64) (*models.UserStats, error)
	ListUserIDs(ctx context.Context) ([]uint64, error)
	SaveTrustCache(ctx context.Context, userID uint64, score int, cachedAt time.Time) error
	SaveVoteRing(ctx context.Context, userID uint64, ring []time.Time, burstFlag bool) error
	IncrementTotalVotes(ctx context.Context, userID uint64) error
	IncrementAlignedVotes(ctx context.Context, userID uint64) error
	IncrementLowCredibilityUpvotes(ctx context.Context, userID uint64) error
	IncrementApprovedCorrections(ctx context.Context, userID uint64) error
	IncrementFlaggedContent(ctx context.Context, userID uint64) error
	IncrementIPViolations(ctx context.Context, userID uint64) error
}

type userStatsRepository struct {
	db *sql.DB
}

func NewUserStatsRepository(db *sql.DB) UserStatsRepository {
	return &userStatsRepository{db: db}
}

func (r *userStatsRepository) FindByUserID(ctx context.Context, userID uint64) (*models.UserStats, error) {
	query := `
		SELECT user_id, account_created_at, email_verified, total_votes, aligned_votes,
		       low_credibility_upvotes, approved_corrections, flagged_content_count,
		       ip_violations, recent_vote_timestamps, burst_voting_flag,
		       cached_trust_score, trust_cached_at
		FROM user_stats
		WHERE user_id = ?
	`
	var stats models.UserStats
	var ringJSON []byte
	var cachedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID, &stats.AccountCreatedAt, &stats.EmailVerified,
		&stats.TotalVotes, &stats.AlignedVotes, &stats.LowCredibilityUpvotes,
		&stats.ApprovedCorrections, &stats.FlaggedContentCount, &stats.IPViolations,
		&ringJSON, &stats.BurstVotingFlag, &stats.CachedTrustScore, &cachedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user stats: %w", err)
	}

	if len(ringJSON) > 0 {
		if err := json.Unmarshal(ringJSON, &stats.RecentVoteTimestamps); err != nil {
			return nil, fmt.Errorf("failed to decode vote timestamps: %w", err)
		}
	}
	if cachedAt.Valid {
		stats.TrustCachedAt = cachedAt.Time
	}
	return &stats, nil
}

func (r *userStatsRepository) ListUserIDs(ctx context.Context) ([]uint64, error) {
	query := `SELECT user_id FROM user_stats ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var userIDs []uint64
	for rows.Next() {
		var userID uint64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}
	return userIDs, nil
}

// SaveTrustCache overwrites the derived trust cache, last-writer-wins. The
// authoritative counters are never touched here.
func (r *userStatsRepository) SaveTrustCache(ctx context.Context, userID uint64, score int, cachedAt time.Time) error {
	query := `
		UPDATE user_stats
		SET cached_trust_score = ?, trust_cached_at = ?
		WHERE user_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, score, cachedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to save trust cache: %w", err)
	}
	return nil
}

func (r *userStatsRepository) SaveVoteRing(ctx context.Context, userID uint64, ring []time.Time, burstFlag bool) error {
	ringJSON, err := json.Marshal(ring)
	if err != nil {
		return fmt.Errorf("failed to encode vote timestamps: %w", err)
	}
	query := `
		UPDATE user_stats
		SET recent_vote_timestamps = ?, burst_voting_flag = ?
		WHERE user_id = ?
	`
	_, err = r.db.ExecContext(ctx, query, ringJSON, burstFlag, userID)
	if err != nil {
		return fmt.Errorf("failed to save vote ring: %w", err)
	}
	return nil
}

func (r *userStatsRepository) IncrementTotalVotes(ctx context.Context, userID uint64) error {
	return r.incrementCounter(ctx, userID, "total_votes")
}

func (r *userStatsRepository) IncrementAlignedVotes(ctx context.Context, userID uint64) error {
	return r.incrementCounter(ctx, userID, "aligned_votes")
}

func (r *userStatsRepository) IncrementLowCredibilityUpvotes(ctx context.Context, userID uint64) error {
	return r.incrementCounter(ctx, userID, "low_credibility_upvotes")
}

func (r *userStatsRepository) IncrementApprovedCorrections(ctx context.Context, userID uint64) error {
	return r.incrementCounter(ctx, userID, "approved_corrections")
}

func (r *userStatsRepository) IncrementFlaggedContent(ctx context.Context, userID uint64) error {
	return r.incrementCounter(ctx, userID, "flagged_content_count")
}

func (r *userStatsRepository) IncrementIPViolations(ctx context.Context, userID uint64) error {
	return r.incrementCounter(ctx, userID, "ip_violations")
}

func (r *userStatsRepository) incrementCounter(ctx context.Context, userID uint64, column string) error {
	query := fmt.Sprintf(`
		UPDATE user_stats
		SET %s = %s + 1
		WHERE user_id = ?
	`, column, column)
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return nil
}
