package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"veritas/ranking-service/internal/models"
)

type VoteRepository interface {
	FindByUserAndEvent(ctx context.Context, userID uint64, eventID string) (*models.Vote, error)
	Upsert(ctx context.Context, vote *models.Vote) error
	CountConsensusVotes(ctx context.Context, eventID string) (up int64, down int64, err error)
	ListConsensusVotes(ctx context.Context, eventID string) ([]*models.Vote, error)
}

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) FindByUserAndEvent(ctx context.Context, userID uint64, eventID string) (*models.Vote, error) {
	query := `
		SELECT id, user_id, event_id, direction, counted_in_consensus, created_at, updated_at
		FROM votes
		WHERE user_id = ? AND event_id = ?
	`
	var vote models.Vote
	err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(
		&vote.ID, &vote.UserID, &vote.EventID, &vote.Direction,
		&vote.CountedInConsensus, &vote.CreatedAt, &vote.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return &vote, nil
}

// Upsert writes the single active vote for the (user, event) pair. The unique
// key on (user_id, event_id) enforces at most one active vote.
func (r *voteRepository) Upsert(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (user_id, event_id, direction, counted_in_consensus, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			direction = VALUES(direction),
			counted_in_consensus = VALUES(counted_in_consensus),
			updated_at = VALUES(updated_at)
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		vote.UserID, vote.EventID, vote.Direction, vote.CountedInConsensus, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

// CountConsensusVotes tallies only votes from users who held voting influence
// at cast time; audit-only votes are excluded from consensus.
func (r *voteRepository) CountConsensusVotes(ctx context.Context, eventID string) (int64, int64, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'up' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'down' THEN 1 ELSE 0 END), 0)
		FROM votes
		WHERE event_id = ? AND counted_in_consensus = TRUE
	`
	var up, down int64
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&up, &down)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count consensus votes: %w", err)
	}
	return up, down, nil
}

func (r *voteRepository) ListConsensusVotes(ctx context.Context, eventID string) ([]*models.Vote, error) {
	query := `
		SELECT id, user_id, event_id, direction, counted_in_consensus, created_at, updated_at
		FROM votes
		WHERE event_id = ? AND counted_in_consensus = TRUE AND direction != 'none'
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consensus votes: %w", err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		var vote models.Vote
		if err := rows.Scan(
			&vote.ID, &vote.UserID, &vote.EventID, &vote.Direction,
			&vote.CountedInConsensus, &vote.CreatedAt, &vote.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}
