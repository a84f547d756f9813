package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"veritas/ranking-service/internal/models"
)

type ReviewQueueRepository interface {
	Create(ctx context.Context, entry *models.ReviewQueueEntry) error
	ListPending(ctx context.Context, limit int) ([]*models.ReviewQueueEntry, error)
}

type reviewQueueRepository struct {
	db *sql.DB
}

func NewReviewQueueRepository(db *sql.DB) ReviewQueueRepository {
	return &reviewQueueRepository{db: db}
}

func (r *reviewQueueRepository) Create(ctx context.Context, entry *models.ReviewQueueEntry) error {
	query := `
		INSERT INTO review_queue (id, author_id, event_id, content, reason, severity, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Status == "" {
		entry.Status = models.ReviewPending
	}
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.AuthorID, entry.EventID, entry.Content,
		entry.Reason, entry.Severity, entry.Status, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review queue entry: %w", err)
	}
	return nil
}

func (r *reviewQueueRepository) ListPending(ctx context.Context, limit int) ([]*models.ReviewQueueEntry, error) {
	query := `
		SELECT id, author_id, event_id, content, reason, severity, status, created_at
		FROM review_queue
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	defer rows.Close()

	var entries []*models.ReviewQueueEntry
	for rows.Next() {
		var entry models.ReviewQueueEntry
		if err := rows.Scan(
			&entry.ID, &entry.AuthorID, &entry.EventID, &entry.Content,
			&entry.Reason, &entry.Severity, &entry.Status, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review queue entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review queue: %w", err)
	}
	return entries, nil
}
