package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"veritas/ranking-service/internal/models"
)

type EventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	ListRankable(ctx context.Context, limit int) ([]*models.Event, error)
	SaveRankScore(ctx context.Context, id string, rankScore float64) error
	SaveFactCheckOutcome(ctx context.Context, id string, credibility float64, status models.FactCheckStatus, summary string, rejections []string) error
	AdjustVoteTallies(ctx context.Context, id string, upDelta, downDelta int) error
	IncrementViews(ctx context.Context, id string) error
	IncrementComments(ctx context.Context, id string) error
	IncrementShares(ctx context.Context, id string) error
	AddLike(ctx context.Context, eventID string, userID uint64) (bool, error)
	RemoveLike(ctx context.Context, eventID string, userID uint64) (bool, error)
}

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, title, description, long_description, category, location, date,
		       created_at, credibility_score, importance_score, rank_score, is_breaking,
		       bias_label, fact_check_status, sources, views, upvotes, downvotes,
		       comment_count, shares, disputed_claims, updated_at
		FROM events
		WHERE id = ?
	`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) ListRankable(ctx context.Context, limit int) ([]*models.Event, error) {
	query := `
		SELECT id, title, description, long_description, category, location, date,
		       created_at, credibility_score, importance_score, rank_score, is_breaking,
		       bias_label, fact_check_status, sources, views, upvotes, downvotes,
		       comment_count, shares, disputed_claims, updated_at
		FROM events
		ORDER BY rank_score DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankable events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// SaveRankScore overwrites the derived rank score, last-writer-wins. The rank
// is recomputable, so lost updates are repaired by the next sweep.
func (r *eventRepository) SaveRankScore(ctx context.Context, id string, rankScore float64) error {
	query := `
		UPDATE events
		SET rank_score = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, rankScore, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save rank score: %w", err)
	}
	return nil
}

// SaveFactCheckOutcome persists the full verification verdict, including the
// threshold rejections, so a rejected event stays distinguishable from a
// low-confidence accepted one after the run is gone.
func (r *eventRepository) SaveFactCheckOutcome(ctx context.Context, id string, credibility float64, status models.FactCheckStatus, summary string, rejections []string) error {
	if rejections == nil {
		rejections = []string{}
	}
	rejectionsJSON, err := json.Marshal(rejections)
	if err != nil {
		return fmt.Errorf("failed to encode rejections: %w", err)
	}
	query := `
		UPDATE events
		SET credibility_score = ?, fact_check_status = ?, fact_check_summary = ?,
		    fact_check_rejections = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query, credibility, status, summary, rejectionsJSON, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save fact check outcome: %w", err)
	}
	return nil
}

// AdjustVoteTallies moves the vote counters by the given deltas in a single
// statement so concurrent votes on the same event never lose an update.
func (r *eventRepository) AdjustVoteTallies(ctx context.Context, id string, upDelta, downDelta int) error {
	if upDelta == 0 && downDelta == 0 {
		return nil
	}
	query := `
		UPDATE events
		SET upvotes = GREATEST(0, upvotes + ?),
		    downvotes = GREATEST(0, downvotes + ?),
		    updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, upDelta, downDelta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to adjust vote tallies: %w", err)
	}
	return nil
}

func (r *eventRepository) IncrementViews(ctx context.Context, id string) error {
	return r.incrementCounter(ctx, id, "views")
}

func (r *eventRepository) IncrementComments(ctx context.Context, id string) error {
	return r.incrementCounter(ctx, id, "comment_count")
}

func (r *eventRepository) IncrementShares(ctx context.Context, id string) error {
	return r.incrementCounter(ctx, id, "shares")
}

func (r *eventRepository) incrementCounter(ctx context.Context, id, column string) error {
	query := fmt.Sprintf(`
		UPDATE events
		SET %s = %s + 1, updated_at = ?
		WHERE id = ?
	`, column, column)
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return nil
}

// AddLike records membership in the event's liked-by set. Returns false when
// the user already liked the event; the unique key makes a duplicate like a
// no-op instead of a double increment.
func (r *eventRepository) AddLike(ctx context.Context, eventID string, userID uint64) (bool, error) {
	query := `
		INSERT IGNORE INTO event_likes (event_id, user_id, created_at)
		VALUES (?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, eventID, userID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read like result: %w", err)
	}
	return affected > 0, nil
}

func (r *eventRepository) RemoveLike(ctx context.Context, eventID string, userID uint64) (bool, error) {
	query := `
		DELETE FROM event_likes
		WHERE event_id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read unlike result: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var credibility sql.NullFloat64
	var sourcesJSON, disputedJSON []byte

	err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.LongDescription,
		&event.Category, &event.Location, &event.Date, &event.CreatedAt,
		&credibility, &event.ImportanceScore, &event.RankScore, &event.IsBreaking,
		&event.BiasLabel, &event.FactCheckStatus, &sourcesJSON, &event.Views,
		&event.Upvotes, &event.Downvotes, &event.CommentCount, &event.Shares,
		&disputedJSON, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if credibility.Valid {
		event.CredibilityScore = &credibility.Float64
	}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &event.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources: %w", err)
		}
	}
	if len(disputedJSON) > 0 {
		if err := json.Unmarshal(disputedJSON, &event.DisputedClaims); err != nil {
			return nil, fmt.Errorf("failed to decode disputed claims: %w", err)
		}
	}
	return &event, nil
}
