package models

import "time"

// ReviewStatus is the disposition of a queued moderation entry
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewQueueEntry holds content the moderator flagged. Flagged content is
// queued for human review with the triggering reason, never discarded.
type ReviewQueueEntry struct {
	ID        string       `db:"id"`
	AuthorID  uint64       `db:"author_id"`
	EventID   string       `db:"event_id"`
	Content   string       `db:"content"`
	Reason    string       `db:"reason"`
	Severity  string       `db:"severity"`
	Status    ReviewStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
}
