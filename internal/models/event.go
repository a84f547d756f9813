package models

import "time"

// Category is the fixed topic tag set for events
type Category string

const (
	CategoryPolitics   Category = "politics"
	CategoryWorld      Category = "world"
	CategoryBusiness   Category = "business"
	CategoryTechnology Category = "technology"
	CategoryScience    Category = "science"
	CategoryHealth     Category = "health"
	CategorySports     Category = "sports"
	CategoryCulture    Category = "culture"
)

// BiasLabel classifies the editorial slant attributed to an event
type BiasLabel string

const (
	BiasNeutral         BiasLabel = "neutral"
	BiasLeftLeaning     BiasLabel = "left-leaning"
	BiasRightLeaning    BiasLabel = "right-leaning"
	BiasLeft            BiasLabel = "left"
	BiasRight           BiasLabel = "right"
	BiasStateControlled BiasLabel = "state-controlled"
	BiasConspiracy      BiasLabel = "conspiracy"
	BiasSensational     BiasLabel = "sensational"
	BiasUnknown         BiasLabel = "unknown"
)

// FactCheckStatus is the lifecycle state of an event's verification
type FactCheckStatus string

const (
	FactCheckPending    FactCheckStatus = "pending"
	FactCheckVerified   FactCheckStatus = "verified"
	FactCheckUnverified FactCheckStatus = "unverified"
	FactCheckDisputed   FactCheckStatus = "disputed"
	FactCheckFalse      FactCheckStatus = "false"
)

// Event represents a news/historical claim record.
// CredibilityScore is nil until the event has been fact-checked; RankScore is
// a derived field the engine owns and overwrites with last-writer-wins writes.
type Event struct {
	ID               string           `db:"id"`
	Title            string           `db:"title" validate:"required"`
	Description      string           `db:"description"`
	LongDescription  string           `db:"long_description"`
	Category         Category         `db:"category" validate:"event_category"`
	Location         string           `db:"location"`
	Date             time.Time        `db:"date"`
	CreatedAt        time.Time        `db:"created_at"`
	CredibilityScore *float64         `db:"credibility_score"`
	ImportanceScore  float64          `db:"importance_score"`
	RankScore        float64          `db:"rank_score"`
	IsBreaking       bool             `db:"is_breaking"`
	BiasLabel        BiasLabel        `db:"bias_label" validate:"bias_label"`
	FactCheckStatus  FactCheckStatus  `db:"fact_check_status"`
	Sources          []string         `db:"sources"`
	Views            int64            `db:"views"`
	Upvotes          int64            `db:"upvotes"`
	Downvotes        int64            `db:"downvotes"`
	CommentCount     int64            `db:"comment_count"`
	Shares           int64            `db:"shares"`
	DisputedClaims   []string         `db:"disputed_claims"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

// Age returns the time since the event was created
func (e *Event) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// CredibilityOrDefault returns the event's credibility score, falling back to
// the given default when the event has not been fact-checked yet
func (e *Event) CredibilityOrDefault(def float64) float64 {
	if e.CredibilityScore == nil {
		return def
	}
	return *e.CredibilityScore
}
