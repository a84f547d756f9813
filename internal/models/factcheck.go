package models

import "time"

// Citation is a single piece of evidence returned by a provider
type Citation struct {
	SourceName  string     `validate:"required"`
	Title       string
	URL         string     `validate:"http_url"`
	PublishedAt *time.Time
	Description string
}

// ReasonerVerdict is the structured response of the AI reasoning step
type ReasonerVerdict struct {
	Title               string   `json:"title"`
	Summary             string   `json:"summary"`
	AgreementRatio      float64  `json:"agreementRatio"`
	VerificationSummary string   `json:"verificationSummary"`
	IsVerified          bool     `json:"isVerified"`
	Contradictions      []string `json:"contradictions"`
	KeyFindings         []string `json:"keyFindings"`
}

// FactCheckResult is the aggregated verdict for an event.
// CredibilityScore is on the canonical 0-100 scale; the internal 0-1 base
// score is converted exactly once when the result is assembled.
type FactCheckResult struct {
	EventID          string
	CredibilityScore float64
	Verified         bool
	Accepted         bool
	RejectionReasons []string
	Summary          string
	Sources          []Citation
	SourceDomains    []string
	AgreementRatio   float64
	RecencyDays      int
	CheckedAt        time.Time
}

// Rejection reason identifiers recorded when acceptance thresholds fail
const (
	RejectionBelowScoreFloor      = "below_score_floor"
	RejectionInsufficientSources  = "insufficient_independent_sources"
)
