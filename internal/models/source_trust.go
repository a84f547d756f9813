package models

import "time"

// SourceTrustRecord is the running reliability ledger entry for a citation
// domain. TrustScore has a floor of zero and no upper bound; records are
// created on first reference and never deleted.
type SourceTrustRecord struct {
	Domain            string    `db:"domain"`
	TrustScore        float64   `db:"trust_score"`
	VerificationCount int64     `db:"verification_count"`
	SuccessCount      int64     `db:"success_count"`
	FailureCount      int64     `db:"failure_count"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}
