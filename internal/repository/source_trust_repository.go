package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"veritas/ranking-service/internal/models"
)

type SourceTrustRepository interface {
	Find(ctx context.Context, domain string) (*models.SourceTrustRecord, error)
	FindMany(ctx context.Context, domains []string) (map[string]*models.SourceTrustRecord, error)
	ApplyOutcome(ctx context.Context, domain string, delta float64, corroborated bool) error
}

type sourceTrustRepository struct {
	db *sql.DB
}

func NewSourceTrustRepository(db *sql.DB) SourceTrustRepository {
	return &sourceTrustRepository{db: db}
}

func (r *sourceTrustRepository) Find(ctx context.Context, domain string) (*models.SourceTrustRecord, error) {
	query := `
		SELECT domain, trust_score, verification_count, success_count, failure_count,
		       created_at, updated_at
		FROM source_trust
		WHERE domain = ?
	`
	var record models.SourceTrustRecord
	err := r.db.QueryRowContext(ctx, query, domain).Scan(
		&record.Domain, &record.TrustScore, &record.VerificationCount,
		&record.SuccessCount, &record.FailureCount, &record.CreatedAt, &record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find source trust record: %w", err)
	}
	return &record, nil
}

func (r *sourceTrustRepository) FindMany(ctx context.Context, domains []string) (map[string]*models.SourceTrustRecord, error) {
	if len(domains) == 0 {
		return map[string]*models.SourceTrustRecord{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(domains)), ",")
	query := fmt.Sprintf(`
		SELECT domain, trust_score, verification_count, success_count, failure_count,
		       created_at, updated_at
		FROM source_trust
		WHERE domain IN (%s)
	`, placeholders)

	args := make([]interface{}, len(domains))
	for i, domain := range domains {
		args[i] = domain
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find source trust records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*models.SourceTrustRecord)
	for rows.Next() {
		var record models.SourceTrustRecord
		if err := rows.Scan(
			&record.Domain, &record.TrustScore, &record.VerificationCount,
			&record.SuccessCount, &record.FailureCount, &record.CreatedAt, &record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan source trust record: %w", err)
		}
		records[record.Domain] = &record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source trust records: %w", err)
	}
	return records, nil
}

// ApplyOutcome creates the domain's ledger record on first reference and moves
// its score additively in one statement. The score floors at zero and records
// are never deleted.
func (r *sourceTrustRepository) ApplyOutcome(ctx context.Context, domain string, delta float64, corroborated bool) error {
	successDelta := 0
	failureDelta := 0
	if corroborated {
		successDelta = 1
	} else {
		failureDelta = 1
	}

	now := time.Now()
	query := `
		INSERT INTO source_trust
			(domain, trust_score, verification_count, success_count, failure_count, created_at, updated_at)
		VALUES (?, GREATEST(0, 1.0 + ?), 1, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			trust_score = GREATEST(0, trust_score + ?),
			verification_count = verification_count + 1,
			success_count = success_count + ?,
			failure_count = failure_count + ?,
			updated_at = VALUES(updated_at)
	`
	_, err := r.db.ExecContext(ctx, query,
		domain, delta, successDelta, failureDelta, now, now,
		delta, successDelta, failureDelta)
	if err != nil {
		return fmt.Errorf("failed to apply source trust outcome: %w", err)
	}
	return nil
}
