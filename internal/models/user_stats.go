package models

import "time"

// UserStats is the per-user accumulator the trust score derives from.
// CachedTrustScore is a derived field; the authoritative counters are the
// other columns. RecentVoteTimestamps holds the last 20 vote times.
type UserStats struct {
	UserID               uint64      `db:"user_id"`
	AccountCreatedAt     time.Time   `db:"account_created_at"`
	EmailVerified        bool        `db:"email_verified"`
	TotalVotes           int64       `db:"total_votes"`
	AlignedVotes         int64       `db:"aligned_votes"`
	LowCredibilityUpvotes int64      `db:"low_credibility_upvotes"`
	ApprovedCorrections  int64       `db:"approved_corrections"`
	FlaggedContentCount  int64       `db:"flagged_content_count"`
	IPViolations         int64       `db:"ip_violations"`
	RecentVoteTimestamps []time.Time `db:"recent_vote_timestamps"`
	BurstVotingFlag      bool        `db:"burst_voting_flag"`
	CachedTrustScore     int         `db:"cached_trust_score"`
	TrustCachedAt        time.Time   `db:"trust_cached_at"`
}

// AccountAge returns the account age at the given instant
func (s *UserStats) AccountAge(now time.Time) time.Duration {
	return now.Sub(s.AccountCreatedAt)
}

// PushVoteTimestamp appends a vote time to the bounded ring, evicting the
// oldest entry once the ring is full
func (s *UserStats) PushVoteTimestamp(ts time.Time, ringSize int) {
	s.RecentVoteTimestamps = append(s.RecentVoteTimestamps, ts)
	if len(s.RecentVoteTimestamps) > ringSize {
		s.RecentVoteTimestamps = s.RecentVoteTimestamps[len(s.RecentVoteTimestamps)-ringSize:]
	}
}
