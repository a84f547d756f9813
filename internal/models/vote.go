package models

import "time"

// VoteDirection is the current direction of a user's vote on an event
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
	VoteNone VoteDirection = "none"
)

// Vote represents the single active vote a user holds on an event.
// CountedInConsensus records whether the voter had voting influence at cast
// time; audit rows with CountedInConsensus=false are kept but excluded from
// alignment calculations.
type Vote struct {
	ID                 uint64        `db:"id"`
	UserID             uint64        `db:"user_id"`
	EventID            string        `db:"event_id"`
	Direction          VoteDirection `db:"direction"`
	CountedInConsensus bool          `db:"counted_in_consensus"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

// TallyDelta returns the upvote and downvote adjustments for a transition
// from one direction to another. Each side touched moves by exactly one.
func TallyDelta(from, to VoteDirection) (upDelta, downDelta int) {
	if from == to {
		return 0, 0
	}
	switch from {
	case VoteUp:
		upDelta--
	case VoteDown:
		downDelta--
	}
	switch to {
	case VoteUp:
		upDelta++
	case VoteDown:
		downDelta++
	}
	return upDelta, downDelta
}
