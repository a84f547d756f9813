package ratelimit

import (
	"context"
	"fmt"
	"time"

	"veritas/ranking-service/internal/constants"
	"veritas/ranking-service/pkg/logger"
	"veritas/ranking-service/pkg/metrics"
)

// Action identifies the rate-limited action kind
type Action string

const (
	ActionVote    Action = "vote"
	ActionComment Action = "comment"
)

// Policy is a fixed-window allowance for one action kind
type Policy struct {
	Limit  int
	Window time.Duration
}

// PolicyFor returns the policy for an action kind
func PolicyFor(action Action) Policy {
	switch action {
	case ActionComment:
		return Policy{Limit: constants.CommentLimitPerWindow, Window: constants.CommentLimitWindow}
	default:
		return Policy{Limit: constants.VoteLimitPerWindow, Window: constants.VoteLimitWindow}
	}
}

// Decision is the outcome of a reservation attempt
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store reserves one allowance atomically: the check and the increment are a
// single operation, so a caller can never pass the check twice for one action.
type Store interface {
	Reserve(ctx context.Context, key string, policy Policy, now time.Time) (Decision, error)
}

// Limiter gates state-mutating user actions by per-user, per-action windows.
// On store failure it fails open: a limiter outage must not block all user
// interaction.
type Limiter struct {
	store   Store
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewLimiter creates a limiter over the given store
func NewLimiter(store Store, log *logger.Logger, m *metrics.Metrics) *Limiter {
	return &Limiter{store: store, log: log, metrics: m}
}

// Reserve attempts to consume one allowance for the user and action
func (l *Limiter) Reserve(ctx context.Context, userID uint64, action Action) Decision {
	policy := PolicyFor(action)
	key := fmt.Sprintf("ratelimit:%s:%d", action, userID)

	decision, err := l.store.Reserve(ctx, key, policy, time.Now())
	if err != nil {
		// Fail open: allow the action rather than letting a limiter-store
		// outage block all traffic
		l.log.WithUserID(userID).WithField("action", string(action)).
			WithField("error", err.Error()).Warn("rate limit store failed, allowing action")
		if l.metrics != nil {
			l.metrics.RateLimitDecisions.WithLabelValues(string(action), "fail_open").Inc()
		}
		return Decision{Allowed: true, Remaining: policy.Limit}
	}

	if l.metrics != nil {
		outcome := "allowed"
		if !decision.Allowed {
			outcome = "denied"
		}
		l.metrics.RateLimitDecisions.WithLabelValues(string(action), outcome).Inc()
	}
	return decision
}
