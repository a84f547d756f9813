package service

import (
	"math"
	"sort"
	"time"

	"veritas/ranking-service/internal/constants"
	"veritas/ranking-service/internal/models"
)

// ScoredEvent pairs an event with its computed rank score
type ScoredEvent struct {
	Event *models.Event
	Score float64
}

// RankService computes the composite 0-100 rank score used to order events.
// Ranking a candidate set is a coordinated two-pass computation: provisional
// scores are sorted, the category-diversity penalty is applied against that
// provisional order, then the set is re-sorted.
type RankService interface {
	RankAll(events []*models.Event) []ScoredEvent
	RankOne(event *models.Event, peers []*models.Event) float64
}

type rankService struct {
	now func() time.Time
}

func NewRankService() RankService {
	return &rankService{now: time.Now}
}

// RankAll scores the full candidate set with the two-pass diversity pipeline
// and returns it in final rank order. Re-running on an unchanged set yields
// identical output.
func (s *rankService) RankAll(events []*models.Event) []ScoredEvent {
	now := s.now()

	// Pass 1: provisional scores ignoring diversity
	scored := make([]ScoredEvent, len(events))
	for i, event := range events {
		scored[i] = ScoredEvent{Event: event, Score: s.baseScore(event, now)}
	}
	sortScored(scored)

	// Pass 2: diversity penalty against the provisional order, then re-sort
	window := topWindowCategories(scored, constants.DiversityWindow)
	for i := range scored {
		others := window[scored[i].Event.Category]
		if i < constants.DiversityWindow && others > 0 {
			// An event inside the window does not count against itself
			others--
		}
		scored[i].Score = finalize(scored[i].Score - diversityPenalty(others))
	}
	sortScored(scored)

	return scored
}

// RankOne refreshes a single event's score against the current ranking order
// of its peers. It does not re-rank the peers; the batched sweep owns that.
func (s *rankService) RankOne(event *models.Event, peers []*models.Event) float64 {
	now := s.now()

	ordered := make([]ScoredEvent, 0, len(peers))
	for _, peer := range peers {
		if peer.ID == event.ID {
			continue
		}
		ordered = append(ordered, ScoredEvent{Event: peer, Score: peer.RankScore})
	}
	sortScored(ordered)

	window := topWindowCategories(ordered, constants.DiversityWindow)
	return finalize(s.baseScore(event, now) - diversityPenalty(window[event.Category]))
}

// baseScore is the weighted sub-score sum plus the additive modifiers,
// before the diversity penalty
func (s *rankService) baseScore(event *models.Event, now time.Time) float64 {
	credibility := event.CredibilityOrDefault(constants.DefaultCredibility)
	freshness := freshnessScore(event.Age(now))
	engagement := engagementScore(event)
	neutrality := neutralityScore(event.BiasLabel)

	score := constants.CredibilityWeight*credibility +
		constants.FreshnessWeight*freshness +
		constants.EngagementWeight*engagement +
		constants.NeutralityWeight*neutrality

	score += breakingBoost(event, now)
	score += factCheckModifier(event.FactCheckStatus)

	return score
}

// freshnessScore is the piecewise time-decay curve. The pieces join without
// discontinuities: 100 at 6h, 90 at 24h, 70 at 7d, 40 at 30d, 20 at 90d.
func freshnessScore(age time.Duration) float64 {
	hours := age.Hours()
	if hours < 0 {
		hours = 0
	}
	days := hours / 24

	switch {
	case hours < 6:
		return 100
	case hours <= 24:
		return 100 - (hours-6)/18*10
	case days <= 7:
		return 90 - (days-1)/6*20
	case days <= 30:
		return 70 - (days-7)/23*30
	case days <= 90:
		return 40 - (days-30)/60*20
	default:
		return math.Max(0, 20-(days-90)/10)
	}
}

// engagementScore normalizes raw engagement counters to 0-100
func engagementScore(event *models.Event) float64 {
	raw := constants.EngagementViewWeight*float64(event.Views) +
		constants.EngagementUpvoteWeight*float64(event.Upvotes) -
		constants.EngagementDownvoteWeight*float64(event.Downvotes) +
		constants.EngagementCommentWeight*float64(event.CommentCount) +
		constants.EngagementShareWeight*float64(event.Shares)

	score := raw / constants.EngagementDivisor * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// neutralityScore maps the bias label to a base value, scaled x10 so its
// weighted contribution is the same order as the other terms
func neutralityScore(label models.BiasLabel) float64 {
	var base float64
	switch label {
	case models.BiasNeutral:
		base = 10
	case models.BiasUnknown:
		base = 5
	case models.BiasLeftLeaning, models.BiasRightLeaning:
		base = 3
	case models.BiasLeft, models.BiasRight:
		base = 2
	case models.BiasStateControlled, models.BiasSensational:
		base = 0
	case models.BiasConspiracy:
		base = -5
	default:
		base = 5
	}
	return base * 10
}

// breakingBoost decays from 30 to 15 over the first 24 hours of a breaking
// event and stays flat at 15 afterwards. It never increases.
func breakingBoost(event *models.Event, now time.Time) float64 {
	if !event.IsBreaking {
		return 0
	}
	age := event.Age(now)
	if age >= constants.BreakingBoostWindow {
		return constants.BreakingBoostFloor
	}
	fraction := age.Hours() / constants.BreakingBoostWindow.Hours()
	return constants.BreakingBoostInitial -
		(constants.BreakingBoostInitial-constants.BreakingBoostFloor)*fraction
}

func factCheckModifier(status models.FactCheckStatus) float64 {
	switch status {
	case models.FactCheckVerified:
		return constants.FactCheckVerifiedBonus
	case models.FactCheckDisputed:
		return constants.FactCheckDisputedPenalty
	case models.FactCheckFalse:
		return constants.FactCheckFalsePenalty
	default:
		return 0
	}
}

// topWindowCategories counts category occurrences among the top-ranked window
func topWindowCategories(ordered []ScoredEvent, window int) map[models.Category]int {
	counts := make(map[models.Category]int)
	for i, se := range ordered {
		if i >= window {
			break
		}
		counts[se.Event.Category]++
	}
	return counts
}

// diversityPenalty charges a fixed amount per other same-category event in
// the top window, capped so an over-represented category is suppressed, not
// erased
func diversityPenalty(others int) float64 {
	if others <= 0 {
		return 0
	}
	penalty := constants.DiversityPenaltyPerDuplicate * float64(others)
	if penalty > constants.DiversityPenaltyCap {
		penalty = constants.DiversityPenaltyCap
	}
	return penalty
}

// finalize clamps to [0,100] and rounds to one decimal place
func finalize(score float64) float64 {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*10) / 10
}

func sortScored(scored []ScoredEvent) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Event.ID < scored[j].Event.ID
	})
}
