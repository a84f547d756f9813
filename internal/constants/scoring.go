package constants

import "time"

// Ranking weights
// rank = 0.40*credibility + 0.30*freshness + 0.20*engagement + 0.10*neutrality
// followed by additive modifiers (breaking boost, fact-check modifier) and the
// category-diversity penalty, clamped to [0,100].
const (
	CredibilityWeight = 0.40
	FreshnessWeight   = 0.30
	EngagementWeight  = 0.20
	NeutralityWeight  = 0.10

	// DefaultCredibility is used when an event has not been fact-checked yet
	DefaultCredibility = 70.0

	// Engagement formula:
	// min(100, (0.1*views + 5*upvotes - 3*downvotes + 10*comments + 15*shares) / 500 * 100)
	EngagementViewWeight    = 0.1
	EngagementUpvoteWeight  = 5.0
	EngagementDownvoteWeight = 3.0
	EngagementCommentWeight = 10.0
	EngagementShareWeight   = 15.0
	EngagementDivisor       = 500.0

	// Breaking boost starts at 30 and decays linearly to 15 over the first
	// 24 hours, then stays flat at 15.
	BreakingBoostInitial = 30.0
	BreakingBoostFloor   = 15.0
	BreakingBoostWindow  = 24 * time.Hour

	// Fact-check rank modifiers by status
	FactCheckVerifiedBonus   = 10.0
	FactCheckDisputedPenalty = -10.0
	FactCheckFalsePenalty    = -50.0

	// Category diversity: each other same-category event among the provisional
	// top DiversityWindow contributes DiversityPenaltyPerDuplicate, capped at
	// DiversityPenaltyCap.
	DiversityWindow               = 20
	DiversityPenaltyPerDuplicate  = 5.0
	DiversityPenaltyCap           = 15.0
)

// Trust score formula constants
// score = 50 + age tier + email bonus + accuracy adjustment
//         - 2*lowCredUpvotes - 15*burstFlag - 3*ipViolations
//         + min(20, 5*approvedCorrections) - 5*flaggedContent, clamped to [0,100]
const (
	TrustBase = 50

	TrustAgeBonusOneYear     = 10
	TrustAgeBonusSixMonths   = 5
	TrustAgeBonusOneMonth    = 2
	TrustEmailVerifiedBonus  = 5

	// Accuracy adjustment applies only once the vote sample is large enough
	TrustAccuracyMinVotes  = 10
	TrustAccuracyHighRatio = 0.7
	TrustAccuracyLowRatio  = 0.3
	TrustAccuracyBonus     = 10
	TrustAccuracyPenalty   = 10

	TrustLowCredUpvotePenalty  = 2
	TrustBurstVotingPenalty    = 15
	TrustIPViolationPenalty    = 3
	TrustCorrectionBonus       = 5
	TrustCorrectionBonusCap    = 20
	TrustFlaggedContentPenalty = 5

	// Users below this score keep their votes recorded but lose consensus weight
	VotingInfluenceFloor = 20

	// Cached trust scores older than this are recomputed on read
	TrustCacheTTL = time.Hour
)

// Burst voting detection: the recent-vote ring holds the last BurstRingSize
// vote timestamps; a full ring spanning less than BurstWindow sets the flag.
const (
	BurstRingSize = 20
	BurstWindow   = 5 * time.Minute
)

// Rate limit policies
const (
	VoteLimitPerWindow = 20
	VoteLimitWindow    = time.Hour

	CommentLimitPerWindow = 3
	CommentLimitWindow    = time.Minute
)

// Fact-check aggregation constants
const (
	// Base score is the unweighted mean of source coverage, agreement ratio
	// and a recency weight, each in [0,1].
	FactCheckSourceSaturation = 5   // source count at which coverage reaches 1.0
	FactCheckRecencyHorizonDays = 7 // citations older than this dampen the score
	FactCheckRecencyWeight      = 0.9
	FactCheckNoDateRecencyDays  = 999

	// At most this many summarized citations go to the reasoner
	FactCheckMaxReasonerCitations = 10

	// Acceptance thresholds: weighted score floor and minimum distinct domains
	FactCheckMinScore   = 0.6
	FactCheckMinDomains = 2

	// Source trust weighting
	SourceTrustDefaultWeight  = 1.0
	SourceTrustHighThreshold  = 1.5
	SourceTrustDiversityBonus = 0.05
	SourceTrustDiversityMin   = 2 // more than this many high-trust domains earns the bonus

	// Ledger deltas applied per verification outcome, floored at zero
	SourceTrustCorroborationDelta = 0.1
	SourceTrustContradictionDelta = 0.2

	// Agreement below this ratio counts as a contradiction against the
	// cited domains
	FactCheckContradictionRatio = 0.3

	// Reasoner fallback agreement when the AI step fails; lowered
	// confidence, not an error
	FactCheckFallbackAgreement = 0.5
)

// Upvoting an event with credibility below this counts against the voter
const LowCredibilityThreshold = 40.0
