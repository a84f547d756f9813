package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"veritas/ranking-service/internal/constants"
	"veritas/ranking-service/internal/models"
	"veritas/ranking-service/internal/repository"
	"veritas/ranking-service/pkg/helpers"
	"veritas/ranking-service/pkg/logger"
	"veritas/ranking-service/pkg/metrics"
)

// EvidenceProvider queries one external evidence source. A provider failure
// or timeout means zero results from that provider, never a fatal error for
// the whole check.
type EvidenceProvider interface {
	Name() string
	Search(ctx context.Context, claim string) ([]models.Citation, error)
}

// ClaimReasoner submits the claim plus summarized citations to an AI
// reasoning step and returns a structured verdict
type ClaimReasoner interface {
	Analyze(ctx context.Context, claim string, citations []models.Citation) (*models.ReasonerVerdict, error)
}

// FactCheckService aggregates evidence from multiple asymmetric-trust sources
// into one credibility verdict on the canonical 0-100 scale.
type FactCheckService interface {
	FactCheck(ctx context.Context, event *models.Event) (*models.FactCheckResult, error)
}

type factCheckService struct {
	providers       []EvidenceProvider
	reasoner        ClaimReasoner
	sourceTrustRepo repository.SourceTrustRepository
	eventRepo       repository.EventRepository
	validator       *helpers.CustomValidator
	log             *logger.Logger
	metrics         *metrics.Metrics
	providerTimeout time.Duration
	now             func() time.Time
}

func NewFactCheckService(
	providers []EvidenceProvider,
	reasoner ClaimReasoner,
	sourceTrustRepo repository.SourceTrustRepository,
	eventRepo repository.EventRepository,
	log *logger.Logger,
	m *metrics.Metrics,
	providerTimeout time.Duration,
) FactCheckService {
	return &factCheckService{
		providers:       providers,
		reasoner:        reasoner,
		sourceTrustRepo: sourceTrustRepo,
		eventRepo:       eventRepo,
		validator:       helpers.NewCustomValidator(),
		log:             log,
		metrics:         m,
		providerTimeout: providerTimeout,
		now:             time.Now,
	}
}

func (s *factCheckService) FactCheck(ctx context.Context, event *models.Event) (*models.FactCheckResult, error) {
	claim := event.Title
	if event.Description != "" {
		claim = claim + ". " + event.Description
	}

	// 1. Query all providers concurrently with independent failure isolation
	citations := s.gatherEvidence(ctx, claim)

	// 2. Drop malformed provider payloads, then merge into one deduplicated
	// source list
	citations = s.screenCitations(citations)
	citations = dedupeCitations(citations)
	domains := distinctDomains(citations)

	// 3. AI reasoning step with deterministic fallback
	verdict := s.reason(ctx, claim, citations)

	// 4. Recency from the oldest dated citation
	recencyDays := recencyDays(citations, s.now())

	// 5. Base score in [0,1]: unweighted mean of coverage, agreement, recency
	coverage := float64(len(citations)) / constants.FactCheckSourceSaturation
	if coverage > 1 {
		coverage = 1
	}
	agreement := verdict.AgreementRatio
	if agreement > 1 {
		agreement = 1
	}
	recencyWeight := 1.0
	if recencyDays > constants.FactCheckRecencyHorizonDays {
		recencyWeight = constants.FactCheckRecencyWeight
	}
	base := (coverage + agreement + recencyWeight) / 3

	// 6. Source-trust weighting
	weighted, err := s.applySourceTrust(ctx, base, domains)
	if err != nil {
		return nil, err
	}
	if weighted > 1 {
		weighted = 1
	}
	if weighted < 0 {
		weighted = 0
	}

	// 7. Acceptance thresholds; failures are recorded, never discarded
	var rejections []string
	if weighted < constants.FactCheckMinScore {
		rejections = append(rejections, models.RejectionBelowScoreFloor)
	}
	if len(domains) < constants.FactCheckMinDomains {
		rejections = append(rejections, models.RejectionInsufficientSources)
	}
	accepted := len(rejections) == 0

	result := &models.FactCheckResult{
		EventID:          event.ID,
		CredibilityScore: weighted * 100, // canonical scale conversion happens here, once
		Verified:         accepted && verdict.IsVerified,
		Accepted:         accepted,
		RejectionReasons: rejections,
		Summary:          verdict.Summary,
		Sources:          citations,
		SourceDomains:    domains,
		AgreementRatio:   verdict.AgreementRatio,
		RecencyDays:      recencyDays,
		CheckedAt:        s.now(),
	}

	status := models.FactCheckUnverified
	if result.Verified {
		status = models.FactCheckVerified
	}
	if err := s.eventRepo.SaveFactCheckOutcome(ctx, event.ID, result.CredibilityScore, status, result.Summary, rejections); err != nil {
		return nil, fmt.Errorf("failed to persist fact check outcome: %w", err)
	}

	s.updateSourceLedger(ctx, domains, verdict)

	if s.metrics != nil {
		s.metrics.FactChecks.WithLabelValues(factCheckOutcomeLabel(rejections)).Inc()
	}
	return result, nil
}

// gatherEvidence fans out to every provider with a bounded per-call timeout.
// One slow or failing provider never blocks or fails the others.
func (s *factCheckService) gatherEvidence(ctx context.Context, claim string) []models.Citation {
	type providerResult struct {
		index     int
		citations []models.Citation
	}

	results := make(chan providerResult, len(s.providers))
	for i, provider := range s.providers {
		go func(index int, provider EvidenceProvider) {
			callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()

			citations, err := provider.Search(callCtx, claim)
			if err != nil {
				// Transient external failure: this provider contributes
				// zero evidence
				s.log.WithComponent("factcheck").WithField("provider", provider.Name()).
					WithField("error", err.Error()).Warn("evidence provider failed")
				if s.metrics != nil {
					s.metrics.ProviderFailures.WithLabelValues(provider.Name()).Inc()
				}
				citations = nil
			}
			results <- providerResult{index: index, citations: citations}
		}(i, provider)
	}

	perProvider := make([][]models.Citation, len(s.providers))
	for range s.providers {
		res := <-results
		perProvider[res.index] = res.citations
	}

	// Stable merge in provider order so the pipeline is deterministic given
	// its inputs
	var merged []models.Citation
	for _, citations := range perProvider {
		merged = append(merged, citations...)
	}
	return merged
}

// reason runs the AI step, falling back to a deterministic summary when it
// fails or returns garbage
func (s *factCheckService) reason(ctx context.Context, claim string, citations []models.Citation) *models.ReasonerVerdict {
	summarized := citations
	if len(summarized) > constants.FactCheckMaxReasonerCitations {
		summarized = summarized[:constants.FactCheckMaxReasonerCitations]
	}

	verdict, err := s.reasoner.Analyze(ctx, claim, summarized)
	if err == nil && verdict != nil && verdict.AgreementRatio >= 0 {
		return verdict
	}
	if err != nil {
		s.log.WithComponent("factcheck").WithField("error", err.Error()).
			Warn("claim reasoner failed, using fallback summary")
		if s.metrics != nil {
			s.metrics.ProviderFailures.WithLabelValues("reasoner").Inc()
		}
	}

	return &models.ReasonerVerdict{
		Summary:        fmt.Sprintf("Found %d sources; automated verification unavailable.", len(citations)),
		AgreementRatio: constants.FactCheckFallbackAgreement,
		IsVerified:     false,
	}
}

// applySourceTrust multiplies the base score by the mean ledger weight of the
// cited domains, with a flat bonus when more than two independent high-trust
// domains are present
func (s *factCheckService) applySourceTrust(ctx context.Context, base float64, domains []string) (float64, error) {
	if len(domains) == 0 {
		return base * constants.SourceTrustDefaultWeight, nil
	}

	records, err := s.sourceTrustRepo.FindMany(ctx, domains)
	if err != nil {
		return 0, fmt.Errorf("failed to load source trust records: %w", err)
	}

	var sum float64
	highTrust := 0
	for _, domain := range domains {
		weight := constants.SourceTrustDefaultWeight
		if record, ok := records[domain]; ok {
			weight = record.TrustScore
		}
		if weight >= constants.SourceTrustHighThreshold {
			highTrust++
		}
		sum += weight
	}
	weighted := base * (sum / float64(len(domains)))

	if highTrust > constants.SourceTrustDiversityMin {
		weighted += constants.SourceTrustDiversityBonus
	}
	return weighted, nil
}

// updateSourceLedger feeds the verification outcome back into the per-domain
// trust ledger. Ledger write failures are logged and left for the next check
// of the same domain; they never fail the fact check.
func (s *factCheckService) updateSourceLedger(ctx context.Context, domains []string, verdict *models.ReasonerVerdict) {
	var delta float64
	var corroborated bool
	switch {
	case verdict.IsVerified:
		delta = constants.SourceTrustCorroborationDelta
		corroborated = true
	case verdict.AgreementRatio < constants.FactCheckContradictionRatio:
		delta = -constants.SourceTrustContradictionDelta
		corroborated = false
	default:
		return
	}

	for _, domain := range domains {
		if err := s.sourceTrustRepo.ApplyOutcome(ctx, domain, delta, corroborated); err != nil {
			s.log.WithComponent("factcheck").WithField("domain", domain).
				WithField("error", err.Error()).Warn("failed to update source ledger")
		}
	}
}

// screenCitations drops citations that fail struct validation (no source
// name, non-absolute URL) so junk provider payloads never reach scoring
func (s *factCheckService) screenCitations(citations []models.Citation) []models.Citation {
	if s.validator == nil {
		return citations
	}
	kept := make([]models.Citation, 0, len(citations))
	for _, citation := range citations {
		if err := s.validator.Validate(&citation); err != nil {
			s.log.WithComponent("factcheck").WithField("url", citation.URL).
				Warn("dropping malformed citation")
			continue
		}
		kept = append(kept, citation)
	}
	return kept
}

func recencyDays(citations []models.Citation, now time.Time) int {
	var oldest *time.Time
	for i := range citations {
		published := citations[i].PublishedAt
		if published == nil {
			continue
		}
		if oldest == nil || published.Before(*oldest) {
			oldest = published
		}
	}
	if oldest == nil {
		return constants.FactCheckNoDateRecencyDays
	}
	days := int(now.Sub(*oldest).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days
}

func dedupeCitations(citations []models.Citation) []models.Citation {
	seen := make(map[string]struct{}, len(citations))
	deduped := make([]models.Citation, 0, len(citations))
	for _, citation := range citations {
		key := strings.ToLower(strings.TrimSuffix(citation.URL, "/"))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, citation)
	}
	return deduped
}

// distinctDomains counts independence by normalized hostname, not raw URL
func distinctDomains(citations []models.Citation) []string {
	seen := make(map[string]struct{})
	var domains []string
	for _, citation := range citations {
		domain := NormalizeDomain(citation.URL)
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}
	return domains
}

// NormalizeDomain lowercases the hostname and strips a leading www prefix
func NormalizeDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func factCheckOutcomeLabel(rejections []string) string {
	switch len(rejections) {
	case 0:
		return "accepted"
	case 1:
		if rejections[0] == models.RejectionBelowScoreFloor {
			return "rejected_score"
		}
		return "rejected_sources"
	default:
		return "rejected_both"
	}
}
