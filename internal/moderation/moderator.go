package moderation

import (
	"regexp"
	"strings"
)

// Severity grades a moderation rejection
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rejection reason identifiers
const (
	ReasonHateSpeech    = "hate_speech"
	ReasonProfanity     = "profanity"
	ReasonLinkSpam      = "link_spam"
	ReasonRepeatedSpam  = "repeated_token_spam"
	ReasonExtremeBias   = "extreme_bias"
)

// Result is the outcome of a moderation pass
type Result struct {
	Clean    bool
	Reason   string
	Severity Severity
}

// Moderator is a stateless text classifier. Checks run in a fixed order and
// stop at the first match; callers route rejected content to the review
// queue with the reason attached.
type Moderator struct {
	hatePatterns []*regexp.Regexp
	profanity    map[string]struct{}
	biasPhrases  []string
	urlPattern   *regexp.Regexp
}

const (
	maxDistinctProfanities = 3
	maxURLs                = 5
	maxWordRepeats         = 10
	minRepeatWordLength    = 3
)

// NewModerator creates a moderator with the built-in pattern sets
func NewModerator() *Moderator {
	hateSources := []string{
		`\b(?:gas|lynch|exterminate)\s+the\s+\w+`,
		`\bdeath\s+to\s+(?:all\s+)?\w+`,
		`\b(?:kill|burn)\s+(?:all|every)\s+\w+`,
		`\bsubhuman(?:s)?\b`,
		`\bethnic\s+cleansing\s+now\b`,
		`\bvermin\s+race\b`,
	}
	hatePatterns := make([]*regexp.Regexp, 0, len(hateSources))
	for _, src := range hateSources {
		hatePatterns = append(hatePatterns, regexp.MustCompile(src))
	}

	profaneTokens := []string{
		"fuck", "shit", "bitch", "bastard", "asshole", "dick",
		"cunt", "piss", "whore", "slut", "prick", "wanker",
	}
	profanity := make(map[string]struct{}, len(profaneTokens))
	for _, tok := range profaneTokens {
		profanity[tok] = struct{}{}
	}

	biasPhrases := []string{
		"wake up sheeple",
		"the mainstream media is lying",
		"they don't want you to know",
		"do your own research before it's deleted",
		"false flag operation",
		"crisis actors",
		"the deep state",
		"globalist agenda",
	}

	return &Moderator{
		hatePatterns: hatePatterns,
		profanity:    profanity,
		biasPhrases:  biasPhrases,
		urlPattern:   regexp.MustCompile(`https?://[^\s]+`),
	}
}

// Moderate classifies the given text. It is a pure function of its input:
// no side effects, no external calls.
func (m *Moderator) Moderate(text string) Result {
	lowered := strings.ToLower(text)

	// 1. Hate speech: reject immediately at high severity
	for _, pattern := range m.hatePatterns {
		if pattern.MatchString(lowered) {
			return Result{Clean: false, Reason: ReasonHateSpeech, Severity: SeverityHigh}
		}
	}

	// 2. Profanity density: more than 3 distinct profane tokens
	if m.countDistinctProfanities(lowered) > maxDistinctProfanities {
		return Result{Clean: false, Reason: ReasonProfanity, Severity: SeverityMedium}
	}

	// 3. Link spam: more than 5 URLs
	if len(m.urlPattern.FindAllString(lowered, -1)) > maxURLs {
		return Result{Clean: false, Reason: ReasonLinkSpam, Severity: SeverityLow}
	}

	// 4. Repeated-token spam: any single word longer than 3 chars repeated
	// more than 10 times
	if m.hasRepeatedTokenSpam(lowered) {
		return Result{Clean: false, Reason: ReasonRepeatedSpam, Severity: SeverityLow}
	}

	// 5. Extreme political-bias phrasing
	for _, phrase := range m.biasPhrases {
		if strings.Contains(lowered, phrase) {
			return Result{Clean: false, Reason: ReasonExtremeBias, Severity: SeverityMedium}
		}
	}

	return Result{Clean: true}
}

func (m *Moderator) countDistinctProfanities(lowered string) int {
	seen := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(lowered, isWordSeparator) {
		if _, ok := m.profanity[word]; ok {
			seen[word] = struct{}{}
		}
	}
	return len(seen)
}

func (m *Moderator) hasRepeatedTokenSpam(lowered string) bool {
	counts := make(map[string]int)
	for _, word := range strings.FieldsFunc(lowered, isWordSeparator) {
		if len(word) <= minRepeatWordLength {
			continue
		}
		counts[word]++
		if counts[word] > maxWordRepeats {
			return true
		}
	}
	return false
}

func isWordSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '.', ',', ';', ':', '!', '?', '"', '\'', '(', ')', '[', ']':
		return true
	}
	return false
}
