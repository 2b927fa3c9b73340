package providers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
)

// Per-signal weights for the scam message assessor.
const (
	scamKeywordWeight     = 15
	badPhoneWeight        = 20
	moneyRequestWeight    = 20
	scamDetectedThreshold = 50
)

// scamKeywords mark the classic advance-fee / prize / impersonation
// patterns.
var scamKeywords = []string{
	"lottery", "winner", "inheritance", "wire transfer", "gift card",
	"western union", "bitcoin", "crypto wallet", "processing fee",
	"claim your prize", "irs", "tax refund", "prince",
}

var moneyPattern = regexp.MustCompile(`(?i)(\$|usd\s?)\d[\d,]*|\d[\d,]*\s?(dollars|usd)`)

// phoneCandidate grabs digit runs long enough to be phone numbers; each
// candidate is then validated properly with libphonenumber.
var phoneCandidate = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)

// KeywordScamProvider assesses a free-text message for scam patterns,
// including validating any callback phone numbers it advertises.
type KeywordScamProvider struct {
	// DefaultRegion is the region used to parse non-international
	// numbers, e.g. "US".
	DefaultRegion string
}

func NewKeywordScamProvider(region string) *KeywordScamProvider {
	if region == "" {
		region = "US"
	}
	return &KeywordScamProvider{DefaultRegion: region}
}

func (p *KeywordScamProvider) Assess(_ context.Context, content string) (*analysis.ScamReport, error) {
	lower := strings.ToLower(content)

	score := 0
	var indicators []string

	for _, kw := range scamKeywords {
		if strings.Contains(lower, kw) {
			indicators = append(indicators, fmt.Sprintf("Scam keyword: %s", kw))
			score += scamKeywordWeight
		}
	}

	if moneyPattern.MatchString(content) {
		indicators = append(indicators, "Specific money amount requested")
		score += moneyRequestWeight
	}

	var phones []string
	for _, cand := range phoneCandidate.FindAllString(content, -1) {
		num, err := phonenumbers.Parse(cand, p.DefaultRegion)
		if err != nil {
			continue
		}
		formatted := phonenumbers.Format(num, phonenumbers.E164)
		phones = append(phones, formatted)
		if !phonenumbers.IsValidNumber(num) {
			indicators = append(indicators, fmt.Sprintf("Unverifiable callback number: %s", cand))
			score += badPhoneWeight
		}
	}

	if score > 100 {
		score = 100
	}
	return &analysis.ScamReport{
		IsScam:          score >= scamDetectedThreshold,
		ConfidenceScore: score,
		Indicators:      indicators,
		PhoneNumbers:    phones,
	}, nil
}
