package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

// Assessment is the output shape shared by every scorer variant.
type Assessment struct {
	RiskScore   int
	ThreatLevel tests.ThreatLevel
	Flags       []string
}

// Per-signal weights for the email scorer.
const (
	keywordWeight      = 10
	indicatorWeight    = 20
	manyLinksWeight    = 15
	manyLinksThreshold = 3
)

// suspiciousKeywords are generic pressure phrases common in phishing mail.
var suspiciousKeywords = []string{
	"urgent", "verify", "suspend", "confirm", "click here",
	"act now", "limited time", "expire", "account locked",
	"security alert", "update payment", "congratulations",
}

// phishingIndicators are substrings strongly associated with known
// phishing infrastructure (shorteners, brand-impersonating hosts).
var phishingIndicators = []string{
	"bit.ly", "tinyurl", "suspicious-bank", "paypal-security",
	"amazon-verify", "microsoft-update", "apple-id",
}

var linkPattern = regexp.MustCompile(`https?://[^\s]+`)

// ScoreEmail scores free-text email content. Pure and deterministic:
// the same content always yields the same assessment. Additive across
// signal categories, clamped to 100.
func ScoreEmail(content string) Assessment {
	lower := strings.ToLower(content)

	score := 0
	var flags []string

	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			flags = append(flags, fmt.Sprintf("Suspicious keyword: %s", kw))
			score += keywordWeight
		}
	}

	for _, ind := range phishingIndicators {
		if strings.Contains(lower, ind) {
			flags = append(flags, fmt.Sprintf("Phishing indicator: %s", ind))
			score += indicatorWeight
		}
	}

	if n := CountLinks(content); n > manyLinksThreshold {
		flags = append(flags, fmt.Sprintf("Multiple links detected: %d", n))
		score += manyLinksWeight
	}

	score = Clamp(score)
	return Assessment{
		RiskScore:   score,
		ThreatLevel: Classify(score),
		Flags:       flags,
	}
}

// CountLinks counts embedded http(s) links in the raw content.
func CountLinks(content string) int {
	return len(linkPattern.FindAllString(content, -1))
}
