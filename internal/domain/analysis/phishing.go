package analysis

import (
	"fmt"
	"net"
	"strings"
)

// Per-signal weights for the URL heuristics scorer.
const (
	weightVeryNewDomain    = 25
	weightNewDomain        = 10
	weightPrivacyGuard     = 10
	weightLookAlike        = 25
	weightSuspiciousTLD    = 15
	weightRawIPHost        = 20
	weightBrandKeyword     = 15
	weightUnresolvable     = 10
	weightWhoisUnavailable = 5
)

// suspiciousTLDs see heavy abuse in phishing campaigns relative to
// legitimate traffic.
var suspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".zip"}

// brandKeywords are names commonly embedded in impersonating hostnames.
var brandKeywords = []string{
	"paypal", "amazon", "microsoft", "apple", "google",
	"facebook", "netflix", "bank",
}

// ScoreDomain turns collected domain signals into an additive 0-100 risk
// score with one flag per triggered signal. Deterministic for a given set
// of signals; no network access.
func ScoreDomain(sig *DomainSignals) (int, []string) {
	score := 0
	var flags []string

	host := strings.ToLower(sig.Domain)

	if !sig.LookupOK {
		flags = append(flags, "WHOIS data unavailable")
		score += weightWhoisUnavailable
	} else {
		switch {
		case sig.AgeDays > 0 && sig.AgeDays < 60:
			flags = append(flags, fmt.Sprintf("Newly registered domain: %d days old", sig.AgeDays))
			score += weightVeryNewDomain
		case sig.AgeDays > 0 && sig.AgeDays < 180:
			flags = append(flags, fmt.Sprintf("Recently registered domain: %d days old", sig.AgeDays))
			score += weightNewDomain
		}
		if sig.PrivacyProtected {
			flags = append(flags, "Registrant identity hidden behind privacy protection")
			score += weightPrivacyGuard
		}
	}

	for _, d := range sig.SimilarDomains {
		flags = append(flags, fmt.Sprintf("Look-alike domain: resembles %s", d))
		score += weightLookAlike
		break // one look-alike hit is enough; don't stack the penalty
	}

	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			flags = append(flags, fmt.Sprintf("Suspicious top-level domain: %s", tld))
			score += weightSuspiciousTLD
			break
		}
	}

	if net.ParseIP(host) != nil {
		flags = append(flags, "Raw IP address used instead of a domain name")
		score += weightRawIPHost
	}

	if kw := embeddedBrand(host); kw != "" {
		flags = append(flags, fmt.Sprintf("Brand name embedded in hostname: %s", kw))
		score += weightBrandKeyword
	}

	if sig.ResolvedIP == "" {
		flags = append(flags, "Domain does not resolve")
		score += weightUnresolvable
	}

	if score > 100 {
		score = 100
	}
	return score, flags
}

// embeddedBrand reports a brand keyword carried inside a hostname that is
// not the brand's own domain (e.g. paypal-security-check.example).
func embeddedBrand(host string) string {
	base := host
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = host[:i]
	}
	for _, kw := range brandKeywords {
		if base == kw {
			continue // paypal.com itself is fine
		}
		if strings.Contains(host, kw) && !strings.HasPrefix(host, kw+".") {
			return kw
		}
	}
	return ""
}

// CombineScores blends the heuristic score with an AI score when the AI
// judgment is available. With no AI the heuristic score stands alone.
func CombineScores(heuristic int, ai *AIJudgment) int {
	if ai == nil || !ai.Enabled {
		return heuristic
	}
	return (heuristic + ai.RiskScore) / 2
}
