package scoring

import (
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

// ScanOutcome is a provider-supplied scan result for file analysis
// (malware/sandbox). Positives out of Total engines flagged the file;
// Verdict is the provider's own call; ThreatScore, when present,
// overrides the positives ratio.
type ScanOutcome struct {
	Positives   int      `json:"positives"`
	Total       int      `json:"total"`
	Verdict     string   `json:"verdict"`
	ThreatScore *int     `json:"threatScore,omitempty"`
	ScanDate    string   `json:"scanDate,omitempty"`
	Detections  []string `json:"detections,omitempty"`
	SandboxData any      `json:"sandboxData,omitempty"`
}

// ScoreMalware derives the verdict for a file scan. The boolean, not the
// numeric score, is definitive for detected vs clean.
func ScoreMalware(o ScanOutcome) tests.Verdict {
	isMalware := o.Positives > 0 || o.Verdict == "malicious"

	total := o.Total
	if total <= 0 {
		total = 1
	}
	score := 0
	if o.ThreatScore != nil {
		score = *o.ThreatScore
	} else {
		score = o.Positives * 100 / total
	}
	score = Clamp(score)

	level := malwareLevel(o)
	return tests.Verdict{IsThreat: isMalware, ThreatLevel: level, RiskScore: score}
}

// malwareLevel prefers the provider verdict when it maps cleanly, then
// falls back to the positives ladder.
func malwareLevel(o ScanOutcome) tests.ThreatLevel {
	switch o.Verdict {
	case "malicious":
		return tests.LevelHigh
	case "suspicious":
		return tests.LevelMedium
	}
	switch {
	case o.Positives > 10:
		return tests.LevelHigh
	case o.Positives > 0:
		return tests.LevelMedium
	default:
		return tests.LevelLow
	}
}

// ScoreClone derives the verdict for a clone-detection run. Similarity is
// a separate reported field and is not folded into the risk score.
func ScoreClone(cloneScore int, isClone bool) tests.Verdict {
	score := Clamp(cloneScore)
	return tests.Verdict{IsThreat: isClone, ThreatLevel: Classify(score), RiskScore: score}
}

// ScoreScam derives the verdict for a scam-message assessment.
func ScoreScam(confidenceScore int, isScam bool) tests.Verdict {
	score := Clamp(confidenceScore)
	return tests.Verdict{IsThreat: isScam, ThreatLevel: Classify(score), RiskScore: score}
}
