package scoring

import (
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

// Fixed classification thresholds. A score of 50 or more is high,
// 25 or more is medium, anything below is safe.
const (
	HighThreshold   = 50
	MediumThreshold = 25
)

// Classify maps a 0-100 risk score to a discrete threat level.
// Monotonic: a higher score never yields a lower level.
func Classify(score int) tests.ThreatLevel {
	switch {
	case score >= HighThreshold:
		return tests.LevelHigh
	case score >= MediumThreshold:
		return tests.LevelMedium
	default:
		return tests.LevelSafe
	}
}

// ClassifyURL is the URL-analysis variant: any non-zero score below the
// medium threshold reports "low" rather than "safe", since a URL that
// tripped at least one signal is not a clean bill of health.
func ClassifyURL(score int) tests.ThreatLevel {
	switch {
	case score >= HighThreshold:
		return tests.LevelHigh
	case score >= MediumThreshold:
		return tests.LevelMedium
	case score > 0:
		return tests.LevelLow
	default:
		return tests.LevelSafe
	}
}

// Clamp bounds a raw additive score to [0,100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
