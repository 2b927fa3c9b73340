package tests

import (
	"time"
)

// ID tipe untuk TestResult
type ResultID string

// TestType enum
type TestType string

const (
	TypePhishing TestType = "phishing"
	TypeMalware  TestType = "malware"
	TypeClone    TestType = "clone"
	TypeScam     TestType = "scam"
	TypeSandbox  TestType = "sandbox"
)

// KnownType reports whether t is one of the recognized test types.
// Unknown values are ignored by history filters rather than rejected.
func KnownType(t TestType) bool {
	switch t {
	case TypePhishing, TypeMalware, TypeClone, TypeScam, TypeSandbox:
		return true
	}
	return false
}

// ThreatLevel enum
type ThreatLevel string

const (
	LevelSafe   ThreatLevel = "safe"
	LevelLow    ThreatLevel = "low"
	LevelMedium ThreatLevel = "medium"
	LevelHigh   ThreatLevel = "high"
)

// InputData is the normalized analysis target. Exactly one field is set
// depending on the test type.
type InputData struct {
	URL      string `json:"url,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Verdict value object: the summary outcome of one analysis run.
// IsThreat is definitive for detected vs clean; RiskScore is the 0-100
// numeric figure behind it.
type Verdict struct {
	IsThreat          bool        `json:"isThreat"`
	ThreatLevel       ThreatLevel `json:"threatLevel"`
	RiskScore         int         `json:"riskScore"`
	CombinedRiskScore *int        `json:"combinedRiskScore,omitempty"`
}

// Aggregate Root: TestResult. Records are insert-only; a correction is a
// new record, never an update.
type TestResult struct {
	ID               ResultID       `json:"id"`
	UserID           string         `json:"userId"`
	TestType         TestType       `json:"testType"`
	Input            InputData      `json:"inputData"`
	Result           Verdict        `json:"result"`
	Details          map[string]any `json:"details,omitempty"`
	Flags            []string       `json:"flags"`
	Recommendations  []string       `json:"recommendations,omitempty"`
	Insights         string         `json:"insights,omitempty"`
	ProcessingTimeMS int64          `json:"processingTime"`
	CreatedAt        time.Time      `json:"createdAt"`
}
