package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Samith-P/ciphercopdemo/internal/application"
	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
	"github.com/Samith-P/ciphercopdemo/internal/domain/scoring"
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

// Service implements the analyze-and-record use-cases. One external
// signal-collection call followed by at most one store write per request;
// no shared mutable state lives here.
type Service struct {
	Repo      tests.Repository
	Collector analysis.SignalCollector
	Judge     analysis.URLJudge
	Malware   analysis.MalwareProvider
	Clone     analysis.CloneProvider
	Scam      analysis.ScamProvider
	Clock     application.Clock
}

// URLAnalysis is the full phishing-analysis payload returned to callers.
type URLAnalysis struct {
	URL               string                  `json:"url"`
	Domain            string                  `json:"domain"`
	IsPhishing        bool                    `json:"isPhishing"`
	ThreatLevel       tests.ThreatLevel       `json:"threatLevel"`
	RiskScore         int                     `json:"riskScore"`
	CombinedRiskScore int                     `json:"combinedRiskScore"`
	Flags             []string                `json:"flags"`
	Details           map[string]any          `json:"details"`
	AI                *analysis.AIJudgment    `json:"aiAnalysis,omitempty"`
	Signals           *analysis.DomainSignals `json:"whoisData,omitempty"`
}

// AnalyzeURL runs the phishing pipeline: normalize, collect signals,
// score heuristically, blend in the AI judgment, and (when persist is
// set) record one immutable TestResult for the caller.
func (s *Service) AnalyzeURL(ctx context.Context, userID, rawURL string, persist bool) (*URLAnalysis, error) {
	started := s.Clock.Now()

	input, host, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	sig, err := s.Collector.Collect(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tests.ErrUpstream, err)
	}

	score, flags := analysis.ScoreDomain(sig)

	var ai *analysis.AIJudgment
	if s.Judge != nil {
		ai, err = s.Judge.Judge(ctx, input, sig)
		if err != nil {
			// AI judgment is best-effort; heuristics stand alone.
			log.Printf("ai judge error url=%s: %v", input, err)
			ai = &analysis.AIJudgment{Enabled: false}
		}
	}

	combined := analysis.CombineScores(score, ai)
	level := scoring.ClassifyURL(combined)
	isPhishing := combined >= scoring.HighThreshold

	details := map[string]any{
		"domainAge":         sig.AgeDays,
		"registrar":         sig.Registrar,
		"country":           sig.Country,
		"expiryDate":        sig.ExpiryDate,
		"nameServers":       sig.NameServers,
		"status":            sig.Status,
		"privacyProtection": sig.PrivacyProtected,
		"similarDomains":    sig.SimilarDomains,
		"lastChecked":       started.UTC().Format(time.RFC3339),
	}

	out := &URLAnalysis{
		URL:               input,
		Domain:            host,
		IsPhishing:        isPhishing,
		ThreatLevel:       level,
		RiskScore:         score,
		CombinedRiskScore: combined,
		Flags:             flags,
		Details:           details,
		AI:                ai,
		Signals:           sig,
	}

	if persist {
		combinedCopy := combined
		rec := &tests.TestResult{
			ID:       tests.ResultID(uuid.New().String()),
			UserID:   userID,
			TestType: tests.TypePhishing,
			Input:    tests.InputData{URL: input},
			Result: tests.Verdict{
				IsThreat:          isPhishing,
				ThreatLevel:       level,
				RiskScore:         score,
				CombinedRiskScore: &combinedCopy,
			},
			Details: details,
			Flags:   flags,
		}
		if ai != nil && ai.Enabled {
			rec.Recommendations = ai.Recommendations
			rec.Insights = ai.Insights
		}
		s.record(ctx, rec, started)
	}
	return out, nil
}

// EmailAnalysis is the analyze-email payload.
type EmailAnalysis struct {
	ThreatLevel tests.ThreatLevel `json:"threatLevel"`
	RiskScore   int               `json:"riskScore"`
	Flags       []string          `json:"flags"`
	Details     map[string]any    `json:"details"`
}

// AnalyzeEmail scores free-text email content and records the result.
func (s *Service) AnalyzeEmail(ctx context.Context, userID, content string) (*EmailAnalysis, error) {
	started := s.Clock.Now()
	if content == "" {
		return nil, tests.ErrMissingInput
	}

	prepared := PrepareEmailContent(content)
	a := scoring.ScoreEmail(prepared)

	keywordHits, indicatorHits := 0, 0
	for _, f := range a.Flags {
		switch {
		case strings.HasPrefix(f, "Suspicious keyword"):
			keywordHits++
		case strings.HasPrefix(f, "Phishing indicator"):
			indicatorHits++
		}
	}
	details := map[string]any{
		"suspiciousKeywords": keywordHits,
		"phishingIndicators": indicatorHits,
		"linkCount":          scoring.CountLinks(prepared),
		"contentLength":      len(content),
		"lastChecked":        started.UTC().Format(time.RFC3339),
	}

	flags := a.Flags
	if flags == nil {
		flags = []string{}
	}
	out := &EmailAnalysis{
		ThreatLevel: a.ThreatLevel,
		RiskScore:   a.RiskScore,
		Flags:       flags,
		Details:     details,
	}

	rec := &tests.TestResult{
		ID:       tests.ResultID(uuid.New().String()),
		UserID:   userID,
		TestType: tests.TypePhishing,
		Input:    tests.InputData{Content: truncate(content, 4096)},
		Result: tests.Verdict{
			IsThreat:    a.RiskScore >= scoring.HighThreshold,
			ThreatLevel: a.ThreatLevel,
			RiskScore:   a.RiskScore,
		},
		Details: details,
		Flags:   flags,
	}
	s.record(ctx, rec, started)
	return out, nil
}

// StoreScan persists a provider-supplied scan result (malware/sandbox).
// Persistence is the operation here, so a write failure is surfaced.
func (s *Service) StoreScan(ctx context.Context, userID, fileName string, testType tests.TestType, outcome scoring.ScanOutcome) (tests.ResultID, error) {
	started := s.Clock.Now()
	if fileName == "" || testType == "" {
		return "", tests.ErrMissingInput
	}
	if testType != tests.TypeMalware && testType != tests.TypeSandbox {
		return "", fmt.Errorf("%w: unsupported test type %q", tests.ErrInvalidInput, testType)
	}

	verdict := scoring.ScoreMalware(outcome)

	scanDate := outcome.ScanDate
	if scanDate == "" {
		scanDate = started.UTC().Format("2006-01-02")
	}
	detections := outcome.Detections
	if detections == nil {
		detections = []string{}
	}
	rec := &tests.TestResult{
		ID:       tests.ResultID(uuid.New().String()),
		UserID:   userID,
		TestType: testType,
		Input:    tests.InputData{FileName: fileName},
		Result:   verdict,
		Details: map[string]any{
			"fileName":     fileName,
			"scanDate":     scanDate,
			"detections":   detections,
			"analysisType": string(testType),
			"positives":    outcome.Positives,
			"total":        maxInt(outcome.Total, 1),
			"verdict":      orUnknown(outcome.Verdict),
			"sandboxData":  outcome.SandboxData,
		},
		Flags: []string{},
	}
	now := s.Clock.Now()
	rec.CreatedAt = now
	rec.ProcessingTimeMS = now.Sub(started).Milliseconds()
	if err := s.Repo.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("%w: %v", tests.ErrPersistenceFailed, err)
	}
	return rec.ID, nil
}

// AnalyzeMalware runs the configured malware provider over a file name
// and records the derived verdict.
func (s *Service) AnalyzeMalware(ctx context.Context, userID, fileName string) (*tests.TestResult, error) {
	started := s.Clock.Now()
	if fileName == "" {
		return nil, tests.ErrMissingInput
	}
	rep, err := s.Malware.ScanFile(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tests.ErrUpstream, err)
	}
	verdict := scoring.ScoreMalware(scoring.ScanOutcome{
		Positives: rep.Positives,
		Total:     rep.Total,
		Verdict:   rep.Verdict,
	})
	rec := &tests.TestResult{
		ID:       tests.ResultID(uuid.New().String()),
		UserID:   userID,
		TestType: tests.TypeMalware,
		Input:    tests.InputData{FileName: fileName},
		Result:   verdict,
		Details: map[string]any{
			"fileName":   fileName,
			"scanDate":   rep.ScanDate,
			"detections": rep.Detections,
			"positives":  rep.Positives,
			"total":      rep.Total,
			"verdict":    rep.Verdict,
		},
		Flags: detectionFlags(rep.Detections),
	}
	s.record(ctx, rec, started)
	return rec, nil
}

// AnalyzeClone compares a suspect URL against the brand it claims and
// records the verdict. Similarity is reported separately from the score.
func (s *Service) AnalyzeClone(ctx context.Context, userID, rawURL, brand string) (*tests.TestResult, error) {
	started := s.Clock.Now()
	input, host, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	rep, err := s.Clone.Compare(ctx, input, brand)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tests.ErrUpstream, err)
	}
	verdict := scoring.ScoreClone(rep.CloneScore, rep.IsClone)
	flags := []string{}
	if rep.IsClone && rep.MatchedBrand != "" {
		flags = append(flags, fmt.Sprintf("Page closely resembles %s", rep.MatchedBrand))
	} else if rep.IsClone {
		flags = append(flags, "Page closely resembles a known brand site")
	}
	rec := &tests.TestResult{
		ID:       tests.ResultID(uuid.New().String()),
		UserID:   userID,
		TestType: tests.TypeClone,
		Input:    tests.InputData{URL: input},
		Result:   verdict,
		Details: map[string]any{
			"domain":       host,
			"similarity":   rep.Similarity,
			"matchedBrand": rep.MatchedBrand,
			"pageTitle":    rep.PageTitle,
			"evidenceUrl":  rep.EvidenceURL,
		},
		Flags: flags,
	}
	s.record(ctx, rec, started)
	return rec, nil
}

// AnalyzeScam assesses a free-text message for scam patterns and records
// the verdict.
func (s *Service) AnalyzeScam(ctx context.Context, userID, content string) (*tests.TestResult, error) {
	started := s.Clock.Now()
	if content == "" {
		return nil, tests.ErrMissingInput
	}
	rep, err := s.Scam.Assess(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tests.ErrUpstream, err)
	}
	verdict := scoring.ScoreScam(rep.ConfidenceScore, rep.IsScam)
	flags := rep.Indicators
	if flags == nil {
		flags = []string{}
	}
	rec := &tests.TestResult{
		ID:       tests.ResultID(uuid.New().String()),
		UserID:   userID,
		TestType: tests.TypeScam,
		Input:    tests.InputData{Content: truncate(content, 4096)},
		Result:   verdict,
		Details: map[string]any{
			"phoneNumbers":  rep.PhoneNumbers,
			"contentLength": len(content),
		},
		Flags: flags,
	}
	s.record(ctx, rec, started)
	return rec, nil
}

// record stamps createdAt/processingTime at persistence time and saves.
// The analysis result is still returned to the caller when the write
// fails; the failure is logged, not surfaced.
func (s *Service) record(ctx context.Context, rec *tests.TestResult, started time.Time) {
	now := s.Clock.Now()
	rec.CreatedAt = now
	rec.ProcessingTimeMS = now.Sub(started).Milliseconds()
	if err := s.Repo.Save(ctx, rec); err != nil {
		log.Printf("test result save failed type=%s user=%s: %v", rec.TestType, rec.UserID, err)
	}
}

func detectionFlags(detections []string) []string {
	flags := make([]string, 0, len(detections))
	for _, d := range detections {
		flags = append(flags, fmt.Sprintf("Detection: %s", d))
	}
	return flags
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
