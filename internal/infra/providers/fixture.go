package providers

import (
	"context"
	"strings"

	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
)

// Fixture implements every provider port with canned, deterministic
// results so tests and demo deployments never depend on the network or
// on chance.
type Fixture struct {
	MalwareByName map[string]analysis.MalwareReport
	CloneByURL    map[string]analysis.CloneReport
	ScamByContent map[string]analysis.ScamReport
}

func NewFixture() *Fixture {
	return &Fixture{
		MalwareByName: map[string]analysis.MalwareReport{
			"eicar.com": {Positives: 5, Total: 5, Verdict: "malicious", Detections: []string{"EICAR test signature"}},
		},
		CloneByURL:    map[string]analysis.CloneReport{},
		ScamByContent: map[string]analysis.ScamReport{},
	}
}

func (f *Fixture) ScanFile(_ context.Context, fileName string) (*analysis.MalwareReport, error) {
	if rep, ok := f.MalwareByName[strings.ToLower(fileName)]; ok {
		return &rep, nil
	}
	return &analysis.MalwareReport{Positives: 0, Total: 5, Verdict: "clean"}, nil
}

func (f *Fixture) Compare(_ context.Context, url, _ string) (*analysis.CloneReport, error) {
	if rep, ok := f.CloneByURL[url]; ok {
		return &rep, nil
	}
	return &analysis.CloneReport{IsClone: false, CloneScore: 0, Similarity: 0}, nil
}

func (f *Fixture) Assess(_ context.Context, content string) (*analysis.ScamReport, error) {
	if rep, ok := f.ScamByContent[content]; ok {
		return &rep, nil
	}
	return &analysis.ScamReport{IsScam: false, ConfidenceScore: 0}, nil
}
