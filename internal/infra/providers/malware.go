package providers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
)

// engineCount is the number of heuristic "engines" a file is scored
// against, mirroring the positives/total shape of multi-engine scanners.
const engineCount = 5

var executableExts = map[string]bool{
	".exe": true, ".scr": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".vbs": true, ".js": true, ".jar": true, ".msi": true,
	".ps1": true, ".hta": true,
}

var documentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".txt": true, ".jpg": true, ".png": true, ".zip": true,
}

var badNameFragments = []string{"eicar", "trojan", "keylog", "ransom", "crack", "keygen"}

// HeuristicMalwareProvider scores a file name against static signatures.
// Deterministic: the same name always produces the same report.
type HeuristicMalwareProvider struct{}

func NewHeuristicMalwareProvider() *HeuristicMalwareProvider { return &HeuristicMalwareProvider{} }

func (p *HeuristicMalwareProvider) ScanFile(_ context.Context, fileName string) (*analysis.MalwareReport, error) {
	lower := strings.ToLower(fileName)
	ext := filepath.Ext(lower)

	var detections []string

	if executableExts[ext] {
		detections = append(detections, fmt.Sprintf("Executable file type: %s", ext))
	}
	if doubleExtension(lower) {
		detections = append(detections, "Disguised double extension")
	}
	for _, frag := range badNameFragments {
		if strings.Contains(lower, frag) {
			detections = append(detections, fmt.Sprintf("Known-bad name fragment: %s", frag))
		}
	}

	positives := len(detections)
	if positives > engineCount {
		positives = engineCount
	}
	verdict := "clean"
	switch {
	case positives >= 2:
		verdict = "malicious"
	case positives == 1:
		verdict = "suspicious"
	}

	return &analysis.MalwareReport{
		Positives:  positives,
		Total:      engineCount,
		Verdict:    verdict,
		Detections: detections,
		ScanDate:   time.Now().UTC().Format("2006-01-02"),
	}, nil
}

// doubleExtension catches names like invoice.pdf.exe where the visible
// "extension" is a harmless document type.
func doubleExtension(name string) bool {
	outer := filepath.Ext(name)
	if !executableExts[outer] {
		return false
	}
	inner := filepath.Ext(strings.TrimSuffix(name, outer))
	return documentExts[inner]
}
