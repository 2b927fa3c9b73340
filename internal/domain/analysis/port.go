package analysis

import "context"

// DomainSignals are the raw facts collected about an analysis target's
// domain. Collection is best-effort: a failed lookup leaves the zero value
// in place and clears LookupOK rather than failing the whole analysis.
type DomainSignals struct {
	Domain           string   `json:"domain"`
	ResolvedIP       string   `json:"resolvedIp,omitempty"`
	AgeDays          int      `json:"ageDays"`
	CreatedDate      string   `json:"createdDate,omitempty"`
	ExpiryDate       string   `json:"expiryDate,omitempty"`
	Registrar        string   `json:"registrar,omitempty"`
	Country          string   `json:"country,omitempty"`
	NameServers      []string `json:"nameServers,omitempty"`
	Status           []string `json:"status,omitempty"`
	PrivacyProtected bool     `json:"privacyProtection"`
	HTTPSOk          bool     `json:"httpsOk"`
	SimilarDomains   []string `json:"similarDomains,omitempty"`
	LookupOK         bool     `json:"-"`
}

// SignalCollector gathers DomainSignals for a bare domain name.
type SignalCollector interface {
	Collect(ctx context.Context, domain string) (*DomainSignals, error)
}

// AIJudgment is an external model's read of a URL. Enabled is false when
// no AI backend is configured; consumers fall back to heuristics alone.
type AIJudgment struct {
	Enabled         bool     `json:"enabled"`
	RiskScore       int      `json:"riskScore"`
	Analysis        string   `json:"analysis,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Insights        string   `json:"insights,omitempty"`
}

// URLJudge asks an external model to assess a URL given collected signals.
type URLJudge interface {
	Judge(ctx context.Context, url string, sig *DomainSignals) (*AIJudgment, error)
}

// MalwareReport is a file-scan outcome from a malware provider.
type MalwareReport struct {
	Positives  int      `json:"positives"`
	Total      int      `json:"total"`
	Verdict    string   `json:"verdict"`
	Detections []string `json:"detections,omitempty"`
	ScanDate   string   `json:"scanDate,omitempty"`
}

// CloneReport is the outcome of comparing a suspect page against the
// brand it claims to be.
type CloneReport struct {
	IsClone      bool    `json:"isClone"`
	CloneScore   int     `json:"cloneScore"`
	Similarity   float64 `json:"similarity"`
	MatchedBrand string  `json:"matchedBrand,omitempty"`
	PageTitle    string  `json:"pageTitle,omitempty"`
	EvidenceURL  string  `json:"evidenceUrl,omitempty"`
}

// ScamReport is the outcome of assessing a free-text message for scam
// patterns.
type ScamReport struct {
	IsScam          bool     `json:"isScam"`
	ConfidenceScore int      `json:"confidenceScore"`
	Indicators      []string `json:"indicators,omitempty"`
	PhoneNumbers    []string `json:"phoneNumbers,omitempty"`
}

// Provider ports. Each has a real implementation and a static fixture so
// tests can inject deterministic results.
type MalwareProvider interface {
	ScanFile(ctx context.Context, fileName string) (*MalwareReport, error)
}

type CloneProvider interface {
	Compare(ctx context.Context, url, brand string) (*CloneReport, error)
}

type ScamProvider interface {
	Assess(ctx context.Context, content string) (*ScamReport, error)
}
