package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
)

// GetSystemPrompt constrains the model to the JSON schema the judge
// expects back.
func GetSystemPrompt() string {
	return `You are a phishing analyst. Given a URL and WHOIS/DNS facts about
its domain, assess the likelihood that the URL is a phishing site.
Respond with a single JSON object of this exact shape:
{
  "risk_score": <integer 0-100>,
  "analysis": "<one-paragraph assessment>",
  "recommendations": ["<short actionable advice>", ...],
  "insights": "<one-sentence takeaway for an end user>"
}
Base the score only on the provided facts. Do not invent WHOIS data.`
}

// GetUserPrompt renders the URL plus collected signals for the model.
func GetUserPrompt(url string, sig *analysis.DomainSignals) string {
	facts, _ := json.Marshal(sig)
	return fmt.Sprintf("URL: %s\nDomain facts: %s", url, facts)
}
