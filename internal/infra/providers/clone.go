package providers

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
)

// EvidenceStore is the slice of the object store the clone provider
// needs: screenshots go in, URLs come out.
type EvidenceStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// brandSites maps brand names to the domains legitimately allowed to
// present them.
var brandSites = map[string]string{
	"paypal":    "paypal.com",
	"amazon":    "amazon.com",
	"microsoft": "microsoft.com",
	"apple":     "apple.com",
	"google":    "google.com",
	"facebook":  "facebook.com",
	"netflix":   "netflix.com",
	"instagram": "instagram.com",
}

var credentialWords = []string{"password", "sign in", "log in", "login", "verify your account"}

// ChromeCloneProvider renders the suspect page headless and looks for a
// brand presented on a domain that does not own it. The screenshot is
// kept as evidence when a store is configured.
type ChromeCloneProvider struct {
	Evidence EvidenceStore
	Timeout  time.Duration
}

func NewChromeCloneProvider(evidence EvidenceStore, timeout time.Duration) *ChromeCloneProvider {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChromeCloneProvider{Evidence: evidence, Timeout: timeout}
}

func (p *ChromeCloneProvider) Compare(ctx context.Context, rawURL, brand string) (*analysis.CloneReport, error) {
	target := rawURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "http://" + target
	}
	if err := guardTarget(target); err != nil {
		return nil, err
	}

	host := hostOf(target)

	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	cctx, cancelT := context.WithTimeout(cctx, p.Timeout)
	defer cancelT()

	var title, bodyText string
	var shot []byte
	err := chromedp.Run(cctx,
		chromedp.Navigate(target),
		chromedp.Title(&title),
		chromedp.Text("body", &bodyText, chromedp.NodeVisible),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return nil, fmt.Errorf("page render failed: %w", err)
	}

	rep := assessClone(host, brand, title, bodyText)
	rep.PageTitle = title

	if p.Evidence != nil && len(shot) > 0 {
		key := fmt.Sprintf("clone/%s/%s.png", host, uuid.New().String())
		url, uerr := p.Evidence.UploadBytes(ctx, key, shot, "image/png")
		if uerr != nil {
			log.Printf("evidence upload failed host=%s: %v", host, uerr)
		} else {
			rep.EvidenceURL = url
		}
	}
	return rep, nil
}

// assessClone is the pure comparison step, split out for tests.
func assessClone(host, claimedBrand, title, bodyText string) *analysis.CloneReport {
	lowerTitle := strings.ToLower(title)
	lowerBody := strings.ToLower(bodyText)
	host = strings.ToLower(host)

	brand := strings.ToLower(claimedBrand)
	official := brandSites[brand]
	if official == "" {
		// no claimed brand; detect one from the page itself
		for b, site := range brandSites {
			if strings.Contains(lowerTitle, b) || strings.Contains(lowerBody, b) {
				brand, official = b, site
				break
			}
		}
	}

	if official == "" {
		return &analysis.CloneReport{CloneScore: 0, Similarity: 0}
	}
	if host == official || strings.HasSuffix(host, "."+official) {
		// the brand's own site presenting itself is not a clone
		return &analysis.CloneReport{CloneScore: 0, Similarity: 1, MatchedBrand: brand}
	}

	mentions := strings.Contains(lowerTitle, brand) || strings.Contains(lowerBody, brand)
	if !mentions {
		return &analysis.CloneReport{CloneScore: 0, Similarity: 0, MatchedBrand: brand}
	}

	score := 60
	similarity := 0.6
	if strings.Contains(lowerTitle, brand) {
		score += 15
		similarity += 0.2
	}
	for _, w := range credentialWords {
		if strings.Contains(lowerBody, w) {
			score += 15
			similarity += 0.2
			break
		}
	}
	if score > 100 {
		score = 100
	}
	if similarity > 1 {
		similarity = 1
	}
	return &analysis.CloneReport{
		IsClone:      true,
		CloneScore:   score,
		Similarity:   similarity,
		MatchedBrand: brand,
	}
}

// guardTarget blocks navigation to loopback and private ranges so the
// renderer cannot be pointed at internal services.
func guardTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}
	for _, b := range blocked {
		if host == b {
			return fmt.Errorf("localhost targets are not allowed")
		}
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
		return fmt.Errorf("private address targets are not allowed")
	}
	return nil
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return strings.ToLower(u.Hostname())
}
