package whois

import (
	"context"
	"crypto/tls"
	"net"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
)

// knownBrandDomains feed the look-alike check. A suspect domain within
// edit distance 2 of one of these, without being it, is flagged.
var knownBrandDomains = []string{
	"paypal.com", "amazon.com", "microsoft.com", "apple.com",
	"google.com", "facebook.com", "netflix.com", "instagram.com",
	"linkedin.com", "chase.com", "wellsfargo.com",
}

var privacyMarkers = []string{
	"privacy", "redacted", "whoisguard", "domains by proxy", "withheld",
}

// Collector gathers domain facts over the network: WHOIS, DNS, and an
// HTTPS reachability probe, fanned out concurrently. Lookups soft-fail:
// a dead WHOIS server yields partial signals, not an error.
type Collector struct {
	Timeout time.Duration
}

func NewCollector(timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Collector{Timeout: timeout}
}

func (c *Collector) Collect(ctx context.Context, domain string) (*analysis.DomainSignals, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	sig := &analysis.DomainSignals{Domain: domain}
	sig.SimilarDomains = similarBrandDomains(domain)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.lookupWhois(domain, sig)
		return nil
	})
	g.Go(func() error {
		sig.ResolvedIP = lookupIP(gctx, domain)
		return nil
	})
	g.Go(func() error {
		sig.HTTPSOk = probeHTTPS(domain)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sig, nil
}

// lookupWhois fills registration facts. For subdomains whose WHOIS is
// unparseable it retries the parent domain.
func (c *Collector) lookupWhois(domain string, sig *analysis.DomainSignals) {
	raw, err := whois.Whois(domain)
	if err != nil {
		return
	}
	p, err := parser.Parse(raw)
	if err != nil || p.Domain == nil {
		parts := strings.Split(domain, ".")
		if len(parts) > 2 {
			c.lookupWhois(strings.Join(parts[1:], "."), sig)
		}
		return
	}

	sig.LookupOK = true
	sig.CreatedDate = strings.TrimSpace(p.Domain.CreatedDate)
	sig.ExpiryDate = strings.TrimSpace(p.Domain.ExpirationDate)
	sig.NameServers = p.Domain.NameServers
	sig.Status = p.Domain.Status
	if created, ok := parseWhoisDate(sig.CreatedDate); ok {
		sig.AgeDays = int(time.Since(created).Hours() / 24)
	}
	if p.Registrar != nil {
		sig.Registrar = p.Registrar.Name
	}
	if p.Registrant != nil {
		sig.Country = p.Registrant.Country
		sig.PrivacyProtected = looksPrivate(p.Registrant.Name) || looksPrivate(p.Registrant.Organization)
	}
}

func parseWhoisDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02-Jan-2006",
		"2006.01.02",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func looksPrivate(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range privacyMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func lookupIP(ctx context.Context, domain string) string {
	var r net.Resolver
	ips, err := r.LookupIP(ctx, "ip", domain)
	if err != nil || len(ips) == 0 {
		return ""
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String()
		}
	}
	return ips[0].String()
}

func probeHTTPS(domain string) bool {
	d := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := tls.DialWithDialer(d, "tcp", domain+":443", &tls.Config{ServerName: domain})
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// similarBrandDomains finds known brand domains the suspect closely
// resembles without matching exactly.
func similarBrandDomains(domain string) []string {
	lower := strings.ToLower(domain)
	var out []string
	for _, brand := range knownBrandDomains {
		if lower == brand || strings.HasSuffix(lower, "."+brand) {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, brand); d > 0 && d <= 2 {
			out = append(out, brand)
		}
	}
	return out
}
