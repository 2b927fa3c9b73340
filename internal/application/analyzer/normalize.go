package analyzer

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

// domainPattern is the permissive fallback for bare domain input:
// alnum/hyphen labels, a TLD of two or more letters, optional path.
var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-._]*[a-zA-Z0-9]\.[a-zA-Z]{2,}(/.*)?$`)

// NormalizeURL validates a user-supplied string intended as a URL or bare
// domain and returns the canonical input string plus the extracted host.
// Pure: no network or state side effects.
func NormalizeURL(raw string) (input string, host string, err error) {
	input = strings.TrimSpace(raw)
	if input == "" {
		return "", "", tests.ErrMissingInput
	}

	if h, ok := parseStrict(input); ok {
		return input, h, nil
	}
	if h, ok := parseStrict("http://" + input); ok {
		return input, h, nil
	}
	if domainPattern.MatchString(input) {
		host = input
		if i := strings.IndexByte(host, '/'); i > 0 {
			host = host[:i]
		}
		return input, strings.ToLower(host), nil
	}
	return "", "", tests.ErrInvalidInput
}

func parseStrict(s string) (string, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}
