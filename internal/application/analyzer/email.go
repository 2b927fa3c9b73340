package analyzer

import (
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
)

// PrepareEmailContent reduces whatever the client pasted to plain text
// before scoring. Raw RFC 822 messages are parsed for their text part;
// HTML bodies are stripped to text. Plain text passes through untouched.
func PrepareEmailContent(content string) string {
	if looksLikeMIME(content) {
		if env, err := enmime.ReadEnvelope(strings.NewReader(content)); err == nil {
			if env.Text != "" {
				return env.Text
			}
			if env.HTML != "" {
				if txt, err := html2text.FromString(env.HTML); err == nil {
					return txt
				}
			}
		}
	}
	if looksLikeHTML(content) {
		if txt, err := html2text.FromString(content); err == nil && txt != "" {
			return txt
		}
	}
	return content
}

func looksLikeMIME(s string) bool {
	head := s
	if len(head) > 2048 {
		head = head[:2048]
	}
	lower := strings.ToLower(head)
	return strings.Contains(lower, "content-type:") &&
		(strings.Contains(lower, "mime-version:") || strings.Contains(lower, "\nfrom:") || strings.HasPrefix(lower, "from:"))
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body") || strings.Contains(lower, "</a>")
}
