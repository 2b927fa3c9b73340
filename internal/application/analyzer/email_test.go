package analyzer

import (
	"strings"
	"testing"
)

func TestPrepareEmailContent_PlainTextPassesThrough(t *testing.T) {
	content := "Urgent: verify your account"
	if got := PrepareEmailContent(content); got != content {
		t.Errorf("plain text altered: %q", got)
	}
}

func TestPrepareEmailContent_HTMLStripped(t *testing.T) {
	content := `<html><body><p>Urgent: <b>verify</b> your account</p></body></html>`
	got := PrepareEmailContent(content)
	if strings.Contains(got, "<") {
		t.Errorf("tags survived: %q", got)
	}
	if !strings.Contains(strings.ToLower(got), "verify") {
		t.Errorf("text content lost: %q", got)
	}
}

func TestPrepareEmailContent_MIMEMessage(t *testing.T) {
	raw := strings.Join([]string{
		"From: attacker@evil.test",
		"To: victim@example.com",
		"Subject: Account notice",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Urgent: verify your account now",
		"",
	}, "\r\n")

	got := PrepareEmailContent(raw)
	if strings.Contains(got, "Content-Type") {
		t.Errorf("headers survived: %q", got)
	}
	if !strings.Contains(got, "verify your account") {
		t.Errorf("body lost: %q", got)
	}
}

func TestLooksLikeMIME(t *testing.T) {
	if looksLikeMIME("just a sentence about content-type settings") {
		t.Error("plain mention of content-type misdetected")
	}
	raw := "From: a@b.c\r\nContent-Type: text/plain\r\n\r\nhi"
	if !looksLikeMIME(raw) {
		t.Error("raw message not detected")
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if !looksLikeHTML("<HTML><body>x</body></HTML>") {
		t.Error("html not detected")
	}
	if looksLikeHTML("a < b and b > c") {
		t.Error("inequality misdetected as html")
	}
}
