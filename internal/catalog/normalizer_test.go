package catalog

import (
	"strings"
	"testing"
)

func TestSanitizeDescription_StripsUnsafeMarkup(t *testing.T) {
	in := `<p>Open to <b>STEM</b> students.</p><script>alert(1)</script><img src=x onerror=alert(1)>`
	out := SanitizeDescription(in)

	if strings.Contains(out, "<script") || strings.Contains(out, "onerror") {
		t.Fatalf("unsafe markup survived sanitization: %s", out)
	}
	if !strings.Contains(out, "<b>STEM</b>") {
		t.Fatalf("expected basic formatting preserved, got: %s", out)
	}
}

func TestSummarize_CollapsesAndTruncates(t *testing.T) {
	out := Summarize("<p>Full   tuition \n\n coverage</p><p>for qualified applicants</p>")
	if out != "Full tuition coverage for qualified applicants" {
		t.Fatalf("unexpected summary: %q", out)
	}

	// Nested and list blocks must not run together either.
	out = Summarize("<div><p>One</p><p>Two</p></div><ul><li>Three</li><li>Four</li></ul>")
	if out != "One Two Three Four" {
		t.Fatalf("expected block elements separated by spaces, got %q", out)
	}

	long := "<p>" + strings.Repeat("scholarship ", 60) + "</p>"
	out = Summarize(long)
	if len(out) != summaryMaxLen {
		t.Fatalf("expected summary capped at %d chars, got %d", summaryMaxLen, len(out))
	}
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected ellipsis on truncated summary, got %q", out)
	}
}
