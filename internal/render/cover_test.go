package render

import (
	"strings"
	"testing"
)

func TestCoverLetter_WrapsAndEscapes(t *testing.T) {
	out := CoverLetter("Dear team,\n\nI build <fast> pipelines & dashboards.")

	if !strings.Contains(out, "white-space: pre-wrap;") {
		t.Error("Expected pre-wrap styling so paragraph breaks survive")
	}
	if !strings.Contains(out, "I build &lt;fast&gt; pipelines &amp; dashboards.") {
		t.Error("Expected letter text escaped")
	}
	if strings.Contains(out, "<fast>") {
		t.Error("Expected raw angle brackets removed")
	}
	if !strings.Contains(out, "Dear team,\n\nI build") {
		t.Error("Expected newlines preserved verbatim")
	}
}

func TestCoverLetter_BlankPlaceholder(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		out := CoverLetter(text)
		if !strings.Contains(out, "(Cover letter intentionally left blank.)") {
			t.Errorf("Expected placeholder for blank input %q", text)
		}
	}
}

func TestCoverLetter_TrimsSurroundingWhitespace(t *testing.T) {
	out := CoverLetter("\n\n  Hello.  \n")
	if !strings.Contains(out, "\nHello.\n") {
		t.Errorf("Expected trimmed text in the body, got: %s", out)
	}
}
