package utils

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScripts(t *testing.T) {
	in := `<p>rust on wheat <script>alert(1)</script>leaves</p>`
	out := Sanitize(in)
	if strings.Contains(out, "script") || strings.Contains(out, "alert") {
		t.Fatalf("script survived: %q", out)
	}
	if !strings.Contains(out, "rust on wheat") || !strings.Contains(out, "leaves") {
		t.Fatalf("content mangled: %q", out)
	}
}

func TestSanitizeKeepsPlainText(t *testing.T) {
	in := "price went from ₹1800 to ₹2100 per quintal"
	if out := Sanitize(in); out != in {
		t.Fatalf("plain text changed: %q", out)
	}
}
