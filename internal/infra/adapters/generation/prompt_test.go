package generation

import (
	"strings"
	"testing"
)

func TestTruncateTailKeepsShortStrings(t *testing.T) {
	if got := TruncateTail("short", 100); got != "short" {
		t.Errorf("TruncateTail = %q", got)
	}
	if got := TruncateTail("anything", 0); got != "anything" {
		t.Errorf("TruncateTail with max 0 must not truncate, got %q", got)
	}
}

func TestTruncateTailKeepsTrailingChars(t *testing.T) {
	s := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	got := TruncateTail(s, 50)
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	if got != strings.Repeat("b", 50) {
		t.Errorf("truncation must keep the tail, got %q", got[:10]+"...")
	}
}

func TestBuildPromptShape(t *testing.T) {
	prompt := BuildPrompt("what is a lease?", "A lease is a contract for possession.", 4000)

	for _, want := range []string{
		"Question: what is a lease?",
		"Context:\nA lease is a contract for possession.",
		"Confidence",
		"Disclaimer: This is not legal advice.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptCapsContext(t *testing.T) {
	ctx := strings.Repeat("x", 100) + "TAIL"
	prompt := BuildPrompt("q", ctx, 4)

	if strings.Contains(prompt, "x") {
		t.Error("overflowing context head must be dropped")
	}
	if !strings.Contains(prompt, "TAIL") {
		t.Error("context tail must survive truncation")
	}
}
