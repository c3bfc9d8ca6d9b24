package generation

import (
	"fmt"
	"strings"
)

// TruncateTail caps s at max characters by keeping the tail. Passages are
// concatenated most-relevant first, so when the context overflows we drop
// from the front and keep the trailing max characters intact.
func TruncateTail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}

// BuildPrompt assembles the single-turn prompt submitted to a generation
// backend. The context is capped to maxContextChars before inclusion.
func BuildPrompt(question, contextText string, maxContextChars int) string {
	ctx := TruncateTail(contextText, maxContextChars)

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. Use the context to answer the question concisely.\n")
	sb.WriteString(fmt.Sprintf("Question: %s\n\n", question))
	sb.WriteString("Context:\n")
	sb.WriteString(ctx)
	sb.WriteString("\n\n")
	sb.WriteString("Answer concisely, mention sources if present, and include a short \"Confidence\" line (low/medium/high).\n")
	sb.WriteString("Disclaimer: This is not legal advice.\n")
	return sb.String()
}
