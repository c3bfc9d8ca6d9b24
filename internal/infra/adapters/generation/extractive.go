package generation

import (
	"context"
	"fmt"
	"strings"

	"asklaw-backend/internal/domain/ports/adapter"
)

var _ adapter.Generator = (*ExtractiveGenerator)(nil)

// ExtractiveGenerator is the configured-absent mode: when no generation
// backend is available it builds a deterministic, clearly-labeled answer
// from the top retrieved passages. This is a supported mode, never a
// failure, so Generate does not return errors.
type ExtractiveGenerator struct {
	maxContextChars int
}

func NewExtractiveGenerator(maxContextChars int) *ExtractiveGenerator {
	return &ExtractiveGenerator{maxContextChars: maxContextChars}
}

func (e *ExtractiveGenerator) Name() string { return "extractive" }

func (e *ExtractiveGenerator) Generate(_ context.Context, question, contextText string) (string, error) {
	ctx := TruncateTail(contextText, e.maxContextChars)
	if strings.TrimSpace(ctx) == "" {
		return "I don't have context to answer that. (No documents indexed.)", nil
	}

	lines := strings.Split(ctx, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	shortCtx := strings.Join(lines, "\n")
	return fmt.Sprintf(
		"Based on these documents:\n%s\n\nAnswer (short): %s\nConfidence: medium\nDisclaimer: Not legal advice.",
		shortCtx, question,
	), nil
}
