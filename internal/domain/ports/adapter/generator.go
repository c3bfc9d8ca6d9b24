package adapter

import "context"

// Generator is the port for answer synthesis. Implementations must cap the
// context they submit (trailing max_context_chars characters) and bound the
// output length. Backend failures wrap domain.ErrGenerationUnavailable;
// responses that cannot be parsed into text wrap domain.ErrGenerationMalformed.
type Generator interface {
	// Name identifies the backing provider, e.g. "groq", "openai", "extractive".
	Name() string
	// Generate returns the synthesized answer for a question given retrieved
	// context (may be empty).
	Generate(ctx context.Context, question, contextText string) (string, error)
}
