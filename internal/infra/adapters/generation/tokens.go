package generation

import (
	"github.com/pkoukk/tiktoken-go"
)

// PromptTokens counts the tokens a prompt will consume, for budget metrics.
// Providers that report usage override this; it is the pre-call estimate.
// Falls back to the cl100k_base encoding for models tiktoken does not know,
// and to a chars/4 heuristic if no encoding can be loaded at all.
func PromptTokens(model, prompt string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil || enc == nil {
		return len(prompt) / 4
	}
	return len(enc.Encode(prompt, nil, nil))
}
