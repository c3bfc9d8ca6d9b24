package model

// Passage is a single retrieved document chunk, ordered most-relevant first
// in any slice returned by the retrieval backend.
type Passage struct {
	Text     string
	Score    float64
	Metadata map[string]any
}
