package agentports

import "context"

// Snippet is a retrieved chunk of catalog context with optional provenance.
type Snippet struct {
	Text   string  `json:"text"`
	Source string  `json:"source"` // which retriever produced it
	Score  float64 `json:"score"`  // similarity score when applicable, 0 otherwise
}

// Retriever turns a natural-language query into context snippets. The workflow
// core treats the structured and similarity retrievers identically through
// this port.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Snippet, error)
}
