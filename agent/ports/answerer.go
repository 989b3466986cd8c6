package agentports

import "context"

// Quality is the judge's binary verdict over a generated answer.
// The zero value means "not yet judged"; only good and poor are valid outputs.
type Quality string

const (
	QualityUnset Quality = ""
	QualityGood  Quality = "good"
	QualityPoor  Quality = "poor"
)

// Valid reports whether q is a terminal verdict (good or poor).
func (q Quality) Valid() bool {
	return q == QualityGood || q == QualityPoor
}

// Generator synthesizes a natural-language answer from the current working
// context only. With an empty context the answer must state that it lacks
// supporting information rather than fall back to older context.
type Generator interface {
	Generate(ctx context.Context, question string, workingContext []Snippet) (string, error)
}

// Verdict is the judge's evaluation of an answer. Rationale is appended to the
// turn trace verbatim.
type Verdict struct {
	Quality   Quality
	Rationale string
}

// Judge evaluates (conversation, answer) and returns exactly good or poor.
// Any other Quality is a protocol violation handled by the workflow engine.
type Judge interface {
	Judge(ctx context.Context, conversation []string, answer string) (Verdict, error)
}
