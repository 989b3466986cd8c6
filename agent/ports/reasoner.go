package agentports

import "context"

// Action is one of the five routes a turn can take out of the reasoning node.
type Action string

const (
	ActionStructuredRetrieval Action = "structured_retrieval"
	ActionSimilarityRetrieval Action = "similarity_retrieval"
	ActionCombined            Action = "combined"
	ActionClarify             Action = "clarify"
	ActionAnswer              Action = "answer"
)

// Valid reports whether a is a member of the five-action enumeration.
func (a Action) Valid() bool {
	switch a {
	case ActionStructuredRetrieval, ActionSimilarityRetrieval, ActionCombined, ActionClarify, ActionAnswer:
		return true
	}
	return false
}

// DecisionInput is everything the reasoner sees when picking the next action.
type DecisionInput struct {
	Conversation       []string // rolling transcript, oldest first
	AggregatedContext  string   // cumulative retrieval context for this turn
	ClarificationReply string   // human-supplied clarification, empty until resumed
}

// Decision is the reasoner's routing output. Query carries the text handed to
// whichever downstream component Action selects; Rationale is appended to the
// turn trace verbatim.
type Decision struct {
	Action    Action
	Query     string
	Rationale string
}

// Reasoner maps free-form intent to exactly one of the five actions.
// Implementations must be total: every input yields a Decision whose Action is
// valid, or an error. Returning an out-of-enum Action is a protocol violation
// handled by the workflow engine.
type Reasoner interface {
	Decide(ctx context.Context, in DecisionInput) (Decision, error)
}
