package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

const reasonerSystemPrompt = `You are the routing step of a product catalog assistant. Analyze the user's
latest query and pick exactly one tool.

Tools:
1. "structured_retrieval" - the query filters, sorts, counts, or aggregates
   catalog records by concrete attributes (name, brand, price, department,
   weight). Examples: "find mozzarella under $50", "show the most expensive
   cheese", "how many sliced cheeses are there?".
2. "similarity_retrieval" - the query needs semantic understanding of product
   descriptions or similarity to other products. Examples: "cheese that's good
   for pizza", "something similar to brie", "creamy Italian cheeses".
3. "combined" - the query needs both attribute filtering AND semantic
   similarity. Example: "Italian cheeses under $30 similar to mozzarella".
4. "clarify" - the query is too vague or ambiguous to act on. Examples:
   "find cheese", "what's good?".
5. "answer" - no retrieval is needed: the accumulated context already answers
   the query, or the query is out of scope for the catalog (answer directly
   and say so).

If human clarification is present, it takes precedence over the original query
when they conflict; fold it into the query you emit.

Respond with a single JSON object:
{"action": "<tool>", "query": "<query text for the chosen tool>", "rationale": "<one-sentence explanation>"}`

// LLMReasoner implements the Reasoner port with a provider-backed prompt. It
// passes the model's action through after alias normalization; enum
// enforcement is the workflow engine's job so the protocol-violation path has
// a single owner.
type LLMReasoner struct {
	provider ports.Provider
}

// NewLLMReasoner creates a provider-backed reasoner.
func NewLLMReasoner(provider ports.Provider) *LLMReasoner {
	return &LLMReasoner{provider: provider}
}

type decisionPayload struct {
	Action    string `json:"action"`
	Query     string `json:"query"`
	Rationale string `json:"rationale"`
}

// Decide asks the model to pick one of the five routes for the current turn.
func (r *LLMReasoner) Decide(ctx context.Context, in ports.DecisionInput) (ports.Decision, error) {
	var user strings.Builder
	user.WriteString("Conversation:\n")
	for _, msg := range in.Conversation {
		user.WriteString(msg)
		user.WriteString("\n")
	}
	if in.AggregatedContext != "" {
		user.WriteString("\nAccumulated retrieval context:\n")
		user.WriteString(in.AggregatedContext)
		user.WriteString("\n")
	}
	if in.ClarificationReply != "" {
		user.WriteString("\nHuman clarification: ")
		user.WriteString(in.ClarificationReply)
		user.WriteString("\n")
	}

	completion, err := r.provider.Complete(ctx, ports.PromptInput{
		System:   reasonerSystemPrompt,
		Messages: []ports.PromptMessage{{Role: "user", Content: user.String()}},
	}, ports.Options{Temperature: 0, RequireJSON: true})
	if err != nil {
		return ports.Decision{}, fmt.Errorf("reasoner completion: %w", err)
	}

	raw, err := extractJSON(completion.Text)
	if err != nil {
		return ports.Decision{}, fmt.Errorf("reasoner output: %w", err)
	}
	var payload decisionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ports.Decision{}, fmt.Errorf("reasoner output: %w", err)
	}

	return ports.Decision{
		Action:    normalizeAction(payload.Action),
		Query:     payload.Query,
		Rationale: payload.Rationale,
	}, nil
}

// normalizeAction maps model aliases onto the five-action enumeration.
// Out-of-scope queries route to the answer node with no retrieval.
func normalizeAction(action string) ports.Action {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "structured_retrieval", "structured", "catalog_search":
		return ports.ActionStructuredRetrieval
	case "similarity_retrieval", "similarity", "vector_search":
		return ports.ActionSimilarityRetrieval
	case "combined", "combined_search":
		return ports.ActionCombined
	case "clarify", "human_in_the_loop":
		return ports.ActionClarify
	case "answer", "out_of_scope":
		return ports.ActionAnswer
	default:
		return ports.Action(action)
	}
}

// Ensure LLMReasoner implements the Reasoner interface.
var _ ports.Reasoner = (*LLMReasoner)(nil)
