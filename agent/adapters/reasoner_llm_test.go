package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// stubProvider returns a canned completion and records what it was asked.
type stubProvider struct {
	text   string
	err    error
	inputs []ports.PromptInput
	opts   []ports.Options
}

func (p *stubProvider) Complete(_ context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
	p.inputs = append(p.inputs, in)
	p.opts = append(p.opts, opts)
	if p.err != nil {
		return ports.Completion{}, p.err
	}
	return ports.Completion{Text: p.text}, nil
}

func TestLLMReasoner_Decide(t *testing.T) {
	provider := &stubProvider{text: "```json\n{\"action\": \"structured_retrieval\", \"query\": \"mozzarella under $50\", \"rationale\": \"price filter\"}\n```"}
	reasoner := NewLLMReasoner(provider)

	decision, err := reasoner.Decide(context.Background(), ports.DecisionInput{
		Conversation:       []string{"user: find mozzarella under $50"},
		ClarificationReply: "fresh, not shredded",
	})
	require.NoError(t, err)

	assert.Equal(t, ports.ActionStructuredRetrieval, decision.Action)
	assert.Equal(t, "mozzarella under $50", decision.Query)
	assert.Equal(t, "price filter", decision.Rationale)

	require.Len(t, provider.inputs, 1)
	require.Len(t, provider.inputs[0].Messages, 1)
	user := provider.inputs[0].Messages[0].Content
	assert.Contains(t, user, "find mozzarella under $50")
	assert.Contains(t, user, "fresh, not shredded")
	assert.True(t, provider.opts[0].RequireJSON)
}

func TestLLMReasoner_PassesUnknownActionThrough(t *testing.T) {
	provider := &stubProvider{text: `{"action": "teleport", "query": "", "rationale": ""}`}
	reasoner := NewLLMReasoner(provider)

	decision, err := reasoner.Decide(context.Background(), ports.DecisionInput{})
	require.NoError(t, err)
	// The adapter never coerces; the engine owns enum enforcement.
	assert.Equal(t, ports.Action("teleport"), decision.Action)
	assert.False(t, decision.Action.Valid())
}

func TestLLMReasoner_RejectsNonJSONOutput(t *testing.T) {
	provider := &stubProvider{text: "I think you should search for mozzarella."}
	reasoner := NewLLMReasoner(provider)

	_, err := reasoner.Decide(context.Background(), ports.DecisionInput{})
	assert.Error(t, err)
}

func TestNormalizeAction(t *testing.T) {
	tests := []struct {
		raw  string
		want ports.Action
	}{
		{"structured_retrieval", ports.ActionStructuredRetrieval},
		{"catalog_search", ports.ActionStructuredRetrieval},
		{"Similarity_Retrieval", ports.ActionSimilarityRetrieval},
		{"vector_search", ports.ActionSimilarityRetrieval},
		{"combined_search", ports.ActionCombined},
		{"human_in_the_loop", ports.ActionClarify},
		{"out_of_scope", ports.ActionAnswer},
		{" answer ", ports.ActionAnswer},
		{"teleport", ports.Action("teleport")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAction(tt.raw), "raw %q", tt.raw)
	}
}
