package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

const generatorSystemPrompt = `You are a helpful product catalog assistant. Answer the user's question using
ONLY the provided context.

Guidelines:
1. Provide clear, concise, and accurate answers.
2. If the context is empty or does not contain enough information, say
   explicitly that you lack supporting information. Never invent products.
3. Format prices and measurements appropriately.
4. When the context states a result count, report that exact count.
5. If more than 30 products match, list at most 30 and state explicitly that
   only a partial list is shown.
6. Compare products when the question asks for it.`

const judgeSystemPrompt = `You evaluate the quality of an answer about catalog products.

Return only a JSON object:
{"quality": "good" | "poor", "rationale": "<one-sentence explanation>"}

"good" means the answer is informative and addresses the question well.
"poor" means the answer is vague, uninformative, or does not address the
question.`

// LLMGenerator implements the Generator port: it synthesizes an answer from
// the current working context only, never from older turn history.
type LLMGenerator struct {
	provider ports.Provider
}

// NewLLMGenerator creates a provider-backed answer generator.
func NewLLMGenerator(provider ports.Provider) *LLMGenerator {
	return &LLMGenerator{provider: provider}
}

// Generate produces the answer text for the pending query.
func (g *LLMGenerator) Generate(ctx context.Context, question string, workingContext []ports.Snippet) (string, error) {
	snippets := make([]string, 0, len(workingContext))
	for _, sn := range workingContext {
		snippets = append(snippets, sn.Text)
	}

	completion, err := g.provider.Complete(ctx, ports.PromptInput{
		System:   generatorSystemPrompt,
		Context:  snippets,
		Messages: []ports.PromptMessage{{Role: "user", Content: question}},
	}, ports.Options{Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("answer completion: %w", err)
	}
	return strings.TrimSpace(completion.Text), nil
}

// LLMJudge implements the Judge port with an independent evaluation pass.
// Verdicts outside good/poor pass through for the workflow engine to reject.
type LLMJudge struct {
	provider ports.Provider
}

// NewLLMJudge creates a provider-backed answer judge.
func NewLLMJudge(provider ports.Provider) *LLMJudge {
	return &LLMJudge{provider: provider}
}

type verdictPayload struct {
	Quality   string `json:"quality"`
	Rationale string `json:"rationale"`
}

// Judge evaluates the answer against the conversation.
func (j *LLMJudge) Judge(ctx context.Context, conversation []string, answer string) (ports.Verdict, error) {
	var user strings.Builder
	user.WriteString("Conversation:\n")
	for _, msg := range conversation {
		user.WriteString(msg)
		user.WriteString("\n")
	}
	user.WriteString("\nAnswer to evaluate:\n")
	user.WriteString(answer)

	completion, err := j.provider.Complete(ctx, ports.PromptInput{
		System:   judgeSystemPrompt,
		Messages: []ports.PromptMessage{{Role: "user", Content: user.String()}},
	}, ports.Options{Temperature: 0, RequireJSON: true})
	if err != nil {
		return ports.Verdict{}, fmt.Errorf("judge completion: %w", err)
	}

	raw, err := extractJSON(completion.Text)
	if err != nil {
		return ports.Verdict{}, fmt.Errorf("judge output: %w", err)
	}
	var payload verdictPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ports.Verdict{}, fmt.Errorf("judge output: %w", err)
	}

	return ports.Verdict{
		Quality:   normalizeQuality(payload.Quality),
		Rationale: payload.Rationale,
	}, nil
}

// normalizeQuality maps model verdict spellings onto the quality enumeration.
func normalizeQuality(quality string) ports.Quality {
	switch strings.ToLower(strings.TrimSpace(quality)) {
	case "good":
		return ports.QualityGood
	case "poor":
		return ports.QualityPoor
	default:
		return ports.Quality(quality)
	}
}

// Ensure implementations satisfy their ports.
var (
	_ ports.Generator = (*LLMGenerator)(nil)
	_ ports.Judge     = (*LLMJudge)(nil)
)
