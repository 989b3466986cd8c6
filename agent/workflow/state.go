package workflow

import (
	"errors"
	"fmt"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// Phase records which node last executed, for diagnostics and checkpoints.
type Phase string

const (
	PhaseStart               Phase = "start"
	PhaseReasoning           Phase = "reasoning"
	PhaseStructuredRetrieval Phase = "structured_retrieval"
	PhaseSimilarityRetrieval Phase = "similarity_retrieval"
	PhaseCombinedRetrieval   Phase = "combined_retrieval"
	PhaseClarification       Phase = "clarification"
	PhaseAnswer              Phase = "answer"
)

var (
	// ErrProtocolViolation marks a reasoner or judge output that falls outside
	// its enumerated contract. Fatal for the turn, never coerced.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrUnknownConversation is returned when resume is called with a
	// conversation id that has no checkpoint.
	ErrUnknownConversation = errors.New("unknown conversation")

	// ErrCollaboratorFault wraps retrieval or generation failures. Turn state
	// is preserved so the caller may retry with the same conversation id.
	ErrCollaboratorFault = errors.New("collaborator fault")
)

// TurnState is the single mutable record threaded through every step of one
// conversational turn. It is created fresh per user query, survives
// suspend/resume cycles via the checkpoint store, and is discarded once the
// turn terminates.
type TurnState struct {
	ConversationID     string          `json:"conversation_id"`
	Phase              Phase           `json:"phase"`
	Conversation       []string        `json:"conversation"`
	PendingQuery       string          `json:"pending_query"`
	WorkingContext     []ports.Snippet `json:"working_context,omitempty"`
	AggregatedContext  string          `json:"aggregated_context"`
	ChosenAction       ports.Action    `json:"chosen_action,omitempty"`
	ClarificationReply string          `json:"clarification_reply,omitempty"`
	AnswerQuality      ports.Quality   `json:"answer_quality,omitempty"`
	Trace              []string        `json:"trace"`

	// LastAnswer holds the most recent generated answer so a capped turn can
	// force-terminate with the best available text.
	LastAnswer string `json:"last_answer,omitempty"`
	// Cycles counts completed reasoning/answer passes for the retry cap.
	Cycles int `json:"cycles"`
}

// NewTurnState builds a fresh state for one user-issued query. The caller
// supplies the bounded conversation window, newest message last.
func NewTurnState(conversationID string, conversation []string) *TurnState {
	history := make([]string, len(conversation))
	copy(history, conversation)
	return &TurnState{
		ConversationID: conversationID,
		Phase:          PhaseStart,
		Conversation:   history,
	}
}

// AppendTrace records one step's rationale. The trace is append-only and is
// never truncated or reordered, including across retries.
func (s *TurnState) AppendTrace(entry string) {
	s.Trace = append(s.Trace, entry)
}

// ApplyDecision validates and records the reasoner's output.
func (s *TurnState) ApplyDecision(d ports.Decision) error {
	if !d.Action.Valid() {
		return fmt.Errorf("%w: reasoner returned action %q", ErrProtocolViolation, d.Action)
	}
	s.ChosenAction = d.Action
	s.PendingQuery = d.Query
	s.AppendTrace(d.Rationale)
	return nil
}

// ApplyVerdict validates and records the judge's output.
func (s *TurnState) ApplyVerdict(v ports.Verdict) error {
	if !v.Quality.Valid() {
		return fmt.Errorf("%w: judge returned quality %q", ErrProtocolViolation, v.Quality)
	}
	s.AnswerQuality = v.Quality
	s.AppendTrace(v.Rationale)
	return nil
}

// ClearWorkingContext empties the working context after the answerer has
// consumed it. At most one retrieval's results are visible to a single
// answerer invocation.
func (s *TurnState) ClearWorkingContext() {
	s.WorkingContext = nil
}

// ResetForRetry prepares the state for another reasoning/answer cycle after a
// poor verdict. The trace and aggregated context are kept.
func (s *TurnState) ResetForRetry() {
	s.Cycles++
	s.AnswerQuality = ports.QualityUnset
	s.ChosenAction = ""
}
