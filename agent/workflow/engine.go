package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// Status tells the caller how a turn invocation ended.
type Status string

const (
	StatusDone               Status = "done"
	StatusNeedsClarification Status = "needs_clarification"
)

// TurnResult is the structured outcome of StartTurn/ResumeTurn. The caller
// always receives done, needs-clarification, or an error, never an ambiguous
// partial state.
type TurnResult struct {
	Status              Status
	Answer              string
	ClarificationPrompt string
	Trace               []string
	// QualityConfirmed is false when the retry cap forced termination before
	// the judge accepted an answer.
	QualityConfirmed bool
}

// Policy controls engine hardening knobs.
type Policy struct {
	// MaxCycles bounds reasoning/answer passes per turn. On exhaustion the
	// turn force-terminates with the best available answer.
	MaxCycles int
}

// DefaultPolicy returns sensible defaults.
func DefaultPolicy() *Policy {
	return &Policy{MaxCycles: 3}
}

// Engine wires the reasoner, retrievers, answerer, and judge into the cyclic
// turn graph:
//
//	START -> reasoning
//	reasoning -[structured|similarity|combined]-> retrieval -> answer
//	reasoning -[clarify]-> suspend ... resume -> reasoning
//	reasoning -[answer]-> answer
//	answer -[good]-> TERMINATE
//	answer -[poor]-> reasoning
//
// The clarification node is the only suspend point; full turn state is
// checkpointed by conversation id so resume continues from that exact point.
type Engine struct {
	reasoner    ports.Reasoner
	generator   ports.Generator
	judge       ports.Judge
	structured  ports.Retriever
	similarity  ports.Retriever
	checkpoints ports.CheckpointStore
	tracer      ports.Tracer
	policy      *Policy
	logger      zerolog.Logger
}

// NewEngine creates a fully wired workflow engine.
func NewEngine(
	reasoner ports.Reasoner,
	generator ports.Generator,
	judge ports.Judge,
	structured ports.Retriever,
	similarity ports.Retriever,
	checkpoints ports.CheckpointStore,
	tracer ports.Tracer,
	policy *Policy,
	logger zerolog.Logger,
) *Engine {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if policy.MaxCycles < 1 {
		policy.MaxCycles = 1
	}
	return &Engine{
		reasoner:    reasoner,
		generator:   generator,
		judge:       judge,
		structured:  structured,
		similarity:  similarity,
		checkpoints: checkpoints,
		tracer:      tracer,
		policy:      policy,
		logger:      logger,
	}
}

// StartTurn runs one user-issued query through the graph until it terminates
// or suspends for clarification.
func (e *Engine) StartTurn(ctx context.Context, conversationID string, conversation []string) (*TurnResult, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id must not be empty")
	}
	state := NewTurnState(conversationID, conversation)
	return e.run(ctx, state)
}

// ResumeTurn continues a suspended turn with the human-supplied reply. Control
// returns unconditionally to the reasoning node. An unrecognized conversation
// id is rejected; it never silently starts a fresh turn.
func (e *Engine) ResumeTurn(ctx context.Context, conversationID, reply string) (*TurnResult, error) {
	raw, err := e.checkpoints.Load(ctx, conversationID)
	if err != nil {
		if errors.Is(err, ports.ErrCheckpointNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownConversation, conversationID)
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", conversationID, err)
	}
	state := &TurnState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", conversationID, err)
	}
	state.ClarificationReply = reply
	e.logger.Debug().Str("conversation_id", conversationID).Msg("resuming suspended turn")
	return e.run(ctx, state)
}

// run drives the state machine loop from the reasoning node until the turn
// terminates, suspends, or fails.
func (e *Engine) run(ctx context.Context, state *TurnState) (result *TurnResult, err error) {
	ctx, finish := e.tracer.StartSpan(ctx, "turn", map[string]any{
		"conversation_id": state.ConversationID,
		"cycles":          state.Cycles,
	})
	defer func() { finish(err) }()

	for {
		if state.Cycles >= e.policy.MaxCycles {
			return e.forceTerminate(ctx, state)
		}

		decision, derr := e.reason(ctx, state)
		if derr != nil {
			return nil, derr
		}

		action, rerr := RouteAction(state)
		if rerr != nil {
			return nil, e.abort(ctx, state, rerr)
		}

		e.tracer.Event(ctx, "action_routed", map[string]any{
			"action": string(action),
			"query":  decision.Query,
		})

		if action == ports.ActionClarify {
			return e.suspend(ctx, state)
		}

		if action != ports.ActionAnswer {
			if ferr := e.retrieve(ctx, state, action); ferr != nil {
				return nil, ferr
			}
		}

		done, aerr := e.answer(ctx, state)
		if aerr != nil {
			return nil, aerr
		}
		if done != nil {
			return done, nil
		}
		// Poor verdict: cycle back to reasoning.
		state.ResetForRetry()
	}
}

// reason executes the reasoning node: one decision mapping free-form intent to
// one of the five routes.
func (e *Engine) reason(ctx context.Context, state *TurnState) (ports.Decision, error) {
	state.Phase = PhaseReasoning
	in := ports.DecisionInput{
		Conversation:       state.Conversation,
		AggregatedContext:  state.AggregatedContext,
		ClarificationReply: state.ClarificationReply,
	}
	decision, err := e.reasoner.Decide(ctx, in)
	if err != nil {
		return ports.Decision{}, e.fault(ctx, state, "reasoner", err)
	}
	if err := state.ApplyDecision(decision); err != nil {
		return ports.Decision{}, e.abort(ctx, state, err)
	}
	e.logger.Debug().
		Str("conversation_id", state.ConversationID).
		Str("action", string(decision.Action)).
		Msg("reasoner decided")
	return decision, nil
}

// retrieve executes the selected retrieval node(s) and records results in the
// working context. The combined action dispatches both retrievers in parallel
// and concatenates structured results first regardless of completion order.
func (e *Engine) retrieve(ctx context.Context, state *TurnState, action ports.Action) error {
	var snippets []ports.Snippet
	switch action {
	case ports.ActionStructuredRetrieval:
		state.Phase = PhaseStructuredRetrieval
		out, err := e.structured.Retrieve(ctx, state.PendingQuery)
		if err != nil {
			return e.fault(ctx, state, "structured retrieval", err)
		}
		snippets = out
	case ports.ActionSimilarityRetrieval:
		state.Phase = PhaseSimilarityRetrieval
		out, err := e.similarity.Retrieve(ctx, state.PendingQuery)
		if err != nil {
			return e.fault(ctx, state, "similarity retrieval", err)
		}
		snippets = out
	case ports.ActionCombined:
		state.Phase = PhaseCombinedRetrieval
		var (
			structuredOut []ports.Snippet
			similarityOut []ports.Snippet
			structuredErr error
			similarityErr error
		)
		wg := conc.NewWaitGroup()
		wg.Go(func() {
			structuredOut, structuredErr = e.structured.Retrieve(ctx, state.PendingQuery)
		})
		wg.Go(func() {
			similarityOut, similarityErr = e.similarity.Retrieve(ctx, state.PendingQuery)
		})
		wg.Wait()
		if structuredErr != nil {
			return e.fault(ctx, state, "structured retrieval", structuredErr)
		}
		if similarityErr != nil {
			return e.fault(ctx, state, "similarity retrieval", similarityErr)
		}
		snippets = append(structuredOut, similarityOut...)
	default:
		return e.abort(ctx, state, fmt.Errorf("%w: retrieval cannot serve action %q", ErrProtocolViolation, action))
	}

	state.WorkingContext = snippets
	if len(snippets) > 0 {
		var sb strings.Builder
		for _, sn := range snippets {
			sb.WriteString("\n")
			sb.WriteString(sn.Text)
		}
		state.AggregatedContext += sb.String()
	}
	e.tracer.Event(ctx, "retrieved", map[string]any{
		"phase":    string(state.Phase),
		"snippets": len(snippets),
	})
	return nil
}

// answer executes the answer node: generate from the working context only,
// judge the result, clear the working context, and route on quality. Returns a
// non-nil result on termination, nil to signal a retry cycle.
func (e *Engine) answer(ctx context.Context, state *TurnState) (*TurnResult, error) {
	state.Phase = PhaseAnswer
	text, err := e.generator.Generate(ctx, state.PendingQuery, state.WorkingContext)
	if err != nil {
		return nil, e.fault(ctx, state, "answer generation", err)
	}
	state.LastAnswer = text
	state.Conversation = append(state.Conversation, text)

	verdict, err := e.judge.Judge(ctx, state.Conversation, text)
	if err != nil {
		return nil, e.fault(ctx, state, "answer judgment", err)
	}
	if err := state.ApplyVerdict(verdict); err != nil {
		return nil, e.abort(ctx, state, err)
	}
	state.ClearWorkingContext()

	outcome, err := RouteQuality(state)
	if err != nil {
		return nil, e.abort(ctx, state, err)
	}
	e.tracer.Event(ctx, "quality_routed", map[string]any{
		"outcome": string(outcome),
		"cycle":   state.Cycles,
	})
	if outcome == OutcomeRetry {
		return nil, nil
	}

	e.discardCheckpoint(ctx, state)
	return &TurnResult{
		Status:           StatusDone,
		Answer:           text,
		Trace:            state.Trace,
		QualityConfirmed: true,
	}, nil
}

// suspend checkpoints the full turn state and hands the clarification prompt
// back to the caller. The turn pauses indefinitely until ResumeTurn.
func (e *Engine) suspend(ctx context.Context, state *TurnState) (*TurnResult, error) {
	state.Phase = PhaseClarification
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint %s: %w", state.ConversationID, err)
	}
	if err := e.checkpoints.Save(ctx, state.ConversationID, raw); err != nil {
		return nil, fmt.Errorf("save checkpoint %s: %w", state.ConversationID, err)
	}
	e.logger.Info().
		Str("conversation_id", state.ConversationID).
		Str("prompt", state.PendingQuery).
		Msg("turn suspended for clarification")
	return &TurnResult{
		Status:              StatusNeedsClarification,
		ClarificationPrompt: state.PendingQuery,
		Trace:               state.Trace,
	}, nil
}

// forceTerminate ends a turn whose retry cap is exhausted, returning the best
// available answer flagged as unconfirmed.
func (e *Engine) forceTerminate(ctx context.Context, state *TurnState) (*TurnResult, error) {
	e.logger.Warn().
		Str("conversation_id", state.ConversationID).
		Int("cycles", state.Cycles).
		Msg("retry cap exhausted, terminating with unconfirmed answer")
	state.AppendTrace(fmt.Sprintf("retry cap reached after %d cycles; returning best available answer", state.Cycles))
	e.discardCheckpoint(ctx, state)
	return &TurnResult{
		Status:           StatusDone,
		Answer:           state.LastAnswer,
		Trace:            state.Trace,
		QualityConfirmed: false,
	}, nil
}

// fault persists the turn state and reports a collaborator failure so the
// caller can retry with the same conversation id.
func (e *Engine) fault(ctx context.Context, state *TurnState, stage string, err error) error {
	if raw, merr := json.Marshal(state); merr == nil {
		if serr := e.checkpoints.Save(ctx, state.ConversationID, raw); serr != nil {
			e.logger.Error().Err(serr).
				Str("conversation_id", state.ConversationID).
				Msg("failed to preserve state after collaborator fault")
		}
	}
	e.logger.Error().Err(err).
		Str("conversation_id", state.ConversationID).
		Str("stage", stage).
		Msg("collaborator fault")
	return fmt.Errorf("%w: %s: %w", ErrCollaboratorFault, stage, err)
}

// abort ends the turn on a protocol violation. No partial answer is returned
// and the checkpoint is dropped.
func (e *Engine) abort(ctx context.Context, state *TurnState, err error) error {
	e.logger.Error().Err(err).
		Str("conversation_id", state.ConversationID).
		Msg("turn aborted")
	e.discardCheckpoint(ctx, state)
	return err
}

// discardCheckpoint removes a terminated turn's checkpoint. Best effort: a
// stale checkpoint is harmless because resume always re-enters at reasoning.
func (e *Engine) discardCheckpoint(ctx context.Context, state *TurnState) {
	if err := e.checkpoints.Delete(ctx, state.ConversationID); err != nil &&
		!errors.Is(err, ports.ErrCheckpointNotFound) {
		e.logger.Warn().Err(err).
			Str("conversation_id", state.ConversationID).
			Msg("failed to delete checkpoint")
	}
}
