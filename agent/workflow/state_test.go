package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

func TestNewTurnState_CopiesConversation(t *testing.T) {
	history := []string{"user: hello"}
	state := NewTurnState("c1", history)
	history[0] = "mutated"

	assert.Equal(t, "c1", state.ConversationID)
	assert.Equal(t, PhaseStart, state.Phase)
	assert.Equal(t, []string{"user: hello"}, state.Conversation)
}

func TestApplyDecision(t *testing.T) {
	state := NewTurnState("c1", nil)
	err := state.ApplyDecision(ports.Decision{
		Action:    ports.ActionStructuredRetrieval,
		Query:     "mozzarella under $50",
		Rationale: "price filter maps to the record store",
	})
	require.NoError(t, err)
	assert.Equal(t, ports.ActionStructuredRetrieval, state.ChosenAction)
	assert.Equal(t, "mozzarella under $50", state.PendingQuery)
	assert.Equal(t, []string{"price filter maps to the record store"}, state.Trace)
}

func TestApplyDecision_RejectsInvalidAction(t *testing.T) {
	state := NewTurnState("c1", nil)
	err := state.ApplyDecision(ports.Decision{Action: "teleport"})
	assert.ErrorIs(t, err, ErrProtocolViolation)
	assert.Empty(t, state.ChosenAction)
}

func TestApplyVerdict_RejectsUnset(t *testing.T) {
	state := NewTurnState("c1", nil)
	err := state.ApplyVerdict(ports.Verdict{Quality: ports.QualityUnset})
	assert.ErrorIs(t, err, ErrProtocolViolation)

	err = state.ApplyVerdict(ports.Verdict{Quality: ports.QualityPoor, Rationale: "vague"})
	require.NoError(t, err)
	assert.Equal(t, ports.QualityPoor, state.AnswerQuality)
}

func TestTrace_AppendOnlyAcrossRetries(t *testing.T) {
	state := NewTurnState("c1", nil)
	require.NoError(t, state.ApplyDecision(ports.Decision{Action: ports.ActionAnswer, Rationale: "first pass"}))
	require.NoError(t, state.ApplyVerdict(ports.Verdict{Quality: ports.QualityPoor, Rationale: "too thin"}))
	state.ResetForRetry()
	require.NoError(t, state.ApplyDecision(ports.Decision{Action: ports.ActionAnswer, Rationale: "second pass"}))

	assert.Equal(t, []string{"first pass", "too thin", "second pass"}, state.Trace)
}

func TestResetForRetry(t *testing.T) {
	state := NewTurnState("c1", nil)
	state.ChosenAction = ports.ActionAnswer
	state.AnswerQuality = ports.QualityPoor

	state.ResetForRetry()

	assert.Equal(t, 1, state.Cycles)
	assert.Equal(t, ports.QualityUnset, state.AnswerQuality)
	assert.Empty(t, state.ChosenAction)
}

func TestClearWorkingContext(t *testing.T) {
	state := NewTurnState("c1", nil)
	state.WorkingContext = []ports.Snippet{{Text: "a"}, {Text: "b"}}
	state.ClearWorkingContext()
	assert.Empty(t, state.WorkingContext)
}
