package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

func TestRouteAction_AllFiveActions(t *testing.T) {
	actions := []ports.Action{
		ports.ActionStructuredRetrieval,
		ports.ActionSimilarityRetrieval,
		ports.ActionCombined,
		ports.ActionClarify,
		ports.ActionAnswer,
	}
	for _, action := range actions {
		state := &TurnState{ChosenAction: action}
		routed, err := RouteAction(state)
		require.NoError(t, err, "action %q should route", action)
		assert.Equal(t, action, routed)
	}
}

func TestRouteAction_RejectsUnknownAction(t *testing.T) {
	for _, bad := range []ports.Action{"", "retrieve", "ANSWER", "human_in_the_loop"} {
		state := &TurnState{ChosenAction: bad}
		_, err := RouteAction(state)
		assert.ErrorIs(t, err, ErrProtocolViolation, "action %q must be rejected", bad)
	}
}

func TestRouteQuality(t *testing.T) {
	good := &TurnState{AnswerQuality: ports.QualityGood}
	outcome, err := RouteQuality(good)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTerminate, outcome)

	poor := &TurnState{AnswerQuality: ports.QualityPoor}
	outcome, err = RouteQuality(poor)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetry, outcome)
}

func TestRouteQuality_RejectsUnset(t *testing.T) {
	state := &TurnState{}
	_, err := RouteQuality(state)
	assert.ErrorIs(t, err, ErrProtocolViolation)

	state.AnswerQuality = "excellent"
	_, err = RouteQuality(state)
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestRouteQuality_Idempotent(t *testing.T) {
	state := &TurnState{AnswerQuality: ports.QualityGood}
	first, err := RouteQuality(state)
	require.NoError(t, err)
	second, err := RouteQuality(state)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
