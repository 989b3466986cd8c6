package agentports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionStructuredRetrieval, ActionSimilarityRetrieval, ActionCombined, ActionClarify, ActionAnswer} {
		assert.True(t, a.Valid(), "action %q", a)
	}
	for _, a := range []Action{"", "ANSWER", "retrieve"} {
		assert.False(t, a.Valid(), "action %q", a)
	}
}

func TestQualityValid(t *testing.T) {
	assert.True(t, QualityGood.Valid())
	assert.True(t, QualityPoor.Valid())
	assert.False(t, QualityUnset.Valid())
	assert.False(t, Quality("excellent").Valid())
}
