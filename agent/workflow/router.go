package workflow

import (
	"fmt"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// QualityOutcome is the result of the post-answer decision point.
type QualityOutcome string

const (
	OutcomeRetry     QualityOutcome = "retry"
	OutcomeTerminate QualityOutcome = "terminate"
)

// RouteAction projects the reasoner's chosen action onto the next node. It is
// pure and total over the five-action enumeration; anything else is a protocol
// violation.
func RouteAction(s *TurnState) (ports.Action, error) {
	if !s.ChosenAction.Valid() {
		return "", fmt.Errorf("%w: cannot route action %q", ErrProtocolViolation, s.ChosenAction)
	}
	return s.ChosenAction, nil
}

// RouteQuality decides between retry and termination after the answerer ran.
// Terminate iff the verdict is good, retry iff poor; unset is a protocol
// violation because the answerer must never leave quality unset.
func RouteQuality(s *TurnState) (QualityOutcome, error) {
	switch s.AnswerQuality {
	case ports.QualityGood:
		return OutcomeTerminate, nil
	case ports.QualityPoor:
		return OutcomeRetry, nil
	default:
		return "", fmt.Errorf("%w: cannot route quality %q", ErrProtocolViolation, s.AnswerQuality)
	}
}
