package replay

import "fmt"

type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState tells the caller what the engine would have accepted.
type ExpectedState struct {
	Outcome        string `json:"outcome,omitempty"`
	TieBreak       bool   `json:"tie_break,omitempty"`
	RollsRemaining int    `json:"rolls_remaining"`
	CanScore       bool   `json:"can_score,omitempty"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}
