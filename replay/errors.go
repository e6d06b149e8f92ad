package replay

import "fmt"

type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState is what the engine actually produced at the failing step.
type ExpectedState struct {
	Category string `json:"category,omitempty"`
	Tension  int    `json:"tension"`
	Trust    int    `json:"trust"`
	Turn     int    `json:"turn"`
	GameOver bool   `json:"game_over"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}
