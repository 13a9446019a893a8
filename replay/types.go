package replay

// MatchSpec describes a match to replay: a seed plus the human's commands.
type MatchSpec struct {
	Target int        `json:"target"`
	RNG    *RNGSpec   `json:"rng,omitempty"`
	Steps  []StepSpec `json:"steps"`
}

// StepSpec is one inbound command. Hold lists die positions (0-4) kept on a
// throw; Target is only read by "start".
type StepSpec struct {
	Type   string `json:"type"`
	Hold   []int  `json:"hold,omitempty"`
	Target int    `json:"target,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

const (
	StepThrow = "throw"
	StepScore = "score"
	StepAck   = "ack"
	StepStart = "start"
)

// Event types written to a tape.
const (
	EventSnapshot      = "snapshot"
	EventTurnEnd       = "turnEnd"
	EventTieBreakStart = "tieBreakStart"
	EventMatchEnd      = "matchEnd"
)

type ReplayTape struct {
	TapeVersion int           `json:"tape_version"`
	MatchID     string        `json:"match_id"`
	Seed        int64         `json:"seed"`
	Events      []ReplayEvent `json:"events"`
}

type ReplayEvent struct {
	Type        string         `json:"type"`
	Seq         uint64         `json:"seq"`
	Step        int32          `json:"step"`
	Value       map[string]any `json:"value,omitempty"`
	EnvelopeB64 string         `json:"envelope_b64,omitempty"`
}
