package replay

import "google.golang.org/protobuf/types/known/structpb"

// Script is a scripted negotiation: a scenario, a seed and the player's
// lines in order. Suspect replies may be scripted per turn; unscripted
// replies come from a rule brain seeded from Seed.
type Script struct {
	Scenario     string     `json:"scenario" yaml:"scenario"`
	Seed         int64      `json:"seed" yaml:"seed"`
	InitialTrust int        `json:"initial_trust,omitempty" yaml:"initial_trust,omitempty"`
	MaxTurns     int        `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
	Turns        []TurnSpec `json:"turns" yaml:"turns"`
}

type TurnSpec struct {
	Say    string      `json:"say" yaml:"say"`
	Reply  *ReplySpec  `json:"reply,omitempty" yaml:"reply,omitempty"`
	Expect *ExpectSpec `json:"expect,omitempty" yaml:"expect,omitempty"`
}

type ReplySpec struct {
	Text    string `json:"text" yaml:"text"`
	Tension *int   `json:"tension,omitempty" yaml:"tension,omitempty"`
	Trust   *int   `json:"trust,omitempty" yaml:"trust,omitempty"`
	Hint    string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// ExpectSpec asserts on the engine after the player's line is applied.
type ExpectSpec struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Tension  *int   `json:"tension,omitempty" yaml:"tension,omitempty"`
	Trust    *int   `json:"trust,omitempty" yaml:"trust,omitempty"`
}

type Tape struct {
	TapeVersion int     `json:"tape_version"`
	ScenarioID  string  `json:"scenario_id"`
	Seed        int64   `json:"seed"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type        string           `json:"type"`
	Seq         uint64           `json:"seq"`
	Value       *structpb.Struct `json:"value,omitempty"`
	EnvelopeB64 string           `json:"envelope_b64,omitempty"`
}

const (
	EventStart   = "start"
	EventTurn    = "turn"
	EventReply   = "reply"
	EventOutcome = "outcome"
)
