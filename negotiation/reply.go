package negotiation

// Reply is the dialogue generator's structured output for one suspect turn.
// Nil levels leave the engine's own values in place.
type Reply struct {
	Tension *int   `json:"tension,omitempty"`
	Trust   *int   `json:"trust,omitempty"`
	Text    string `json:"text"`
	Hint    string `json:"hint,omitempty"`

	// Fallback is set when the text came from the local canned set.
	Fallback bool `json:"fallback,omitempty"`
}

// Level returns a pointer to v for building Replies.
func Level(v int) *int { return &v }
