package replay

import (
	"context"
	"fmt"

	"negotiator-lite/negotiation"
	"negotiator-lite/negotiation/suspect"
)

// Run plays script against the catalog in reg and records every step.
// The same script always yields the same tape.
func Run(script Script, reg *suspect.Registry) (*Tape, error) {
	if err := validateScript(script); err != nil {
		return nil, err
	}
	sc, ok := reg.Get(script.Scenario)
	if !ok {
		return nil, &ReplayError{StepIndex: -1, Reason: "unknown_scenario", Message: fmt.Sprintf("scenario %q not found", script.Scenario)}
	}

	state, err := negotiation.NewState(sc, negotiation.Config{
		InitialTrust: script.InitialTrust,
		MaxTurns:     script.MaxTurns,
		Seed:         seedOrDefault(script.Seed),
	})
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	brain := suspect.NewRuleBrain(seedOrDefault(script.Seed))

	b := newTapeBuilder()
	if err := b.push(EventStart, StateFields(state)); err != nil {
		return nil, err
	}

	for i, turn := range script.Turns {
		step := int32(i)
		if state.GameOver() {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    "game_over",
				Message:   "negotiation already ended; no further turns are allowed",
				Expected:  expectedFrom(state),
			}
		}

		category, err := state.Submit(turn.Say)
		if err != nil {
			return nil, &ReplayError{StepIndex: step, Reason: "turn_rejected", Message: err.Error(), Expected: expectedFrom(state)}
		}
		if err := checkExpect(step, turn.Expect, category, state); err != nil {
			return nil, err
		}

		fields := StateFields(state)
		fields["say"] = turn.Say
		fields["category"] = string(category)
		if err := b.push(EventTurn, fields); err != nil {
			return nil, err
		}
		if state.GameOver() {
			continue
		}

		reply, err := scriptedReply(turn.Reply, brain, state, turn.Say)
		if err != nil {
			return nil, &ReplayError{StepIndex: step, Reason: "reply_failed", Message: err.Error()}
		}
		if err := state.IntegrateReply(reply); err != nil {
			return nil, &ReplayError{StepIndex: step, Reason: "reply_rejected", Message: err.Error(), Expected: expectedFrom(state)}
		}
		fields = StateFields(state)
		fields["reply"] = state.LastSuspectLine()
		fields["hint"] = state.LastHint()
		if err := b.push(EventReply, fields); err != nil {
			return nil, err
		}
	}

	if state.GameOver() {
		score, _ := negotiation.Score(state)
		if err := b.push(EventOutcome, map[string]any{
			"success": state.Success(),
			"score":   score,
			"turn":    state.Turn(),
		}); err != nil {
			return nil, err
		}
	}

	return &Tape{
		TapeVersion: 1,
		ScenarioID:  sc.ID,
		Seed:        script.Seed,
		Events:      b.events,
	}, nil
}

func seedOrDefault(seed int64) int64 {
	if seed == 0 {
		return 1
	}
	return seed
}

func scriptedReply(scripted *ReplySpec, brain *suspect.RuleBrain, s *negotiation.State, say string) (negotiation.Reply, error) {
	if scripted != nil {
		return negotiation.Reply{Text: scripted.Text, Tension: scripted.Tension, Trust: scripted.Trust, Hint: scripted.Hint}, nil
	}
	return brain.Generate(context.Background(), suspect.PromptFor(s, say))
}

func checkExpect(step int32, want *ExpectSpec, got negotiation.Category, s *negotiation.State) error {
	if want == nil {
		return nil
	}
	switch {
	case want.Category != "" && want.Category != string(got):
		return &ReplayError{
			StepIndex: step,
			Reason:    "category_mismatch",
			Message:   fmt.Sprintf("expected category %s, got %s", want.Category, got),
			Expected:  expectedFrom(s),
		}
	case want.Tension != nil && *want.Tension != s.Tension():
		return &ReplayError{
			StepIndex: step,
			Reason:    "tension_mismatch",
			Message:   fmt.Sprintf("expected tension %d, got %d", *want.Tension, s.Tension()),
			Expected:  expectedFrom(s),
		}
	case want.Trust != nil && *want.Trust != s.Trust():
		return &ReplayError{
			StepIndex: step,
			Reason:    "trust_mismatch",
			Message:   fmt.Sprintf("expected trust %d, got %d", *want.Trust, s.Trust()),
			Expected:  expectedFrom(s),
		}
	}
	return nil
}

func expectedFrom(s *negotiation.State) *ExpectedState {
	return &ExpectedState{
		Category: string(s.LastCategory()),
		Tension:  s.Tension(),
		Trust:    s.Trust(),
		Turn:     s.Turn(),
		GameOver: s.GameOver(),
	}
}

type tapeBuilder struct {
	seq    uint64
	events []Event
}

func newTapeBuilder() *tapeBuilder { return &tapeBuilder{} }

func (b *tapeBuilder) push(kind string, fields map[string]any) error {
	b.seq++
	fields["type"] = kind
	fields["seq"] = b.seq
	st, b64, err := EncodeEnvelope(fields)
	if err != nil {
		return &ReplayError{StepIndex: int32(b.seq), Reason: "encode_failed", Message: err.Error()}
	}
	b.events = append(b.events, Event{
		Type:        kind,
		Seq:         b.seq,
		Value:       st,
		EnvelopeB64: b64,
	})
	return nil
}
