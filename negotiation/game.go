package negotiation

import (
	"errors"
	"fmt"
)

// NewState builds the initial state for one attempt at sc.
func NewState(sc Scenario, cfg Config) (*State, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	s := &State{
		scenario: sc,
		maxTurns: cfg.MaxTurns,
		rng:      cfg.Rand,
		turn:     1,
		tension:  sc.InitialTension,
		trust:    cfg.InitialTrust,
		hostages: sc.Hostages,
	}
	s.appendSystem(introContactText)
	s.appendSystem(introTaskText)
	if sc.OpeningDialogue != "" {
		s.appendLine(SpeakerSuspect, sc.OpeningDialogue)
	}
	return s, nil
}

// SubmitTurn records and applies one player utterance. When the attempt can
// no longer accept input it returns false with a player-facing message and
// leaves the state untouched.
func (s *State) SubmitTurn(text string) (bool, string) {
	if _, err := s.Submit(text); err != nil {
		var te *TransitionError
		if errors.As(err, &te) {
			return false, te.Message
		}
		return false, err.Error()
	}
	return true, "Turn processed."
}

// Submit is SubmitTurn with the assigned category and a typed error.
func (s *State) Submit(text string) (Category, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}

	s.appendLine(SpeakerPlayer, text)
	c := Classify(text, s)
	if c == CategoryEmpathy && containsAny(normalizeInput(text), labelingPhrases) {
		s.emotionalLabelingSuccess++
	}
	s.lastCategory = c
	s.Apply(c)
	return c, nil
}

func (s *State) checkOpen() error {
	if s.gameOver {
		return &TransitionError{Err: ErrGameOver, Message: "This negotiation has already ended."}
	}
	if s.turn >= s.maxTurns {
		return &TransitionError{
			Err:     ErrTurnLimit,
			Message: fmt.Sprintf("The turn limit of %d has been reached.", s.maxTurns),
		}
	}
	return nil
}

// IntegrateReply applies the generator's output for the suspect's turn:
// level overrides first, then the suspect line, the turn advance and the
// terminal checks.
func (s *State) IntegrateReply(out Reply) error {
	if s.gameOver {
		return &TransitionError{Err: ErrGameOver, Message: "This negotiation has already ended."}
	}

	if out.Tension != nil {
		s.tension = clampLevel(*out.Tension)
	}
	if out.Trust != nil {
		s.trust = clampLevel(*out.Trust)
	}
	s.lastHint = out.Hint

	text := out.Text
	if text == "" {
		text = emptyReplyText
	}
	s.appendLine(SpeakerSuspect, text)
	s.turn++

	if s.tension >= 9 {
		s.appendSystem(tensionWarningText)
	}
	s.checkTerminal()
	return nil
}

func (s *State) checkTerminal() {
	switch {
	case s.tension >= MaxLevel:
		s.gameOver = true
		s.success = false
		if s.Remaining() > 0 {
			s.hostages--
		}
		s.appendSystem(escalationText)
	case s.turn >= s.maxTurns:
		s.gameOver = true
		s.success = s.tension <= 2 && s.trust >= 7
		if s.success {
			s.appendSystem(timeoutWinText)
		} else {
			s.appendSystem(timeoutLossText)
		}
	}
}
