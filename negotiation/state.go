package negotiation

import "math/rand"

// State is the mutable core of one negotiation attempt. It is not safe for
// concurrent use; callers serialize access per attempt.
type State struct {
	scenario Scenario
	maxTurns int
	rng      *rand.Rand

	turn             int
	tension          int
	trust            int
	hostages         int
	hostagesReleased int
	transcript       []Line

	surrenderOffered bool
	gameOver         bool
	success          bool

	// anti-exploit
	similarInputs    int
	lastInput        string
	emotionalAppeals int

	// tactic counters, never decrease (except the streak)
	poorChoices              int
	tacticalEmpathySuccess   int
	mirroringCount           int
	calibratedQuestions      int
	emotionalLabelingSuccess int
	emotionalLabelingFailure int
	goodChoiceStreak         int

	lastCategory Category
	lastHint     string
}

func (s *State) Scenario() Scenario { return s.scenario }
func (s *State) Turn() int          { return s.turn }
func (s *State) MaxTurns() int      { return s.maxTurns }
func (s *State) Tension() int       { return s.tension }
func (s *State) Trust() int         { return s.trust }
func (s *State) Hostages() int      { return s.hostages }
func (s *State) HostagesReleased() int {
	return s.hostagesReleased
}
func (s *State) SurrenderOffered() bool { return s.surrenderOffered }
func (s *State) GameOver() bool         { return s.gameOver }

// Success is only meaningful once GameOver is true.
func (s *State) Success() bool          { return s.gameOver && s.success }
func (s *State) PoorChoices() int       { return s.poorChoices }
func (s *State) SimilarInputs() int     { return s.similarInputs }
func (s *State) LastCategory() Category { return s.lastCategory }
func (s *State) LastHint() string       { return s.lastHint }

// Remaining returns hostages still held.
func (s *State) Remaining() int {
	if r := s.hostages - s.hostagesReleased; r > 0 {
		return r
	}
	return 0
}

// EmotionalState is recomputed from tension on every call.
func (s *State) EmotionalState() EmotionalState { return EmotionalStateFor(s.tension) }

// Transcript returns a copy of the ordered transcript.
func (s *State) Transcript() []Line {
	return append([]Line(nil), s.transcript...)
}

// LastSuspectLine returns the most recent suspect utterance or "".
func (s *State) LastSuspectLine() string {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Speaker == SpeakerSuspect {
			return s.transcript[i].Text
		}
	}
	return ""
}

// PlayerLines returns the player's utterances in order.
func (s *State) PlayerLines() []string {
	var out []string
	for _, l := range s.transcript {
		if l.Speaker == SpeakerPlayer {
			out = append(out, l.Text)
		}
	}
	return out
}

func (s *State) appendLine(speaker Speaker, text string) {
	s.transcript = append(s.transcript, Line{Speaker: speaker, Text: text})
}

func (s *State) appendSystem(text string) { s.appendLine(SpeakerSystem, text) }

func (s *State) coin() int {
	if s.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}
