package negotiation

import "fmt"

// Apply advances the state by one classified player move. It is a no-op on a
// terminal state.
func (s *State) Apply(c Category) {
	if s.gameOver {
		return
	}

	if c == CategoryAcceptSurrender {
		s.surrender()
		return
	}

	dTension, dTrust := s.baseDelta(c)
	if s.similarInputs >= repeatPenaltyThreshold {
		dTension += 2
		dTrust -= 2
		s.appendSystem(repeatWarningText)
	}
	s.tension = clampLevel(s.tension + dTension)
	s.trust = clampLevel(s.trust + dTrust)

	s.bumpCounters(c)

	if s.rng.Float64() < flavorLineChance {
		s.appendLine(SpeakerSuspect, flavorLines[s.rng.Intn(len(flavorLines))])
	}

	s.applyReleasePolicy()
	s.applySurrenderOffer()
}

// baseDelta returns the tension and trust change for a category, evaluated
// against the pre-move state.
func (s *State) baseDelta(c Category) (tension, trust int) {
	switch c {
	case CategoryEmpathy:
		return -2, 2
	case CategoryMirror:
		return -1, 2
	case CategoryCalibrated:
		return -2, 3
	case CategoryAction:
		tension, trust = 2, -1
		if s.trust > 5 {
			tension = -2
		}
		if s.tension <= 7 {
			trust = 2
		}
		return tension, trust
	case CategoryReleaseRequest:
		tension, trust = -1, 1
		if s.trust < 5 {
			tension = 3
		}
		if s.tension >= 8 {
			trust = -2
		}
		return tension, trust
	case CategoryNeutral:
		return 1, -1
	case CategoryMistake:
		return 3, -3
	case CategoryOverusedEmotion:
		return 2, -2
	case CategoryUnpredictable:
		return s.coin(), s.coin()
	case CategoryAcceptSurrender:
		return 0, 0
	}
	return 0, 0
}

func (s *State) bumpCounters(c Category) {
	switch c {
	case CategoryEmpathy:
		s.tacticalEmpathySuccess++
	case CategoryMirror:
		s.mirroringCount++
	case CategoryCalibrated:
		s.calibratedQuestions++
	case CategoryOverusedEmotion:
		s.emotionalLabelingFailure++
	}

	switch {
	case c.IsPoorChoice():
		s.poorChoices++
		s.goodChoiceStreak = 0
	case c == CategoryEmpathy, c == CategoryMirror, c == CategoryCalibrated:
		s.goodChoiceStreak++
	}
}

// applyReleasePolicy frees hostages when trust is high enough for the
// suspect's current emotional state.
func (s *State) applyReleasePolicy() {
	remaining := s.Remaining()
	if remaining == 0 {
		return
	}

	released := 0
	switch es := s.EmotionalState(); {
	case es == EmotionalResigned && s.trust >= 2:
		released = remaining
	case es == EmotionalStrategic && s.trust >= 4,
		es == EmotionalAgitated && s.trust >= 6,
		es == EmotionalVolatile && s.trust >= 8:
		released = 1
	}
	if released == 0 {
		return
	}

	s.hostagesReleased += released
	noun := "hostages"
	if released == 1 {
		noun = "hostage"
	}
	s.appendSystem(fmt.Sprintf("The suspect has released %d %s. %d remain inside.", released, noun, s.Remaining()))
}

func (s *State) applySurrenderOffer() {
	if s.surrenderOffered || s.tension > 2 || s.trust < 8 {
		return
	}
	s.surrenderOffered = true
	s.appendSystem(surrenderOfferText)
}

func (s *State) surrender() {
	s.hostagesReleased = s.hostages
	s.gameOver = true
	s.success = true
	s.appendSystem(surrenderDoneText)
}
