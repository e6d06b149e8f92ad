package negotiation

import "strings"

// Classify maps player text to a Category. The first matching rule wins and
// the rule order is part of the contract because keyword sets overlap.
//
// Classify never changes tension or trust. It does update the repetition
// and emotional-appeal counters on s, and may draw from s's rng.
func Classify(text string, s *State) Category {
	lower := strings.ToLower(text)
	s.trackRepetition(normalizeInput(text))

	if s.surrenderOffered && containsAny(lower, affirmativeWords) {
		return CategoryAcceptSurrender
	}

	if containsAny(lower, empathyWords) {
		s.emotionalAppeals++
		if s.emotionalAppeals <= emotionalAppealLimit {
			return CategoryEmpathy
		}
		return CategoryOverusedEmotion
	}

	if strings.Contains(lower, "?") && containsAny(lower, questionStarters) {
		return CategoryCalibrated
	}

	if containsAny(lower, offerPhrases) {
		return CategoryAction
	}

	if mirrors(lower, strings.ToLower(s.LastSuspectLine())) {
		return CategoryMirror
	}

	if containsAny(lower, releasePhrases) {
		return CategoryReleaseRequest
	}

	if containsAny(lower, refusalWords) {
		return CategoryMistake
	}

	if s.rng.Float64() < unpredictableChance {
		return CategoryUnpredictable
	}
	return CategoryNeutral
}

func (s *State) trackRepetition(normalized string) {
	if s.lastInput != "" && normalized == s.lastInput {
		s.similarInputs++
		return
	}
	s.similarInputs = 0
	s.lastInput = normalized
}

// mirrors reports whether any contiguous three-word window of the suspect's
// line appears in the player's text.
func mirrors(playerText, suspectLine string) bool {
	words := strings.Fields(suspectLine)
	for i := 0; i+3 <= len(words); i++ {
		if strings.Contains(playerText, strings.Join(words[i:i+3], " ")) {
			return true
		}
	}
	return false
}
