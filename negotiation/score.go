package negotiation

import "math"

// Score rates a finished attempt on a 1 to 10 scale. ok is false while the
// attempt is still running.
func Score(s *State) (score float64, ok bool) {
	if !s.gameOver {
		return 0, false
	}

	trust := float64(s.trust) / 10 * 35

	var tension float64
	if initial := s.scenario.InitialTension; initial > 0 {
		tension = math.Max(0, float64(initial-s.tension)/float64(initial)*30)
	}

	tactics := math.Max(0, float64(20-4*s.poorChoices-2*s.similarInputs))

	var efficiency float64
	switch {
	case s.turn <= 5:
		efficiency = 15
	case s.turn <= 7:
		efficiency = 12
	case s.turn <= 9:
		efficiency = 8
	default:
		efficiency = 5
	}

	total := (trust + tension + tactics + efficiency) / 10
	total = math.Max(1, math.Min(10, total))
	return math.Round(total*100) / 100, true
}

// ScoreIfTerminal returns the score or nil while the attempt is running.
func (s *State) ScoreIfTerminal() *float64 {
	v, ok := Score(s)
	if !ok {
		return nil
	}
	return &v
}
