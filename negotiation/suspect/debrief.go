package suspect

import (
	"fmt"
	"math"
	"strings"

	"negotiator-lite/negotiation"
)

// DebriefInput is what an Analyzer sees of a finished attempt.
type DebriefInput struct {
	ScenarioName   string
	Archetype      negotiation.Archetype
	InitialTension int
	FinalTension   int
	FinalTrust     int
	Success        bool
	Score          float64
	Turns          int

	PoorChoices     int
	SimilarInputs   int
	Empathy         int
	Mirroring       int
	Calibrated      int
	LabelingSuccess int
	LabelingFailure int

	PlayerLines []string
}

// Debrief is the post-game report.
type Debrief struct {
	Score     float64 `json:"score"`
	Stars     int     `json:"stars"`
	Success   bool    `json:"success"`
	Analysis  string  `json:"analysis"`
	Generated bool    `json:"generated"`
}

// DebriefFor builds the analyzer input. ok is false while s is running.
func DebriefFor(s *negotiation.State) (DebriefInput, bool) {
	score, ok := negotiation.Score(s)
	if !ok {
		return DebriefInput{}, false
	}
	rec := s.Record()
	return DebriefInput{
		ScenarioName:    rec.Scenario.Name,
		Archetype:       rec.Scenario.ArchetypeOrDefault(),
		InitialTension:  rec.Scenario.InitialTension,
		FinalTension:    rec.Tension,
		FinalTrust:      rec.Trust,
		Success:         s.Success(),
		Score:           score,
		Turns:           rec.Turn,
		PoorChoices:     rec.PoorChoices,
		SimilarInputs:   rec.SimilarInputsCount,
		Empathy:         rec.TacticalEmpathySuccess,
		Mirroring:       rec.MirroringCount,
		Calibrated:      rec.CalibratedQuestions,
		LabelingSuccess: rec.EmotionalLabelingSuccess,
		LabelingFailure: rec.EmotionalLabelingFailure,
		PlayerLines:     s.PlayerLines(),
	}, true
}

// Stars maps a 1-10 score onto a 1-5 rating.
func Stars(score float64) int {
	stars := int(math.Round(score / 2))
	if stars < 1 {
		return 1
	}
	if stars > 5 {
		return 5
	}
	return stars
}

// localAnalysis writes a rubric-based debrief without a language model.
func localAnalysis(d DebriefInput) string {
	var b strings.Builder

	b.WriteString("Key Moments: ")
	switch {
	case d.Success && d.FinalTension <= 2:
		b.WriteString("you brought the suspect down to a calm, resolved state.")
	case d.Success:
		b.WriteString("the suspect agreed to end the standoff.")
	case d.FinalTension >= negotiation.MaxLevel:
		b.WriteString("the situation escalated past the breaking point.")
	default:
		b.WriteString("time ran out before the suspect was ready to resolve it.")
	}
	fmt.Fprintf(&b, " Tension went from %d to %d over %d turns.\n", d.InitialTension, d.FinalTension, d.Turns)

	b.WriteString("Response Effectiveness: ")
	fmt.Fprintf(&b, "%d empathy, %d mirroring, %d open questions; %d poor choices.\n",
		d.Empathy, d.Mirroring, d.Calibrated, d.PoorChoices)

	b.WriteString("Trust Insights: ")
	switch {
	case d.FinalTrust >= 7:
		b.WriteString("strong rapport by the end.\n")
	case d.FinalTrust >= 4:
		b.WriteString("some rapport, but the suspect stayed guarded.\n")
	default:
		b.WriteString("the suspect never trusted you.\n")
	}

	b.WriteString("Improvement Tips: ")
	var tips []string
	if d.SimilarInputs > 0 {
		tips = append(tips, "vary your approach instead of repeating yourself")
	}
	if d.LabelingFailure > 0 {
		tips = append(tips, "emotional appeals lose force when overused")
	}
	if d.Calibrated == 0 {
		tips = append(tips, "ask open how/what questions")
	}
	if d.Mirroring == 0 {
		tips = append(tips, "repeat the suspect's own words back")
	}
	if len(tips) == 0 {
		tips = append(tips, "keep doing what worked")
	}
	b.WriteString(strings.Join(tips, "; "))
	b.WriteString(".\n")

	stars := Stars(d.Score)
	fmt.Fprintf(&b, "Rating: %s%s (%d/5)", strings.Repeat("*", stars), strings.Repeat("-", 5-stars), stars)
	return b.String()
}
