package game

import (
	"negotiator-lite/apps/server/internal/attempt"
	"negotiator-lite/negotiation"
	"negotiator-lite/negotiation/suspect"
)

type ScenarioView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Setting   string `json:"setting"`
	Suspect   string `json:"suspect"`
	Archetype string `json:"archetype"`
	Demand    string `json:"demand"`
	Goal      string `json:"goal"`
	Hostages  int    `json:"hostages"`
}

func scenarioView(sc negotiation.Scenario) ScenarioView {
	return ScenarioView{
		ID:        sc.ID,
		Name:      sc.Name,
		Setting:   sc.Setting,
		Suspect:   sc.Suspect,
		Archetype: string(sc.ArchetypeOrDefault()),
		Demand:    sc.Demand,
		Goal:      sc.Goal,
		Hostages:  sc.Hostages,
	}
}

// View is what clients render after every call.
type View struct {
	AttemptID        string             `json:"attempt_id"`
	Day              string             `json:"day"`
	Scenario         ScenarioView       `json:"scenario"`
	Turn             int                `json:"turn"`
	MaxTurns         int                `json:"max_turns"`
	Tension          int                `json:"tension"`
	Trust            int                `json:"trust"`
	Hostages         int                `json:"hostages"`
	HostagesReleased int                `json:"hostages_released"`
	Remaining        int                `json:"remaining"`
	EmotionalState   string             `json:"emotional_state"`
	SurrenderOffered bool               `json:"surrender_offered"`
	GameOver         bool               `json:"game_over"`
	Success          bool               `json:"success"`
	LastCategory     string             `json:"last_category,omitempty"`
	Hint             string             `json:"hint,omitempty"`
	Fallback         bool               `json:"fallback,omitempty"`
	Score            *float64           `json:"score,omitempty"`
	Stars            int                `json:"stars,omitempty"`
	Transcript       []negotiation.Line `json:"transcript"`
}

func newView(a *attempt.Attempt, s *negotiation.State) *View {
	v := &View{
		AttemptID:        a.ID,
		Day:              a.Day,
		Scenario:         scenarioView(s.Scenario()),
		Turn:             s.Turn(),
		MaxTurns:         s.MaxTurns(),
		Tension:          s.Tension(),
		Trust:            s.Trust(),
		Hostages:         s.Hostages(),
		HostagesReleased: s.HostagesReleased(),
		Remaining:        s.Remaining(),
		EmotionalState:   string(s.EmotionalState()),
		SurrenderOffered: s.SurrenderOffered(),
		GameOver:         s.GameOver(),
		Success:          s.Success(),
		LastCategory:     string(s.LastCategory()),
		Hint:             s.LastHint(),
		Transcript:       s.Transcript(),
	}
	if score := s.ScoreIfTerminal(); score != nil {
		v.Score = score
		v.Stars = suspect.Stars(*score)
	}
	return v
}
