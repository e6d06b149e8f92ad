package suspect

import (
	"context"

	"negotiator-lite/negotiation"
)

// Prompt is the read-only view of an attempt handed to a Generator.
type Prompt struct {
	ScenarioName string
	Suspect      string
	Archetype    negotiation.Archetype
	Demand       string

	Turn      int
	MaxTurns  int
	Tension   int
	Trust     int
	Hostages  int
	Remaining int
	Emotional negotiation.EmotionalState

	PlayerText string
	History    []negotiation.Line
}

// historyWindow bounds how much transcript goes into a prompt.
const historyWindow = 8

// PromptFor projects s and the latest player text into a Prompt.
func PromptFor(s *negotiation.State, playerText string) Prompt {
	sc := s.Scenario()
	lines := s.Transcript()
	if len(lines) > historyWindow {
		lines = lines[len(lines)-historyWindow:]
	}
	return Prompt{
		ScenarioName: sc.Name,
		Suspect:      sc.Suspect,
		Archetype:    sc.ArchetypeOrDefault(),
		Demand:       sc.Demand,
		Turn:         s.Turn(),
		MaxTurns:     s.MaxTurns(),
		Tension:      s.Tension(),
		Trust:        s.Trust(),
		Hostages:     s.Hostages(),
		Remaining:    s.Remaining(),
		Emotional:    s.EmotionalState(),
		PlayerText:   playerText,
		History:      lines,
	}
}

// Generator produces the suspect's next line.
type Generator interface {
	// Generate is called once per player turn, after the engine applied it.
	Generate(ctx context.Context, p Prompt) (negotiation.Reply, error)
	// Name returns a human-readable identifier for logs.
	Name() string
}

// Analyzer writes a post-game debrief.
type Analyzer interface {
	Analyze(ctx context.Context, d DebriefInput) (string, error)
}
