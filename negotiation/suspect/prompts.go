package suspect

import (
	"fmt"
	"strings"

	"negotiator-lite/negotiation"
)

var emotionalRules = map[negotiation.EmotionalState]string{
	negotiation.EmotionalVolatile:  "Highly unstable, prone to violent outbursts, requires extreme caution",
	negotiation.EmotionalAgitated:  "Easily provoked, needs reassurance, sensitive to threats",
	negotiation.EmotionalStrategic: "Calculated responses, focused on demands, evaluates options",
	negotiation.EmotionalResigned:  "More open to negotiation, showing signs of fatigue or doubt",
}

var archetypeNotes = map[negotiation.Archetype]string{
	negotiation.ArchetypePragmatic:  "Weighs costs and benefits, responds to concrete offers.",
	negotiation.ArchetypeVolatile:   "Swings quickly between anger and fear, reacts to tone more than content.",
	negotiation.ArchetypeCalculated: "Tests the negotiator, looks for leverage, distrusts vague promises.",
	negotiation.ArchetypeDesperate:  "Feels cornered, needs to feel heard before anything else.",
}

func systemMessage(p Prompt) string {
	rules, ok := emotionalRules[p.Emotional]
	if !ok {
		rules = emotionalRules[negotiation.EmotionalStrategic]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are a highly realistic hostage-taker in a %s state.\n", p.Emotional)
	fmt.Fprintf(&b, "Scenario: %s\n", p.ScenarioName)
	if p.Suspect != "" {
		fmt.Fprintf(&b, "Who you are: %s\n", p.Suspect)
	}
	b.WriteString("Current Profile:\n")
	fmt.Fprintf(&b, "- Tension: %d/10\n", p.Tension)
	fmt.Fprintf(&b, "- Trust: %d/10\n", p.Trust)
	fmt.Fprintf(&b, "- Hostages: %d\n", p.Remaining)
	fmt.Fprintf(&b, "- Demand: %s\n", p.Demand)
	if note := archetypeNotes[p.Archetype]; note != "" {
		fmt.Fprintf(&b, "- Personality: %s\n", note)
	}
	fmt.Fprintf(&b, "\nEmotional State Rules:\n%s\n", rules)
	b.WriteString("\nReply with a single JSON object and nothing else:\n")
	b.WriteString(`{"tension_level": 1-10, "trust_level": 1-10, "suspect_response": "...", "daily_hint": "..."}`)
	return b.String()
}

func userMessage(p Prompt) string {
	var b strings.Builder
	if len(p.History) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, l := range p.History {
			fmt.Fprintf(&b, "%s: %s\n", l.Speaker, l.Text)
		}
		b.WriteString("\n")
	}
	b.WriteString("Current Situation:\n")
	fmt.Fprintf(&b, "Turn: %d/%d\n", p.Turn, p.MaxTurns)
	fmt.Fprintf(&b, "Tension: %d/10\n", p.Tension)
	fmt.Fprintf(&b, "Trust: %d/10\n", p.Trust)
	fmt.Fprintf(&b, "Emotional State: %s\n\n", p.Emotional)
	fmt.Fprintf(&b, "Negotiator Says: %q\n\n", p.PlayerText)
	b.WriteString("Generate a response that:\n")
	fmt.Fprintf(&b, "1. Matches tension level (%d/10)\n", p.Tension)
	b.WriteString("2. Shows authentic crisis behavior\n")
	b.WriteString("3. Maintains scenario consistency\n")
	b.WriteString("4. Keeps focus on demands")
	return b.String()
}

const analysisSystemMessage = "You are an expert trainer analyzing a negotiation session. " +
	"Provide a concise analysis (max 200 words) with: Key Moments, Response Effectiveness, " +
	"Trust Insights, Improvement Tips, 1-5 Star Rating."

func analysisMessage(d DebriefInput) string {
	var b strings.Builder
	b.WriteString("Analyze this negotiation session:\n")
	fmt.Fprintf(&b, "Scenario: %s\n", d.ScenarioName)
	fmt.Fprintf(&b, "Type: %s\n", d.Archetype)
	fmt.Fprintf(&b, "Initial/Final Tension: %d/%d\n", d.InitialTension, d.FinalTension)
	fmt.Fprintf(&b, "Success: %t\n\nHistory:\n", d.Success)
	for i, line := range d.PlayerLines {
		if len(line) > 100 {
			line = line[:100] + "..."
		}
		fmt.Fprintf(&b, "Turn %d: %s\n", i+1, line)
	}
	return b.String()
}
