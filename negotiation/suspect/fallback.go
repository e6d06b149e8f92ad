package suspect

import "negotiator-lite/negotiation"

// FallbackReply is the canned reply used when the generator fails. It never
// overrides the engine's levels.
func FallbackReply(tension int) negotiation.Reply {
	var text string
	switch {
	case tension <= 2:
		text = "I hear you... let's keep talking."
	case tension <= 5:
		text = "You better make this worth my time!"
	case tension <= 7:
		text = "Don't try anything stupid!"
	default:
		text = "One wrong move and this ends badly!"
	}
	return negotiation.Reply{Text: text, Fallback: true}
}

// ContextualHint suggests the player's next focus.
func ContextualHint(p Prompt) string {
	switch {
	case p.Tension >= 8:
		return "Tension is very high. Focus on de-escalation."
	case p.Trust <= 3:
		return "Trust is low. Show empathy and understanding."
	case p.Turn >= 8:
		return "Time is running out. Consider making a significant offer."
	default:
		return "Keep building rapport through active listening."
	}
}

var cannedLines = map[negotiation.EmotionalState][]string{
	negotiation.EmotionalVolatile: {
		"Don't try anything stupid! I'm watching every move!",
		"You better take me seriously or someone gets hurt!",
		"Time is running out! Make it happen NOW!",
	},
	negotiation.EmotionalAgitated: {
		"I need guarantees before we move forward.",
		"Your words mean nothing without action!",
		"Show me you're serious about meeting my demands.",
	},
	negotiation.EmotionalStrategic: {
		"Let's be clear about what each side needs here.",
		"I'm listening, but I need more than just promises.",
		"We can work this out if you meet my terms.",
	},
	negotiation.EmotionalResigned: {
		"Maybe we can find a way out of this...",
		"I never wanted anyone to get hurt...",
		"What assurances can you give me?",
	},
}
