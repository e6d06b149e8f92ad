package negotiation

// Category is the tactical label the classifier assigns to one player utterance.
type Category string

const (
	CategoryAcceptSurrender Category = "accept_surrender"
	CategoryEmpathy         Category = "empathy"
	CategoryOverusedEmotion Category = "overused_emotion"
	CategoryCalibrated      Category = "calibrated"
	CategoryAction          Category = "action"
	CategoryMirror          Category = "mirror"
	CategoryReleaseRequest  Category = "release_request"
	CategoryMistake         Category = "mistake"
	CategoryUnpredictable   Category = "unpredictable"
	CategoryNeutral         Category = "neutral"
)

// Categories lists every category in classifier priority order.
var Categories = []Category{
	CategoryAcceptSurrender,
	CategoryEmpathy,
	CategoryOverusedEmotion,
	CategoryCalibrated,
	CategoryAction,
	CategoryMirror,
	CategoryReleaseRequest,
	CategoryMistake,
	CategoryUnpredictable,
	CategoryNeutral,
}

// IsPoorChoice reports whether the category counts against the player.
func (c Category) IsPoorChoice() bool {
	switch c {
	case CategoryNeutral, CategoryMistake, CategoryOverusedEmotion:
		return true
	}
	return false
}

// Speaker identifies who produced a transcript line.
type Speaker string

const (
	SpeakerSystem  Speaker = "system"
	SpeakerPlayer  Speaker = "player"
	SpeakerSuspect Speaker = "suspect"
)

// Line is one transcript entry.
type Line struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// EmotionalState is derived from tension and gates releases.
type EmotionalState string

const (
	EmotionalVolatile  EmotionalState = "volatile"
	EmotionalAgitated  EmotionalState = "agitated"
	EmotionalStrategic EmotionalState = "strategic"
	EmotionalResigned  EmotionalState = "resigned"
)

// EmotionalStateFor maps a tension level to the suspect's emotional state.
func EmotionalStateFor(tension int) EmotionalState {
	switch {
	case tension >= 7:
		return EmotionalVolatile
	case tension >= 4:
		return EmotionalAgitated
	case tension >= 2:
		return EmotionalStrategic
	default:
		return EmotionalResigned
	}
}

// Meter bounds and game limits.
const (
	MinLevel = 1
	MaxLevel = 10

	DefaultInitialTension = 7
	DefaultInitialTrust   = 3
	DefaultMaxTurns       = 10

	repeatPenaltyThreshold = 3
	emotionalAppealLimit   = 2
	unpredictableChance    = 0.2
	flavorLineChance       = 0.2
)

// Keyword tables used by the classifier. Matching is substring based on
// lower-cased input.
var (
	affirmativeWords = []string{"yes", "accept", "agree", "okay", "ok"}
	empathyWords     = []string{"please", "understand", "feel", "need", "help", "care", "trust", "believe"}
	questionStarters = []string{"how ", "what ", "tell ", "explain "}
	offerPhrases     = []string{
		"i'll get you", "i can get you", "i will get",
		"let me get", "i'll have", "i can arrange", "offer",
		"deal", "trade", "exchange",
	}
	releasePhrases = []string{
		"release the hostages", "let them go", "free the hostages",
		"release them", "set them free",
	}
	refusalWords    = []string{"no", "won't", "can't", "never", "don't", "stop"}
	labelingPhrases = []string{"sounds like", "seems like", "looks like", "it seems"}
)

var flavorLines = []string{
	"This negotiation's getting interesting...",
	"You think you've got me figured out?",
	"Maybe I'll change my mind about everything!",
	"Let's see if you can keep up...",
}

// Fixed transcript texts.
const (
	introContactText   = "Initial contact has been established. The suspect has provided proof of life for all hostages."
	introTaskText      = "Your task now is to negotiate for a peaceful resolution."
	repeatWarningText  = "Warning: Repeating the same approach may escalate the situation."
	surrenderOfferText = "The suspect is ready to surrender. Do you accept?"
	surrenderDoneText  = "The suspect has surrendered and released all hostages. Negotiation successful!"
	tensionWarningText = "Warning: Suspect is becoming extremely agitated! One more mistake could be catastrophic."
	escalationText     = "The situation has escalated beyond control. A hostage has been harmed."
	timeoutWinText     = "The suspect's resolve has completely broken. Negotiation successful!"
	timeoutLossText    = "Time has run out. Negotiation failed."
	emptyReplyText     = "I understand your message. Let's continue our negotiation."
)
