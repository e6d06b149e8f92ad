package suspect

import (
	"context"
	"math/rand"
	"sync"

	"negotiator-lite/negotiation"
)

// RuleBrain answers from the canned lines of the current emotional state.
// It never suggests levels, so the engine's values stand.
type RuleBrain struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRuleBrain creates a RuleBrain with its own seeded RNG.
func NewRuleBrain(seed int64) *RuleBrain {
	return &RuleBrain{rng: rand.New(rand.NewSource(seed))}
}

func (b *RuleBrain) Name() string { return "rule" }

// Generate implements Generator.
func (b *RuleBrain) Generate(ctx context.Context, p Prompt) (negotiation.Reply, error) {
	if err := ctx.Err(); err != nil {
		return negotiation.Reply{}, unavailable(err)
	}
	lines, ok := cannedLines[p.Emotional]
	if !ok {
		lines = cannedLines[negotiation.EmotionalStrategic]
	}

	b.mu.Lock()
	line := lines[b.rng.Intn(len(lines))]
	b.mu.Unlock()

	return negotiation.Reply{Text: line, Hint: ContextualHint(p)}, nil
}

// Analyze implements Analyzer with the local rubric.
func (b *RuleBrain) Analyze(_ context.Context, d DebriefInput) (string, error) {
	return localAnalysis(d), nil
}
