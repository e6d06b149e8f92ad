package suspect

import (
	"context"
	"errors"
	"log"
	"time"

	"negotiator-lite/negotiation"
)

const DefaultTimeout = 15 * time.Second

var ErrStillRunning = errors.New("negotiation still running")

// Director drives the suspect side of every attempt. A generator failure
// never reaches the player: it is logged and replaced by a fallback line.
type Director struct {
	gen     Generator
	timeout time.Duration
}

// NewDirector wraps gen. timeout <= 0 uses DefaultTimeout.
func NewDirector(gen Generator, timeout time.Duration) *Director {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Director{gen: gen, timeout: timeout}
}

// NewGenerator picks the LLM brain when a key is configured and the rule
// brain otherwise.
func NewGenerator(cfg LLMConfig, seed int64) Generator {
	brain, err := NewLLMBrain(cfg)
	if err != nil {
		log.Printf("[Suspect] %v, using rule brain", err)
		return NewRuleBrain(seed)
	}
	log.Printf("[Suspect] using %s at %s", brain.Name(), brain.cfg.BaseURL)
	return brain
}

func (d *Director) Generator() Generator { return d.gen }

// Respond produces the suspect's reply to playerText. s must already have
// the player's turn applied.
func (d *Director) Respond(ctx context.Context, s *negotiation.State, playerText string) negotiation.Reply {
	p := PromptFor(s, playerText)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	reply, err := d.gen.Generate(ctx, p)
	if err != nil {
		log.Printf("[Suspect] %s failed (%s): %v, using fallback", d.gen.Name(), KindOf(err), err)
		reply = FallbackReply(p.Tension)
	}
	if reply.Hint == "" {
		reply.Hint = ContextualHint(p)
	}
	return reply
}

// Debrief scores a finished attempt and attaches an analysis.
func (d *Director) Debrief(ctx context.Context, s *negotiation.State) (Debrief, error) {
	in, ok := DebriefFor(s)
	if !ok {
		return Debrief{}, ErrStillRunning
	}
	out := Debrief{
		Score:   in.Score,
		Stars:   Stars(in.Score),
		Success: in.Success,
	}

	if a, ok := d.gen.(Analyzer); ok {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		text, err := a.Analyze(ctx, in)
		if err == nil {
			_, local := a.(*RuleBrain)
			out.Analysis = text
			out.Generated = !local
			return out, nil
		}
		log.Printf("[Suspect] analysis via %s failed: %v", d.gen.Name(), err)
	}
	out.Analysis = localAnalysis(in)
	return out, nil
}
