package suspect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negotiator-lite/negotiation"
)

type stubGenerator struct {
	reply negotiation.Reply
	err   error
	block bool
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(ctx context.Context, _ Prompt) (negotiation.Reply, error) {
	if g.block {
		<-ctx.Done()
		return negotiation.Reply{}, unavailable(ctx.Err())
	}
	return g.reply, g.err
}

func newState(t *testing.T, tension int) *negotiation.State {
	t.Helper()
	sc, ok := DefaultRegistry().Get("first_national_bank")
	require.True(t, ok)
	sc.InitialTension = tension
	s, err := negotiation.NewState(sc, negotiation.Config{Seed: 3})
	require.NoError(t, err)
	return s
}

func TestDirector_PassesThroughReply(t *testing.T) {
	d := NewDirector(&stubGenerator{reply: negotiation.Reply{Text: "Okay.", Tension: negotiation.Level(3)}}, time.Second)
	reply := d.Respond(context.Background(), newState(t, 7), "hello")

	assert.Equal(t, "Okay.", reply.Text)
	require.NotNil(t, reply.Tension)
	assert.Equal(t, 3, *reply.Tension)
	assert.NotEmpty(t, reply.Hint)
}

func TestDirector_FallsBackOnError(t *testing.T) {
	d := NewDirector(&stubGenerator{err: malformed(errors.New("bad json"))}, time.Second)
	reply := d.Respond(context.Background(), newState(t, 9), "hello")

	assert.True(t, reply.Fallback)
	assert.Equal(t, "One wrong move and this ends badly!", reply.Text)
	assert.Nil(t, reply.Tension)
	assert.Nil(t, reply.Trust)
}

func TestDirector_FallsBackOnTimeout(t *testing.T) {
	d := NewDirector(&stubGenerator{block: true}, 20*time.Millisecond)
	start := time.Now()
	reply := d.Respond(context.Background(), newState(t, 4), "hello")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, reply.Fallback)
	assert.Equal(t, "You better make this worth my time!", reply.Text)
}

func TestFallbackReply_Bands(t *testing.T) {
	cases := map[int]string{
		1:  "I hear you... let's keep talking.",
		2:  "I hear you... let's keep talking.",
		3:  "You better make this worth my time!",
		5:  "You better make this worth my time!",
		6:  "Don't try anything stupid!",
		7:  "Don't try anything stupid!",
		8:  "One wrong move and this ends badly!",
		10: "One wrong move and this ends badly!",
	}
	for tension, want := range cases {
		assert.Equal(t, want, FallbackReply(tension).Text, "tension %d", tension)
	}
}

func TestContextualHint_Order(t *testing.T) {
	assert.Equal(t, "Tension is very high. Focus on de-escalation.", ContextualHint(Prompt{Tension: 8, Trust: 1, Turn: 9}))
	assert.Equal(t, "Trust is low. Show empathy and understanding.", ContextualHint(Prompt{Tension: 5, Trust: 3, Turn: 9}))
	assert.Equal(t, "Time is running out. Consider making a significant offer.", ContextualHint(Prompt{Tension: 5, Trust: 5, Turn: 8}))
	assert.Equal(t, "Keep building rapport through active listening.", ContextualHint(Prompt{Tension: 5, Trust: 5, Turn: 2}))
}

func TestRuleBrain_UsesEmotionalStateLines(t *testing.T) {
	b := NewRuleBrain(1)
	for i := 0; i < 20; i++ {
		reply, err := b.Generate(context.Background(), Prompt{Emotional: negotiation.EmotionalResigned})
		require.NoError(t, err)
		assert.Contains(t, cannedLines[negotiation.EmotionalResigned], reply.Text)
		assert.Nil(t, reply.Tension)
	}
}

func TestDirector_Debrief(t *testing.T) {
	d := NewDirector(NewRuleBrain(1), time.Second)
	s := newState(t, 7)

	_, err := d.Debrief(context.Background(), s)
	assert.ErrorIs(t, err, ErrStillRunning)

	require.NoError(t, s.IntegrateReply(negotiation.Reply{Tension: negotiation.Level(10), Text: "That's it."}))
	out, err := d.Debrief(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.False(t, out.Generated)
	assert.GreaterOrEqual(t, out.Stars, 1)
	assert.True(t, strings.Contains(out.Analysis, "escalated"))
}

func TestPromptFor_TrimsHistory(t *testing.T) {
	s := newState(t, 7)
	for i := 0; i < 5; i++ {
		_, err := s.Submit("tell me more")
		require.NoError(t, err)
		require.NoError(t, s.IntegrateReply(negotiation.Reply{Tension: negotiation.Level(6), Trust: negotiation.Level(3), Text: "More of what?"}))
	}
	p := PromptFor(s, "tell me more")
	assert.LessOrEqual(t, len(p.History), historyWindow)
	assert.Equal(t, s.Turn(), p.Turn)
	assert.Equal(t, "tell me more", p.PlayerText)
	assert.Equal(t, negotiation.EmotionalStateFor(s.Tension()), p.Emotional)
}
