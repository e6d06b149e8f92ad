package negotiation

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func newTestState(t *testing.T, tension, trust int) *State {
	t.Helper()
	s, err := NewState(Scenario{
		ID:              "bank_test",
		Name:            "Bank Test",
		Suspect:         "Test suspect",
		Archetype:       ArchetypePragmatic,
		InitialTension:  tension,
		Hostages:        5,
		Demand:          "A helicopter",
		OpeningDialogue: "I want a helicopter on the roof in one hour.",
	}, Config{InitialTrust: trust, Seed: 42})
	if err != nil {
		t.Fatalf("NewState err: %v", err)
	}
	return s
}

func TestNewState_SeedsTranscriptAndLevels(t *testing.T) {
	s := newTestState(t, 7, 3)

	if s.Turn() != 1 || s.Tension() != 7 || s.Trust() != 3 {
		t.Fatalf("unexpected initial levels: turn=%d tension=%d trust=%d", s.Turn(), s.Tension(), s.Trust())
	}
	lines := s.Transcript()
	if len(lines) != 3 {
		t.Fatalf("expected 3 seeded lines, got %d", len(lines))
	}
	if lines[0].Speaker != SpeakerSystem || lines[1].Speaker != SpeakerSystem {
		t.Fatalf("expected two intro system lines, got %+v", lines[:2])
	}
	if lines[2].Speaker != SpeakerSuspect || s.LastSuspectLine() != "I want a helicopter on the roof in one hour." {
		t.Fatalf("expected opening line from suspect, got %+v", lines[2])
	}
	if s.Remaining() != 5 || s.GameOver() {
		t.Fatalf("unexpected initial hostage/terminal state")
	}
}

func TestNewState_RejectsBadInput(t *testing.T) {
	if _, err := NewState(Scenario{ID: "", InitialTension: 5}, Config{}); err == nil {
		t.Fatalf("expected error for missing scenario id")
	}
	if _, err := NewState(Scenario{ID: "x", InitialTension: 11}, Config{}); err == nil {
		t.Fatalf("expected error for tension out of range")
	}
	if _, err := NewState(Scenario{ID: "x", InitialTension: 5}, Config{InitialTrust: 12}); err == nil {
		t.Fatalf("expected error for trust out of range")
	}
}

func TestSubmitTurn_RejectedAfterGameOver(t *testing.T) {
	s := newTestState(t, 7, 3)
	s.gameOver = true
	before := s.Record()

	ok, msg := s.SubmitTurn("please help me")
	if ok {
		t.Fatalf("expected rejection after game over")
	}
	if msg == "" {
		t.Fatalf("expected a player-facing message")
	}
	if !reflect.DeepEqual(before, s.Record()) {
		t.Fatalf("state mutated by rejected turn")
	}

	_, err := s.Submit("please help me")
	if !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if err := s.IntegrateReply(Reply{Text: "hi"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver from IntegrateReply, got %v", err)
	}
}

func TestSubmitTurn_RejectedAtTurnLimit(t *testing.T) {
	s := newTestState(t, 7, 3)
	s.turn = s.maxTurns
	before := s.Record()

	if ok, _ := s.SubmitTurn("hello"); ok {
		t.Fatalf("expected rejection at turn limit")
	}
	if _, err := s.Submit("hello"); !errors.Is(err, ErrTurnLimit) {
		t.Fatalf("expected ErrTurnLimit, got %v", err)
	}
	if !reflect.DeepEqual(before, s.Record()) {
		t.Fatalf("state mutated by rejected turn")
	}
}

func TestSurrenderAcceptance_EndsWithSuccess(t *testing.T) {
	s := newTestState(t, 2, 8)
	s.surrenderOffered = true
	s.hostagesReleased = 1

	c, err := s.Submit("Yes, I accept.")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if c != CategoryAcceptSurrender {
		t.Fatalf("expected accept_surrender, got %s", c)
	}
	if !s.GameOver() || !s.Success() {
		t.Fatalf("expected terminal success")
	}
	if s.HostagesReleased() != s.Hostages() {
		t.Fatalf("expected full release, got %d/%d", s.HostagesReleased(), s.Hostages())
	}
}

func TestSurrenderOffer_WhenCalmAndTrusting(t *testing.T) {
	s := newTestState(t, 3, 7)

	// calibrated: tension -2, trust +3
	if ok, _ := s.SubmitTurn("How can we end this safely?"); !ok {
		t.Fatalf("turn rejected")
	}
	if s.Tension() != 1 || s.Trust() != 10 {
		t.Fatalf("unexpected levels tension=%d trust=%d", s.Tension(), s.Trust())
	}
	if !s.SurrenderOffered() {
		t.Fatalf("expected surrender offer")
	}
	last := s.Transcript()[len(s.Transcript())-1]
	if last.Text != surrenderOfferText {
		t.Fatalf("expected surrender prompt as last line, got %q", last.Text)
	}
}

func TestRepetitionPenalty(t *testing.T) {
	s := newTestState(t, 3, 8)

	want := []int{0, 1, 2, 3}
	for i, w := range want {
		if _, err := s.Submit("  STOP it "); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if s.SimilarInputs() != w {
			t.Fatalf("submit %d: similar=%d want %d", i, s.SimilarInputs(), w)
		}
		if i < len(want)-1 {
			if err := s.IntegrateReply(Reply{Tension: Level(3), Trust: Level(8), Text: "Stop stalling."}); err != nil {
				t.Fatalf("integrate %d: %v", i, err)
			}
		}
	}

	// mistake (+3/-3) plus the penalty (+2/-2) from 3/8
	if s.Tension() != 8 || s.Trust() != 3 {
		t.Fatalf("expected penalty on top of base delta, got tension=%d trust=%d", s.Tension(), s.Trust())
	}
	found := false
	for _, l := range s.Transcript() {
		if l.Text == repeatWarningText {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected repetition warning in transcript")
	}
}

func TestTimeout_FailsWhenTensionHigh(t *testing.T) {
	s := newTestState(t, 5, 4)
	s.turn = 9

	if err := s.IntegrateReply(Reply{Text: "Time's up."}); err != nil {
		t.Fatalf("IntegrateReply err: %v", err)
	}
	if s.Turn() != 10 || !s.GameOver() || s.Success() {
		t.Fatalf("expected failed timeout, got turn=%d over=%v success=%v", s.Turn(), s.GameOver(), s.Success())
	}
}

func TestTimeout_SucceedsWhenCalm(t *testing.T) {
	s := newTestState(t, 2, 7)
	s.turn = 9

	if err := s.IntegrateReply(Reply{Text: "Alright."}); err != nil {
		t.Fatalf("IntegrateReply err: %v", err)
	}
	if !s.GameOver() || !s.Success() {
		t.Fatalf("expected successful timeout")
	}
}

func TestIntegrateReply_OverrideAppliesBeforeTerminalCheck(t *testing.T) {
	s := newTestState(t, 5, 5)

	if err := s.IntegrateReply(Reply{Tension: Level(14), Trust: Level(-3), Text: "That's it!"}); err != nil {
		t.Fatalf("IntegrateReply err: %v", err)
	}
	if s.Tension() != 10 || s.Trust() != 1 {
		t.Fatalf("expected clamped override, got tension=%d trust=%d", s.Tension(), s.Trust())
	}
	if !s.GameOver() || s.Success() {
		t.Fatalf("expected escalation loss")
	}
	if s.Hostages() != 4 {
		t.Fatalf("expected one hostage harmed, hostages=%d", s.Hostages())
	}
}

func TestIntegrateReply_EmptyTextGetsDefault(t *testing.T) {
	s := newTestState(t, 5, 5)
	if err := s.IntegrateReply(Reply{}); err != nil {
		t.Fatalf("IntegrateReply err: %v", err)
	}
	if s.LastSuspectLine() != emptyReplyText {
		t.Fatalf("expected default suspect text, got %q", s.LastSuspectLine())
	}
	if s.Tension() != 5 || s.Trust() != 5 {
		t.Fatalf("nil levels must not override")
	}
}

func TestIntegrateReply_HighTensionWarning(t *testing.T) {
	s := newTestState(t, 5, 5)
	if err := s.IntegrateReply(Reply{Tension: Level(9), Text: "Careful."}); err != nil {
		t.Fatal(err)
	}
	last := s.Transcript()[len(s.Transcript())-1]
	if last.Text != tensionWarningText {
		t.Fatalf("expected tension warning, got %q", last.Text)
	}
	if s.GameOver() {
		t.Fatalf("tension 9 must not end the game")
	}
}

func TestEscalationLoss_NoHostagesLeft(t *testing.T) {
	s := newTestState(t, 5, 5)
	s.hostagesReleased = s.hostages

	if err := s.IntegrateReply(Reply{Tension: Level(10), Text: "Enough!"}); err != nil {
		t.Fatal(err)
	}
	if s.Hostages() != 5 || s.Remaining() != 0 {
		t.Fatalf("no hostage should be harmed when none remain: hostages=%d", s.Hostages())
	}
}

func TestFullGame_DeterministicWithSeed(t *testing.T) {
	inputs := []string{
		"I understand this is hard.",
		"What do you need from us?",
		"I can arrange a car for you.",
		"hmm",
		"Let them go and we talk.",
		"No way.",
		"okay then",
	}
	play := func() Record {
		s := newTestState(t, 7, 3)
		for _, in := range inputs {
			if s.GameOver() {
				break
			}
			if ok, msg := s.SubmitTurn(in); !ok {
				t.Fatalf("turn rejected: %s", msg)
			}
			if s.GameOver() {
				break
			}
			if err := s.IntegrateReply(Reply{Text: "..."}); err != nil {
				t.Fatalf("IntegrateReply err: %v", err)
			}
		}
		return s.Record()
	}

	a, b := play(), play()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different games")
	}
	if !strings.Contains(a.Transcript[3].Text, "understand") {
		t.Fatalf("expected player line after opening, got %+v", a.Transcript[3])
	}
}
