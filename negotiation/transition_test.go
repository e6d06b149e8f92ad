package negotiation

import (
	"math/rand"
	"testing"
)

func TestApply_ClampsForEveryCategory(t *testing.T) {
	for _, c := range Categories {
		for tension := MinLevel; tension <= MaxLevel; tension++ {
			for trust := MinLevel; trust <= MaxLevel; trust++ {
				s := newTestState(t, tension, trust)
				s.similarInputs = 3
				s.Apply(c)
				if s.Tension() < MinLevel || s.Tension() > MaxLevel || s.Trust() < MinLevel || s.Trust() > MaxLevel {
					t.Fatalf("%s from %d/%d: out of range %d/%d", c, tension, trust, s.Tension(), s.Trust())
				}
				if s.HostagesReleased() > s.Hostages() {
					t.Fatalf("%s from %d/%d: released %d > hostages %d", c, tension, trust, s.HostagesReleased(), s.Hostages())
				}
			}
		}
	}
}

func TestApply_ConditionalDeltas(t *testing.T) {
	cases := []struct {
		c                    Category
		tension, trust       int
		wantTension, wantTru int
	}{
		{CategoryAction, 8, 6, 6, 5},
		{CategoryAction, 7, 5, 9, 7},
		{CategoryReleaseRequest, 6, 4, 9, 5},
		{CategoryReleaseRequest, 8, 5, 7, 3},
		{CategoryEmpathy, 9, 3, 7, 5},
		{CategoryMirror, 9, 3, 8, 5},
		{CategoryNeutral, 9, 3, 10, 2},
		{CategoryMistake, 5, 5, 8, 2},
		{CategoryOverusedEmotion, 5, 5, 7, 3},
	}
	for _, tc := range cases {
		s := newTestState(t, tc.tension, tc.trust)
		s.Apply(tc.c)
		if s.Tension() != tc.wantTension || s.Trust() != tc.wantTru {
			t.Fatalf("%s from %d/%d: got %d/%d, want %d/%d",
				tc.c, tc.tension, tc.trust, s.Tension(), s.Trust(), tc.wantTension, tc.wantTru)
		}
	}
}

func TestApply_PoorChoicesAndStreak(t *testing.T) {
	s := newTestState(t, 9, 1)
	s.Apply(CategoryEmpathy)
	s.Apply(CategoryMirror)
	if s.goodChoiceStreak != 2 || s.tacticalEmpathySuccess != 1 || s.mirroringCount != 1 {
		t.Fatalf("unexpected counters: %+v", s.Record())
	}
	s.Apply(CategoryMistake)
	if s.PoorChoices() != 1 || s.goodChoiceStreak != 0 {
		t.Fatalf("mistake should count as poor choice and reset streak")
	}
	s.Apply(CategoryOverusedEmotion)
	if s.PoorChoices() != 2 || s.emotionalLabelingFailure != 1 {
		t.Fatalf("overused emotion should count as poor choice")
	}
}

func TestApply_NoOpWhenTerminal(t *testing.T) {
	s := newTestState(t, 5, 5)
	s.gameOver = true
	s.Apply(CategoryMistake)
	if s.Tension() != 5 || s.Trust() != 5 || s.PoorChoices() != 0 {
		t.Fatalf("terminal state mutated")
	}
}

func TestReleasePolicy(t *testing.T) {
	cases := []struct {
		tension, trust int
		want           int
	}{
		{1, 2, 5},
		{1, 1, 0},
		{3, 4, 1},
		{3, 3, 0},
		{5, 6, 1},
		{5, 5, 0},
		{8, 8, 1},
		{8, 7, 0},
	}
	for _, tc := range cases {
		s := newTestState(t, tc.tension, tc.trust)
		s.applyReleasePolicy()
		if s.HostagesReleased() != tc.want {
			t.Fatalf("%d/%d: released %d, want %d", tc.tension, tc.trust, s.HostagesReleased(), tc.want)
		}
	}
}

func TestHostageInvariantUnderRandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	texts := []string{"please", "deal", "let them go", "no", "what now?", "hmm", "okay", "I can arrange that"}
	for game := 0; game < 200; game++ {
		s := newTestState(t, 1+rng.Intn(10), 1+rng.Intn(10))
		for !s.GameOver() {
			if ok, _ := s.SubmitTurn(texts[rng.Intn(len(texts))]); !ok {
				break
			}
			if s.GameOver() {
				break
			}
			var r Reply
			if rng.Intn(2) == 0 {
				r.Tension = Level(rng.Intn(12))
				r.Trust = Level(rng.Intn(12))
			}
			if err := s.IntegrateReply(r); err != nil {
				t.Fatalf("IntegrateReply err: %v", err)
			}
			if s.HostagesReleased() > s.Hostages() || s.Remaining() < 0 {
				t.Fatalf("hostage invariant broken: %+v", s.Record())
			}
		}
		if s.Turn() > DefaultMaxTurns {
			t.Fatalf("turn %d beyond cap", s.Turn())
		}
	}
}
