package negotiation

import (
	"encoding/json"
	"fmt"
)

// RecordVersion is bumped whenever Record changes shape.
const RecordVersion = 1

// Record is the plain persisted form of a State. The RNG is not part of it;
// a resumed state draws from the Config passed to FromRecord.
type Record struct {
	Version  int      `json:"version"`
	Scenario Scenario `json:"scenario"`
	MaxTurns int      `json:"maxTurns"`

	Turn             int    `json:"turn"`
	Tension          int    `json:"tension"`
	Trust            int    `json:"trust"`
	Hostages         int    `json:"hostages"`
	HostagesReleased int    `json:"hostagesReleased"`
	Transcript       []Line `json:"transcript"`

	SurrenderOffered bool `json:"surrenderOffered"`
	GameOver         bool `json:"gameOver"`
	Success          bool `json:"success"`

	SimilarInputsCount    int    `json:"similarInputsCount"`
	LastInput             string `json:"lastInput"`
	EmotionalAppealsCount int    `json:"emotionalAppealsCount"`

	PoorChoices              int `json:"poorChoices"`
	TacticalEmpathySuccess   int `json:"tacticalEmpathySuccess"`
	MirroringCount           int `json:"mirroringCount"`
	CalibratedQuestions      int `json:"calibratedQuestions"`
	EmotionalLabelingSuccess int `json:"emotionalLabelingSuccess"`
	EmotionalLabelingFailure int `json:"emotionalLabelingFailure"`
	GoodChoiceStreak         int `json:"goodChoiceStreak"`

	LastCategory Category `json:"lastCategory,omitempty"`
	LastHint     string   `json:"lastHint,omitempty"`
}

// Record captures every field of s.
func (s *State) Record() Record {
	return Record{
		Version:                  RecordVersion,
		Scenario:                 s.scenario,
		MaxTurns:                 s.maxTurns,
		Turn:                     s.turn,
		Tension:                  s.tension,
		Trust:                    s.trust,
		Hostages:                 s.hostages,
		HostagesReleased:         s.hostagesReleased,
		Transcript:               s.Transcript(),
		SurrenderOffered:         s.surrenderOffered,
		GameOver:                 s.gameOver,
		Success:                  s.success,
		SimilarInputsCount:       s.similarInputs,
		LastInput:                s.lastInput,
		EmotionalAppealsCount:    s.emotionalAppeals,
		PoorChoices:              s.poorChoices,
		TacticalEmpathySuccess:   s.tacticalEmpathySuccess,
		MirroringCount:           s.mirroringCount,
		CalibratedQuestions:      s.calibratedQuestions,
		EmotionalLabelingSuccess: s.emotionalLabelingSuccess,
		EmotionalLabelingFailure: s.emotionalLabelingFailure,
		GoodChoiceStreak:         s.goodChoiceStreak,
		LastCategory:             s.lastCategory,
		LastHint:                 s.lastHint,
	}
}

// FromRecord rebuilds a State. Records missing gameplay-affecting fields are
// rejected with a *MismatchError; only MaxTurns and the RNG come from cfg.
func FromRecord(rec Record, cfg Config) (*State, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := rec.check(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	maxTurns := rec.MaxTurns
	if maxTurns == 0 {
		maxTurns = cfg.MaxTurns
	}

	return &State{
		scenario:                 rec.Scenario,
		maxTurns:                 maxTurns,
		rng:                      cfg.Rand,
		turn:                     rec.Turn,
		tension:                  rec.Tension,
		trust:                    rec.Trust,
		hostages:                 rec.Hostages,
		hostagesReleased:         rec.HostagesReleased,
		transcript:               append([]Line(nil), rec.Transcript...),
		surrenderOffered:         rec.SurrenderOffered,
		gameOver:                 rec.GameOver,
		success:                  rec.Success,
		similarInputs:            rec.SimilarInputsCount,
		lastInput:                rec.LastInput,
		emotionalAppeals:         rec.EmotionalAppealsCount,
		poorChoices:              rec.PoorChoices,
		tacticalEmpathySuccess:   rec.TacticalEmpathySuccess,
		mirroringCount:           rec.MirroringCount,
		calibratedQuestions:      rec.CalibratedQuestions,
		emotionalLabelingSuccess: rec.EmotionalLabelingSuccess,
		emotionalLabelingFailure: rec.EmotionalLabelingFailure,
		goodChoiceStreak:         rec.GoodChoiceStreak,
		lastCategory:             rec.LastCategory,
		lastHint:                 rec.LastHint,
	}, nil
}

func (r Record) check() error {
	var bad []string
	if r.Version != RecordVersion {
		bad = append(bad, fmt.Sprintf("version(%d)", r.Version))
	}
	if err := r.Scenario.Validate(); err != nil {
		bad = append(bad, "scenario")
	}
	if r.Turn < 1 {
		bad = append(bad, "turn")
	}
	if r.Tension < MinLevel || r.Tension > MaxLevel {
		bad = append(bad, "tension")
	}
	if r.Trust < MinLevel || r.Trust > MaxLevel {
		bad = append(bad, "trust")
	}
	if r.Hostages < 0 || r.HostagesReleased < 0 || r.HostagesReleased > r.Hostages {
		bad = append(bad, "hostages")
	}
	if r.MaxTurns < 0 {
		bad = append(bad, "maxTurns")
	}
	if len(bad) > 0 {
		return &MismatchError{Fields: bad}
	}
	return nil
}

// Serialize encodes s as JSON.
func Serialize(s *State) ([]byte, error) {
	return json.Marshal(s.Record())
}

// Deserialize decodes data produced by Serialize.
func Deserialize(data []byte, cfg Config) (*State, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &MismatchError{Fields: []string{"json: " + err.Error()}}
	}
	return FromRecord(rec, cfg)
}
