// Package attempt persists in-progress negotiations between turns. Each
// attempt carries the engine Record; stores never interpret it.
package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"negotiator-lite/negotiation"
)

var ErrNotFound = errors.New("attempt not found")

type Attempt struct {
	ID         string             `json:"id"`
	PlayerID   uint64             `json:"playerId"`
	Username   string             `json:"username"`
	ScenarioID string             `json:"scenarioId"`
	Day        string             `json:"day"`
	Finished   bool               `json:"finished"`
	Record     negotiation.Record `json:"record"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// Store keeps attempts addressable by ID and by (player, day).
type Store interface {
	Create(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, id string) (*Attempt, error)
	// Latest returns the player's most recent attempt for day.
	Latest(ctx context.Context, playerID uint64, day string) (*Attempt, error)
	Save(ctx context.Context, a *Attempt) error
	Close() error
}

// New builds an attempt for s. The caller persists it with Store.Create.
func New(playerID uint64, username, day string, s *negotiation.State) *Attempt {
	now := time.Now().UTC()
	return &Attempt{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Username:   username,
		ScenarioID: s.Scenario().ID,
		Day:        day,
		Finished:   s.GameOver(),
		Record:     s.Record(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Update copies s into a and bumps UpdatedAt.
func (a *Attempt) Update(s *negotiation.State) {
	a.Record = s.Record()
	a.Finished = s.GameOver()
	a.UpdatedAt = time.Now().UTC()
}

// State resumes the engine state. cfg supplies the RNG.
func (a *Attempt) State(cfg negotiation.Config) (*negotiation.State, error) {
	return negotiation.FromRecord(a.Record, cfg)
}

// Day formats t as the UTC calendar day used for daily limits.
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func encode(a *Attempt) ([]byte, error) {
	return json.Marshal(a)
}

func decode(data []byte) (*Attempt, error) {
	var a Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
