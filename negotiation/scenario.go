package negotiation

import (
	"fmt"
	"strings"
)

// Archetype describes how a suspect tends to react. The set is open: the
// catalog may introduce new values.
type Archetype string

const (
	ArchetypePragmatic  Archetype = "pragmatic"
	ArchetypeVolatile   Archetype = "volatile"
	ArchetypeCalculated Archetype = "calculated"
	ArchetypeDesperate  Archetype = "desperate"
)

// Scenario is an immutable negotiation setup. States hold a value copy.
type Scenario struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	Setting         string    `json:"setting" yaml:"setting"`
	Suspect         string    `json:"suspect" yaml:"suspect"`
	Archetype       Archetype `json:"archetype" yaml:"archetype"`
	InitialTension  int       `json:"initialTension" yaml:"initial_tension"`
	Hostages        int       `json:"hostages" yaml:"hostages"`
	Demand          string    `json:"demand" yaml:"demand"`
	Goal            string    `json:"goal" yaml:"goal"`
	OpeningDialogue string    `json:"openingDialogue" yaml:"opening_dialogue"`
}

// Validate checks the fields the engine depends on.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("scenario id is required")
	}
	if s.InitialTension < MinLevel || s.InitialTension > MaxLevel {
		return fmt.Errorf("scenario %s: initial tension %d out of range", s.ID, s.InitialTension)
	}
	if s.Hostages < 0 {
		return fmt.Errorf("scenario %s: hostages must be >= 0", s.ID)
	}
	return nil
}

// ArchetypeOrDefault returns the archetype, falling back to pragmatic.
func (s Scenario) ArchetypeOrDefault() Archetype {
	if s.Archetype == "" {
		return ArchetypePragmatic
	}
	return s.Archetype
}
