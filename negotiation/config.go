package negotiation

import (
	"fmt"
	"math/rand"
	"time"
)

type Config struct {
	// Starting trust; 0 => DefaultInitialTrust. Starting tension always comes
	// from the scenario.
	InitialTrust int

	// Turn cap; 0 => DefaultMaxTurns.
	MaxTurns int

	// RNG seed (0 => time-based). Ignored when Rand is set.
	Seed int64
	Rand *rand.Rand
}

func (c Config) validate() error {
	if c.InitialTrust != 0 && (c.InitialTrust < MinLevel || c.InitialTrust > MaxLevel) {
		return fmt.Errorf("InitialTrust must be within [%d,%d]", MinLevel, MaxLevel)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("MaxTurns must be >= 0")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.InitialTrust == 0 {
		c.InitialTrust = DefaultInitialTrust
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.Rand == nil {
		seed := c.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		c.Rand = rand.New(rand.NewSource(seed))
	}
	return c
}
