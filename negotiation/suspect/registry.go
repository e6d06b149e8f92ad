package suspect

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"negotiator-lite/negotiation"
)

//go:embed scenarios.json
var builtinScenarios []byte

// Registry holds the scenario catalog.
type Registry struct {
	mu        sync.RWMutex
	scenarios map[string]negotiation.Scenario
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scenarios: make(map[string]negotiation.Scenario)}
}

// DefaultRegistry returns a registry loaded with the built-in catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.LoadFromJSON(builtinScenarios); err != nil {
		panic(fmt.Sprintf("suspect: built-in catalog: %v", err))
	}
	return r
}

// LoadFromFile loads scenarios from a JSON or YAML file, picked by extension.
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenarios file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return r.LoadFromYAML(data)
	default:
		return r.LoadFromJSON(data)
	}
}

// LoadFromJSON merges scenarios from raw JSON bytes.
func (r *Registry) LoadFromJSON(data []byte) error {
	var list []negotiation.Scenario
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse scenarios JSON: %w", err)
	}
	return r.add(list)
}

// LoadFromYAML merges scenarios from raw YAML bytes.
func (r *Registry) LoadFromYAML(data []byte) error {
	var list []negotiation.Scenario
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse scenarios YAML: %w", err)
	}
	return r.add(list)
}

// Replace swaps the whole catalog for the scenarios in path. On error the
// current catalog is kept.
func (r *Registry) Replace(path string) error {
	next := NewRegistry()
	if err := next.LoadFromFile(path); err != nil {
		return err
	}
	if next.Count() == 0 {
		return fmt.Errorf("scenarios file %s is empty", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios = next.scenarios
	return nil
}

func (r *Registry) add(list []negotiation.Scenario) error {
	for _, sc := range list {
		if err := sc.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sc := range list {
		r.scenarios[sc.ID] = sc
	}
	return nil
}

// Get returns a scenario by ID.
func (r *Registry) Get(id string) (negotiation.Scenario, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sc, ok := r.scenarios[id]
	return sc, ok
}

// All returns every scenario ordered by ID.
func (r *Registry) All() []negotiation.Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]negotiation.Scenario, 0, len(r.scenarios))
	for _, sc := range r.scenarios {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByArchetype returns the scenarios of one archetype ordered by ID.
func (r *Registry) ByArchetype(a negotiation.Archetype) []negotiation.Scenario {
	var out []negotiation.Scenario
	for _, sc := range r.All() {
		if sc.ArchetypeOrDefault() == a {
			out = append(out, sc)
		}
	}
	return out
}

// Daily picks the scenario of the day. Every caller gets the same pick for
// the same UTC date.
func (r *Registry) Daily(now time.Time) (negotiation.Scenario, bool) {
	all := r.All()
	if len(all) == 0 {
		return negotiation.Scenario{}, false
	}
	day := now.UTC().Unix() / int64(24*time.Hour/time.Second)
	return all[int(day%int64(len(all)))], true
}

// Count returns the number of scenarios.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scenarios)
}
