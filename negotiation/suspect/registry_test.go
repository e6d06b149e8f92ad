package suspect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"negotiator-lite/negotiation"
)

func TestDefaultRegistry_LoadsCatalog(t *testing.T) {
	r := DefaultRegistry()
	if r.Count() != 8 {
		t.Fatalf("expected 8 built-in scenarios, got %d", r.Count())
	}
	sc, ok := r.Get("first_national_bank")
	if !ok {
		t.Fatalf("first_national_bank missing")
	}
	if sc.InitialTension != 7 || sc.Hostages != 5 || sc.Archetype != negotiation.ArchetypeDesperate {
		t.Fatalf("unexpected scenario: %+v", sc)
	}
	all := r.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("All() not ordered by id")
		}
	}
	if got := len(r.ByArchetype(negotiation.ArchetypeVolatile)); got != 2 {
		t.Fatalf("expected 2 volatile scenarios, got %d", got)
	}
}

func TestRegistry_DailyIsStablePerDay(t *testing.T) {
	r := DefaultRegistry()
	morning := time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	next := morning.Add(24 * time.Hour)

	a, _ := r.Daily(morning)
	b, _ := r.Daily(evening)
	c, _ := r.Daily(next)
	if a.ID != b.ID {
		t.Fatalf("daily pick changed within a day: %s vs %s", a.ID, b.ID)
	}
	if a.ID == c.ID {
		t.Fatalf("daily pick should rotate across consecutive days")
	}

	if _, ok := NewRegistry().Daily(morning); ok {
		t.Fatalf("empty registry has no daily pick")
	}
}

func TestRegistry_LoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	data := []byte(`
- id: rooftop
  name: Rooftop
  archetype: volatile
  initial_tension: 9
  hostages: 1
  demand: A news crew
  opening_dialogue: Don't come any closer.
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile err: %v", err)
	}
	sc, ok := r.Get("rooftop")
	if !ok || sc.InitialTension != 9 || sc.OpeningDialogue != "Don't come any closer." {
		t.Fatalf("unexpected yaml scenario: %+v", sc)
	}
}

func TestRegistry_RejectsInvalidScenario(t *testing.T) {
	r := NewRegistry()
	err := r.LoadFromJSON([]byte(`[{"id":"bad","initialTension":0,"hostages":1}]`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if r.Count() != 0 {
		t.Fatalf("invalid catalog must not be partially applied")
	}
}

func TestRegistry_ReplaceKeepsOldOnError(t *testing.T) {
	r := DefaultRegistry()
	if err := r.Replace(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if r.Count() != 8 {
		t.Fatalf("catalog lost after failed replace")
	}

	path := filepath.Join(t.TempDir(), "one.json")
	if err := os.WriteFile(path, []byte(`[{"id":"solo","initialTension":5,"hostages":1}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Replace(path); err != nil {
		t.Fatalf("Replace err: %v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("expected catalog replaced, got %d", r.Count())
	}
}
