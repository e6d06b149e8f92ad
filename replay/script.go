package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"negotiator-lite/negotiation"
)

// LoadScript reads a script from a YAML or JSON file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	var s Script
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return Script{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	return s, nil
}

func validateScript(s Script) error {
	if strings.TrimSpace(s.Scenario) == "" {
		return &ReplayError{StepIndex: -1, Reason: "invalid_script", Message: "scenario is required"}
	}
	if len(s.Turns) == 0 {
		return &ReplayError{StepIndex: -1, Reason: "invalid_script", Message: "at least one turn is required"}
	}
	for i, t := range s.Turns {
		if t.Expect == nil || t.Expect.Category == "" {
			continue
		}
		if !knownCategory(t.Expect.Category) {
			return &ReplayError{
				StepIndex: int32(i),
				Reason:    "invalid_script",
				Message:   fmt.Sprintf("unknown category %q", t.Expect.Category),
			}
		}
	}
	return nil
}

func knownCategory(raw string) bool {
	for _, c := range negotiation.Categories {
		if string(c) == raw {
			return true
		}
	}
	return false
}
