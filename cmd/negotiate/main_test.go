package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("API_KEY", "")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestScenariosCommand(t *testing.T) {
	out, err := runCmd(t, "", "scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "first_national_bank")
	assert.Contains(t, out, "metro_station")
	assert.Equal(t, 8, strings.Count(out, "\n"))
}

func TestPlayCommand_SurrenderPath(t *testing.T) {
	input := strings.Join([]string{
		"I understand this must be hard.",
		"What would make this right for you?",
		"How do we end this together?",
		"yes",
		"yes",
	}, "\n")
	out, err := runCmd(t, input, "play", "--scenario", "jewelry_store", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Castellan Jewelers")
	assert.Contains(t, out, "Outcome:")
	assert.Contains(t, out, "Rating:")
}

func TestPlayCommand_EOFBeforeEnd(t *testing.T) {
	out, err := runCmd(t, "hello\n", "play", "--scenario", "harbor_warehouse", "--seed", "3")
	require.NoError(t, err)
	assert.NotContains(t, out, "Outcome:")
}

func TestReplayCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenario: first_national_bank
seed: 9
turns:
  - say: I understand this must be hard.
    expect:
      category: empathy
`), 0o644))

	out, err := runCmd(t, "", "replay", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"scenarioId": "first_national_bank"`)
	assert.Contains(t, out, `"envelopeB64"`)

	out, err = runCmd(t, "", "replay", "--decode", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"category": "empathy"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "negotiate version "+Version+"\n", out)
}
