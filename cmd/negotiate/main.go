// Command negotiate plays and replays negotiations from the terminal.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"negotiator-lite/negotiation"
	"negotiator-lite/negotiation/suspect"
	"negotiator-lite/replay"
)

const (
	Version = "0.1.0"
	appName = "negotiate"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var catalog string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Hostage negotiation training simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&catalog, "catalog", "", "Scenario catalog file (JSON or YAML); built-in catalog when empty")

	loadRegistry := func() (*suspect.Registry, error) {
		if catalog == "" {
			return suspect.DefaultRegistry(), nil
		}
		reg := suspect.NewRegistry()
		if err := reg.LoadFromFile(catalog); err != nil {
			return nil, err
		}
		return reg, nil
	}

	cmd.AddCommand(scenariosCmd(loadRegistry), playCmd(loadRegistry), replayCmd(loadRegistry))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

type registryLoader func() (*suspect.Registry, error)

func scenariosCmd(load registryLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			daily, _ := reg.Daily(time.Now())
			for _, sc := range reg.All() {
				marker := " "
				if sc.ID == daily.ID {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-22s %-11s tension=%d hostages=%d  %s\n",
					marker, sc.ID, sc.ArchetypeOrDefault(), sc.InitialTension, sc.Hostages, sc.Name)
			}
			return nil
		},
	}
}

func playCmd(load registryLoader) *cobra.Command {
	var (
		scenarioID string
		seed       int64
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a negotiation interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			sc, ok := pickScenario(reg, scenarioID)
			if !ok {
				return fmt.Errorf("scenario %q not found", scenarioID)
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			gen := suspect.NewGenerator(llmConfigFromEnv(), seed)
			director := suspect.NewDirector(gen, timeout)
			return play(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), sc, seed, director)
		},
	}
	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", "", "Scenario id (default: today's scenario)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (default: time based)")
	cmd.Flags().DurationVar(&timeout, "timeout", suspect.DefaultTimeout, "Dialogue generator timeout")
	return cmd
}

func pickScenario(reg *suspect.Registry, id string) (negotiation.Scenario, bool) {
	if id == "" {
		return reg.Daily(time.Now())
	}
	return reg.Get(id)
}

func llmConfigFromEnv() suspect.LLMConfig {
	key := os.Getenv("LLM_API_KEY")
	if key == "" {
		key = os.Getenv("API_KEY")
	}
	return suspect.LLMConfig{
		APIKey:  key,
		BaseURL: os.Getenv("LLM_BASE_URL"),
		Model:   os.Getenv("LLM_MODEL"),
	}
}

func play(ctx context.Context, in io.Reader, out io.Writer, sc negotiation.Scenario, seed int64, director *suspect.Director) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := negotiation.NewState(sc, negotiation.Config{Seed: seed})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "== %s ==\n%s\nSuspect: %s\nDemand: %s\n\n", sc.Name, sc.Setting, sc.Suspect, sc.Demand)
	printed := printTranscript(out, state, 0)

	scanner := bufio.NewScanner(in)
	for !state.GameOver() {
		fmt.Fprintf(out, "[turn %d/%d  tension %d  trust %d  hostages %d] > ",
			state.Turn(), state.MaxTurns(), state.Tension(), state.Trust(), state.Remaining())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if ok, msg := state.SubmitTurn(text); !ok {
			fmt.Fprintln(out, msg)
			break
		}
		var hint string
		if !state.GameOver() {
			reply := director.Respond(ctx, state, text)
			if err := state.IntegrateReply(reply); err != nil && !errors.Is(err, negotiation.ErrGameOver) {
				return err
			}
			hint = reply.Hint
		}
		printed = printTranscript(out, state, printed)
		if hint != "" && !state.GameOver() {
			fmt.Fprintf(out, "  hint: %s\n", hint)
		}
	}

	report, err := director.Debrief(ctx, state)
	if err != nil {
		return err
	}
	outcome := "FAILED"
	if report.Success {
		outcome = "SUCCESS"
	}
	fmt.Fprintf(out, "\nOutcome: %s  Score: %.2f/10  Rating: %d/5\n\n%s\n", outcome, report.Score, report.Stars, report.Analysis)
	return nil
}

// printTranscript writes lines from index from onward and returns the new
// transcript length.
func printTranscript(out io.Writer, s *negotiation.State, from int) int {
	lines := s.Transcript()
	for _, l := range lines[from:] {
		switch l.Speaker {
		case negotiation.SpeakerPlayer:
			continue
		case negotiation.SpeakerSuspect:
			fmt.Fprintf(out, "SUSPECT: %s\n", l.Text)
		default:
			fmt.Fprintf(out, "-- %s\n", l.Text)
		}
	}
	return len(lines)
}

func replayCmd(load registryLoader) *cobra.Command {
	var decode bool

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Run a scripted negotiation and print its tape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			script, err := replay.LoadScript(args[0])
			if err != nil {
				return err
			}
			tape, err := replay.Run(script, reg)
			if err != nil {
				var replayErr *replay.ReplayError
				if errors.As(err, &replayErr) {
					b, _ := json.MarshalIndent(replayErr, "", "  ")
					fmt.Fprintln(cmd.OutOrStdout(), string(b))
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if !decode {
				return enc.Encode(replay.ToWireTape(tape))
			}
			events := make([]map[string]any, 0, len(tape.Events))
			for _, e := range tape.Events {
				events = append(events, e.Value.AsMap())
			}
			return enc.Encode(events)
		},
	}
	cmd.Flags().BoolVar(&decode, "decode", false, "Print decoded events instead of base64 envelopes")
	return cmd
}
