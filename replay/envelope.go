package replay

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"negotiator-lite/negotiation"
)

// StateFields flattens the parts of s a client renders.
func StateFields(s *negotiation.State) map[string]any {
	lines := s.Transcript()
	transcript := make([]any, 0, len(lines))
	for _, l := range lines {
		transcript = append(transcript, map[string]any{
			"speaker": string(l.Speaker),
			"text":    l.Text,
		})
	}
	out := map[string]any{
		"scenario":         s.Scenario().ID,
		"turn":             s.Turn(),
		"maxTurns":         s.MaxTurns(),
		"tension":          s.Tension(),
		"trust":            s.Trust(),
		"hostages":         s.Hostages(),
		"hostagesReleased": s.HostagesReleased(),
		"remaining":        s.Remaining(),
		"emotionalState":   string(s.EmotionalState()),
		"surrenderOffered": s.SurrenderOffered(),
		"gameOver":         s.GameOver(),
		"transcript":       transcript,
	}
	if s.GameOver() {
		out["success"] = s.Success()
	}
	if score := s.ScoreIfTerminal(); score != nil {
		out["score"] = *score
	}
	return out
}

// EncodeEnvelope wraps fields in a Struct and returns it with its
// deterministic binary encoding in base64.
func EncodeEnvelope(fields map[string]any) (*structpb.Struct, string, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, "", fmt.Errorf("build envelope: %w", err)
	}
	bin, err := proto.MarshalOptions{Deterministic: true}.Marshal(st)
	if err != nil {
		return nil, "", fmt.Errorf("marshal envelope: %w", err)
	}
	return st, base64.StdEncoding.EncodeToString(bin), nil
}

// DecodeEnvelope reverses EncodeEnvelope.
func DecodeEnvelope(b64 string) (*structpb.Struct, error) {
	bin, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	st := &structpb.Struct{}
	if err := proto.Unmarshal(bin, st); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return st, nil
}
