// Package codec converts WebSocket frames to and from protobuf-encoded
// google.protobuf.Struct envelopes.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request types sent by clients.
const (
	RequestStart       = "start"
	RequestSay         = "say"
	RequestGet         = "get"
	RequestDebrief     = "debrief"
	RequestStats       = "stats"
	RequestLeaderboard = "leaderboard"
	RequestPing        = "ping"
)

// Response types sent by the server.
const (
	ResponseView        = "view"
	ResponseDebrief     = "debrief"
	ResponseStats       = "stats"
	ResponseLeaderboard = "leaderboard"
	ResponseError       = "error"
	ResponsePong        = "pong"
)

type Request struct {
	Type      string
	RequestID string
	AttemptID string
	Text      string
	Limit     int
}

type Response struct {
	Type      string
	RequestID string
	ServerSeq uint64
	Payload   any

	ErrorCode    int32
	ErrorMessage string
}

func marshal(fields map[string]any) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build envelope: %w", err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(st)
}

func unmarshal(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return st, nil
}

func str(st *structpb.Struct, key string) string {
	return strings.TrimSpace(st.GetFields()[key].GetStringValue())
}

// DecodeRequest parses a client frame. A missing request id gets a fresh one.
func DecodeRequest(data []byte) (Request, error) {
	st, err := unmarshal(data)
	if err != nil {
		return Request{}, err
	}
	req := Request{
		Type:      str(st, "type"),
		RequestID: str(st, "request_id"),
		AttemptID: str(st, "attempt_id"),
		Text:      st.GetFields()["text"].GetStringValue(),
		Limit:     int(st.GetFields()["limit"].GetNumberValue()),
	}
	if req.Type == "" {
		return Request{}, fmt.Errorf("missing request type")
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

func EncodeRequest(req Request) ([]byte, error) {
	fields := map[string]any{"type": req.Type}
	if req.RequestID != "" {
		fields["request_id"] = req.RequestID
	}
	if req.AttemptID != "" {
		fields["attempt_id"] = req.AttemptID
	}
	if req.Text != "" {
		fields["text"] = req.Text
	}
	if req.Limit > 0 {
		fields["limit"] = req.Limit
	}
	return marshal(fields)
}

// EncodeResponse serializes resp. Payload goes through its JSON form so any
// json-tagged struct becomes a Struct.
func EncodeResponse(resp Response) ([]byte, error) {
	fields := map[string]any{
		"type":         resp.Type,
		"request_id":   resp.RequestID,
		"server_seq":   float64(resp.ServerSeq),
		"server_ts_ms": float64(time.Now().UnixMilli()),
	}
	if resp.Payload != nil {
		payload, err := toMap(resp.Payload)
		if err != nil {
			return nil, err
		}
		fields["payload"] = payload
	}
	if resp.Type == ResponseError {
		fields["error"] = map[string]any{
			"code":    int(resp.ErrorCode),
			"message": resp.ErrorMessage,
		}
	}
	return marshal(fields)
}

// DecodeResponse parses a server frame for clients and tests.
func DecodeResponse(data []byte) (*structpb.Struct, error) {
	return unmarshal(data)
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("payload must be an object: %w", err)
	}
	return out, nil
}
