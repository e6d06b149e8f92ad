package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	data, err := EncodeRequest(Request{Type: RequestSay, RequestID: "r1", AttemptID: "a1", Text: "What do you need?", Limit: 5})
	require.NoError(t, err)

	req, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, Request{Type: RequestSay, RequestID: "r1", AttemptID: "a1", Text: "What do you need?", Limit: 5}, req)
}

func TestDecodeRequest_AssignsRequestID(t *testing.T) {
	data, err := EncodeRequest(Request{Type: RequestPing})
	require.NoError(t, err)
	req, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.NotEmpty(t, req.RequestID)
}

func TestDecodeRequest_Rejects(t *testing.T) {
	_, err := DecodeRequest([]byte{0xff, 0x01})
	assert.Error(t, err)

	data, err := EncodeRequest(Request{})
	require.NoError(t, err)
	_, err = DecodeRequest(data)
	assert.Error(t, err)
}

func TestEncodeResponse(t *testing.T) {
	type payload struct {
		Turn    int    `json:"turn"`
		Tension int    `json:"tension"`
		Hint    string `json:"hint,omitempty"`
	}
	data, err := EncodeResponse(Response{Type: ResponseView, RequestID: "r2", ServerSeq: 3, Payload: payload{Turn: 2, Tension: 6}})
	require.NoError(t, err)

	st, err := DecodeResponse(data)
	require.NoError(t, err)
	m := st.AsMap()
	assert.Equal(t, "view", m["type"])
	assert.Equal(t, "r2", m["request_id"])
	assert.Equal(t, float64(3), m["server_seq"])
	assert.Equal(t, map[string]any{"turn": float64(2), "tension": float64(6)}, m["payload"])
	assert.NotContains(t, m, "error")
}

func TestEncodeResponse_Error(t *testing.T) {
	data, err := EncodeResponse(Response{Type: ResponseError, RequestID: "r3", ErrorCode: 409, ErrorMessage: "already played"})
	require.NoError(t, err)
	st, err := DecodeResponse(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"code": float64(409), "message": "already played"}, st.AsMap()["error"])

	_, err = EncodeResponse(Response{Type: ResponseView, Payload: []int{1}})
	assert.Error(t, err)
}
