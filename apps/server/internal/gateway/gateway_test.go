package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negotiator-lite/apps/server/internal/attempt"
	"negotiator-lite/apps/server/internal/auth"
	"negotiator-lite/apps/server/internal/codec"
	"negotiator-lite/apps/server/internal/game"
	"negotiator-lite/apps/server/internal/ledger"
	"negotiator-lite/apps/server/internal/progress"
	"negotiator-lite/negotiation/suspect"
)

func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	svc, err := game.NewService(game.Config{DailyLimit: true, MaxTurns: 2, Seed: 3}, game.Deps{
		Registry: suspect.DefaultRegistry(),
		Director: suspect.NewDirector(suspect.NewRuleBrain(1), time.Second),
		Attempts: attempt.NewMemoryStore(),
		Ledger:   ledger.NewMemoryService(),
		Progress: progress.NewMemoryService(),
	})
	require.NoError(t, err)

	authSvc := auth.NewManager()
	_, token, err := authSvc.Guest(context.Background())
	require.NoError(t, err)

	gw := New(svc, authSvc)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, token
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req codec.Request) map[string]any {
	t.Helper()
	data, err := codec.EncodeRequest(req)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	st, err := codec.DecodeResponse(msg)
	require.NoError(t, err)
	return st.AsMap()
}

func TestGateway_RejectsMissingToken(t *testing.T) {
	srv, _ := newServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateway_PlaysOverWebSocket(t *testing.T) {
	srv, token := newServer(t)
	conn := dial(t, srv, token)

	pong := roundTrip(t, conn, codec.Request{Type: codec.RequestPing, RequestID: "p1"})
	assert.Equal(t, "pong", pong["type"])
	assert.Equal(t, "p1", pong["request_id"])

	started := roundTrip(t, conn, codec.Request{Type: codec.RequestStart, RequestID: "s1"})
	require.Equal(t, "view", started["type"], started)
	view := started["payload"].(map[string]any)
	attemptID := view["attempt_id"].(string)
	require.NotEmpty(t, attemptID)
	assert.Equal(t, float64(1), view["turn"])

	said := roundTrip(t, conn, codec.Request{Type: codec.RequestSay, RequestID: "t1", AttemptID: attemptID, Text: "What do you need from us?"})
	require.Equal(t, "view", said["type"], said)
	assert.Equal(t, true, said["payload"].(map[string]any)["game_over"])
	assert.Greater(t, said["server_seq"].(float64), started["server_seq"].(float64))

	again := roundTrip(t, conn, codec.Request{Type: codec.RequestStart})
	require.Equal(t, "error", again["type"])
	assert.Equal(t, float64(http.StatusConflict), again["error"].(map[string]any)["code"])

	debrief := roundTrip(t, conn, codec.Request{Type: codec.RequestDebrief, AttemptID: attemptID})
	require.Equal(t, "debrief", debrief["type"], debrief)
	assert.NotEmpty(t, debrief["payload"].(map[string]any)["analysis"])

	board := roundTrip(t, conn, codec.Request{Type: codec.RequestLeaderboard, Limit: 3})
	require.Equal(t, "leaderboard", board["type"])
	assert.Len(t, board["payload"].(map[string]any)["daily"], 1)
}

func TestGateway_BadFrames(t *testing.T) {
	srv, token := newServer(t)
	conn := dial(t, srv, token)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xff}))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	st, err := codec.DecodeResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, "error", st.GetFields()["type"].GetStringValue())

	unknown := roundTrip(t, conn, codec.Request{Type: "dance"})
	assert.Equal(t, "error", unknown["type"])
	assert.Equal(t, "unknown request type", unknown["error"].(map[string]any)["message"])

	empty := roundTrip(t, conn, codec.Request{Type: codec.RequestSay, AttemptID: "x"})
	assert.Equal(t, map[string]any{"code": float64(400), "message": "text is required"}, empty["error"])
}
