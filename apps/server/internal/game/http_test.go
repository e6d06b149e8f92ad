package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negotiator-lite/apps/server/internal/auth"
)

type apiClient struct {
	t     *testing.T
	mux   *http.ServeMux
	token string
}

func (c *apiClient) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.mux.ServeHTTP(rec, req)
	return rec
}

func newAPI(t *testing.T, cfg Config) *apiClient {
	t.Helper()
	f := newFixture(t, cfg, nil)
	authSvc := auth.NewManager()
	mux := http.NewServeMux()
	auth.NewHTTPHandler(authSvc).RegisterRoutes(mux)
	NewHTTPHandler(authSvc, f.svc).RegisterRoutes(mux)

	c := &apiClient{t: t, mux: mux}
	rec := c.do(http.MethodPost, "/api/auth/guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var guest struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guest))
	c.token = guest.SessionToken
	return c
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) View {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHTTP_GuestNegotiation(t *testing.T) {
	c := newAPI(t, Config{DailyLimit: true, MaxTurns: 2})

	started := decodeView(t, c.do(http.MethodPost, "/api/negotiation/start", ""))
	require.NotEmpty(t, started.AttemptID)
	base := "/api/negotiation/" + started.AttemptID

	rec := c.do(http.MethodGet, base+"/debrief", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	after := decodeView(t, c.do(http.MethodPost, base+"/say", `{"text":"What do you need right now?"}`))
	assert.True(t, after.GameOver)
	require.NotNil(t, after.Score)

	got := decodeView(t, c.do(http.MethodGet, base, ""))
	assert.Equal(t, after.Transcript, got.Transcript)

	rec = c.do(http.MethodPost, base+"/say", `{"text":"Hello?"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already ended")

	rec = c.do(http.MethodPost, "/api/negotiation/start", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already played today")

	rec = c.do(http.MethodGet, base+"/debrief", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stars":`)

	rec = c.do(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"played_today":true`)
}

func TestHTTP_Errors(t *testing.T) {
	c := newAPI(t, Config{DailyLimit: true})

	rec := c.do(http.MethodGet, "/api/negotiation/start", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = c.do(http.MethodGet, "/api/negotiation/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	started := decodeView(t, c.do(http.MethodPost, "/api/negotiation/start", ""))
	rec = c.do(http.MethodPost, "/api/negotiation/"+started.AttemptID+"/say", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.do(http.MethodPost, "/api/negotiation/"+started.AttemptID+"/say", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/scenarios/daily", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	c.token = ""
	rec = c.do(http.MethodPost, "/api/negotiation/start", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
