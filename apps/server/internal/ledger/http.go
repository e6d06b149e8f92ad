package ledger

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"negotiator-lite/apps/server/internal/httpx"
)

type HTTPHandler struct {
	ledger Service
	now    func() time.Time
}

type leaderboardResponse struct {
	Day     string  `json:"day"`
	Daily   []Entry `json:"daily"`
	AllTime []Entry `json:"all_time"`
}

func NewHTTPHandler(ledgerService Service) *HTTPHandler {
	return &HTTPHandler{ledger: ledgerService, now: time.Now}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
}

func (h *HTTPHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	day := strings.TrimSpace(r.URL.Query().Get("day"))
	if day == "" {
		day = h.now().UTC().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, day); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	daily, err := h.ledger.DailyTop(ctx, day, limit)
	if err != nil {
		log.Printf("[Ledger] Daily top failed: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "query leaderboard failed")
		return
	}
	allTime, err := h.ledger.AllTimeTop(ctx, limit)
	if err != nil {
		log.Printf("[Ledger] All-time top failed: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "query leaderboard failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, leaderboardResponse{Day: day, Daily: daily, AllTime: allTime})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTopLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultTopLimit
	}
	return clampLimit(n)
}
