package game

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"negotiator-lite/apps/server/internal/auth"
	"negotiator-lite/apps/server/internal/httpx"
	"negotiator-lite/negotiation"
)

const negotiationPrefix = "/api/negotiation/"

type HTTPHandler struct {
	auth auth.Service
	game *Service
}

type sayRequest struct {
	Text string `json:"text"`
}

func NewHTTPHandler(authService auth.Service, game *Service) *HTTPHandler {
	return &HTTPHandler{auth: authService, game: game}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/negotiation/start", h.handleStart)
	mux.HandleFunc(negotiationPrefix, h.handleAttempt)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/scenarios/daily", h.handleDaily)
}

func (h *HTTPHandler) player(w http.ResponseWriter, r *http.Request) (auth.Account, bool) {
	acct, ok := auth.Resolve(h.auth, r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid session token")
	}
	return acct, ok
}

func (h *HTTPHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	view, err := h.game.Start(ctx, player)
	if err != nil {
		writeGameError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *HTTPHandler) handleAttempt(w http.ResponseWriter, r *http.Request) {
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	path := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, negotiationPrefix))
	parts := strings.Split(path, "/")
	id := strings.TrimSpace(parts[0])
	if id == "" {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case len(parts) == 1:
		if !httpx.RequireMethod(w, r, http.MethodGet) {
			return
		}
		view, err := h.game.Get(r.Context(), player, id)
		if err != nil {
			writeGameError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, view)

	case len(parts) == 2 && parts[1] == "say":
		if !httpx.RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req sayRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httpx.WriteError(w, http.StatusBadRequest, "text is required")
			return
		}
		// The suspect reply carries its own timeout inside the director.
		view, err := h.game.Say(r.Context(), player, id, req.Text)
		if err != nil {
			writeGameError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, view)

	case len(parts) == 2 && parts[1] == "debrief":
		if !httpx.RequireMethod(w, r, http.MethodGet) {
			return
		}
		d, err := h.game.Debrief(r.Context(), player, id)
		if err != nil {
			writeGameError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, d)

	default:
		httpx.WriteError(w, http.StatusNotFound, "not found")
	}
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	st, err := h.game.Stats(ctx, player)
	if err != nil {
		writeGameError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) handleDaily(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	sc, err := h.game.DailyScenario()
	if err != nil {
		writeGameError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sc)
}

// StatusFor maps service errors to an HTTP status and a player-facing message.
func StatusFor(err error) (int, string) {
	var te *negotiation.TransitionError
	switch {
	case errors.As(err, &te):
		return http.StatusConflict, te.Message
	case errors.Is(err, ErrAlreadyPlayed):
		return http.StatusConflict, "You have already played today. Come back tomorrow!"
	case errors.Is(err, ErrNotFinished):
		return http.StatusConflict, "The negotiation is still in progress."
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "attempt not found"
	case errors.Is(err, ErrNoScenario):
		return http.StatusServiceUnavailable, "no scenario available"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeGameError(w http.ResponseWriter, err error) {
	status, msg := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[Game] Request failed: %v", err)
	}
	httpx.WriteError(w, status, msg)
}
