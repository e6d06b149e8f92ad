package auth

import (
	"errors"
	"log"
	"net/http"

	"negotiator-lite/apps/server/internal/httpx"
)

type HTTPHandler struct {
	manager Service
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Account
	SessionToken string `json:"session_token"`
}

func NewHTTPHandler(manager Service) *HTTPHandler {
	return &HTTPHandler{manager: manager}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/guest", h.handleGuest)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/me", h.handleMe)
}

// Resolve returns the account behind the request's bearer token.
func Resolve(svc Service, r *http.Request) (Account, bool) {
	token := httpx.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return Account{}, false
	}
	return svc.ResolveSession(r.Context(), token)
}

func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, token, err := h.manager.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrInvalidPassword):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("[Auth] Register failed: %v", err)
			httpx.WriteError(w, http.StatusInternalServerError, "register failed")
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse{Account: acct, SessionToken: token})
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, token, err := h.manager.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		log.Printf("[Auth] Login failed: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse{Account: acct, SessionToken: token})
}

func (h *HTTPHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	acct, token, err := h.manager.Guest(r.Context())
	if err != nil {
		log.Printf("[Auth] Guest session failed: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "guest session failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse{Account: acct, SessionToken: token})
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	token := httpx.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing session token")
		return
	}
	h.manager.Logout(r.Context(), token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}

	if httpx.BearerToken(r.Header.Get("Authorization")) == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing session token")
		return
	}
	acct, ok := Resolve(h.manager, r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, acct)
}
