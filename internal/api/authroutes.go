package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/hfarrukh/solaradvisor/internal/auth"
	"github.com/hfarrukh/solaradvisor/internal/storage"
)

func (s *Server) registerAuthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/auth/login", s.handleLogin)
	mux.Handle("/api/v1/auth/tokens", s.protect("tokens", "write", http.HandlerFunc(s.handleCreateToken)))
	mux.Handle("/api/v1/auth/tokens/", s.protect("tokens", "write", http.HandlerFunc(s.handleDeleteToken)))
}

// handleLogin exchanges credentials for a fresh API token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth is not configured")
		return
	}

	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		ExpiresIn string `json:"expiresIn,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	expiresAt, err := auth.ParseExpirationDuration(req.ExpiresIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, raw, err := s.auth.CreateToken(r.Context(), u.ID, "login", u.Role, expiresAt)
	if err != nil {
		log.Printf("create login token for %s failed: %v", u.Username, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     raw,
		"tokenId":   tok.ID,
		"role":      tok.Role,
		"expiresAt": tok.ExpiresAt,
	})
}

// handleCreateToken mints a named API token for automation.
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth is not configured")
		return
	}

	var req struct {
		Name      string `json:"name"`
		Role      string `json:"role"`
		ExpiresIn string `json:"expiresIn,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Role == "" {
		req.Role = "viewer"
	}

	userID := "system"
	if tok, ok := r.Context().Value(auth.TokenContextKey).(*storage.Token); ok {
		userID = tok.UserID
	}

	expiresAt, err := auth.ParseExpirationDuration(req.ExpiresIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, raw, err := s.auth.CreateToken(r.Context(), userID, req.Name, req.Role, expiresAt)
	if err != nil {
		log.Printf("create token %q failed: %v", req.Name, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     raw,
		"tokenId":   tok.ID,
		"name":      tok.Name,
		"role":      tok.Role,
		"expiresAt": tok.ExpiresAt,
	})
}

func (s *Server) handleDeleteToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth is not configured")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/auth/tokens/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "token id is required")
		return
	}

	if err := s.auth.DeleteToken(r.Context(), id); err != nil {
		log.Printf("delete token %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
