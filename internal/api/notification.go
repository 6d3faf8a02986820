package api

import (
	"net/http"

	"github.com/hfarrukh/solaradvisor/internal/storage"
)

func (s *Server) registerNotificationRoutes(mux *http.ServeMux) {
	mux.Handle("/api/v1/settings/email", s.protect("settings", "write", http.HandlerFunc(s.handleEmailSettings)))
	mux.Handle("/api/v1/settings/email/test", s.protect("settings", "write", http.HandlerFunc(s.handleEmailTest)))
}

func (s *Server) handleEmailSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.notif.GetConfig(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if cfg == nil {
			cfg = &storage.EmailConfig{}
		}
		// Never echo secrets back.
		cfg.Password = ""
		cfg.APIKey = ""
		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		var req storage.EmailConfig
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.notif.SaveConfig(r.Context(), req); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleEmailTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Config storage.EmailConfig `json:"config"`
		To     string              `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil || req.To == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.notif.TestConfig(r.Context(), req.Config, req.To); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
}
