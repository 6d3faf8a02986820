package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/hfarrukh/solaradvisor/internal/extract"
	"github.com/hfarrukh/solaradvisor/internal/notification"
	"github.com/hfarrukh/solaradvisor/internal/solar"
)

func isParseFailure(err error) bool {
	return errors.Is(err, extract.ErrParseFailure)
}

type analyzeRequest struct {
	BillText string            `json:"billText"`
	Fields   *solar.BillFields `json:"fields,omitempty"`
	Budget   float64           `json:"budget,omitempty"`
}

type recommendRequest struct {
	Fields solar.BillFields `json:"fields"`
	Budget float64          `json:"budget,omitempty"`
}

func (s *Server) registerAnalysisRoutes(mux *http.ServeMux) {
	// The compute endpoints stay public; only history reads are gated.
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/recommend", s.handleRecommend)
	mux.Handle("/api/v1/analyses", s.protect("analyses", "read", http.HandlerFunc(s.handleListAnalyses)))
	mux.Handle("/api/v1/analyses/", s.protect("analyses", "read", http.HandlerFunc(s.handleAnalysisByID)))
}

// handleAnalyze extracts bill fields from free text via the LLM and
// returns a stored analysis.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.BillText) == "" {
		// Without text there is nothing to extract, but supplied fields
		// can still feed the calculator directly.
		if req.Fields == nil {
			writeError(w, http.StatusBadRequest, "billText or fields is required")
			return
		}
		a, err := s.advisor.AnalyzeFields(r.Context(), *req.Fields, req.Budget)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	a, err := s.advisor.AnalyzeText(r.Context(), req.BillText, req.Fields, req.Budget)
	if err != nil {
		status, msg := statusForAnalyzeError(err)
		log.Printf("analyze failed: %v", err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// handleRecommend runs the calculator on caller-supplied fields,
// skipping the LLM entirely.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req recommendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := s.advisor.AnalyzeFields(r.Context(), req.Fields, req.Budget)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	list, err := s.advisor.ListAnalyses(r.Context(), limit)
	if err != nil {
		log.Printf("list analyses failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// handleAnalysisByID serves /api/v1/analyses/{id} and the email action
// at /api/v1/analyses/{id}/email.
func (s *Server) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/analyses/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.getAnalysis(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "email":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.emailAnalysis(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	a, err := s.advisor.GetAnalysis(r.Context(), id)
	if err != nil {
		log.Printf("get analysis %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) emailAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		To string `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil || req.To == "" {
		writeError(w, http.StatusBadRequest, "to address is required")
		return
	}

	a, err := s.advisor.GetAnalysis(r.Context(), id)
	if err != nil {
		log.Printf("get analysis %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	subject, body, err := notification.RenderAnalysisReport(*a)
	if err != nil {
		log.Printf("render report for %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.notif.SendEmail(r.Context(), req.To, subject, body); err != nil {
		log.Printf("email analysis %s failed: %v", id, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
