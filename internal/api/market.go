package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/hfarrukh/solaradvisor/internal/storage"
	"github.com/hfarrukh/solaradvisor/internal/tariff"
)

func (s *Server) registerMarketRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.Handle("/api/v1/market/refresh", s.protect("market", "write", http.HandlerFunc(s.handleMarketRefresh)))
	mux.Handle("/api/v1/tariff", s.protect("tariff", "read", http.HandlerFunc(s.handleTariff)))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.advisor.Market())
}

func (s *Server) handleTariff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sched := s.advisor.Schedule()
	if sched == nil {
		writeError(w, http.StatusNotFound, "no tariff schedule loaded")
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

type refreshResponse struct {
	Source string           `json:"source"`
	PDFURL string           `json:"pdf_url,omitempty"`
	Path   string           `json:"path,omitempty"`
	Status string           `json:"status"`
	Error  string           `json:"error,omitempty"`
	Bands  int              `json:"bands,omitempty"`
	Sched  *tariff.Schedule `json:"schedule,omitempty"`
}

// handleMarketRefresh re-downloads and re-parses every tariff source
// on demand, outside the worker's schedule.
func (s *Server) handleMarketRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var results []refreshResponse
	for _, src := range tariff.Sources() {
		res := refreshResponse{Source: src.Key, Status: "ok"}

		pdfURL, err := tariff.RefreshSourcePDF(src, src.DefaultPDFPath)
		if err != nil {
			log.Printf("refresh source %s: fetch failed: %v", src.Key, err)
			res.Status = "error"
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.PDFURL = pdfURL
		res.Path = src.DefaultPDFPath

		sched, err := tariff.ParseSourcePDF(src.Key, src.DefaultPDFPath)
		if err != nil {
			log.Printf("refresh source %s: parse failed: %v", src.Key, err)
			res.Status = "error"
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		sched.SourceURL = pdfURL
		res.Bands = len(sched.Bands)
		res.Sched = sched

		if s.store != nil {
			payload, err := json.Marshal(sched)
			if err == nil {
				err = s.store.SaveTariffSnapshot(r.Context(), storage.TariffSnapshot{
					Source:    src.Key,
					Payload:   payload,
					FetchedAt: time.Now(),
				})
			}
			if err != nil {
				log.Printf("refresh source %s: save snapshot failed: %v", src.Key, err)
			}
		}

		if src.Key == "nepra" {
			s.advisor.SetSchedule(sched)
		}

		results = append(results, res)
	}

	writeJSON(w, http.StatusOK, results)
}
