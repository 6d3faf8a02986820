// Package api exposes the recommendation engine over HTTP: analysis
// endpoints, market and tariff data, auth, email settings, health
// probes, metrics, the web UI and the OpenAPI docs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hfarrukh/solaradvisor/internal/advisor"
	"github.com/hfarrukh/solaradvisor/internal/api/swagger"
	"github.com/hfarrukh/solaradvisor/internal/auth"
	"github.com/hfarrukh/solaradvisor/internal/config"
	"github.com/hfarrukh/solaradvisor/internal/llm"
	"github.com/hfarrukh/solaradvisor/internal/notification"
	"github.com/hfarrukh/solaradvisor/internal/solar"
	"github.com/hfarrukh/solaradvisor/internal/storage"
	"github.com/hfarrukh/solaradvisor/internal/tariff"
	"github.com/hfarrukh/solaradvisor/internal/ui"
)

type Server struct {
	cfg     config.Config
	store   storage.Storage
	advisor *advisor.Service
	auth    *auth.Service
	notif   *notification.Service
}

// New wires the full server from config: storage, LLM client, tariff
// schedule, auth and notifications.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	st, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN, cfg.AutoMigrate)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	authSvc, err := auth.NewService(st)
	if err != nil {
		return nil, fmt.Errorf("init auth: %w", err)
	}

	market := solar.MarketFromEnv()
	if err := market.Validate(); err != nil {
		return nil, fmt.Errorf("market defaults: %w", err)
	}

	schedule := loadSchedule(ctx, st, cfg)
	svc := advisor.New(market, st, llm.FromConfig(cfg), schedule, cfg.LLMModel)

	return &Server{
		cfg:     cfg,
		store:   st,
		advisor: svc,
		auth:    authSvc,
		notif:   notification.NewService(st),
	}, nil
}

// NewWithDeps builds a Server from pre-built dependencies, used by tests.
// The tariff schedule lives on the advisor.
func NewWithDeps(cfg config.Config, st storage.Storage, svc *advisor.Service, authSvc *auth.Service, notifSvc *notification.Service) *Server {
	return &Server{cfg: cfg, store: st, advisor: svc, auth: authSvc, notif: notifSvc}
}

func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// loadSchedule prefers the latest stored snapshot, then a local PDF,
// then the built-in slab table.
func loadSchedule(ctx context.Context, st storage.Storage, cfg config.Config) *tariff.Schedule {
	if st != nil {
		snap, err := st.GetTariffSnapshot(ctx, "nepra")
		if err != nil {
			log.Printf("tariff: load snapshot failed: %v", err)
		} else if snap != nil {
			var sched tariff.Schedule
			if err := json.Unmarshal(snap.Payload, &sched); err == nil && len(sched.Bands) > 0 {
				log.Printf("tariff: using stored snapshot from %s", snap.FetchedAt.Format("2006-01-02"))
				return &sched
			}
		}
	}

	if sched, err := tariff.ParseSourcePDF("nepra", cfg.TariffPDFPath); err == nil {
		log.Printf("tariff: parsed schedule from %s", cfg.TariffPDFPath)
		return sched
	}

	log.Printf("tariff: using built-in default schedule")
	return tariff.DefaultSchedule()
}

// NewMux constructs the HTTP mux with all routes registered.
func (s *Server) NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.store != nil {
			if err := s.store.Ping(r.Context()); err != nil {
				log.Printf("readyz: db ping failed: %v", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})

	s.registerAnalysisRoutes(mux)
	s.registerMarketRoutes(mux)
	s.registerAuthRoutes(mux)
	s.registerNotificationRoutes(mux)

	mux.Handle("/docs/", swagger.Handler())
	mux.Handle("/ui/", http.StripPrefix("/ui/", ui.Handler()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	return mux
}

// Handler wraps the mux with CORS and request metrics.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.cfg.CORSOrigins, instrument(s.NewMux()))
}

// protect enforces token auth and a casbin grant when auth is enabled.
func (s *Server) protect(obj, act string, h http.Handler) http.Handler {
	if !s.cfg.AuthEnabled || s.auth == nil {
		return h
	}
	return s.auth.Middleware(s.auth.RequirePermission(obj, act, h))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response failed: %v", err)
	}
}

type apiError struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// statusForAnalyzeError maps service failures onto response codes.
func statusForAnalyzeError(err error) (int, string) {
	switch {
	case errors.Is(err, llm.ErrDisabled):
		return http.StatusServiceUnavailable, "no language model is configured, use the recommend endpoint"
	case errors.Is(err, llm.ErrUnavailable):
		// Provider detail stays in the logs.
		return http.StatusBadGateway, "the language model request failed"
	case isParseFailure(err):
		return http.StatusBadGateway, "the language model reply could not be parsed as bill data"
	default:
		return http.StatusBadRequest, err.Error()
	}
}
