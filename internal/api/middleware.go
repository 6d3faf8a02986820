package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hfarrukh/solaradvisor/internal/metrics"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// corsMiddleware applies the configured allowed origins. origins is a
// comma-separated list; "*" allows everything.
func corsMiddleware(origins string, next http.Handler) http.Handler {
	allowed := strings.Split(origins, ",")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, a := range allowed {
				a = strings.TrimSpace(a)
				if a == "*" || a == origin {
					w.Header().Set("Access-Control-Allow-Origin", a)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
					break
				}
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// instrument records request counts, durations and error codes per path.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		path := metricPath(r.URL.Path)
		metrics.RequestsTotal.WithLabelValues(path).Inc()
		metrics.RequestDurationSeconds.WithLabelValues(path).Observe(time.Since(start).Seconds())
		if sr.status >= 400 {
			metrics.RequestErrorsTotal.WithLabelValues(path, fmt.Sprintf("%d", sr.status)).Inc()
		}
	})
}

// metricPath collapses per-resource paths so the label set stays small.
func metricPath(p string) string {
	if strings.HasPrefix(p, "/api/v1/analyses/") {
		if strings.HasSuffix(p, "/email") {
			return "/api/v1/analyses/{id}/email"
		}
		return "/api/v1/analyses/{id}"
	}
	if strings.HasPrefix(p, "/api/v1/auth/tokens/") {
		return "/api/v1/auth/tokens/{id}"
	}
	if strings.HasPrefix(p, "/ui/") {
		return "/ui/"
	}
	if strings.HasPrefix(p, "/docs/") {
		return "/docs/"
	}
	return p
}
