// Package advisor ties bill extraction, normalization and the
// recommendation calculator together and persists the results.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hfarrukh/solaradvisor/internal/extract"
	"github.com/hfarrukh/solaradvisor/internal/llm"
	"github.com/hfarrukh/solaradvisor/internal/metrics"
	"github.com/hfarrukh/solaradvisor/internal/solar"
	"github.com/hfarrukh/solaradvisor/internal/storage"
	"github.com/hfarrukh/solaradvisor/internal/tariff"
)

const noteImplausibleRate = "unit cost is outside the expected range for this consumption, verify the bill"

// Analysis is a completed recommendation run, as stored and returned
// by the API.
type Analysis struct {
	ID             string                `json:"id"`
	Source         string                `json:"source"`
	Model          string                `json:"model,omitempty"`
	Bill           *solar.BillFields     `json:"bill"`
	Recommendation solar.Recommendation  `json:"recommendation"`
	CreatedAt      time.Time             `json:"createdAt"`
}

type Service struct {
	market solar.MarketDefaults
	store  storage.Storage
	client llm.Client
	model  string

	// schedule is replaced at runtime by market refreshes while
	// requests read it.
	mu       sync.RWMutex
	schedule *tariff.Schedule
}

// New builds a Service. store and client may be nil; a nil store skips
// persistence and a nil client disables text analysis.
func New(market solar.MarketDefaults, store storage.Storage, client llm.Client, schedule *tariff.Schedule, model string) *Service {
	if client == nil {
		client = llm.Disabled{}
	}
	return &Service{market: market, store: store, client: client, schedule: schedule, model: model}
}

func (s *Service) Market() solar.MarketDefaults { return s.market }

// Schedule returns the active tariff schedule, nil when none is loaded.
func (s *Service) Schedule() *tariff.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// SetSchedule swaps in a freshly parsed schedule.
func (s *Service) SetSchedule(sched *tariff.Schedule) {
	s.mu.Lock()
	s.schedule = sched
	s.mu.Unlock()
}

// AnalyzeText extracts bill fields from free text via the LLM, then
// computes a recommendation. Override fields fill gaps the extraction
// leaves; extracted values win on conflict.
func (s *Service) AnalyzeText(ctx context.Context, billText string, override *solar.BillFields, budget float64) (*Analysis, error) {
	if strings.TrimSpace(billText) == "" {
		return nil, fmt.Errorf("bill text is empty")
	}

	reply, err := s.client.Complete(ctx, llm.BuildBillPrompt(billText))
	if err != nil {
		return nil, err
	}

	fields, err := extract.BillFields(reply)
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, "llm", s.model, fields, override, budget), nil
}

// AnalyzeFields computes a recommendation from caller-supplied fields,
// bypassing the LLM entirely.
func (s *Service) AnalyzeFields(ctx context.Context, fields solar.BillFields, budget float64) (*Analysis, error) {
	return s.finish(ctx, "fields", "", &fields, nil, budget), nil
}

func (s *Service) finish(ctx context.Context, source, model string, parsed, override *solar.BillFields, budget float64) *Analysis {
	in := solar.Normalize(parsed, override)
	rec := solar.Recommend(in, budget, s.market)

	if sched := s.Schedule(); sched != nil && in.UnitsKWh != nil && in.CostPerUnit != nil {
		if !sched.PlausibleUnitRate(*in.CostPerUnit, *in.UnitsKWh) {
			rec.Notes = append(rec.Notes, noteImplausibleRate)
		}
	}
	for _, n := range rec.Notes {
		if n == solar.NoteMissingInputs {
			metrics.DegradedResultsTotal.Inc()
			break
		}
	}

	a := &Analysis{
		ID:             uuid.NewString(),
		Source:         source,
		Model:          model,
		Bill:           solar.MergeBillFields(parsed, override),
		Recommendation: rec,
		CreatedAt:      time.Now().UTC(),
	}
	s.persist(ctx, a, in.Location)
	return a
}

// persist is best effort. A storage failure must not fail the request.
func (s *Service) persist(ctx context.Context, a *Analysis, location string) {
	if s.store == nil {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		log.Printf("advisor: marshal analysis %s: %v", a.ID, err)
		return
	}
	err = s.store.SaveAnalysis(ctx, storage.Analysis{
		ID:        a.ID,
		Source:    a.Source,
		Location:  location,
		Payload:   payload,
		CreatedAt: a.CreatedAt,
	})
	if err != nil {
		log.Printf("advisor: save analysis %s: %v", a.ID, err)
	}
}

// GetAnalysis returns nil when the id is unknown.
func (s *Service) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	if s.store == nil {
		return nil, nil
	}
	rec, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	var a Analysis
	if err := json.Unmarshal(rec.Payload, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *Service) ListAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	if s.store == nil {
		return []Analysis{}, nil
	}
	recs, err := s.store.ListAnalyses(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Analysis, 0, len(recs))
	for _, rec := range recs {
		var a Analysis
		if err := json.Unmarshal(rec.Payload, &a); err != nil {
			log.Printf("advisor: skipping undecodable analysis %s: %v", rec.ID, err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
