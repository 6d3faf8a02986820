package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/hfarrukh/solaradvisor/internal/advisor"
	"github.com/hfarrukh/solaradvisor/internal/solar"
)

func fptr(v float64) *float64 { return &v }

func TestRenderAnalysisReport(t *testing.T) {
	a := advisor.Analysis{
		ID:        "abc-123",
		Source:    "fields",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Recommendation: solar.Recommendation{
			SuggestedSystemKw:       fptr(3.75),
			EstMonthlyProductionKwh: fptr(600),
			EstMonthlySavings:       fptr(18000),
			ApproxInstallCost:       fptr(675000),
			PaybackYears:            fptr(3.13),
			CO2ReductionTonsPerYear: fptr(3.24),
			PercentOffset:           fptr(100),
			Notes:                   []string{},
		},
	}

	subject, body, err := RenderAnalysisReport(a)
	if err != nil {
		t.Fatalf("RenderAnalysisReport: %v", err)
	}
	if subject != "Your solar recommendation: 3.75 kW system" {
		t.Errorf("unexpected subject %q", subject)
	}
	for _, want := range []string{"abc-123", "3.75", "675000", "3.13 years", "100.0%"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderAnalysisReportDegraded(t *testing.T) {
	a := advisor.Analysis{
		ID:        "deg-1",
		Source:    "llm",
		CreatedAt: time.Now(),
		Recommendation: solar.Recommendation{
			Notes: []string{solar.NoteMissingInputs},
		},
	}

	subject, body, err := RenderAnalysisReport(a)
	if err != nil {
		t.Fatalf("RenderAnalysisReport: %v", err)
	}
	if subject != "Your solar recommendation" {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "could not be computed") {
		t.Errorf("expected degraded body, got %q", body)
	}
	if !strings.Contains(body, solar.NoteMissingInputs) {
		t.Errorf("expected note in body")
	}
}
