package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/hfarrukh/solaradvisor/internal/extract"
	"github.com/hfarrukh/solaradvisor/internal/llm"
	"github.com/hfarrukh/solaradvisor/internal/solar"
	"github.com/hfarrukh/solaradvisor/internal/storage"
	"github.com/hfarrukh/solaradvisor/internal/tariff"
)

type fakeClient struct {
	reply string
	err   error
}

func (f fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f fakeClient) Name() string { return "fake" }

func fptr(v float64) *float64 { return &v }

func TestAnalyzeFields(t *testing.T) {
	store := storage.NewMemory()
	svc := New(solar.DefaultMarket(), store, nil, tariff.DefaultSchedule(), "")

	loc := "karachi"
	a, err := svc.AnalyzeFields(context.Background(), solar.BillFields{
		UnitsKWh:    fptr(600),
		CostPerUnit: fptr(30),
		Location:    &loc,
	}, 0)
	if err != nil {
		t.Fatalf("AnalyzeFields: %v", err)
	}
	if a.Source != "fields" {
		t.Errorf("expected source fields, got %q", a.Source)
	}
	rec := a.Recommendation
	if rec.SuggestedSystemKw == nil || *rec.SuggestedSystemKw != 3.75 {
		t.Fatalf("expected 3.75 kW, got %v", rec.SuggestedSystemKw)
	}
	if rec.ApproxInstallCost == nil || *rec.ApproxInstallCost != 675000 {
		t.Errorf("expected install cost 675000, got %v", rec.ApproxInstallCost)
	}

	got, err := svc.GetAnalysis(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Fatalf("expected persisted analysis %s back, got %+v", a.ID, got)
	}

	list, err := svc.ListAnalyses(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 analysis, got %d", len(list))
	}
}

func TestAnalyzeTextHappyPath(t *testing.T) {
	client := fakeClient{reply: `{"unitsKWh": 600, "totalCost": 18000, "costPerUnit": 30, "location": "karachi", "billingDate": null, "tariff": null, "peakDemandKw": null}`}
	svc := New(solar.DefaultMarket(), storage.NewMemory(), client, tariff.DefaultSchedule(), "gemini-2.0-flash")

	a, err := svc.AnalyzeText(context.Background(), "KE bill, 600 units, Rs 18000", nil, 0)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if a.Source != "llm" || a.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected source/model: %q %q", a.Source, a.Model)
	}
	if a.Bill == nil || a.Bill.UnitsKWh == nil || *a.Bill.UnitsKWh != 600 {
		t.Fatalf("expected extracted unitsKWh 600, got %+v", a.Bill)
	}
	if a.Recommendation.PaybackYears == nil || *a.Recommendation.PaybackYears != 3.13 {
		t.Errorf("expected payback 3.13, got %v", a.Recommendation.PaybackYears)
	}
}

func TestAnalyzeTextMalformedReply(t *testing.T) {
	client := fakeClient{reply: "I cannot read this bill, sorry."}
	svc := New(solar.DefaultMarket(), nil, client, nil, "")

	_, err := svc.AnalyzeText(context.Background(), "some bill", nil, 0)
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if !errors.Is(err, extract.ErrParseFailure) {
		t.Errorf("expected ErrParseFailure, got %v", err)
	}
}

func TestAnalyzeTextDisabledClient(t *testing.T) {
	svc := New(solar.DefaultMarket(), nil, nil, nil, "")

	_, err := svc.AnalyzeText(context.Background(), "some bill", nil, 0)
	if !errors.Is(err, llm.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestAnalyzeTextEmptyInput(t *testing.T) {
	svc := New(solar.DefaultMarket(), nil, fakeClient{reply: "{}"}, nil, "")

	if _, err := svc.AnalyzeText(context.Background(), "   ", nil, 0); err == nil {
		t.Fatal("expected error for empty bill text")
	}
}

func TestImplausibleRateNote(t *testing.T) {
	svc := New(solar.DefaultMarket(), nil, nil, tariff.DefaultSchedule(), "")

	a, err := svc.AnalyzeFields(context.Background(), solar.BillFields{
		UnitsKWh:    fptr(600),
		CostPerUnit: fptr(500),
	}, 0)
	if err != nil {
		t.Fatalf("AnalyzeFields: %v", err)
	}
	found := false
	for _, n := range a.Recommendation.Notes {
		if n == noteImplausibleRate {
			found = true
		}
	}
	if !found {
		t.Errorf("expected implausible rate note, notes=%v", a.Recommendation.Notes)
	}
}

func TestOverrideFillsGaps(t *testing.T) {
	client := fakeClient{reply: `{"unitsKWh": 400, "totalCost": null, "costPerUnit": null, "location": null, "billingDate": null, "tariff": null, "peakDemandKw": null}`}
	svc := New(solar.DefaultMarket(), nil, client, nil, "")

	loc := "lahore"
	a, err := svc.AnalyzeText(context.Background(), "bill", &solar.BillFields{
		CostPerUnit: fptr(40),
		Location:    &loc,
	}, 0)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	rec := a.Recommendation
	if rec.EstMonthlySavings == nil {
		t.Fatal("expected full recommendation with override cost per unit")
	}
	// 400/150 = 2.667 kW, production 400, savings 400*40 = 16000
	if *rec.EstMonthlySavings != 16000 {
		t.Errorf("expected savings 16000, got %v", *rec.EstMonthlySavings)
	}

	// The reported bill is the merged view, so override-filled gaps
	// show up alongside the extracted values.
	if a.Bill == nil || a.Bill.UnitsKWh == nil || *a.Bill.UnitsKWh != 400 {
		t.Fatalf("expected merged unitsKWh 400, got %+v", a.Bill)
	}
	if a.Bill.CostPerUnit == nil || *a.Bill.CostPerUnit != 40 {
		t.Errorf("override cost per unit missing from merged bill: %+v", a.Bill)
	}
	if a.Bill.Location == nil || *a.Bill.Location != "lahore" {
		t.Errorf("override location missing from merged bill: %+v", a.Bill)
	}
}

func TestScheduleSwap(t *testing.T) {
	svc := New(solar.DefaultMarket(), nil, nil, nil, "")
	if svc.Schedule() != nil {
		t.Fatal("expected no schedule at construction")
	}

	sched := tariff.DefaultSchedule()
	svc.SetSchedule(sched)
	if svc.Schedule() != sched {
		t.Fatal("SetSchedule did not take effect")
	}

	// With a schedule in place the plausibility note fires.
	a, err := svc.AnalyzeFields(context.Background(), solar.BillFields{
		UnitsKWh:    fptr(600),
		CostPerUnit: fptr(500),
	}, 0)
	if err != nil {
		t.Fatalf("AnalyzeFields: %v", err)
	}
	found := false
	for _, n := range a.Recommendation.Notes {
		if n == noteImplausibleRate {
			found = true
		}
	}
	if !found {
		t.Errorf("expected implausible rate note after SetSchedule, notes=%v", a.Recommendation.Notes)
	}
}
