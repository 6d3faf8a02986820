package solar

import "math"

// Advisory note strings shared by handlers and tests.
const (
	NoteMissingInputs = "cannot compute: missing consumption or unit cost"
	NoteBudgetLimited = "budget insufficient for full offset, suggesting partial system"
)

// MinSystemKw is the smallest system worth suggesting when a budget
// constrains sizing below the full-offset requirement.
const MinSystemKw = 0.5

// CostBreakdown is the three-way split of the total install cost.
type CostBreakdown struct {
	Panels             float64 `json:"panels"`
	InverterAndBalance float64 `json:"inverterAndBalance"`
	Installation       float64 `json:"installation"`
}

// Recommendation is a sized photovoltaic system suggestion. All numeric
// fields are null on the degraded path; Notes always explains why.
type Recommendation struct {
	SuggestedSystemKw       *float64       `json:"suggestedSystemKw"`
	EstMonthlyProductionKwh *float64       `json:"estMonthlyProductionKwh"`
	EstMonthlySavings       *float64       `json:"estMonthlySavings"`
	ApproxInstallCost       *float64       `json:"approxInstallCost"`
	CostBreakdown           *CostBreakdown `json:"costBreakdown"`
	PaybackYears            *float64       `json:"paybackYears"`
	CO2ReductionTonsPerYear *float64       `json:"co2ReductionTonsPerYear"`
	PercentOffset           *float64       `json:"percentOffset"`
	Notes                   []string       `json:"notes"`
}

// Recommend sizes a system for the canonical input against the market
// table. A budget of zero or less means no budget was supplied. It is a
// pure function and never fails: missing or non-positive consumption or
// unit cost produce the degraded result instead.
func Recommend(in CanonicalInput, budget float64, m MarketDefaults) Recommendation {
	if in.UnitsKWh == nil || *in.UnitsKWh <= 0 || in.CostPerUnit == nil || *in.CostPerUnit <= 0 {
		return Recommendation{Notes: []string{NoteMissingInputs}}
	}
	units := *in.UnitsKWh
	costPerUnit := *in.CostPerUnit

	var notes []string
	prodPerKw := Yield(in.Location, m)

	// System size needed to fully offset monthly consumption.
	requiredKw := units / prodPerKw

	finalKw := requiredKw
	if budget > 0 {
		maxKwByBudget := budget / m.CostPerKw
		if maxKwByBudget < requiredKw {
			finalKw = math.Max(MinSystemKw, maxKwByBudget)
			notes = append(notes, NoteBudgetLimited)
		}
	}

	hardwareCost := finalKw * m.CostPerKw
	breakdown := CostBreakdown{
		Panels:             math.Round(hardwareCost * m.InstallCostSplit.Panels),
		InverterAndBalance: math.Round(hardwareCost * m.InstallCostSplit.InverterAndBalance),
		Installation:       math.Round(hardwareCost * m.InstallCostSplit.Installation),
	}
	// Component-wise rounding can drift from hardwareCost by a few whole
	// units; the rounded sum is the figure we report.
	totalInstallCost := breakdown.Panels + breakdown.InverterAndBalance + breakdown.Installation

	estProduction := finalKw * prodPerKw

	// Savings are capped at actual consumption; overproduction is not
	// credited (no net metering modeled).
	estSavings := math.Round(math.Min(estProduction, units) * costPerUnit)

	var payback *float64
	if estSavings > 0 {
		v := round2(totalInstallCost / (estSavings * 12))
		payback = &v
	}

	co2Tons := round3(estProduction * 12 * m.EmissionFactorKgPerKwh / 1000)
	percentOffset := round1(estProduction / units * 100)

	if notes == nil {
		notes = []string{}
	}
	return Recommendation{
		SuggestedSystemKw:       &finalKw,
		EstMonthlyProductionKwh: &estProduction,
		EstMonthlySavings:       &estSavings,
		ApproxInstallCost:       &totalInstallCost,
		CostBreakdown:           &breakdown,
		PaybackYears:            payback,
		CO2ReductionTonsPerYear: &co2Tons,
		PercentOffset:           &percentOffset,
		Notes:                   notes,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
