package solar

import "math"

// BillFields is the untrusted, partially-null record describing one monthly
// electricity bill. It may come from the LLM extraction adapter or directly
// from the caller; every field is optional.
type BillFields struct {
	UnitsKWh    *float64 `json:"unitsKWh"`
	TotalCost   *float64 `json:"totalCost"`
	CostPerUnit *float64 `json:"costPerUnit"`
	Location    *string  `json:"location"`

	// Passthrough metadata, not used by the calculator.
	BillingDate  *string  `json:"billingDate,omitempty"`
	Tariff       *string  `json:"tariff,omitempty"`
	PeakDemandKw *float64 `json:"peakDemandKw,omitempty"`
}

// CanonicalInput is the normalized numeric view the calculator consumes.
type CanonicalInput struct {
	UnitsKWh    *float64
	CostPerUnit *float64
	Location    string
}

// Normalize merges LLM-parsed bill fields with a caller-supplied override
// into the canonical triple. Parsed values win; an absent or invalid value
// falls back to the override, then to null. It never fails: bad data
// degrades to null and is left to the calculator's own null handling.
func Normalize(parsed, override *BillFields) CanonicalInput {
	units := pickNumber(fieldOf(parsed, func(b *BillFields) *float64 { return b.UnitsKWh }),
		fieldOf(override, func(b *BillFields) *float64 { return b.UnitsKWh }))
	total := pickNumber(fieldOf(parsed, func(b *BillFields) *float64 { return b.TotalCost }),
		fieldOf(override, func(b *BillFields) *float64 { return b.TotalCost }))
	cpu := pickNumber(fieldOf(parsed, func(b *BillFields) *float64 { return b.CostPerUnit }),
		fieldOf(override, func(b *BillFields) *float64 { return b.CostPerUnit }))

	// Derive unit cost from the bill total when not directly present.
	// Division by zero or a missing operand yields null, not an error.
	if cpu == nil && total != nil && units != nil && *units != 0 {
		v := *total / *units
		cpu = &v
	}

	loc := ""
	if parsed != nil && parsed.Location != nil && *parsed.Location != "" {
		loc = *parsed.Location
	} else if override != nil && override.Location != nil {
		loc = *override.Location
	}

	return CanonicalInput{UnitsKWh: units, CostPerUnit: cpu, Location: loc}
}

// MergeBillFields resolves parsed and override fields into the single
// record an analysis reports: the canonical numbers the calculator saw,
// including a derived unit cost, plus merged passthrough metadata.
func MergeBillFields(parsed, override *BillFields) *BillFields {
	if parsed == nil && override == nil {
		return nil
	}
	in := Normalize(parsed, override)

	out := &BillFields{
		UnitsKWh:    in.UnitsKWh,
		CostPerUnit: in.CostPerUnit,
		TotalCost: pickNumber(fieldOf(parsed, func(b *BillFields) *float64 { return b.TotalCost }),
			fieldOf(override, func(b *BillFields) *float64 { return b.TotalCost })),
		PeakDemandKw: pickNumber(fieldOf(parsed, func(b *BillFields) *float64 { return b.PeakDemandKw }),
			fieldOf(override, func(b *BillFields) *float64 { return b.PeakDemandKw })),
		BillingDate: pickString(stringOf(parsed, func(b *BillFields) *string { return b.BillingDate }),
			stringOf(override, func(b *BillFields) *string { return b.BillingDate })),
		Tariff: pickString(stringOf(parsed, func(b *BillFields) *string { return b.Tariff }),
			stringOf(override, func(b *BillFields) *string { return b.Tariff })),
	}
	if in.Location != "" {
		loc := in.Location
		out.Location = &loc
	}
	return out
}

func fieldOf(b *BillFields, get func(*BillFields) *float64) *float64 {
	if b == nil {
		return nil
	}
	return get(b)
}

// pickNumber prefers the primary value when it is a valid number, then the
// fallback. NaN, infinities and negatives count as absent.
func pickNumber(primary, fallback *float64) *float64 {
	if validNumber(primary) {
		v := *primary
		return &v
	}
	if validNumber(fallback) {
		v := *fallback
		return &v
	}
	return nil
}

func validNumber(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) && *p >= 0
}

func stringOf(b *BillFields, get func(*BillFields) *string) *string {
	if b == nil {
		return nil
	}
	return get(b)
}

func pickString(primary, fallback *string) *string {
	if primary != nil && *primary != "" {
		v := *primary
		return &v
	}
	if fallback != nil && *fallback != "" {
		v := *fallback
		return &v
	}
	return nil
}
