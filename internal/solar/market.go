package solar

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

const marketEnv = "SOLARADVISOR_MARKET_JSON"

// DefaultLocationKey is the mandatory fallback entry in the production table.
const DefaultLocationKey = "default"

// CostSplit breaks total hardware cost into its three components. The
// weights must sum to 1.0.
type CostSplit struct {
	Panels             float64 `json:"panels"`
	InverterAndBalance float64 `json:"inverterAndBalance"`
	Installation       float64 `json:"installation"`
}

// MarketDefaults is the static market-data table the calculator works
// against. It is constructed once at process start and never mutated.
type MarketDefaults struct {
	// CostPerKw is the installed cost in PKR per kW of system capacity.
	CostPerKw float64 `json:"costPerKw"`

	// ProdByLocation maps a lowercase city key to the expected monthly
	// yield in kWh per installed kW. A "default" entry is mandatory so
	// every lookup resolves.
	ProdByLocation map[string]float64 `json:"prodByLocation"`

	// InstallCostSplit holds the panels / inverter+BOS / labor weights.
	InstallCostSplit CostSplit `json:"installCostSplit"`

	// EmissionFactorKgPerKwh is the grid carbon intensity in kg CO2/kWh.
	EmissionFactorKgPerKwh float64 `json:"emissionFactorKgPerKwh"`
}

// DefaultMarket returns the built-in Pakistan market table.
func DefaultMarket() MarketDefaults {
	return MarketDefaults{
		CostPerKw: 180000,
		ProdByLocation: map[string]float64{
			"karachi":    160,
			"lahore":     150,
			"islamabad":  145,
			"rawalpindi": 145,
			"peshawar":   152,
			"quetta":     170,
			"multan":     158,
			"faisalabad": 150,
			"hyderabad":  160,
			DefaultLocationKey: 150,
		},
		InstallCostSplit: CostSplit{
			Panels:             0.60,
			InverterAndBalance: 0.25,
			Installation:       0.15,
		},
		EmissionFactorKgPerKwh: 0.45,
	}
}

// MarketFromEnv returns the market table, honoring a JSON override in the
// SOLARADVISOR_MARKET_JSON environment variable. An absent or invalid
// override falls back to the built-in table.
func MarketFromEnv() MarketDefaults {
	raw := os.Getenv(marketEnv)
	if raw == "" {
		return DefaultMarket()
	}
	var m MarketDefaults
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m.Validate() != nil {
		return DefaultMarket()
	}
	return m
}

// Validate checks the table is usable: positive cost and emission factor,
// a default yield entry, and split weights summing to 1.0.
func (m MarketDefaults) Validate() error {
	if m.CostPerKw <= 0 {
		return fmt.Errorf("costPerKw must be positive, got %v", m.CostPerKw)
	}
	if m.EmissionFactorKgPerKwh <= 0 {
		return fmt.Errorf("emissionFactorKgPerKwh must be positive, got %v", m.EmissionFactorKgPerKwh)
	}
	def, ok := m.ProdByLocation[DefaultLocationKey]
	if !ok || def <= 0 {
		return fmt.Errorf("prodByLocation requires a positive %q entry", DefaultLocationKey)
	}
	for k, v := range m.ProdByLocation {
		if v <= 0 {
			return fmt.Errorf("prodByLocation[%q] must be positive, got %v", k, v)
		}
	}
	sum := m.InstallCostSplit.Panels + m.InstallCostSplit.InverterAndBalance + m.InstallCostSplit.Installation
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("installCostSplit weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Yield resolves the monthly production per installed kW for a location.
// Lookup is case-insensitive; an unknown, empty, or missing location
// resolves to the default entry.
func Yield(location string, m MarketDefaults) float64 {
	key := strings.ToLower(strings.TrimSpace(location))
	if key != "" {
		if v, ok := m.ProdByLocation[key]; ok {
			return v
		}
	}
	return m.ProdByLocation[DefaultLocationKey]
}
