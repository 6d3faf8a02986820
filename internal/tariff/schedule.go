package tariff

import "time"

// Band is one residential tariff slab. UpToKWh is the slab ceiling in
// monthly kWh; zero means open-ended.
type Band struct {
	UpToKWh       float64 `json:"up_to_kwh"`
	RatePKRPerKwh float64 `json:"rate_pkr_per_kwh"`
}

// Schedule is a published residential tariff: ordered slabs plus where
// they came from.
type Schedule struct {
	Source    string    `json:"source"`
	SourceURL string    `json:"source_url"`
	FetchedAt time.Time `json:"fetched_at"`
	Bands     []Band    `json:"bands"`
}

// DefaultSchedule returns the built-in NEPRA residential slabs used when
// no tariff PDF has been ingested yet.
func DefaultSchedule() *Schedule {
	return &Schedule{
		Source:    "NEPRA residential schedule (built-in)",
		SourceURL: "https://nepra.org.pk/tariff/",
		Bands: []Band{
			{UpToKWh: 100, RatePKRPerKwh: 22.95},
			{UpToKWh: 200, RatePKRPerKwh: 28.91},
			{UpToKWh: 300, RatePKRPerKwh: 33.10},
			{UpToKWh: 400, RatePKRPerKwh: 37.99},
			{UpToKWh: 500, RatePKRPerKwh: 40.20},
			{UpToKWh: 600, RatePKRPerKwh: 41.62},
			{UpToKWh: 700, RatePKRPerKwh: 42.76},
			{UpToKWh: 0, RatePKRPerKwh: 47.69},
		},
	}
}

// RateFor returns the slab rate for a monthly consumption.
func (s *Schedule) RateFor(unitsKWh float64) float64 {
	if len(s.Bands) == 0 {
		return 0
	}
	for _, b := range s.Bands {
		if b.UpToKWh == 0 || unitsKWh <= b.UpToKWh {
			return b.RatePKRPerKwh
		}
	}
	return s.Bands[len(s.Bands)-1].RatePKRPerKwh
}

// PlausibleUnitRate reports whether an effective bill unit price is in
// the neighborhood of the published slab rate for that consumption.
// Taxes, fuel adjustments, and arrears legitimately inflate the printed
// figure, so the window is wide. Purely advisory.
func (s *Schedule) PlausibleUnitRate(costPerUnit, unitsKWh float64) bool {
	base := s.RateFor(unitsKWh)
	if base <= 0 || costPerUnit <= 0 {
		return true
	}
	return costPerUnit >= base*0.4 && costPerUnit <= base*2.5
}
