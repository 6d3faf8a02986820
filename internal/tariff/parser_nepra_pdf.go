package tariff

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"time"

	pdf "github.com/ledongthuc/pdf"
)

func init() {
	RegisterParser(ParserConfig{
		Key:       "nepra",
		Name:      "NEPRA",
		ParsePDF:  ParseNEPRAScheduleFromPDF,
		ParseText: ParseNEPRAScheduleFromText,
	})
}

// ParseNEPRAScheduleFromPDF opens a tariff sheet PDF, extracts the plain
// text, and delegates to ParseNEPRAScheduleFromText.
func ParseNEPRAScheduleFromPDF(path string) (*Schedule, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	rc, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	return ParseNEPRAScheduleFromText(buf.String())
}

var (
	// e.g. "101 - 200 units Rs. 28.91" or "001-100 22.95/kWh"
	slabRangeRe = regexp.MustCompile(`(?i)(\d{1,4})\s*[-–]\s*(\d{1,4})\s*(?:units?)?\s*(?:Rs\.?\s*)?([0-9]+(?:\.[0-9]+)?)`)
	// e.g. "Up to 100 units Rs 22.95"
	slabUpToRe = regexp.MustCompile(`(?i)up\s*to\s*(\d{1,4})\s*(?:units?)?\s*(?:Rs\.?\s*)?([0-9]+(?:\.[0-9]+)?)`)
	// e.g. "Above 700 units Rs 47.69"
	slabAboveRe = regexp.MustCompile(`(?i)(?:above|exceeding)\s*(\d{1,4})\s*(?:units?)?\s*(?:Rs\.?\s*)?([0-9]+(?:\.[0-9]+)?)`)
)

// ParseNEPRAScheduleFromText parses the plain-text form of a NEPRA
// residential tariff sheet using regex heuristics over the slab table.
func ParseNEPRAScheduleFromText(text string) (*Schedule, error) {
	byCeiling := make(map[float64]float64)

	for _, m := range slabUpToRe.FindAllStringSubmatch(text, -1) {
		ceiling := parseFloat(m[1])
		rate := parseFloat(m[2])
		if ceiling > 0 && rate > 0 {
			byCeiling[ceiling] = rate
		}
	}
	for _, m := range slabRangeRe.FindAllStringSubmatch(text, -1) {
		ceiling := parseFloat(m[2])
		rate := parseFloat(m[3])
		if ceiling > 0 && rate > 0 {
			byCeiling[ceiling] = rate
		}
	}

	var openRate float64
	for _, m := range slabAboveRe.FindAllStringSubmatch(text, -1) {
		if rate := parseFloat(m[2]); rate > 0 {
			openRate = rate
		}
	}

	if len(byCeiling) == 0 && openRate == 0 {
		return nil, fmt.Errorf("no tariff slabs found in text")
	}

	ceilings := make([]float64, 0, len(byCeiling))
	for c := range byCeiling {
		ceilings = append(ceilings, c)
	}
	sort.Float64s(ceilings)

	bands := make([]Band, 0, len(ceilings)+1)
	for _, c := range ceilings {
		bands = append(bands, Band{UpToKWh: c, RatePKRPerKwh: byCeiling[c]})
	}
	if openRate > 0 {
		bands = append(bands, Band{UpToKWh: 0, RatePKRPerKwh: openRate})
	}

	return &Schedule{
		Source:    "NEPRA residential tariff sheet",
		SourceURL: "https://nepra.org.pk/tariff/",
		FetchedAt: time.Now().UTC(),
		Bands:     bands,
	}, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
