package tariff

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// SourceDescriptor identifies one tariff publisher and where its sheet
// PDF lives.
type SourceDescriptor struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	LandingURL     string `json:"landingUrl"`
	DefaultPDFPath string `json:"defaultPdfPath"`
	Notes          string `json:"notes,omitempty"`
}

const sourcesEnv = "SOLARADVISOR_TARIFF_SOURCES_JSON"

func defaultSources() []SourceDescriptor {
	return []SourceDescriptor{
		{
			Key:            "nepra",
			Name:           "NEPRA",
			LandingURL:     "https://nepra.org.pk/tariff/",
			DefaultPDFPath: "/data/nepra_tariff.pdf",
			Notes:          "NEPRA consumer-end residential tariff schedule",
		},
	}
}

// Sources returns the known tariff sources, honoring a JSON override in
// the environment.
func Sources() []SourceDescriptor {
	raw := os.Getenv(sourcesEnv)
	if raw == "" {
		return defaultSources()
	}
	var out []SourceDescriptor
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		return defaultSources()
	}
	return out
}

// GetSource looks a source up by key.
func GetSource(key string) (SourceDescriptor, bool) {
	for _, s := range Sources() {
		if s.Key == key {
			return s, true
		}
	}
	return SourceDescriptor{}, false
}

// ParserFunc parses a tariff sheet PDF and returns a schedule.
type ParserFunc func(path string) (*Schedule, error)

// TextParserFunc parses extracted PDF text (useful for testing).
type TextParserFunc func(text string) (*Schedule, error)

// ParserConfig holds the parser pair registered for a source.
type ParserConfig struct {
	Key       string
	Name      string
	ParsePDF  ParserFunc
	ParseText TextParserFunc
}

var (
	parsersMu sync.RWMutex
	parsers   = make(map[string]ParserConfig)
)

// RegisterParser registers a parser for a source key. Called from init()
// in each parser file.
func RegisterParser(cfg ParserConfig) {
	if cfg.Key == "" {
		panic("tariff: RegisterParser called with empty key")
	}
	if cfg.ParsePDF == nil {
		panic(fmt.Sprintf("tariff: RegisterParser(%q) called with nil ParsePDF", cfg.Key))
	}

	parsersMu.Lock()
	defer parsersMu.Unlock()

	if _, exists := parsers[cfg.Key]; exists {
		panic(fmt.Sprintf("tariff: RegisterParser called twice for key %q", cfg.Key))
	}
	parsers[cfg.Key] = cfg
}

// GetParser returns the parser registered for a source key.
func GetParser(key string) (ParserConfig, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	cfg, ok := parsers[key]
	return cfg, ok
}

// ParseSourcePDF looks up a source's parser and parses the PDF at that
// source's configured path.
func ParseSourcePDF(sourceKey, pathOverride string) (*Schedule, error) {
	parser, ok := GetParser(sourceKey)
	if !ok {
		return nil, fmt.Errorf("no parser registered for source: %s", sourceKey)
	}

	path := pathOverride
	if path == "" {
		src, ok := GetSource(sourceKey)
		if !ok {
			return nil, fmt.Errorf("no source descriptor for: %s", sourceKey)
		}
		path = src.DefaultPDFPath
	}
	if path == "" {
		return nil, fmt.Errorf("no PDF path configured for source: %s", sourceKey)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tariff PDF not found at %s: %w", path, err)
	}

	return parser.ParsePDF(path)
}
