package tariff

import "testing"

func TestDefaultSources(t *testing.T) {
	srcs := Sources()
	if len(srcs) != 1 || srcs[0].Key != "nepra" {
		t.Fatalf("expected single nepra source, got %+v", srcs)
	}
	if srcs[0].LandingURL == "" || srcs[0].DefaultPDFPath == "" {
		t.Errorf("nepra source incomplete: %+v", srcs[0])
	}
}

func TestSourcesEnvOverride(t *testing.T) {
	t.Setenv("SOLARADVISOR_TARIFF_SOURCES_JSON", `[
		{"key": "ke", "name": "K-Electric", "landingUrl": "https://ke.com.pk/tariffs/", "defaultPdfPath": "/data/ke.pdf"}
	]`)

	srcs := Sources()
	if len(srcs) != 1 || srcs[0].Key != "ke" {
		t.Fatalf("expected ke override, got %+v", srcs)
	}

	src, ok := GetSource("ke")
	if !ok || src.Name != "K-Electric" {
		t.Errorf("GetSource(ke) = %+v, %v", src, ok)
	}
	if _, ok := GetSource("nepra"); ok {
		t.Error("override should replace default sources")
	}
}

func TestSourcesInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SOLARADVISOR_TARIFF_SOURCES_JSON", "not json")
	srcs := Sources()
	if len(srcs) != 1 || srcs[0].Key != "nepra" {
		t.Errorf("expected fallback to defaults, got %+v", srcs)
	}
}

func TestParseSourcePDFUnknownSource(t *testing.T) {
	if _, err := ParseSourcePDF("mystery", ""); err == nil {
		t.Fatal("expected error for unregistered source")
	}
}

func TestParseSourcePDFMissingFile(t *testing.T) {
	if _, err := ParseSourcePDF("nepra", t.TempDir()+"/missing.pdf"); err == nil {
		t.Fatal("expected error for missing pdf")
	}
}
