package tariff

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestDiscoverPDFURLFromHTMLPrefersResidential(t *testing.T) {
	html := `
<html><body>
<a href="/tariffs/industrial-2026.pdf">Industrial Tariff Schedule</a>
<a href="/tariffs/residential-2026.pdf">Residential Tariff Schedule</a>
<a href="/misc/annual-report.pdf">Annual Report</a>
</body></html>`

	got, err := discoverPDFURLFromHTML("https://nepra.org.pk/tariff/", html)
	if err != nil {
		t.Fatalf("discoverPDFURLFromHTML: %v", err)
	}
	if got != "https://nepra.org.pk/tariffs/residential-2026.pdf" {
		t.Errorf("expected residential pdf, got %q", got)
	}
}

func TestDiscoverPDFURLFromHTMLHrefFallback(t *testing.T) {
	// No anchor text at all; the bare href scan still finds the file.
	html := `<link href="/downloads/sro-tariff.pdf">`

	got, err := discoverPDFURLFromHTML("https://nepra.org.pk/tariff/", html)
	if err != nil {
		t.Fatalf("discoverPDFURLFromHTML: %v", err)
	}
	if !strings.HasSuffix(got, "/downloads/sro-tariff.pdf") {
		t.Errorf("unexpected url %q", got)
	}
}

func TestDiscoverPDFURLFromHTMLNoLinks(t *testing.T) {
	if _, err := discoverPDFURLFromHTML("https://nepra.org.pk/", "<html><body>nothing</body></html>"); err == nil {
		t.Fatal("expected error when no pdf links exist")
	}
}

func TestDiscoverPDFURLLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/sheets/domestic-tariff.pdf">Domestic Tariff</a>`))
	}))
	defer srv.Close()

	got, err := DiscoverPDFURL(SourceDescriptor{Key: "test", LandingURL: srv.URL})
	if err != nil {
		t.Fatalf("DiscoverPDFURL: %v", err)
	}
	if got != srv.URL+"/sheets/domestic-tariff.pdf" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestDiscoverPDFURLMissingLanding(t *testing.T) {
	if _, err := DiscoverPDFURL(SourceDescriptor{Key: "test"}); err == nil {
		t.Fatal("expected error for source without landing url")
	}
}

func TestScorePDFCandidate(t *testing.T) {
	res := scorePDFCandidate("/x/residential-tariff.pdf", "Residential Tariff Schedule")
	ind := scorePDFCandidate("/x/industrial-tariff.pdf", "Industrial Tariff Schedule")
	if res <= ind {
		t.Errorf("residential (%d) must outscore industrial (%d)", res, ind)
	}
}

func TestRefreshSourcePDF(t *testing.T) {
	pdfBody := "%PDF-1.4 fake"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".pdf") {
			w.Write([]byte(pdfBody))
			return
		}
		w.Write([]byte(`<a href="/t/residential.pdf">Residential Tariff</a>`))
	}))
	defer srv.Close()

	dest := t.TempDir() + "/tariff.pdf"
	url, err := RefreshSourcePDF(SourceDescriptor{Key: "test", LandingURL: srv.URL}, dest)
	if err != nil {
		t.Fatalf("RefreshSourcePDF: %v", err)
	}
	if url != srv.URL+"/t/residential.pdf" {
		t.Errorf("unexpected source url %q", url)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != pdfBody {
		t.Errorf("downloaded content mismatch: %q", data)
	}
}
