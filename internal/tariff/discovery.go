package tariff

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// PDFDiscoveryTimeout controls how long we wait for the landing page.
var PDFDiscoveryTimeout = 10 * time.Second

// DiscoverPDFURL fetches the source's landing page and discovers the best
// tariff sheet PDF URL.
func DiscoverPDFURL(src SourceDescriptor) (string, error) {
	if src.LandingURL == "" {
		return "", fmt.Errorf("source %q has no LandingURL", src.Key)
	}

	client := &http.Client{Timeout: PDFDiscoveryTimeout}
	resp, err := client.Get(src.LandingURL)
	if err != nil {
		return "", fmt.Errorf("fetch landing url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("landing url returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read landing body: %w", err)
	}

	return discoverPDFURLFromHTML(src.LandingURL, string(body))
}

func discoverPDFURLFromHTML(baseURL, html string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	type candidate struct {
		rawHref string
		text    string
		score   int
	}

	var candidates []candidate

	// Anchor tags with link text
	anchorRe := regexp.MustCompile(`(?is)<a[^>]+href="([^"]+\.pdf)"[^>]*>([^<]*)</a>`)
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		text := strings.TrimSpace(htmlUnescape(m[2]))
		candidates = append(candidates, candidate{rawHref: href, text: text, score: scorePDFCandidate(href, text)})
	}

	// Fallback: any href="...pdf"
	if len(candidates) == 0 {
		hrefRe := regexp.MustCompile(`(?i)href="([^"]+\.pdf)"`)
		for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
			href := strings.TrimSpace(m[1])
			candidates = append(candidates, candidate{rawHref: href, score: scorePDFCandidate(href, "")})
		}
	}

	if len(candidates) == 0 {
		return "", errors.New("no PDF links found on page")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		iHTTPS := strings.HasPrefix(strings.ToLower(candidates[i].rawHref), "https://")
		jHTTPS := strings.HasPrefix(strings.ToLower(candidates[j].rawHref), "https://")
		if iHTTPS != jHTTPS {
			return iHTTPS
		}
		return candidates[i].rawHref < candidates[j].rawHref
	})

	best := candidates[0].rawHref
	bestURL, err := base.Parse(best)
	if err != nil {
		return "", fmt.Errorf("resolve href %q: %w", best, err)
	}

	return bestURL.String(), nil
}

func scorePDFCandidate(href, text string) int {
	hrefLower := strings.ToLower(href)
	textLower := strings.ToLower(text)

	score := 0

	if strings.Contains(textLower, "residential") || strings.Contains(textLower, "domestic") {
		score += 5
	}
	if strings.Contains(textLower, "tariff") || strings.Contains(textLower, "schedule") {
		score += 3
	}
	if strings.Contains(hrefLower, "residential") || strings.Contains(hrefLower, "domestic") {
		score += 3
	}
	if strings.Contains(hrefLower, "tariff") || strings.Contains(hrefLower, "sro") {
		score += 2
	}
	if strings.Contains(textLower, "consumer-end") || strings.Contains(hrefLower, "2026") {
		score += 1
	}

	return score
}

func htmlUnescape(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return replacer.Replace(s)
}

// RefreshSourcePDF discovers and downloads the source's tariff sheet into
// the given path (or the source's default path when empty), then returns
// the URL it was fetched from.
func RefreshSourcePDF(src SourceDescriptor, destPath string) (string, error) {
	pdfURL, err := DiscoverPDFURL(src)
	if err != nil {
		return "", err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(pdfURL)
	if err != nil {
		return "", fmt.Errorf("download pdf: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pdf download returned status %d", resp.StatusCode)
	}

	if destPath == "" {
		destPath = src.DefaultPDFPath
	}
	if destPath == "" {
		return "", fmt.Errorf("source %q has no DefaultPDFPath configured", src.Key)
	}

	if err := writeFileAtomically(destPath, resp.Body); err != nil {
		return "", err
	}
	return pdfURL, nil
}
