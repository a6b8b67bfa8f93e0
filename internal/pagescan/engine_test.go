package pagescan

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/probelab/page-resource-inspector/internal/model"
	"github.com/probelab/page-resource-inspector/internal/platform/errs"
)

var errConnectionRefused = errors.New("connection refused")

// mockFetcher implements Fetcher for testing.
type mockFetcher struct {
	body        string
	statusCode  int
	contentType string
	err         error
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (*FetchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &FetchResult{
		Body:        io.NopCloser(strings.NewReader(m.body)),
		StatusCode:  m.statusCode,
		ContentType: m.contentType,
	}, nil
}

// mockCrawler implements cssCrawler for testing.
type mockCrawler struct {
	receivedLinks []string
	inject        map[string]model.Initiator
}

func (m *mockCrawler) Crawl(_ context.Context, links []string, set *CandidateSet) {
	m.receivedLinks = links
	for u, init := range m.inject {
		set.Add(u, init)
	}
}

// mockProber implements prober for testing; every candidate succeeds
// with a 200.
type mockProber struct {
	receivedCandidates []ResourceCandidate
}

func (m *mockProber) ProbeAll(_ context.Context, cands []ResourceCandidate) []model.ProbeResult {
	m.receivedCandidates = cands
	results := make([]model.ProbeResult, len(cands))
	for i, c := range cands {
		status := 200
		results[i] = model.ProbeResult{URL: c.URL, Status: &status, OK: true, Initiator: c.Initiator}
	}
	return results
}

func newTestEngine(f Fetcher, c cssCrawler, p prober) *Engine {
	return NewEngine(f, c, p, MaxResources)
}

func TestEngine_Inspect_Success(t *testing.T) {
	html := `<html><head>
	<link rel="stylesheet" href="/b.css">
	</head><body>
	<img src="/a.png">
	</body></html>`

	pr := &mockProber{}
	cr := &mockCrawler{}
	engine := newTestEngine(&mockFetcher{body: html, statusCode: 200, contentType: "text/html; charset=utf-8"}, cr, pr)

	report, err := engine.Inspect(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.FetchedURL != "https://example.com/page" {
		t.Errorf("FetchedURL = %q", report.FetchedURL)
	}
	if report.Main == nil {
		t.Fatal("Main is nil")
	}
	if report.Main.Status != 200 || !report.Main.OK {
		t.Errorf("Main = %+v, want status 200 ok", report.Main)
	}
	if report.Main.ContentType == nil || *report.Main.ContentType != "text/html; charset=utf-8" {
		t.Errorf("Main.ContentType = %v", report.Main.ContentType)
	}

	if len(report.Resources) != 2 {
		t.Fatalf("resources = %d, want 2", len(report.Resources))
	}
	if report.Resources[0].URL != "https://example.com/b.css" {
		t.Errorf("resource 0 = %q", report.Resources[0].URL)
	}
	if report.Resources[1].URL != "https://example.com/a.png" {
		t.Errorf("resource 1 = %q", report.Resources[1].URL)
	}

	if len(cr.receivedLinks) != 1 || cr.receivedLinks[0] != "https://example.com/b.css" {
		t.Errorf("crawler received %v", cr.receivedLinks)
	}
	if !strings.Contains(report.Note, "200") {
		t.Errorf("note does not mention the cap: %q", report.Note)
	}
}

func TestEngine_Inspect_MainURLNeverProbed(t *testing.T) {
	// The page references itself; the self-reference must not reach the
	// prober and must not appear in resources.
	html := `<html><body>
	<iframe src="https://example.com/page"></iframe>
	<img src="/a.png">
	</body></html>`

	pr := &mockProber{}
	engine := newTestEngine(&mockFetcher{body: html, statusCode: 200}, &mockCrawler{}, pr)

	report, err := engine.Inspect(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, cand := range pr.receivedCandidates {
		if cand.URL == "https://example.com/page" {
			t.Error("main URL was sent to the prober")
		}
	}
	if len(report.Resources) != 1 {
		t.Errorf("resources = %d, want 1", len(report.Resources))
	}
}

func TestEngine_Inspect_CrawlerEnrichment(t *testing.T) {
	html := `<html><head><link rel="stylesheet" href="/b.css"></head></html>`

	cr := &mockCrawler{inject: map[string]model.Initiator{
		"https://example.com/d.png": model.InitiatorCSSURL,
	}}
	pr := &mockProber{}
	engine := newTestEngine(&mockFetcher{body: html, statusCode: 200}, cr, pr)

	report, err := engine.Inspect(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, res := range report.Resources {
		if res.URL == "https://example.com/d.png" && res.Initiator == model.InitiatorCSSURL {
			found = true
		}
	}
	if !found {
		t.Errorf("crawler-injected candidate missing from report: %+v", report.Resources)
	}
}

func TestEngine_Inspect_EmptyURL(t *testing.T) {
	engine := newTestEngine(&mockFetcher{}, &mockCrawler{}, &mockProber{})

	_, err := engine.Inspect(context.Background(), "")
	assertAppErrorKind(t, err, errs.InvalidInput)
}

func TestEngine_Inspect_BlockedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "loopback", url: "http://127.0.0.1/admin"},
		{name: "localhost", url: "http://localhost:8080/"},
		{name: "non-http scheme", url: "ftp://example.com/file"},
		{name: "private prefix", url: "http://192.168.1.1/"},
		{name: "unparsable", url: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(&mockFetcher{}, &mockCrawler{}, &mockProber{})
			_, err := engine.Inspect(context.Background(), tt.url)
			assertAppErrorKind(t, err, errs.InvalidInput)
		})
	}
}

func TestEngine_Inspect_FetchError(t *testing.T) {
	engine := newTestEngine(&mockFetcher{err: errConnectionRefused}, &mockCrawler{}, &mockProber{})

	_, err := engine.Inspect(context.Background(), "https://down.example.com")
	assertAppErrorKind(t, err, errs.Unreachable)
}

func TestEngine_Inspect_NonOKMainStillReported(t *testing.T) {
	// A 404 main document is still a fetched document: the report is
	// produced with main.ok=false and whatever resources the error page
	// references.
	html := `<html><body><img src="/broken.png"></body></html>`
	engine := newTestEngine(&mockFetcher{body: html, statusCode: 404}, &mockCrawler{}, &mockProber{})

	report, err := engine.Inspect(context.Background(), "https://example.com/missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Main.OK {
		t.Error("Main.OK = true, want false")
	}
	if report.Main.Status != 404 {
		t.Errorf("Main.Status = %d, want 404", report.Main.Status)
	}
	if len(report.Resources) != 1 {
		t.Errorf("resources = %d, want 1", len(report.Resources))
	}
}

func TestEngine_Inspect_CapAppliesAcrossPhases(t *testing.T) {
	// Inline HTML resources take priority; the crawler cannot push the
	// set past the cap.
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 5; i++ {
		sb.WriteString(`<img src="/img-`)
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString(`.png">`)
	}
	sb.WriteString("</body></html>")

	cr := &mockCrawler{inject: map[string]model.Initiator{
		"https://example.com/extra.png": model.InitiatorCSSURL,
	}}
	engine := NewEngine(&mockFetcher{body: sb.String(), statusCode: 200}, cr, &mockProber{}, 5)

	report, err := engine.Inspect(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Resources) != 5 {
		t.Errorf("resources = %d, want 5 (cap)", len(report.Resources))
	}
	for _, res := range report.Resources {
		if res.URL == "https://example.com/extra.png" {
			t.Error("crawler insertion exceeded the cap")
		}
	}
}

func assertAppErrorKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *errs.AppError, got %T", err)
	}
	if appErr.Kind != kind {
		t.Errorf("Kind = %d, want %d", appErr.Kind, kind)
	}
}
