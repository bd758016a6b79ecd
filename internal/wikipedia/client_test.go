package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/olgasafonova/wikipedia-mcp-server/internal/errors"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/infra"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia/wikipediatest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, srv *wikipediatest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIURL = srv.Endpoint()
	cfg.BreakerThreshold = 0
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := NewClient(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestConfig_Endpoint(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"english", Config{Language: "en"}, "https://en.wikipedia.org/w/api.php"},
		{"german", Config{Language: "de"}, "https://de.wikipedia.org/w/api.php"},
		{"override", Config{Language: "en", APIURL: "http://localhost:8080/w/api.php"}, "http://localhost:8080/w/api.php"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Endpoint(); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults", func(*Config) {}, ""},
		{"language with region", func(c *Config) { c.Language = "zh-min-nan" }, ""},
		{"empty language", func(c *Config) { c.Language = "" }, "language"},
		{"language with slash", func(c *Config) { c.Language = "en/evil" }, "language"},
		{"relative api url", func(c *Config) { c.APIURL = "w/api.php" }, "api_url"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"search limit too large", func(c *Config) { c.SearchLimit = 501 }, "search_limit"},
		{"search limit zero", func(c *Config) { c.SearchLimit = 0 }, "search_limit"},
		{"bad proxy", func(c *Config) { c.Proxy = "not a proxy" }, "proxy"},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }, "user_agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language = ""

	if _, err := NewClient(cfg, nil); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestNewClient_BreakerThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BreakerThreshold = 0

	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.CircuitBreaker.Enabled() {
		t.Error("breaker should be disabled with threshold 0")
	}
	if client.Config().Language != "en" {
		t.Errorf("Config().Language = %q, want en", client.Config().Language)
	}
}

func TestResolve(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	tests := []struct {
		name        string
		title       string
		wantKind    ResolutionKind
		wantTitle   string
		wantOptions []string
	}{
		{"found", "Albert Einstein", Found, "Albert Einstein", nil},
		{"redirect", "Einstein", Found, "Albert Einstein", nil},
		{"normalized", "albert_Einstein", Found, "Albert Einstein", nil},
		{"not found", "XYZNOPAGEQQQ123", NotFound, "", nil},
		{"ambiguous", "Mercury", Ambiguous, "Mercury", []string{"Mercury (planet)", "Mercury (element)", "Mercury (mythology)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.Resolve(context.Background(), tt.title)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", res.Kind, tt.wantKind)
			}
			if res.Title != tt.title {
				t.Errorf("Title = %q, want requested title %q", res.Title, tt.title)
			}
			if tt.wantTitle != "" && res.Page.Title != tt.wantTitle {
				t.Errorf("Page.Title = %q, want %q", res.Page.Title, tt.wantTitle)
			}
			if diff := cmp.Diff(tt.wantOptions, res.Options); diff != "" {
				t.Errorf("Options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_InvalidTitle(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.Resolve(context.Background(), "Foo[bar]")

	var ite *InvalidTitleError
	if !errors.As(err, &ite) {
		t.Fatalf("error = %v, want InvalidTitleError", err)
	}
	if !strings.Contains(ite.Error(), "invalid characters") {
		t.Errorf("error = %q, want provider reason", ite.Error())
	}
}

func TestResolve_PipeNeverSplitsTitle(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	before := srv.Calls()
	res, err := client.Resolve(context.Background(), "Albert Einstein|Mercury")

	var ite *InvalidTitleError
	if !errors.As(err, &ite) {
		t.Fatalf("Resolve = %+v, %v; want InvalidTitleError", res, err)
	}
	if got := srv.Calls() - before; got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
}

func TestResolutionKind_String(t *testing.T) {
	tests := []struct {
		kind ResolutionKind
		want string
	}{
		{Found, "found"},
		{NotFound, "not_found"},
		{Ambiguous, "ambiguous"},
		{ResolutionKind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ResolutionKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPage_Errors(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	t.Run("not found", func(t *testing.T) {
		_, err := client.Page(context.Background(), "XYZNOPAGEQQQ123")
		var pe *PageError
		if !errors.As(err, &pe) {
			t.Fatalf("error = %v, want PageError", err)
		}
		if pe.Title != "XYZNOPAGEQQQ123" {
			t.Errorf("Title = %q", pe.Title)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := client.Page(context.Background(), "Mercury")
		var de *DisambiguationError
		if !errors.As(err, &de) {
			t.Fatalf("error = %v, want DisambiguationError", err)
		}
		if len(de.Options) != 3 {
			t.Errorf("Options = %v, want 3 entries", de.Options)
		}
		if !strings.Contains(de.Error(), "Mercury (planet)") {
			t.Errorf("error %q should list the options", de.Error())
		}
	})

	t.Run("found", func(t *testing.T) {
		page, err := client.Page(context.Background(), "Albert Einstein")
		if err != nil {
			t.Fatalf("Page failed: %v", err)
		}
		want := &Page{ID: 736, Title: "Albert Einstein", URL: "https://en.wikipedia.org/wiki/Albert_Einstein"}
		if diff := cmp.Diff(want, page); diff != "" {
			t.Errorf("Page mismatch (-want +got):\n%s", diff)
		}
		if page.PageID() != "736" {
			t.Errorf("PageID() = %q, want 736", page.PageID())
		}
	})
}

func TestSummaryAndContent(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	summary, err := client.Summary(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary != "Albert Einstein was a German-born theoretical physicist." {
		t.Errorf("Summary = %q", summary)
	}

	content, err := client.Content(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	if !strings.Contains(content, "Einstein was born in Ulm.") {
		t.Errorf("Content = %q, want full text", content)
	}
	if len(content) <= len(summary) {
		t.Error("content should be longer than the summary")
	}
}

func TestHTML(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	body, err := client.HTML(context.Background(), "Albert Einstein")
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(body, "<b>Albert Einstein</b>") {
		t.Errorf("HTML = %q", body)
	}
}

func TestLists_ContinuationLimitIsAnError(t *testing.T) {
	srv := wikipediatest.NewServer()
	srv.BatchSize = 1
	defer srv.Close()

	links := make([]string, maxContinuations+5)
	for i := range links {
		links[i] = fmt.Sprintf("Link %03d", i)
	}
	srv.AddPage(wikipediatest.Page{ID: 42, Title: "Long list", Links: links})
	client := newTestClient(t, srv)

	got, err := client.Links(context.Background(), "Long list")
	var limitErr *ContinuationLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected ContinuationLimitError, got %v", err)
	}
	if limitErr.Limit != maxContinuations {
		t.Errorf("Limit = %d, want %d", limitErr.Limit, maxContinuations)
	}
	if got != nil {
		t.Errorf("no partial list should be returned, got %d links", len(got))
	}
}

func TestLists_FollowContinuation(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	srv.BatchSize = 2
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	images, err := client.Images(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("Images failed: %v", err)
	}
	if diff := cmp.Diff(wikipediatest.Fixtures()[0].Images, images); diff != "" {
		t.Errorf("Images mismatch (-want +got):\n%s", diff)
	}

	links, err := client.Links(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("Links failed: %v", err)
	}
	if diff := cmp.Diff(wikipediatest.Fixtures()[0].Links, links); diff != "" {
		t.Errorf("Links mismatch (-want +got):\n%s", diff)
	}

	refs, err := client.References(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("References failed: %v", err)
	}
	wantRefs := []string{
		"https://www.nobelprize.org/prizes/physics/1921/einstein/biographical/",
		"http://archive.org/details/einsteinlife00clar",
	}
	if diff := cmp.Diff(wantRefs, refs); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}

	categories, err := client.Categories(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	wantCats := []string{"1879 births", "1955 deaths", "Nobel laureates in Physics"}
	if diff := cmp.Diff(wantCats, categories); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
}

func TestLists_EmptyAreNotNil(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	fetchers := map[string]func(context.Context, string) ([]string, error){
		"images":     client.Images,
		"links":      client.Links,
		"references": client.References,
		"categories": client.Categories,
	}
	for name, fetch := range fetchers {
		t.Run(name, func(t *testing.T) {
			got, err := fetch(ctx, "Mercury (planet)")
			if err != nil {
				t.Fatalf("fetch failed: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("got %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv, func(c *Config) { c.SearchLimit = 2 })
	ctx := context.Background()

	results, err := client.Search(ctx, "Albert Einstein")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Albert Einstein", "Einstein family"}, results); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}

	none, err := client.Search(ctx, "qwxzzznomatchqwxzzz")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("no matches = %#v, want empty non-nil slice", none)
	}
}

func TestAutoSuggest(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv, func(c *Config) { c.AutoSuggest = true })
	ctx := context.Background()

	page, err := client.Page(ctx, "Mercury")
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if page.Title != "Mercury (planet)" {
		t.Errorf("Title = %q, want top search hit", page.Title)
	}

	res, err := client.Resolve(ctx, "qwxzzznomatchqwxzzz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != NotFound {
		t.Errorf("Kind = %v, want not_found when search has no hits", res.Kind)
	}
}

func TestQuery_APIError(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	srv.FailWith("internal_api_error_DBConnectionError", "Database unavailable")
	client := newTestClient(t, srv)

	_, err := client.Summary(context.Background(), "Albert Einstein")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Code != "internal_api_error_DBConnectionError" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if err.Error() != "API error [internal_api_error_DBConnectionError]: Database unavailable" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestQuery_OverloadIsTimeout(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	srv.FailWith("internal_api_error_DBQueryTimeoutError", "HTTP request timed out.")
	client := newTestClient(t, srv)

	_, err := client.Search(context.Background(), "Albert Einstein")

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TimeoutError", err)
	}
	if te.Subject != "Albert Einstein" {
		t.Errorf("Subject = %q, want the search query", te.Subject)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Error("TimeoutError should unwrap to the API error")
	}
}

func TestQuery_HTTPTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	cfg := DefaultConfig()
	cfg.APIURL = slow.URL
	cfg.Timeout = 20 * time.Millisecond
	client, err := NewClient(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Search(context.Background(), "Albert Einstein")

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TimeoutError", err)
	}
}

func TestQuery_ServerError(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	srv.FailStatus(http.StatusServiceUnavailable)
	client := newTestClient(t, srv)

	_, err := client.Page(context.Background(), "Albert Einstein")
	if err == nil || !strings.Contains(err.Error(), "server error 503") {
		t.Fatalf("error = %v, want server error 503", err)
	}
}

func TestQuery_ClientErrorStatus(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	srv.FailStatus(http.StatusForbidden)
	client := newTestClient(t, srv)

	_, err := client.Page(context.Background(), "Albert Einstein")
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("error = %v, want status 403", err)
	}
}

func TestCircuitBreaker_FailsFast(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	srv.FailStatus(http.StatusBadGateway)
	client := newTestClient(t, srv, func(c *Config) { c.BreakerThreshold = 2 })
	ctx := context.Background()

	for range 2 {
		if _, err := client.Page(ctx, "Albert Einstein"); err == nil {
			t.Fatal("expected error from failing provider")
		}
	}

	_, err := client.Page(ctx, "Albert Einstein")
	var open *infra.ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if srv.Calls() != 2 {
		t.Errorf("provider calls = %d, want 2", srv.Calls())
	}
}

func TestCheckPageExistsMCP(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	tests := []struct {
		name    string
		page    string
		want    bool
		wantErr bool
	}{
		{"existing page", "Albert Einstein", true, false},
		{"missing page", "XYZNOPAGEQQQ123", false, false},
		{"disambiguation page", "Mercury", false, true},
		{"invalid title", "Foo|Bar", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.CheckPageExistsMCP(context.Background(), PageArgs{Page: tt.page})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Exists != tt.want {
				t.Errorf("Exists = %v, want %v", got.Exists, tt.want)
			}
		})
	}
}

func TestDisambiguationOptionsMCP(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	tests := []struct {
		name    string
		page    string
		want    DisambiguationResult
		wantErr bool
	}{
		{
			name: "ambiguous",
			page: "Mercury",
			want: DisambiguationResult{Disambiguation: true, Options: []string{"Mercury (planet)", "Mercury (element)", "Mercury (mythology)"}},
		},
		{
			name: "single page",
			page: "Albert Einstein",
			want: DisambiguationResult{Disambiguation: false, Options: []string{}},
		},
		{
			name:    "missing page",
			page:    "XYZNOPAGEQQQ123",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.DisambiguationOptionsMCP(context.Background(), PageArgs{Page: tt.page})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var pe *PageError
				if !errors.As(err, &pe) {
					t.Errorf("error = %v, want PageError", err)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPropertyWrappersMCP(t *testing.T) {
	srv := wikipediatest.NewFixtureServer()
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()
	args := PageArgs{Page: "Einstein"}

	title, err := client.GetTitleMCP(ctx, args)
	if err != nil || title.Title != "Albert Einstein" {
		t.Errorf("GetTitleMCP = %+v, %v", title, err)
	}

	id, err := client.GetPageIDMCP(ctx, args)
	if err != nil || id.PageID != "736" {
		t.Errorf("GetPageIDMCP = %+v, %v", id, err)
	}

	u, err := client.GetURLMCP(ctx, args)
	if err != nil || u.URL != "https://en.wikipedia.org/wiki/Albert_Einstein" {
		t.Errorf("GetURLMCP = %+v, %v", u, err)
	}
}
