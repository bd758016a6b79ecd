// Package wikipediatest provides an in-process fake of the MediaWiki Action
// API for tests. It answers the formatversion=2 requests the wikipedia
// client issues and counts every request it receives.
package wikipediatest

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Page is a page known to the fake
type Page struct {
	ID      int64
	Title   string
	Intro   string // lead section, returned for exintro requests
	Extract string // full plain text
	HTML    string

	Links      []string
	ExtLinks   []string
	Categories []string // full titles, e.g. "Category:Physicists"
	Images     []string // file URLs

	// Options marks a disambiguation page; its HTML lists them
	Options []string
}

// Server is a fake MediaWiki API backed by an httptest.Server
type Server struct {
	*httptest.Server

	// BatchSize splits list properties into continuation batches; 0 disables
	BatchSize int

	mu        sync.Mutex
	pages     map[string]*Page
	byID      map[int64]*Page
	redirects map[string]string
	search    map[string][]string
	apiErr    *apiError
	status    int

	calls atomic.Int64
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// NewServer starts an empty fake. Call Close when done.
func NewServer() *Server {
	s := &Server{
		pages:     make(map[string]*Page),
		byID:      make(map[int64]*Page),
		redirects: make(map[string]string),
		search:    make(map[string][]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// NewFixtureServer starts a fake seeded with a small set of real-looking pages
func NewFixtureServer() *Server {
	s := NewServer()
	for _, p := range Fixtures() {
		s.AddPage(p)
	}
	s.AddRedirect("Einstein", "Albert Einstein")
	s.SetSearch("Albert Einstein", []string{"Albert Einstein", "Einstein family", "Hans Albert Einstein"})
	s.SetSearch("Mercury", []string{"Mercury (planet)", "Mercury (element)", "Mercury"})
	return s
}

// Fixtures returns the pages NewFixtureServer is seeded with
func Fixtures() []Page {
	return []Page{
		{
			ID:      736,
			Title:   "Albert Einstein",
			Intro:   "Albert Einstein was a German-born theoretical physicist.",
			Extract: "Albert Einstein was a German-born theoretical physicist.\n\n== Life ==\nEinstein was born in Ulm.",
			HTML:    `<div class="mw-parser-output"><p><b>Albert Einstein</b> was a German-born theoretical physicist.</p></div>`,
			Links:   []string{"Annus mirabilis papers", "General relativity", "Photoelectric effect", "Special relativity", "Ulm"},
			ExtLinks: []string{
				"https://www.nobelprize.org/prizes/physics/1921/einstein/biographical/",
				"//archive.org/details/einsteinlife00clar",
			},
			Categories: []string{"Category:1879 births", "Category:1955 deaths", "Category:Nobel laureates in Physics"},
			Images: []string{
				"https://upload.wikimedia.org/wikipedia/commons/d/d3/Albert_Einstein_Head.jpg",
				"https://upload.wikimedia.org/wikipedia/commons/a/a0/Einstein_patentoffice.jpg",
				"https://upload.wikimedia.org/wikipedia/commons/3/3e/Einstein_1921_by_F_Schmutzer.jpg",
			},
		},
		{
			ID:      19694,
			Title:   "Mercury",
			Options: []string{"Mercury (planet)", "Mercury (element)", "Mercury (mythology)"},
		},
		{
			ID:         19331,
			Title:      "Mercury (planet)",
			Intro:      "Mercury is the first planet from the Sun.",
			Extract:    "Mercury is the first planet from the Sun.",
			HTML:       `<div class="mw-parser-output"><p>Mercury is the first planet from the Sun.</p></div>`,
			Links:      []string{},
			ExtLinks:   []string{},
			Categories: []string{},
			Images:     []string{},
		},
	}
}

// AddPage registers p; a zero ID is assigned
func (s *Server) AddPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = int64(len(s.byID) + 1000)
	}
	if p.Options != nil && p.HTML == "" {
		p.HTML = disambiguationHTML(p.Title, p.Options)
	}
	s.pages[p.Title] = &p
	s.byID[p.ID] = &p
}

// AddRedirect makes from resolve to the page titled to
func (s *Server) AddRedirect(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects[from] = to
}

// SetSearch sets the ranked titles returned for query
func (s *Server) SetSearch(query string, titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search[query] = titles
}

// FailWith makes every following request return an API error object
func (s *Server) FailWith(code, info string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiErr = &apiError{Code: code, Info: info}
}

// FailStatus makes every following request return an HTTP status
func (s *Server) FailStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Calls returns the number of requests received
func (s *Server) Calls() int64 {
	return s.calls.Load()
}

// Endpoint returns the api.php URL of the fake
func (s *Server) Endpoint() string {
	return s.URL + "/w/api.php"
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	if s.apiErr != nil {
		writeJSON(w, map[string]any{"error": s.apiErr})
		return
	}

	q := r.URL.Query()
	if q.Get("format") != "json" || q.Get("formatversion") != "2" {
		writeJSON(w, map[string]any{"error": apiError{Code: "badformat", Info: "expected format=json&formatversion=2"}})
		return
	}

	switch q.Get("action") {
	case "query":
		s.handleQuery(w, q)
	case "parse":
		s.handleParse(w, q)
	default:
		writeJSON(w, map[string]any{"error": apiError{Code: "badvalue", Info: "Unrecognized value for parameter \"action\"."}})
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, q url.Values) {
	switch {
	case q.Get("list") == "search":
		s.handleSearch(w, q)
	case q.Has("titles"):
		s.handleResolve(w, q)
	case q.Has("pageids"):
		s.handlePageProps(w, q)
	default:
		writeJSON(w, map[string]any{"batchcomplete": true})
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, q url.Values) {
	titles := s.search[q.Get("srsearch")]
	if limit, err := strconv.Atoi(q.Get("srlimit")); err == nil && limit < len(titles) {
		titles = titles[:limit]
	}

	hits := make([]map[string]any, 0, len(titles))
	for _, t := range titles {
		hits = append(hits, map[string]any{"ns": 0, "title": t})
	}
	writeJSON(w, map[string]any{
		"batchcomplete": true,
		"query":         map[string]any{"search": hits},
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, q url.Values) {
	title := normalizeTitle(q.Get("titles"))
	if to, ok := s.redirects[title]; ok && q.Get("redirects") != "" {
		title = to
	}

	var page map[string]any
	switch p, ok := s.pages[title]; {
	case strings.ContainsAny(title, "[]{}|#<>") || title == "":
		page = map[string]any{"title": title, "invalidreason": "The requested page title contains invalid characters.", "invalid": true}
	case !ok:
		page = map[string]any{"ns": 0, "title": title, "missing": true}
	default:
		page = map[string]any{
			"pageid":  p.ID,
			"ns":      0,
			"title":   p.Title,
			"fullurl": "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(p.Title, " ", "_"),
		}
		if p.Options != nil {
			page["pageprops"] = map[string]any{"disambiguation": ""}
		}
	}

	writeJSON(w, map[string]any{
		"batchcomplete": true,
		"query":         map[string]any{"pages": []any{page}},
	})
}

func (s *Server) handlePageProps(w http.ResponseWriter, q url.Values) {
	id, _ := strconv.ParseInt(q.Get("pageids"), 10, 64)
	p, ok := s.byID[id]
	if !ok {
		writeJSON(w, map[string]any{"query": map[string]any{"pages": []any{map[string]any{"pageid": id, "missing": true}}}})
		return
	}

	page := map[string]any{"pageid": p.ID, "ns": 0, "title": p.Title}
	resp := map[string]any{"batchcomplete": true}

	switch {
	case q.Get("prop") == "extracts":
		if q.Has("exintro") {
			page["extract"] = p.Intro
		} else {
			page["extract"] = p.Extract
		}
	case q.Get("generator") == "images":
		chunk, next := s.paginate(p.Images, q.Get("gimcontinue"))
		pages := make([]any, 0, len(chunk))
		for i, u := range chunk {
			pages = append(pages, map[string]any{
				"ns":        6,
				"title":     fmt.Sprintf("File:Image %d.jpg", i),
				"imageinfo": []any{map[string]any{"url": u}},
			})
		}
		if next != "" {
			resp["continue"] = map[string]any{"gimcontinue": next, "continue": "gimcontinue||"}
		}
		resp["query"] = map[string]any{"pages": pages}
		writeJSON(w, resp)
		return
	case q.Get("prop") == "links":
		chunk, next := s.paginate(p.Links, q.Get("plcontinue"))
		page["links"] = titled(chunk)
		if next != "" {
			resp["continue"] = map[string]any{"plcontinue": next, "continue": "||"}
		}
	case q.Get("prop") == "extlinks":
		chunk, next := s.paginate(p.ExtLinks, q.Get("eloffset"))
		links := make([]any, 0, len(chunk))
		for _, u := range chunk {
			links = append(links, map[string]any{"url": u})
		}
		page["extlinks"] = links
		if next != "" {
			off, _ := strconv.Atoi(next)
			resp["continue"] = map[string]any{"eloffset": off, "continue": "||"}
		}
	case q.Get("prop") == "categories":
		chunk, next := s.paginate(p.Categories, q.Get("clcontinue"))
		page["categories"] = titled(chunk)
		if next != "" {
			resp["continue"] = map[string]any{"clcontinue": next, "continue": "||"}
		}
	}

	resp["query"] = map[string]any{"pages": []any{page}}
	writeJSON(w, resp)
}

func (s *Server) handleParse(w http.ResponseWriter, q url.Values) {
	id, _ := strconv.ParseInt(q.Get("pageid"), 10, 64)
	p, ok := s.byID[id]
	if !ok {
		writeJSON(w, map[string]any{"error": apiError{Code: "nosuchpageid", Info: fmt.Sprintf("There is no page with ID %d.", id)}})
		return
	}
	writeJSON(w, map[string]any{
		"parse": map[string]any{"title": p.Title, "pageid": p.ID, "text": p.HTML},
	})
}

// paginate returns the batch starting at the offset token and the token of
// the next batch, empty when this is the last one
func (s *Server) paginate(items []string, token string) ([]string, string) {
	start, _ := strconv.Atoi(token)
	if start > len(items) {
		start = len(items)
	}
	if s.BatchSize <= 0 || start+s.BatchSize >= len(items) {
		return items[start:], ""
	}
	end := start + s.BatchSize
	return items[start:end], strconv.Itoa(end)
}

func titled(titles []string) []any {
	out := make([]any, 0, len(titles))
	for _, t := range titles {
		out = append(out, map[string]any{"ns": 0, "title": t})
	}
	return out
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	r, size := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError {
		return title
	}
	return string(unicode.ToUpper(r)) + title[size:]
}

func disambiguationHTML(title string, options []string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="mw-parser-output"><p><b>` + html.EscapeString(title) + `</b> may refer to:</p>`)
	sb.WriteString(`<div id="toc"><ul><li class="toclevel-1 tocsection-1"><a href="#Science"><span class="toctext">Science</span></a></li></ul></div>`)
	sb.WriteString(`<ul>`)
	for _, o := range options {
		href := "/wiki/" + url.PathEscape(strings.ReplaceAll(o, " ", "_"))
		sb.WriteString(`<li><a href="` + href + `" title="` + html.EscapeString(o) + `">` + html.EscapeString(o) + `</a>, see also <a href="/wiki/Other">other</a></li>`)
	}
	sb.WriteString(`<li>An entry without a link</li>`)
	sb.WriteString(`</ul></div>`)
	return sb.String()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
