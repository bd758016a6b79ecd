package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/olgasafonova/wikipedia-mcp-server/metrics"
)

// ResolutionKind is the outcome of resolving a title
type ResolutionKind int

const (
	Found     ResolutionKind = iota // exactly one page
	NotFound                        // no page has this title
	Ambiguous                       // the title is a disambiguation page
)

func (k ResolutionKind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Page is a resolved page after title normalization and redirects
type Page struct {
	ID    int64
	Title string
	URL   string
}

// Resolution is the tagged result of Resolve. Page is set for Found and
// Ambiguous; Options only for Ambiguous.
type Resolution struct {
	Kind    ResolutionKind
	Title   string // title as requested
	Page    *Page
	Options []string
}

// Err folds a non-Found resolution into its error
func (r Resolution) Err() error {
	switch r.Kind {
	case Found:
		return nil
	case NotFound:
		return &PageError{Title: r.Title}
	case Ambiguous:
		return &DisambiguationError{Title: r.Title, Options: r.Options}
	default:
		return fmt.Errorf("unknown resolution kind %d", r.Kind)
	}
}

// Resolve looks a title up, following redirects. Missing and disambiguation
// pages are reported through Resolution.Kind; every other failure is an error.
func (c *Client) Resolve(ctx context.Context, title string) (Resolution, error) {
	requested := title
	if c.config.AutoSuggest {
		hits, err := c.search(ctx, title, 1)
		if err != nil {
			return Resolution{}, err
		}
		if len(hits) == 0 {
			metrics.RecordResolution(NotFound.String())
			return Resolution{Kind: NotFound, Title: requested}, nil
		}
		title = hits[0]
	}

	// the API splits multi-value parameters on "|"
	if strings.Contains(title, "|") {
		return Resolution{}, &InvalidTitleError{Title: title, Reason: `titles cannot contain "|"`}
	}

	params := url.Values{}
	params.Set("titles", title)
	params.Set("prop", "info|pageprops")
	params.Set("inprop", "url")
	params.Set("ppprop", "disambiguation")
	params.Set("redirects", "1")

	var resp queryResponse
	if err := c.query(ctx, "query", params, &resp); err != nil {
		return Resolution{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return Resolution{}, fmt.Errorf("no page information returned for %q", title)
	}

	p := resp.Query.Pages[0]
	if p.Invalid {
		return Resolution{}, &InvalidTitleError{Title: title, Reason: p.InvalidReason}
	}
	if p.Missing {
		metrics.RecordResolution(NotFound.String())
		return Resolution{Kind: NotFound, Title: requested}, nil
	}

	page := &Page{ID: p.PageID, Title: p.Title, URL: p.FullURL}

	if _, ok := p.PageProps["disambiguation"]; ok {
		options, err := c.disambiguationOptions(ctx, page.ID)
		if err != nil {
			return Resolution{}, err
		}
		metrics.RecordResolution(Ambiguous.String())
		return Resolution{Kind: Ambiguous, Title: requested, Page: page, Options: options}, nil
	}

	metrics.RecordResolution(Found.String())
	return Resolution{Kind: Found, Title: requested, Page: page}, nil
}

// Page resolves a title to exactly one page. Missing titles return
// *PageError, disambiguation pages *DisambiguationError.
func (c *Client) Page(ctx context.Context, title string) (*Page, error) {
	res, err := c.Resolve(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Page, nil
}

// PageID returns the page id in decimal form
func (p *Page) PageID() string {
	return strconv.FormatInt(p.ID, 10)
}
