package wikipedia

import (
	"context"
	"net/url"
	"strings"
)

// Summary returns the plain-text lead section of a page
func (c *Client) Summary(ctx context.Context, title string) (string, error) {
	return c.extract(ctx, title, true)
}

// Content returns the full plain text of a page
func (c *Client) Content(ctx context.Context, title string) (string, error) {
	return c.extract(ctx, title, false)
}

func (c *Client) extract(ctx context.Context, title string, intro bool) (string, error) {
	page, err := c.Page(ctx, title)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("pageids", page.PageID())
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	if intro {
		params.Set("exintro", "1")
	}

	var resp queryResponse
	if err := c.query(ctx, "query", params, &resp); err != nil {
		return "", err
	}
	p, err := singlePage(&resp, page)
	if err != nil {
		return "", err
	}
	return p.Extract, nil
}

// HTML returns the rendered HTML of a page
func (c *Client) HTML(ctx context.Context, title string) (string, error) {
	page, err := c.Page(ctx, title)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("pageid", page.PageID())
	params.Set("prop", "text")

	var resp parseResponse
	if err := c.query(ctx, "parse", params, &resp); err != nil {
		return "", err
	}
	return resp.Parse.Text, nil
}

// Images returns the URLs of all files used on a page
func (c *Client) Images(ctx context.Context, title string) ([]string, error) {
	page, err := c.Page(ctx, title)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("generator", "images")
	params.Set("gimlimit", "max")
	params.Set("pageids", page.PageID())
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")

	images := make([]string, 0)
	seen := make(map[string]bool)
	err = c.queryAll(ctx, params, func(resp *queryResponse) {
		for _, p := range resp.Query.Pages {
			for _, info := range p.ImageInfo {
				if info.URL != "" && !seen[info.URL] {
					seen[info.URL] = true
					images = append(images, info.URL)
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Links returns the titles of article pages linked from a page
func (c *Client) Links(ctx context.Context, title string) ([]string, error) {
	page, err := c.Page(ctx, title)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("pageids", page.PageID())
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", "max")

	links := make([]string, 0)
	err = c.queryAll(ctx, params, func(resp *queryResponse) {
		for _, p := range resp.Query.Pages {
			for _, l := range p.Links {
				links = append(links, l.Title)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// References returns the external URLs cited on a page. Protocol-relative
// URLs are returned with an http: scheme.
func (c *Client) References(ctx context.Context, title string) ([]string, error) {
	page, err := c.Page(ctx, title)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("pageids", page.PageID())
	params.Set("prop", "extlinks")
	params.Set("ellimit", "max")

	refs := make([]string, 0)
	err = c.queryAll(ctx, params, func(resp *queryResponse) {
		for _, p := range resp.Query.Pages {
			for _, l := range p.ExtLinks {
				refs = append(refs, absoluteURL(l.URL))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// Categories returns the names of the categories a page belongs to,
// without the localized namespace prefix
func (c *Client) Categories(ctx context.Context, title string) ([]string, error) {
	page, err := c.Page(ctx, title)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("pageids", page.PageID())
	params.Set("prop", "categories")
	params.Set("cllimit", "max")

	categories := make([]string, 0)
	err = c.queryAll(ctx, params, func(resp *queryResponse) {
		for _, p := range resp.Query.Pages {
			for _, cat := range p.Categories {
				categories = append(categories, stripNamespace(cat.Title))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// singlePage returns the page of a pageids query, or *PageError when the
// page disappeared after resolution
func singlePage(resp *queryResponse, page *Page) (*apiPage, error) {
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return nil, &PageError{Title: page.Title, PageID: page.ID}
	}
	return &resp.Query.Pages[0], nil
}

func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "http:" + u
	}
	return u
}

// stripNamespace drops everything up to the first colon, e.g. "Category:"
// or "Kategorie:"
func stripNamespace(title string) string {
	if _, name, ok := strings.Cut(title, ":"); ok {
		return name
	}
	return title
}
