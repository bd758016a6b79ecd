package wikipedia

import (
	"context"
	"net/url"
	"strconv"
)

// Search returns the titles of pages matching query, in provider ranking
// order. No matches yields an empty slice.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	return c.search(ctx, query, c.config.SearchLimit)
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srprop", "")
	params.Set("srlimit", strconv.Itoa(limit))

	var resp queryResponse
	if err := c.query(ctx, "query", params, &resp); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}
