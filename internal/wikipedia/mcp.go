package wikipedia

import "context"

// MCP Tool wrapper methods
// These methods wrap the client methods with Args/Result types for MCP integration.

// GetSummaryMCP is the MCP wrapper for Summary
func (c *Client) GetSummaryMCP(ctx context.Context, args PageArgs) (SummaryResult, error) {
	summary, err := c.Summary(ctx, args.Page)
	if err != nil {
		return SummaryResult{}, err
	}
	return SummaryResult{Summary: summary}, nil
}

// GetContentMCP is the MCP wrapper for Content
func (c *Client) GetContentMCP(ctx context.Context, args PageArgs) (ContentResult, error) {
	content, err := c.Content(ctx, args.Page)
	if err != nil {
		return ContentResult{}, err
	}
	return ContentResult{Content: content}, nil
}

// GetHTMLMCP is the MCP wrapper for HTML
func (c *Client) GetHTMLMCP(ctx context.Context, args PageArgs) (HTMLResult, error) {
	body, err := c.HTML(ctx, args.Page)
	if err != nil {
		return HTMLResult{}, err
	}
	return HTMLResult{HTML: body}, nil
}

// GetImagesMCP is the MCP wrapper for Images
func (c *Client) GetImagesMCP(ctx context.Context, args PageArgs) (ImagesResult, error) {
	images, err := c.Images(ctx, args.Page)
	if err != nil {
		return ImagesResult{}, err
	}
	return ImagesResult{Images: images}, nil
}

// GetLinksMCP is the MCP wrapper for Links
func (c *Client) GetLinksMCP(ctx context.Context, args PageArgs) (LinksResult, error) {
	links, err := c.Links(ctx, args.Page)
	if err != nil {
		return LinksResult{}, err
	}
	return LinksResult{Links: links}, nil
}

// GetReferencesMCP is the MCP wrapper for References
func (c *Client) GetReferencesMCP(ctx context.Context, args PageArgs) (ReferencesResult, error) {
	refs, err := c.References(ctx, args.Page)
	if err != nil {
		return ReferencesResult{}, err
	}
	return ReferencesResult{References: refs}, nil
}

// GetCategoriesMCP is the MCP wrapper for Categories
func (c *Client) GetCategoriesMCP(ctx context.Context, args PageArgs) (CategoriesResult, error) {
	categories, err := c.Categories(ctx, args.Page)
	if err != nil {
		return CategoriesResult{}, err
	}
	return CategoriesResult{Categories: categories}, nil
}

// GetURLMCP is the MCP wrapper returning the page URL
func (c *Client) GetURLMCP(ctx context.Context, args PageArgs) (URLResult, error) {
	page, err := c.Page(ctx, args.Page)
	if err != nil {
		return URLResult{}, err
	}
	return URLResult{URL: page.URL}, nil
}

// GetTitleMCP is the MCP wrapper returning the normalized title
func (c *Client) GetTitleMCP(ctx context.Context, args PageArgs) (TitleResult, error) {
	page, err := c.Page(ctx, args.Page)
	if err != nil {
		return TitleResult{}, err
	}
	return TitleResult{Title: page.Title}, nil
}

// GetPageIDMCP is the MCP wrapper returning the page id
func (c *Client) GetPageIDMCP(ctx context.Context, args PageArgs) (PageIDResult, error) {
	page, err := c.Page(ctx, args.Page)
	if err != nil {
		return PageIDResult{}, err
	}
	return PageIDResult{PageID: page.PageID()}, nil
}

// SearchPagesMCP is the MCP wrapper for Search
func (c *Client) SearchPagesMCP(ctx context.Context, args SearchArgs) (SearchResult, error) {
	results, err := c.Search(ctx, args.Query)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Results: results}, nil
}

// CheckPageExistsMCP reports false only when no page matches. A
// disambiguation page is an error, not a missing page.
func (c *Client) CheckPageExistsMCP(ctx context.Context, args PageArgs) (ExistsResult, error) {
	res, err := c.Resolve(ctx, args.Page)
	if err != nil {
		return ExistsResult{}, err
	}

	switch res.Kind {
	case Found:
		return ExistsResult{Exists: true}, nil
	case NotFound:
		return ExistsResult{Exists: false}, nil
	default:
		return ExistsResult{}, res.Err()
	}
}

// DisambiguationOptionsMCP lists the options of a disambiguation page. A
// title resolving to one page yields no options; a missing page is an error.
func (c *Client) DisambiguationOptionsMCP(ctx context.Context, args PageArgs) (DisambiguationResult, error) {
	res, err := c.Resolve(ctx, args.Page)
	if err != nil {
		return DisambiguationResult{}, err
	}

	switch res.Kind {
	case Ambiguous:
		return DisambiguationResult{Disambiguation: true, Options: res.Options}, nil
	case Found:
		return DisambiguationResult{Disambiguation: false, Options: []string{}}, nil
	default:
		return DisambiguationResult{}, res.Err()
	}
}
