package wikipedia

// PageArgs identifies a page by title
type PageArgs struct {
	Page string `json:"page" jsonschema:"The title of the Wikipedia page to retrieve." validate:"notblank,excludesall=0x7C"`
}

// SearchArgs contains parameters for a full-text search
type SearchArgs struct {
	Query string `json:"query" jsonschema:"Search term to find Wikipedia pages." validate:"notblank"`
}

// SummaryResult is the lead section of a page as plain text
type SummaryResult struct {
	Summary string `json:"summary"`
}

// ContentResult is the full plain text of a page
type ContentResult struct {
	Content string `json:"content"`
}

// HTMLResult is the rendered HTML of a page
type HTMLResult struct {
	HTML string `json:"html"`
}

// ImagesResult lists the URLs of files used on a page
type ImagesResult struct {
	Images []string `json:"images"`
}

// LinksResult lists the titles of article pages linked from a page
type LinksResult struct {
	Links []string `json:"links"`
}

// ReferencesResult lists external URLs cited on a page
type ReferencesResult struct {
	References []string `json:"references"`
}

// CategoriesResult lists category names without the namespace prefix
type CategoriesResult struct {
	Categories []string `json:"categories"`
}

// URLResult is the canonical URL of a page
type URLResult struct {
	URL string `json:"url"`
}

// TitleResult is the normalized title of a page
type TitleResult struct {
	Title string `json:"title"`
}

// PageIDResult is the provider's page id in decimal form
type PageIDResult struct {
	PageID string `json:"page_id"`
}

// SearchResult lists matching page titles in provider order
type SearchResult struct {
	Results []string `json:"results"`
}

// ExistsResult reports whether a title resolves to a page
type ExistsResult struct {
	Exists bool `json:"exists"`
}

// DisambiguationResult reports whether a title is ambiguous and its options
type DisambiguationResult struct {
	Disambiguation bool     `json:"disambiguation"`
	Options        []string `json:"options"`
}
