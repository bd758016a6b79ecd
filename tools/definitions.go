package tools

// AllTools contains all tool specifications for the Wikipedia MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:       "get_summary",
		Method:     "GetSummary",
		Title:      "Get Page Summary",
		Category:   "read",
		ErrorLabel: "Summary error",
		Description: `Retrieve the summary of a given Wikipedia page.

USE WHEN: User asks "what is X", "who was X", "give me a quick overview of X".

NOT FOR: The full article text (use get_content instead).

PARAMETERS:
- page: Page title (required)

RETURNS: The plain-text lead section of the page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_content",
		Method:     "GetContent",
		Title:      "Get Page Content",
		Category:   "read",
		ErrorLabel: "Content error",
		Description: `Retrieve the full plain text content of a Wikipedia page.

USE WHEN: User needs details beyond the introduction, or asks to read the whole article.

NOT FOR: A short overview (use get_summary), rendered markup (use get_html).

PARAMETERS:
- page: Page title (required)

RETURNS: The complete article as plain text with section headings.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_html",
		Method:     "GetHTML",
		Title:      "Get Page HTML",
		Category:   "read",
		ErrorLabel: "HTML error",
		Description: `Retrieve the rendered HTML of a Wikipedia page.

USE WHEN: Tables, infoboxes or markup structure matter.

NOT FOR: Reading prose (use get_content, which is much smaller).

PARAMETERS:
- page: Page title (required)

RETURNS: The rendered article body as HTML.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// PAGE PROPERTY TOOLS
	// ==========================================================================
	{
		Name:       "get_images",
		Method:     "GetImages",
		Title:      "Get Page Images",
		Category:   "page",
		ErrorLabel: "Images error",
		Description: `Retrieve a list of image URLs from a Wikipedia page.

USE WHEN: User asks for pictures, photos, diagrams or media used on a page.

PARAMETERS:
- page: Page title (required)

RETURNS: Direct URLs of every file used on the page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_links",
		Method:     "GetLinks",
		Title:      "Get Page Links",
		Category:   "page",
		ErrorLabel: "Links error",
		Description: `Retrieve a list of internal Wikipedia links from a page.

USE WHEN: User wants related articles, or to navigate from one page to others.

NOT FOR: External websites cited by the page (use get_references).

PARAMETERS:
- page: Page title (required)

RETURNS: Titles of linked article pages.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_references",
		Method:     "GetReferences",
		Title:      "Get Page References",
		Category:   "page",
		ErrorLabel: "References error",
		Description: `Retrieve external reference URLs cited on a Wikipedia page.

USE WHEN: User asks for sources, citations or further reading outside Wikipedia.

NOT FOR: Links to other Wikipedia articles (use get_links).

PARAMETERS:
- page: Page title (required)

RETURNS: External URLs; protocol-relative links are returned with http:.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_categories",
		Method:     "GetCategories",
		Title:      "Get Page Categories",
		Category:   "page",
		ErrorLabel: "Categories error",
		Description: `Retrieve the list of categories for a Wikipedia page.

USE WHEN: User asks how a topic is classified, or wants to find similar topics.

PARAMETERS:
- page: Page title (required)

RETURNS: Category names without the "Category:" prefix.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_url",
		Method:     "GetURL",
		Title:      "Get Page URL",
		Category:   "page",
		ErrorLabel: "URL error",
		Description: `Retrieve the canonical URL of a Wikipedia page.

USE WHEN: User wants a link to share or cite.

PARAMETERS:
- page: Page title (required)

RETURNS: The full URL of the resolved page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_title",
		Method:     "GetTitle",
		Title:      "Get Page Title",
		Category:   "page",
		ErrorLabel: "Title error",
		Description: `Retrieve the title of a Wikipedia page after normalization.

USE WHEN: User needs the exact article name a query resolves to, after redirects and capitalization.

PARAMETERS:
- page: Page title (required)

RETURNS: The normalized title.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "get_page_id",
		Method:     "GetPageID",
		Title:      "Get Page ID",
		Category:   "page",
		ErrorLabel: "Page ID error",
		Description: `Retrieve the internal Wikipedia page ID.

USE WHEN: A stable identifier is needed that survives page renames.

PARAMETERS:
- page: Page title (required)

RETURNS: The numeric page id as a string.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:       "search_pages",
		Method:     "SearchPages",
		Title:      "Search Wikipedia",
		Category:   "search",
		ErrorLabel: "Search error",
		Description: `Search Wikipedia for pages matching a query term.

USE WHEN: The exact page title is unknown, or user asks "find articles about X".

NOT FOR: Reading a page whose title is known (use get_summary or get_content).

PARAMETERS:
- query: Search term (required)

RETURNS: Matching page titles in ranking order; empty when nothing matches.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// CHECK TOOLS
	// ==========================================================================
	{
		Name:       "check_page_exists",
		Method:     "CheckPageExists",
		Title:      "Check Page Exists",
		Category:   "check",
		ErrorLabel: "Existence check error",
		Description: `Check whether a Wikipedia page exists.

USE WHEN: Before reading a page whose title is uncertain.

NOT FOR: Ambiguous titles, which are reported as an error (use disambiguation_options).

PARAMETERS:
- page: Page title (required)

RETURNS: exists=true when the title resolves to a page, false when no page matches.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:       "disambiguation_options",
		Method:     "DisambiguationOptions",
		Title:      "Get Disambiguation Options",
		Category:   "check",
		ErrorLabel: "Disambiguation check error",
		Description: `Get disambiguation options for an ambiguous Wikipedia page.

USE WHEN: A title like "Mercury" may refer to several topics, or another tool reported an ambiguous title.

PARAMETERS:
- page: Page title (required)

RETURNS: disambiguation=true with the candidate titles, or false with an empty list when the title resolves to one page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
