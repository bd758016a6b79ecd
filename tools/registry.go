// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively in AllTools and registered through a
// type-safe generic handler.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a wikipedia.Client MCP wrapper with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "get_summary")
	Name string

	// Method is the client method name (e.g., "GetSummary")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (search, read, page, check)
	Category string

	// ErrorLabel prefixes every provider failure, e.g. "Summary error"
	ErrorLabel string

	// ReadOnly indicates the tool doesn't modify wiki state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
