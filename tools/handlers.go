package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/crashreport"
	apperrors "github.com/olgasafonova/wikipedia-mcp-server/internal/errors"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia"
	"github.com/olgasafonova/wikipedia-mcp-server/metrics"
	"github.com/olgasafonova/wikipedia-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *wikipedia.Client
	logger *slog.Logger
	hub    *sentry.Hub
}

// Option configures a HandlerRegistry.
type Option func(*HandlerRegistry)

// WithSentryHub reports recovered panics and operational provider failures
// to the given hub.
func WithSentryHub(hub *sentry.Hub) Option {
	return func(h *HandlerRegistry) {
		h.hub = hub
	}
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *wikipedia.Client, logger *slog.Logger, opts ...Option) *HandlerRegistry {
	h := &HandlerRegistry{
		client: client,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	// Read tools
	case "GetSummary":
		register(h, server, tool, spec, h.client.GetSummaryMCP)
	case "GetContent":
		register(h, server, tool, spec, h.client.GetContentMCP)
	case "GetHTML":
		register(h, server, tool, spec, h.client.GetHTMLMCP)

	// Page property tools
	case "GetImages":
		register(h, server, tool, spec, h.client.GetImagesMCP)
	case "GetLinks":
		register(h, server, tool, spec, h.client.GetLinksMCP)
	case "GetReferences":
		register(h, server, tool, spec, h.client.GetReferencesMCP)
	case "GetCategories":
		register(h, server, tool, spec, h.client.GetCategoriesMCP)
	case "GetURL":
		register(h, server, tool, spec, h.client.GetURLMCP)
	case "GetTitle":
		register(h, server, tool, spec, h.client.GetTitleMCP)
	case "GetPageID":
		register(h, server, tool, spec, h.client.GetPageIDMCP)

	// Search tools
	case "SearchPages":
		register(h, server, tool, spec, h.client.SearchPagesMCP)

	// Check tools
	case "CheckPageExists":
		register(h, server, tool, spec, h.client.CheckPageExistsMCP)
	case "DisambiguationOptions":
		register(h, server, tool, spec, h.client.DisambiguationOptionsMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
		// DestructiveHint defaults to true when absent
		DestructiveHint: ptr(spec.Destructive),
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It validates input before the client method runs and wraps the call with
// panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out Result, err error) {
		requestID := uuid.NewString()
		defer h.recoverPanic(ctx, spec, requestID, &err)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(
			attribute.String("mcp.request_id", requestID),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		if verr := wikipedia.ValidateArgs(args); verr != nil {
			field := ""
			var ve *apperrors.ValidationError
			if errors.As(verr, &ve) {
				field = ve.Field
			}
			metrics.RecordValidationFailure(spec.Name, field)
			span.SetStatus(codes.Error, verr.Error())
			h.logger.Warn("Tool input rejected",
				"tool", spec.Name,
				"request_id", requestID,
				"error", verr)
			return nil, out, verr
		}

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed",
				"tool", spec.Name,
				"request_id", requestID,
				"duration_ms", int64(duration*1000),
				"error", err)
			if !wikipedia.IsLookupMiss(err) {
				crashreport.Capture(h.hub, spec.Name, requestID, err)
			}
			return nil, out, apperrors.NewToolError(spec.Name, spec.ErrorLabel, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, requestID, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers and turns them into a
// labeled tool error.
func (h *HandlerRegistry) recoverPanic(ctx context.Context, spec ToolSpec, requestID string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(spec.Name).Inc()
		h.logger.Error("Panic recovered",
			"tool", spec.Name,
			"request_id", requestID,
			"panic", rec,
			"stack", string(debug.Stack()))
		crashreport.Recovered(ctx, h.hub, spec.Name, requestID, rec)
		*errp = apperrors.NewToolError(spec.Name, spec.ErrorLabel, fmt.Errorf("internal error: %v", rec))
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, requestID string, args, result any) {
	attrs := []any{"tool", spec.Name, "request_id", requestID}

	switch a := args.(type) {
	case wikipedia.PageArgs:
		attrs = append(attrs, "page", a.Page)
	case wikipedia.SearchArgs:
		attrs = append(attrs, "query", a.Query)
	}

	switch r := result.(type) {
	case wikipedia.SummaryResult:
		attrs = append(attrs, "chars", len(r.Summary))
		metrics.RecordContentSize(spec.Name, len(r.Summary))
	case wikipedia.ContentResult:
		attrs = append(attrs, "chars", len(r.Content))
		metrics.RecordContentSize(spec.Name, len(r.Content))
	case wikipedia.HTMLResult:
		attrs = append(attrs, "chars", len(r.HTML))
		metrics.RecordContentSize(spec.Name, len(r.HTML))
	case wikipedia.ImagesResult:
		attrs = append(attrs, "images", len(r.Images))
	case wikipedia.LinksResult:
		attrs = append(attrs, "links", len(r.Links))
	case wikipedia.ReferencesResult:
		attrs = append(attrs, "references", len(r.References))
	case wikipedia.CategoriesResult:
		attrs = append(attrs, "categories", len(r.Categories))
	case wikipedia.URLResult:
		attrs = append(attrs, "url", r.URL)
	case wikipedia.TitleResult:
		attrs = append(attrs, "title", r.Title)
	case wikipedia.PageIDResult:
		attrs = append(attrs, "page_id", r.PageID)
	case wikipedia.SearchResult:
		attrs = append(attrs, "results_count", len(r.Results))
	case wikipedia.ExistsResult:
		attrs = append(attrs, "exists", r.Exists)
	case wikipedia.DisambiguationResult:
		attrs = append(attrs, "disambiguation", r.Disambiguation, "options", len(r.Options))
	}

	h.logger.Info("Tool executed", attrs...)
}
