// Command smoke runs a handful of tool calls against the live Wikipedia API
// through an in-memory MCP session and reports what came back.
//
// Usage:
//
//	go run ./cmd/smoke -config ./config.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/config"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia"
	"github.com/olgasafonova/wikipedia-mcp-server/tools"
)

type scenario struct {
	name  string
	tool  string
	args  map[string]any
	check func(res *mcp.CallToolResult) error
}

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	verbose := flag.Bool("verbose", false, "print full tool output")
	flag.Parse()

	fmt.Println("Wikipedia MCP Server - Live Smoke Test")
	fmt.Println("======================================")
	fmt.Println()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	client, err := wikipedia.NewClient(cfg.Wikipedia, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	session, err := connect(ctx, client, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session error: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	fmt.Printf("Endpoint: %s\n\n", cfg.Wikipedia.Endpoint())

	failed := 0
	for i, sc := range scenarios() {
		start := time.Now()
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: sc.tool, Arguments: sc.args})
		elapsed := time.Since(start)
		if err == nil {
			err = sc.check(res)
		}

		status := "PASS"
		if err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%d. [%s] %s (%s, %v)\n", i+1, status, sc.name, sc.tool, elapsed.Round(time.Millisecond))
		if err != nil {
			fmt.Printf("   %v\n", err)
		}
		if *verbose && res != nil {
			fmt.Printf("   %s\n", describe(res))
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d scenario(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("All scenarios passed")
}

func connect(ctx context.Context, client *wikipedia.Client, logger *slog.Logger) (*mcp.ClientSession, error) {
	server := mcp.NewServer(&mcp.Implementation{Name: "wikipedia-mcp-server", Version: "smoke"}, nil)
	tools.NewHandlerRegistry(client, logger).RegisterAll(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		return nil, err
	}
	return mcp.NewClient(&mcp.Implementation{Name: "smoke", Version: "smoke"}, nil).Connect(ctx, clientTransport, nil)
}

func scenarios() []scenario {
	const missing = "XYZNOPAGEQQQ123"
	return []scenario{
		{
			name: "summary of an existing page",
			tool: "get_summary",
			args: map[string]any{"page": "Albert Einstein"},
			check: func(res *mcp.CallToolResult) error {
				var out wikipedia.SummaryResult
				if err := structured(res, &out); err != nil {
					return err
				}
				if strings.TrimSpace(out.Summary) == "" {
					return fmt.Errorf("summary is empty")
				}
				return nil
			},
		},
		{
			name:  "summary of a missing page",
			tool:  "get_summary",
			args:  map[string]any{"page": missing},
			check: wantError("Summary error: "),
		},
		{
			name: "existence of a missing page",
			tool: "check_page_exists",
			args: map[string]any{"page": missing},
			check: func(res *mcp.CallToolResult) error {
				var out wikipedia.ExistsResult
				if err := structured(res, &out); err != nil {
					return err
				}
				if out.Exists {
					return fmt.Errorf("exists = true, want false")
				}
				return nil
			},
		},
		{
			name: "options of an ambiguous title",
			tool: "disambiguation_options",
			args: map[string]any{"page": "Mercury"},
			check: func(res *mcp.CallToolResult) error {
				var out wikipedia.DisambiguationResult
				if err := structured(res, &out); err != nil {
					return err
				}
				if !out.Disambiguation || len(out.Options) == 0 {
					return fmt.Errorf("got %+v, want options", out)
				}
				return nil
			},
		},
		{
			name: "search without matches",
			tool: "search_pages",
			args: map[string]any{"query": "qwxzvbnmlkjhgfdsa"},
			check: func(res *mcp.CallToolResult) error {
				var out wikipedia.SearchResult
				if err := structured(res, &out); err != nil {
					return err
				}
				if len(out.Results) != 0 {
					return fmt.Errorf("results = %v, want none", out.Results)
				}
				return nil
			},
		},
		{
			name:  "blank title",
			tool:  "get_url",
			args:  map[string]any{"page": "  "},
			check: wantError("validation failed"),
		},
	}
}

func structured(res *mcp.CallToolResult, out any) error {
	if res.IsError {
		return fmt.Errorf("tool error: %s", text(res))
	}
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func wantError(prefix string) func(*mcp.CallToolResult) error {
	return func(res *mcp.CallToolResult) error {
		if !res.IsError {
			return fmt.Errorf("expected a tool error")
		}
		if got := text(res); !strings.HasPrefix(got, prefix) {
			return fmt.Errorf("error %q should start with %q", got, prefix)
		}
		return nil
	}
}

func text(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func describe(res *mcp.CallToolResult) string {
	if res.IsError {
		return text(res)
	}
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return err.Error()
	}
	if len(data) > 300 {
		return string(data[:300]) + "..."
	}
	return string(data)
}
