// Wikipedia MCP Server - A Model Context Protocol server for Wikipedia
// Provides tools for reading page content, page properties and search results
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/config"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/crashreport"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia"
	"github.com/olgasafonova/wikipedia-mcp-server/metrics"
	"github.com/olgasafonova/wikipedia-mcp-server/tools"
	"github.com/olgasafonova/wikipedia-mcp-server/tracing"
)

const (
	ServerName    = "wikipedia-mcp-server"
	ServerVersion = "1.0.0"

	serverInstructions = "Provides tools to query Wikipedia content, including summary, full content, references, categories, images, links, and more."

	shutdownTimeout = 10 * time.Second
)

// recoverPanic logs a panic instead of crashing the process
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", ServerName, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet(ServerName, flag.ContinueOnError)
	httpAddr := flags.String("http", "", "serve MCP over streamable HTTP on this address instead of stdio (e.g. :8080)")
	configPath := flags.String("config", "", "path to a YAML configuration file")
	showVersion := flags.Bool("version", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("%s %s\n", ServerName, ServerVersion)
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrap(err, "loading .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return eris.Wrap(err, "loading configuration")
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	// Configure logging to stderr (stdout is used for MCP protocol)
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tc := cfg.Tracing
	tc.ServiceVersion = ServerVersion
	shutdownTracing, err := tracing.Setup(ctx, tc)
	if err != nil {
		return eris.Wrap(err, "setting up tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	hub, flush, err := crashreport.Init(crashreport.Settings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     ServerName + "@" + ServerVersion,
	})
	if err != nil {
		return err
	}
	defer flush()

	client, err := wikipedia.NewClient(cfg.Wikipedia, logger)
	if err != nil {
		return eris.Wrap(err, "creating wikipedia client")
	}

	server := newServer(client, logger, hub)

	logger.Info("Starting Wikipedia MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"language", cfg.Wikipedia.Language,
		"endpoint", cfg.Wikipedia.Endpoint(),
		"tracing", tc.Enabled,
		"crash_reporting", hub != nil,
	)

	if cfg.HTTPAddr != "" {
		return serveHTTP(ctx, newRouter(server, logger, DefaultSecurityConfig()), cfg.HTTPAddr, logger)
	}

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return eris.Wrap(err, "server error")
	}
	return nil
}

// newServer creates the MCP server with every Wikipedia tool registered
func newServer(client *wikipedia.Client, logger *slog.Logger, hub *sentry.Hub) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	tools.NewHandlerRegistry(client, logger, tools.WithSentryHub(hub)).RegisterAll(server)
	return server
}

// newRouter exposes the MCP endpoint next to health and metrics endpoints
func newRouter(server *mcp.Server, logger *slog.Logger, security SecurityConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics)
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))

	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	r.Handle("/mcp", NewSecurityMiddleware(mcpHandler, logger, security))

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"name":    ServerName,
		"version": ServerVersion,
	})
}

// httpMetrics records request counts and latency by route pattern
func httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// serveHTTP runs the HTTP server until ctx is cancelled
func serveHTTP(ctx context.Context, handler http.Handler, addr string, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer recoverPanic(logger, "http server")
		logger.Info("Listening for MCP over HTTP", "addr", addr, "endpoint", "/mcp")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrapf(err, "listening on %s", addr)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return eris.Wrap(err, "shutting down HTTP server")
	}
	return nil
}
