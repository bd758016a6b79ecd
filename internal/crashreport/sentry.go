// Package crashreport forwards recovered panics and unexpected failures to
// Sentry. Every function is a no-op when no hub is configured.
package crashreport

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
)

// FlushTimeout bounds how long a flush waits for queued events
const FlushTimeout = 2 * time.Second

// Settings represents the configuration required to bootstrap Sentry.
type Settings struct {
	DSN         string
	Environment string
	Release     string
}

// Init creates a Sentry hub. An empty DSN disables reporting and returns a
// nil hub with a no-op flush.
func Init(settings Settings) (*sentry.Hub, func(), error) {
	if settings.DSN == "" {
		return nil, func() {}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         settings.DSN,
		Environment: settings.Environment,
		Release:     settings.Release,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "error initializing sentry client")
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	flush := func() {
		hub.Flush(FlushTimeout)
	}

	return hub, flush, nil
}

// Recovered reports a panic recovered inside a tool handler
func Recovered(ctx context.Context, hub *sentry.Hub, tool, requestID string, rec any) {
	if hub == nil {
		return
	}
	local := scoped(hub, tool, requestID)
	local.RecoverWithContext(ctx, rec)
}

// Capture reports an unexpected error from a tool handler
func Capture(hub *sentry.Hub, tool, requestID string, err error) {
	if hub == nil || err == nil {
		return
	}
	scoped(hub, tool, requestID).CaptureException(err)
}

func scoped(hub *sentry.Hub, tool, requestID string) *sentry.Hub {
	local := hub.Clone()
	scope := local.Scope()
	scope.SetTag("mcp.tool", tool)
	if requestID != "" {
		scope.SetTag("request_id", requestID)
	}
	return local
}
