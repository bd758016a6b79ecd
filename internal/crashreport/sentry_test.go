package crashreport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestInit_Disabled(t *testing.T) {
	hub, flush, err := Init(Settings{})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if hub != nil {
		t.Error("expected nil hub without a DSN")
	}
	flush()
}

func TestInit_InvalidDSN(t *testing.T) {
	_, _, err := Init(Settings{DSN: "not-a-dsn"})
	if err == nil {
		t.Fatal("expected error for invalid DSN")
	}
}

func TestInit_Enabled(t *testing.T) {
	hub, flush, err := Init(Settings{
		DSN:         "https://public@sentry.example.com/1",
		Environment: "test",
		Release:     "wikipedia-mcp-server@test",
	})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if hub == nil || hub.Client() == nil {
		t.Fatal("expected a hub bound to a client")
	}
	if got := hub.Client().Options().Environment; got != "test" {
		t.Errorf("Environment = %q, want test", got)
	}
	flush()
}

// recordingHub returns a hub whose events are collected instead of sent
func recordingHub(t *testing.T) (*sentry.Hub, func() []*sentry.Event) {
	t.Helper()
	var mu sync.Mutex
	var events []*sentry.Event

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	return sentry.NewHub(client, sentry.NewScope()), func() []*sentry.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]*sentry.Event(nil), events...)
	}
}

func TestRecovered(t *testing.T) {
	hub, events := recordingHub(t)

	Recovered(context.Background(), hub, "get_summary", "req-1", "boom")

	got := events()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Tags["mcp.tool"] != "get_summary" {
		t.Errorf("mcp.tool tag = %q", got[0].Tags["mcp.tool"])
	}
	if got[0].Tags["request_id"] != "req-1" {
		t.Errorf("request_id tag = %q", got[0].Tags["request_id"])
	}
}

func TestCapture(t *testing.T) {
	hub, events := recordingHub(t)

	Capture(hub, "search_pages", "", errors.New("unexpected"))
	Capture(hub, "search_pages", "", nil)

	got := events()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if _, ok := got[0].Tags["request_id"]; ok {
		t.Error("empty request id should not be tagged")
	}
}

func TestNilHubIsNoop(t *testing.T) {
	Recovered(context.Background(), nil, "get_title", "req", "boom")
	Capture(nil, "get_title", "req", errors.New("x"))
}

func TestScopeDoesNotLeak(t *testing.T) {
	hub, events := recordingHub(t)

	Capture(hub, "get_links", "", errors.New("first"))
	hub.CaptureException(errors.New("second"))

	got := events()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if _, ok := got[1].Tags["mcp.tool"]; ok {
		t.Error("tool tag leaked into the parent hub scope")
	}
}
