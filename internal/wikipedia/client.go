// Package wikipedia provides a client for the MediaWiki Action API of a
// Wikipedia language edition.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/base"
	"github.com/olgasafonova/wikipedia-mcp-server/metrics"
	"github.com/olgasafonova/wikipedia-mcp-server/tracing"
)

// maxContinuations bounds how many continuation requests assemble one list
const maxContinuations = 50

// Client handles communication with the Wikipedia API. It is safe for
// concurrent use and holds no per-call state.
type Client struct {
	*base.Client
	config Config
}

// ClientOption configures the Client (re-export base.ClientOption)
type ClientOption = base.ClientOption

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return base.WithHTTPClient(c)
}

// NewClient creates a new Wikipedia client. Options are applied after the
// ones derived from cfg, so tests can swap the HTTP client.
func NewClient(cfg Config, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	baseOpts := []ClientOption{
		base.WithLogger(logger),
		base.WithTimeout(cfg.Timeout),
		base.WithCircuitBreaker(base.NewBreaker(logger, cfg.BreakerThreshold)),
	}
	if cfg.Proxy != "" {
		proxy, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		baseOpts = append(baseOpts, base.WithProxy(proxy))
	}

	return &Client{
		Client: base.NewClient(append(baseOpts, opts...)...),
		config: cfg,
	}, nil
}

// Config returns the provider configuration
func (c *Client) Config() Config {
	return c.config
}

// query performs one API request and decodes the response into out.
// API error objects are returned as *APIError, overload as *TimeoutError.
func (c *Client) query(ctx context.Context, action string, params url.Values, out any) error {
	params.Set("action", action)
	params.Set("format", "json")
	params.Set("formatversion", "2")

	subject := requestSubject(params)

	ctx, span := tracing.StartSpan(ctx, "wikipedia."+action)
	defer span.End()
	tracing.AddProviderAttributes(span, action, c.config.Language, params.Get("titles"))

	start := time.Now()
	body, status, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       c.config.Endpoint() + "?" + params.Encode(),
		UserAgent: c.config.UserAgent,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if isTimeout(err) {
			err = &TimeoutError{Subject: subject, Err: err}
		}
		metrics.RecordAPICall(action, elapsed, false, "transport")
		tracing.RecordError(span, err)
		return err
	}

	if status != http.StatusOK {
		metrics.RecordAPICall(action, elapsed, false, fmt.Sprintf("http_%d", status))
		err := fmt.Errorf("API returned status %d", status)
		tracing.RecordError(span, err)
		return err
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.RecordAPICall(action, elapsed, false, "decode")
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if envelope.Error != nil {
		metrics.RecordAPICall(action, elapsed, false, envelope.Error.Code)
		var err error = envelope.Error
		if timeoutInfos[envelope.Error.Info] {
			err = &TimeoutError{Subject: subject, Err: envelope.Error}
		}
		tracing.RecordError(span, err)
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordAPICall(action, elapsed, false, "decode")
		return fmt.Errorf("failed to parse response: %w", err)
	}

	metrics.RecordAPICall(action, elapsed, true, "")
	c.Logger.Debug("API request completed",
		"action", action,
		"subject", subject,
		"duration_ms", int64(elapsed*1000))
	return nil
}

// queryAll follows the continuation object until the provider reports the
// answer complete. Each batch is passed to fn. A list still incomplete after
// maxContinuations requests is a ContinuationLimitError.
func (c *Client) queryAll(ctx context.Context, params url.Values, fn func(*queryResponse)) error {
	var cont map[string]any
	for i := 0; i < maxContinuations; i++ {
		p := cloneValues(params)
		for k, v := range cont {
			p.Set(k, fmt.Sprint(v))
		}

		var resp queryResponse
		if err := c.query(ctx, "query", p, &resp); err != nil {
			return err
		}
		fn(&resp)

		if len(resp.Continue) == 0 {
			return nil
		}
		cont = resp.Continue
	}

	subject := requestSubject(params)
	c.Logger.Warn("continuation limit reached",
		"limit", maxContinuations,
		"subject", subject)
	return &ContinuationLimitError{Subject: subject, Limit: maxContinuations}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func requestSubject(params url.Values) string {
	for _, key := range []string{"titles", "srsearch", "pageids", "pageid"} {
		if v := params.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// queryResponse is the formatversion=2 shape of action=query
type queryResponse struct {
	Continue map[string]any `json:"continue"`
	Query    struct {
		Pages  []apiPage   `json:"pages"`
		Search []searchHit `json:"search"`
	} `json:"query"`
}

type apiPage struct {
	PageID        int64          `json:"pageid"`
	Title         string         `json:"title"`
	Missing       bool           `json:"missing"`
	Invalid       bool           `json:"invalid"`
	InvalidReason string         `json:"invalidreason"`
	FullURL       string         `json:"fullurl"`
	PageProps     map[string]any `json:"pageprops"`
	Extract       string         `json:"extract"`

	Links []struct {
		Title string `json:"title"`
	} `json:"links"`
	ExtLinks []struct {
		URL string `json:"url"`
	} `json:"extlinks"`
	Categories []struct {
		Title string `json:"title"`
	} `json:"categories"`
	ImageInfo []struct {
		URL string `json:"url"`
	} `json:"imageinfo"`
}

type searchHit struct {
	Title string `json:"title"`
}

// parseResponse is the formatversion=2 shape of action=parse&prop=text
type parseResponse struct {
	Parse struct {
		Title  string `json:"title"`
		PageID int64  `json:"pageid"`
		Text   string `json:"text"`
	} `json:"parse"`
}
