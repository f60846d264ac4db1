// Package notifier sets an openHAB item's state to the current time.
package notifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/camrelay/pkg/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultTimeout bounds a trigger call when the configuration leaves it unset.
	DefaultTimeout = 10 * time.Second

	// TimestampLayout is ISO-8601 with six fractional digits and a numeric offset,
	// e.g. 2026-10-19T09:15:30.120000+00:00.
	TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

	// timestampSecondsLayout is used when the instant has no sub-second part.
	timestampSecondsLayout = "2006-01-02T15:04:05-07:00"

	HeaderAccessClientID     = "CF-Access-Client-Id"
	HeaderAccessClientSecret = "CF-Access-Client-Secret"

	maxResponseBodyBytes = 64 * 1024
)

// Notifier performs the outbound openHAB call. It holds no per-call state and
// is safe for concurrent use.
type Notifier struct {
	transport http.RoundTripper
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithTransport replaces the HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(n *Notifier) {
		n.transport = transport
	}
}

// WithClock replaces the time source used for the item state.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

// New creates a Notifier with an OpenTelemetry-instrumented transport.
func New(logger *slog.Logger, opts ...Option) *Notifier {
	notifier := &Notifier{
		transport: otelhttp.NewTransport(http.DefaultTransport),
		now:       time.Now,
		logger:    logger.With("module", "notifier"),
	}

	for _, opt := range opts {
		opt(notifier)
	}

	return notifier
}

// ItemURL joins the base URL with the openHAB items REST path.
func ItemURL(baseURL, item string) (string, error) {
	if baseURL == "" {
		return "", ErrInvalidBaseURL
	}

	itemURL, err := url.JoinPath(baseURL, "rest", "items", item)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	return itemURL, nil
}

// Trigger sets config.Item to the current UTC timestamp with one POST.
// It never retries; failures are logged and returned.
func (n *Notifier) Trigger(ctx context.Context, config models.TriggerConfig) (models.TriggerResult, error) {
	timestamp := FormatTimestamp(n.now())

	result := models.TriggerResult{
		Item:      config.Item,
		Timestamp: timestamp,
	}

	itemURL, err := ItemURL(config.BaseURL, config.Item)
	if err != nil {
		return result, err
	}

	result.URL = itemURL

	logger := n.logger.With("item", config.Item, "url", itemURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, itemURL, strings.NewReader(timestamp))
	if err != nil {
		return result, fmt.Errorf("failed to create http request: %w", err)
	}

	setRequestHeaders(req, config)

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Transport:     n.transport,
		CheckRedirect: nil,
		Jar:           nil,
		Timeout:       timeout,
	}

	logger.DebugContext(ctx, "Sending openHAB item update", "timestamp", timestamp, "timeout", timeout)

	resp, err := client.Do(req)
	if err != nil {
		logger.ErrorContext(ctx, "Error triggering openHAB", "error", err)

		return result, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	result.StatusCode = resp.StatusCode

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, readErr := readBody(resp.Body)

		attrs := []any{"status_code", resp.StatusCode, "response_body", body}
		if readErr != nil {
			attrs = append(attrs, "read_error", readErr)
		}

		logger.ErrorContext(ctx, "Error triggering openHAB", attrs...)

		return result, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))

	result.Triggered = true

	logger.InfoContext(ctx, "Successfully triggered openHAB item",
		"timestamp", timestamp,
		"status_code", resp.StatusCode)

	return result, nil
}

func setRequestHeaders(req *http.Request, config models.TriggerConfig) {
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAccessClientID, config.Access.ClientID)
	req.Header.Set(HeaderAccessClientSecret, config.Access.ClientSecret)

	if config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+config.Token)
	}
}

// readBody returns whatever was read before an error.
func readBody(body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseBodyBytes))

	return strings.TrimSpace(string(data)), err
}

// FormatTimestamp renders t in UTC, truncated to microseconds. The fraction is
// always six digits and is omitted entirely for whole seconds.
func FormatTimestamp(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(timestampSecondsLayout)
	}

	return t.Format(TimestampLayout)
}
