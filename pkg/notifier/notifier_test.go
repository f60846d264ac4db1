package notifier_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dukex/camrelay/pkg/models"
	"github.com/dukex/camrelay/pkg/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var isoTimestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{6})?\+00:00$`)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(baseURL string) models.TriggerConfig {
	return models.TriggerConfig{
		BaseURL:     baseURL,
		Item:        "CameraPersonDetected",
		EventType:   models.EventTypeCameraPerson,
		ThreadState: models.ThreadStateStarted,
		Timeout:     5 * time.Second,
	}
}

type capturedRequest struct {
	method  string
	path    string
	body    string
	headers http.Header
}

func newOpenHAB(t *testing.T, status int, responseBody string) (*httptest.Server, *atomic.Int32, chan capturedRequest) {
	t.Helper()

	var calls atomic.Int32

	captured := make(chan capturedRequest, 10)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		captured <- capturedRequest{
			method:  r.Method,
			path:    r.URL.Path,
			body:    string(body),
			headers: r.Header.Clone(),
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(server.Close)

	return server, &calls, captured
}

func TestNotifier_Trigger_Success(t *testing.T) {
	t.Parallel()

	server, calls, captured := newOpenHAB(t, http.StatusAccepted, "")

	result, err := notifier.New(testLogger()).Trigger(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	assert.True(t, result.Triggered)
	assert.Equal(t, http.StatusAccepted, result.StatusCode)
	assert.Equal(t, "CameraPersonDetected", result.Item)
	assert.Equal(t, server.URL+"/rest/items/CameraPersonDetected", result.URL)
	assert.Equal(t, int32(1), calls.Load())

	req := <-captured
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/rest/items/CameraPersonDetected", req.path)
	assert.Regexp(t, isoTimestamp, req.body)
	assert.Equal(t, result.Timestamp, req.body)
	assert.Equal(t, "text/plain", req.headers.Get("Content-Type"))
	assert.Equal(t, "application/json", req.headers.Get("Accept"))
	assert.Empty(t, req.headers.Values("Authorization"))
	assert.Equal(t, []string{""}, req.headers.Values(notifier.HeaderAccessClientID))
	assert.Equal(t, []string{""}, req.headers.Values(notifier.HeaderAccessClientSecret))
}

func TestNotifier_Trigger_TokenAndAccessHeaders(t *testing.T) {
	t.Parallel()

	server, _, captured := newOpenHAB(t, http.StatusOK, "")

	config := testConfig(server.URL)
	config.Token = "oh.relay.abc123"
	config.Access = models.AccessHeaders{ClientID: "client.access", ClientSecret: "s3cr3t"}

	result, err := notifier.New(testLogger()).Trigger(context.Background(), config)
	require.NoError(t, err)
	assert.True(t, result.Triggered)

	req := <-captured
	assert.Equal(t, "Bearer oh.relay.abc123", req.headers.Get("Authorization"))
	assert.Equal(t, "client.access", req.headers.Get(notifier.HeaderAccessClientID))
	assert.Equal(t, "s3cr3t", req.headers.Get(notifier.HeaderAccessClientSecret))
}

func TestNotifier_Trigger_UsesClockInUTC(t *testing.T) {
	t.Parallel()

	server, _, captured := newOpenHAB(t, http.StatusOK, "")

	berlin := time.FixedZone("CEST", 2*60*60)
	fixed := time.Date(2026, 10, 19, 11, 15, 30, 123456000, berlin)

	n := notifier.New(testLogger(), notifier.WithClock(func() time.Time { return fixed }))

	result, err := n.Trigger(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	assert.Equal(t, "2026-10-19T09:15:30.123456+00:00", result.Timestamp)
	assert.Equal(t, "2026-10-19T09:15:30.123456+00:00", (<-captured).body)
}

func TestNotifier_Trigger_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	server, calls, _ := newOpenHAB(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`)

	result, err := notifier.New(testLogger()).Trigger(context.Background(), testConfig(server.URL))
	require.Error(t, err)

	assert.False(t, result.Triggered)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, err, notifier.ErrUnexpectedStatus)

	var statusErr *notifier.StatusError

	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, `{"error":{"message":"boom"}}`, statusErr.Body)
	assert.Contains(t, err.Error(), "500")
}

func TestNotifier_Trigger_ClientErrors(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		server, calls, _ := newOpenHAB(t, status, "")

		result, err := notifier.New(testLogger()).Trigger(context.Background(), testConfig(server.URL))

		require.ErrorIs(t, err, notifier.ErrUnexpectedStatus, "status %d", status)
		assert.False(t, result.Triggered)
		assert.Equal(t, status, result.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	}
}

func TestNotifier_Trigger_ConnectionRefused(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	result, err := notifier.New(testLogger()).Trigger(context.Background(), testConfig(baseURL))

	require.ErrorIs(t, err, notifier.ErrRequestFailed)
	assert.False(t, result.Triggered)
	assert.Zero(t, result.StatusCode)
}

func TestNotifier_Trigger_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	config := testConfig(server.URL)
	config.Timeout = 50 * time.Millisecond

	started := time.Now()
	result, err := notifier.New(testLogger()).Trigger(context.Background(), config)

	require.ErrorIs(t, err, notifier.ErrRequestFailed)
	assert.False(t, result.Triggered)
	assert.Less(t, time.Since(started), 5*time.Second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotifier_Trigger_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	config := testConfig("")

	_, err := notifier.New(testLogger()).Trigger(context.Background(), config)
	require.ErrorIs(t, err, notifier.ErrInvalidBaseURL)
}

func TestItemURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		item     string
		expected string
	}{
		{name: "plain", baseURL: "https://openhab.local", item: "CameraPersonDetected", expected: "https://openhab.local/rest/items/CameraPersonDetected"},
		{name: "trailing slash", baseURL: "https://openhab.local/", item: "CameraPersonDetected", expected: "https://openhab.local/rest/items/CameraPersonDetected"},
		{name: "with port and prefix", baseURL: "http://10.0.0.5:8080/oh", item: "Front_Door", expected: "http://10.0.0.5:8080/oh/rest/items/Front_Door"},
		{name: "escaped item", baseURL: "https://openhab.local", item: "Front Door", expected: "https://openhab.local/rest/items/Front%20Door"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			itemURL, err := notifier.ItemURL(tt.baseURL, tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, itemURL)
		})
	}
}

func TestItemURL_Invalid(t *testing.T) {
	t.Parallel()

	_, err := notifier.ItemURL("://bad", "Item")
	require.ErrorIs(t, err, notifier.ErrInvalidBaseURL)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestNotifier_Trigger_TransportError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)

		return nil, errors.New("tunnel closed")
	})

	n := notifier.New(testLogger(), notifier.WithTransport(transport))

	result, err := n.Trigger(context.Background(), testConfig("https://openhab.local"))

	require.ErrorIs(t, err, notifier.ErrRequestFailed)
	assert.False(t, result.Triggered)
	assert.Equal(t, "https://openhab.local/rest/items/CameraPersonDetected", result.URL)
	assert.Equal(t, int32(1), calls.Load())
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func (failingBody) Close() error { return nil }

func TestNotifier_Trigger_LogsBodyReadError(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, nil))

	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Header:     http.Header{},
			Body:       failingBody{},
			Request:    r,
		}, nil
	})

	n := notifier.New(logger, notifier.WithTransport(transport))

	_, err := n.Trigger(context.Background(), testConfig("https://openhab.local"))

	var statusErr *notifier.StatusError

	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, logs.String(), "status_code=500")
	assert.Contains(t, logs.String(), `read_error="connection reset"`)
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "microseconds",
			input:    time.Date(2026, 10, 19, 9, 15, 30, 123456000, time.UTC),
			expected: "2026-10-19T09:15:30.123456+00:00",
		},
		{
			name:     "trailing zeros are kept",
			input:    time.Date(2026, 1, 1, 0, 0, 0, 120000000, time.UTC),
			expected: "2026-01-01T00:00:00.120000+00:00",
		},
		{
			name:     "nanoseconds are truncated",
			input:    time.Date(2026, 1, 1, 0, 0, 0, 1999, time.UTC),
			expected: "2026-01-01T00:00:00.000001+00:00",
		},
		{
			name:     "whole second has no fraction",
			input:    time.Date(2026, 1, 1, 0, 0, 0, 999, time.UTC),
			expected: "2026-01-01T00:00:00+00:00",
		},
		{
			name:     "converted to UTC",
			input:    time.Date(2026, 10, 19, 11, 15, 30, 500000000, berlin),
			expected: "2026-10-19T09:15:30.500000+00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, notifier.FormatTimestamp(tt.input))
		})
	}
}
