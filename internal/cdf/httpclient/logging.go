package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cognite/powerops/internal/log"
)

const (
	redactedValue    = "[REDACTED]"
	maxLoggedBodyLen = 1000
)

// LoggingHTTPClient wraps an HTTP client to add trace logging.
type LoggingHTTPClient struct {
	wrapped *http.Client
	logger  *slog.Logger
}

// NewLoggingHTTPClient creates a logging client with a default timeout.
func NewLoggingHTTPClient(logger *slog.Logger) *LoggingHTTPClient {
	return NewLoggingHTTPClientWithClient(&http.Client{Timeout: 60 * time.Second}, logger)
}

// NewLoggingHTTPClientWithClient wraps an existing HTTP client.
func NewLoggingHTTPClientWithClient(client *http.Client, logger *slog.Logger) *LoggingHTTPClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingHTTPClient{
		wrapped: client,
		logger:  logger,
	}
}

// Do executes the request, logging it and its response at trace level.
func (c *LoggingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if !c.logger.Enabled(req.Context(), log.LevelTrace) {
		return c.wrapped.Do(req)
	}

	start := time.Now()
	c.logRequest(req)

	resp, err := c.wrapped.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP request failed",
			slog.String("method", req.Method),
			slog.String("route", req.URL.Path),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logResponse(req, resp, duration)
	return resp, nil
}

func (c *LoggingHTTPClient) logRequest(req *http.Request) {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("route", req.URL.Path),
		slog.String("host", req.URL.Host),
		slog.Any("query_params", redactQuery(req.URL.Query())),
		slog.Any("headers", redactHeaders(req.Header)),
	}
	if req.Body != nil && req.ContentLength > 0 {
		attrs = append(attrs, slog.Int64("content_length", req.ContentLength))
	}
	attrs = append(attrs, log.HTTPLogContextAttrs(req.Context())...)

	c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP request", attrs...)
}

func (c *LoggingHTTPClient) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("route", req.URL.Path),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", duration),
		slog.Any("headers", redactHeaders(resp.Header)),
	}
	if resp.ContentLength > 0 {
		attrs = append(attrs, slog.Int64("content_length", resp.ContentLength))
	}
	attrs = append(attrs, log.HTTPLogContextAttrs(req.Context())...)

	if resp.StatusCode >= 400 {
		if body, err := peekResponseBody(resp); err == nil && body != "" {
			if len(body) > maxLoggedBodyLen {
				body = fmt.Sprintf("%s... [truncated, total %d bytes]", body[:maxLoggedBodyLen], len(body))
			}
			attrs = append(attrs, slog.String("error_body", body))
		}
	}

	c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP response", attrs...)
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	return key == "authorization" ||
		key == "set-cookie" ||
		key == "x-api-key" ||
		strings.Contains(key, "token") ||
		strings.Contains(key, "secret")
}

func redactHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if isSensitive(k) {
			headers[k] = redactedValue
			continue
		}
		headers[k] = strings.Join(v, ", ")
	}
	return headers
}

func redactQuery(q url.Values) map[string]string {
	params := make(map[string]string, len(q))
	for k, v := range q {
		if isSensitive(k) {
			params[k] = redactedValue
			continue
		}
		params[k] = strings.Join(v, ",")
	}
	return params
}

// peekResponseBody reads the response body and restores it for the caller.
func peekResponseBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return string(bodyBytes), nil
}
