package cdf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Doer abstracts the ability to execute HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// result is a simplified HTTP response payload.
type result struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// request issues an HTTP request. Relative paths are resolved against baseURL;
// caller headers take precedence over the defaults.
func request(
	ctx context.Context,
	client Doer,
	method string,
	baseURL string,
	path string,
	token string,
	headers map[string]string,
	body io.Reader,
) (*result, error) {
	if client == nil {
		client = http.DefaultClient
	}

	endpoint, err := resolveEndpoint(baseURL, path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &result{
		StatusCode: resp.StatusCode,
		Body:       bytes,
		Header:     resp.Header.Clone(),
	}, nil
}

func resolveEndpoint(baseURL, path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return "", fmt.Errorf("endpoint path cannot be empty")
	}

	if strings.HasPrefix(trimmedPath, "http://") || strings.HasPrefix(trimmedPath, "https://") {
		return trimmedPath, nil
	}

	if baseURL == "" {
		return "", fmt.Errorf("base URL cannot be empty")
	}

	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(trimmedPath, "/"), nil
}

// newAPIError reads the platform error envelope, falling back to the raw body.
func newAPIError(res *result) *APIError {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		RequestID:  res.Header.Get("X-Request-Id"),
	}

	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(res.Body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(res.Body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(res.StatusCode)
	}
	return apiErr
}
