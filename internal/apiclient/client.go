package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits shared by every concurrent tool call
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the HTTP response body, limited by the request's size cap.
	Body []byte

	// StatusCode is the HTTP status code. Zero if the request failed before
	// receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error is a *TransportError, or nil if the API answered below 400.
	Error error
}

// Client is an HTTP client wrapper for calls to the generation API.
//
// Client uses per-request timeouts via context rather than a global timeout,
// so list, generate, poll and download calls each get their own bound.
// Client is safe for concurrent use; the connection pool is the only state
// shared between tool calls.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new [Client] with a pooled transport.
//
// Connection pooling configuration:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false,
			},
		},
	}
}

// Fetch performs an HTTP request with a 1MB body cap and returns a
// structured [Response].
//
// If method is empty, GET is used. A non-nil body is sent as JSON.
// The timeout is applied via context cancellation.
//
// Fetch always returns a Response; failures are captured in the Error field
// as a *TransportError. A status of 400 or above is a failure.
func (c *Client) Fetch(ctx context.Context, method, url string, headers map[string]string, body []byte, timeout time.Duration) Response {
	return c.do(ctx, method, url, headers, body, timeout, maxResponseBodySize)
}

// Download fetches url with GET and a caller-chosen body cap. A body larger
// than limit is an error rather than a silent truncation.
func (c *Client) Download(ctx context.Context, url string, timeout time.Duration, limit int64) Response {
	resp := c.do(ctx, http.MethodGet, url, nil, nil, timeout, limit+1)
	if resp.Error == nil && int64(len(resp.Body)) > limit {
		resp.Body = nil
		resp.Error = &TransportError{
			Kind:   KindConnection,
			Detail: fmt.Sprintf("response body exceeds %d bytes", limit),
		}
	}
	return resp
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body []byte, timeout time.Duration, limit int64) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error: &TransportError{
				Kind:   KindConnection,
				Detail: fmt.Sprintf("failed to create request: %v", err),
				Err:    err,
			},
		}
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   classify(err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      classify(err),
		}
	}

	out := Response{
		Body:       respBody,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
	if resp.StatusCode >= http.StatusBadRequest {
		out.Error = &TransportError{
			Kind: KindStatus,
			Code: resp.StatusCode,
			Body: string(respBody),
		}
	}
	return out
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
