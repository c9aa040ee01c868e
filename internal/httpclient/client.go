// Package httpclient provides an instrumented HTTP client for JSON data
// providers, with OTEL tracing and metrics.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter  = "http_client_requests_total"
	metricRequestDuration = "http_client_request_duration_seconds"
)

// ResponseErrorHandler maps an HTTP status and body to a domain error.
// Returning nil accepts the response.
type ResponseErrorHandler func(statusCode int, body []byte) error

// Client is an instrumented JSON HTTP client bound to one provider.
type Client struct {
	client          *http.Client
	tracer          trace.Tracer
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	providerName    string
	baseURL         string
	defaultHeaders  map[string]string
	errorHandler    ResponseErrorHandler
}

// Option configures a Client.
type Option func(*Client)

// WithProviderName sets the provider name used in metrics and traces.
func WithProviderName(name string) Option {
	return func(c *Client) { c.providerName = name }
}

// WithBaseURL sets the base URL prepended to relative request paths.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHeaders sets default headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

// WithResponseErrorHandler sets the handler that turns error responses
// into domain errors.
func WithResponseErrorHandler(h ResponseErrorHandler) Option {
	return func(c *Client) { c.errorHandler = h }
}

// New creates an instrumented client. The underlying transport is wrapped
// with otelhttp so every request carries a client span.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				DialContext: (&net.Dialer{
					KeepAlive: defaultDialKeepAlive,
				}).DialContext,
				MaxConnsPerHost: defaultMaxConnsPerHost,
				IdleConnTimeout: defaultIdleConnTimeout,
			}),
		},
		providerName:   "default",
		defaultHeaders: make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}

	c.tracer = otel.GetTracerProvider().Tracer("httpclient")

	meter := otel.GetMeterProvider().Meter(
		"httpclient",
		metric.WithInstrumentationAttributes(attribute.String("provider", c.providerName)),
	)

	var err error
	c.requestCounter, err = meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}
	c.requestDuration, err = meter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("HTTP request latency in seconds"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Get performs a GET against path (relative to the base URL) and returns
// the raw response body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// PostJSON performs a POST with a JSON-encoded body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: marshal body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, encoded, "application/json")
}

// PostRaw performs a POST with an opaque body (e.g. CBOR transaction
// bytes) and the given content type.
func (c *Client) PostRaw(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, contentType)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) ([]byte, error) {
	fullURL := path
	if c.baseURL != "" && !strings.HasPrefix(path, "http") {
		fullURL = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", fullURL),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure(ctx, span, err)
		return nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read body")
		c.record(ctx, method, false, time.Since(start))
		return nil, fmt.Errorf("httpclient: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(
			attribute.Int("http.status_code", resp.StatusCode),
			attribute.String("http.error.status", resp.Status),
		)
		c.record(ctx, method, false, time.Since(start))
		if c.errorHandler != nil {
			if handlerErr := c.errorHandler(resp.StatusCode, respBody); handlerErr != nil {
				span.SetStatus(codes.Error, handlerErr.Error())
				return respBody, handlerErr
			}
		}
		return respBody, fmt.Errorf("httpclient: %s %s: unexpected status %s", method, fullURL, resp.Status)
	}

	c.record(ctx, method, true, time.Since(start))
	return respBody, nil
}

func (c *Client) recordFailure(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	c.record(ctx, "", false, 0)
}

func (c *Client) record(ctx context.Context, method string, success bool, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", c.providerName),
		attribute.Bool("success", success),
	}
	if method != "" {
		attrs = append(attrs, attribute.String("http.method", method))
	}
	c.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if elapsed > 0 {
		c.requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	}
}
