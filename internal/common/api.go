package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultAPITimeout = 10 * time.Second

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
}

// APIClient talks to the remote resource API. It owns the base
// configuration and the retry policy shared by every call.
type APIClient struct {
	client  *resty.Client
	retry   RetryPolicy
	logger  *slog.Logger
	metrics *Metrics
}

// Call describes one resource API request relative to the base URL.
type Call struct {
	Method      string
	Path        string
	PathParams  map[string]string
	QueryParams map[string]string
	Body        any
}

func NewAPIClient(cfg APIConfig, logger *slog.Logger, metrics *Metrics) (*APIClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url must be provided")
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}

	if metrics == nil {
		metrics = NewMetrics("journal", "api", prometheus.NewRegistry())
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &APIClient{
		client:  client,
		retry:   cfg.Retry,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Close releases idle keep-alive connections held by the transport.
func (c *APIClient) Close() {
	c.client.GetClient().CloseIdleConnections()
}

// RetryPolicy returns the client's policy with retries of the named
// operation logged and counted.
func (c *APIClient) RetryPolicy(operation string) RetryPolicy {
	p := c.retry
	p.Notify = func(err error, delay time.Duration) {
		c.metrics.CounterAPIRetries.WithLabelValues(operation).Inc()
		c.logger.Warn("retrying api operation",
			slog.String("operation", operation),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
	}
	return p
}

// Request performs a single call and decodes a successful body into T.
// Every failure is logged and returned as an *APIError.
func Request[T any](ctx context.Context, c *APIClient, call Call) (T, error) {
	var result T

	req := c.client.R().SetContext(ctx)
	if len(call.PathParams) > 0 {
		req.SetPathParams(call.PathParams)
	}
	if len(call.QueryParams) > 0 {
		req.SetQueryParams(call.QueryParams)
	}
	if call.Body != nil {
		req.SetBody(call.Body)
	}

	start := time.Now()
	resp, err := req.Execute(call.Method, call.Path)
	c.metrics.HistAPIRequestDuration.WithLabelValues(call.Method).Observe(time.Since(start).Seconds())

	target := req.URL
	if target == "" {
		target = call.Path
	}

	if err != nil {
		return result, c.fail(call.Method, classifyTransportError(target, err))
	}

	if !resp.IsSuccess() {
		return result, c.fail(call.Method, serverError(target, resp.StatusCode(), messageFromBody(resp.Body())))
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return result, c.fail(call.Method, validationError(target, nil))
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, c.fail(call.Method, validationError(target, err))
	}

	c.metrics.CounterAPIRequests.WithLabelValues(call.Method, "ok").Inc()

	return result, nil
}

// RequestWithRetry is Request wrapped in the client's retry policy.
func RequestWithRetry[T any](ctx context.Context, c *APIClient, operation string, call Call) (T, error) {
	return Retry(ctx, c.RetryPolicy(operation), func() (T, error) {
		return Request[T](ctx, c, call)
	})
}

// DecodeList splits a collection body into records of T. A body that is
// not a JSON array yields ok=false. Elements that fail to decode are
// logged and skipped.
func DecodeList[T any](logger *slog.Logger, raw json.RawMessage, resource string) ([]T, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			logger.Warn("skipping malformed record", slog.String("resource", resource), slog.String("error", err.Error()))
			continue
		}
		out = append(out, v)
	}
	return out, true
}

func (c *APIClient) fail(method string, apiErr *APIError) error {
	c.metrics.CounterAPIRequests.WithLabelValues(method, kindLabel(apiErr.Kind)).Inc()

	attrs := []any{slog.String("message", apiErr.Message), slog.String("url", apiErr.URL)}
	if apiErr.Status != 0 {
		attrs = append(attrs, slog.Int("status", apiErr.Status))
	}
	c.logger.Error("api error", attrs...)

	return apiErr
}

func classifyTransportError(target string, err error) *APIError {
	var urlErr *url.Error
	var netErr net.Error

	switch {
	case errors.Is(err, context.Canceled):
		return unknownError(target, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &urlErr), errors.As(err, &netErr):
		return networkError(target, err)
	default:
		return unknownError(target, err)
	}
}

// messageFromBody extracts the "message" field of a JSON object body.
func messageFromBody(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	msg, _ := payload["message"].(string)
	return msg
}

func kindLabel(kind error) string {
	switch kind {
	case ErrValidation:
		return "validation"
	case ErrServer:
		return "server"
	case ErrNetwork:
		return "network"
	default:
		return "unknown"
	}
}
