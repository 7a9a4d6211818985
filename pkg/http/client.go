package http

import (
	"context"
	"net/http"
	"time"

	"github.com/astro-web3/booking-api/pkg/tracer"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultRetry   = 2
)

// Client is a JSON API client bound to one base URL.
type Client struct {
	rc *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		rc: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(DefaultRetry).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

type RequestOption func(*resty.Request)

// WithBearer sets "Authorization: Bearer <token>".
func WithBearer(token string) RequestOption {
	return func(r *resty.Request) {
		if token != "" {
			r.SetAuthToken(token)
		}
	}
}

func WithBody(body any) RequestOption {
	return func(r *resty.Request) {
		r.SetBody(body)
	}
}

func WithResult(result any) RequestOption {
	return func(r *resty.Request) {
		if result != nil {
			r.SetResult(result)
		}
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeader(key, value)
	}
}

func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (*resty.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracer.Start(ctx, "http.Request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	request := c.rc.R().SetContext(ctx)
	for _, opt := range opts {
		opt(request)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))

	resp, err := request.Execute(method, path)
	recordSpan(span, resp, err)
	return resp, err
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodGet, path, opts...)
}

func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodPost, path, opts...)
}

func recordSpan(span trace.Span, resp *resty.Response, err error) {
	if err != nil {
		tracer.Fail(span, err)
		return
	}
	if resp == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		return
	}
	span.SetStatus(codes.Ok, "")
}
