package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voyago/voyago-client/pkg/config"
	"github.com/voyago/voyago-client/pkg/logger"
)

const (
	defaultBaseURL           = "http://localhost:8000"
	defaultTimeout           = 30 * time.Second
	maxResponseBytes   int64 = 4 << 20
	successOutcome           = "success"
)

// Gateway is the single HTTP boundary every backend call goes through. It is
// explicitly constructed and holds all configuration; there is no package
// level instance.
type Gateway struct {
	httpClient   *http.Client
	baseURL      string
	interceptors []Interceptor
	notifier     Notifier
	logg         *logger.Logger
	metrics      *ClientMetrics
	showErrors   bool
}

// Option configures optional gateway behavior.
type Option func(*Gateway)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(g *Gateway) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			g.baseURL = trimmed
		}
	}
}

// WithNotifier swaps the error presentation surface.
func WithNotifier(n Notifier) Option {
	return func(g *Gateway) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithInterceptor appends a request-transform step to the pipeline.
func WithInterceptor(i Interceptor) Option {
	return func(g *Gateway) {
		if i != nil {
			g.interceptors = append(g.interceptors, i)
		}
	}
}

// WithLogger enables debug request logging.
func WithLogger(logg *logger.Logger) Option {
	return func(g *Gateway) {
		g.logg = logg
	}
}

// WithMetrics records call outcomes on the provided collector.
func WithMetrics(m *ClientMetrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// New builds a gateway from configuration. Interceptors run in the order they
// were added, on every outgoing call.
func New(cfg config.APIConfig, opts ...Option) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	g := &Gateway{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		notifier:   NopNotifier{},
		showErrors: cfg.ShowError,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Get issues a GET through the pipeline.
func (g *Gateway) Get(ctx context.Context, path string, opts ...CallOption) (*Envelope, error) {
	return g.Do(ctx, buildRequest(http.MethodGet, path, nil, opts))
}

// Post issues a POST with a JSON body through the pipeline.
func (g *Gateway) Post(ctx context.Context, path string, body any, opts ...CallOption) (*Envelope, error) {
	return g.Do(ctx, buildRequest(http.MethodPost, path, body, opts))
}

// Put issues a PUT with a JSON body through the pipeline.
func (g *Gateway) Put(ctx context.Context, path string, body any, opts ...CallOption) (*Envelope, error) {
	return g.Do(ctx, buildRequest(http.MethodPut, path, body, opts))
}

// Delete issues a DELETE through the pipeline.
func (g *Gateway) Delete(ctx context.Context, path string, opts ...CallOption) (*Envelope, error) {
	return g.Do(ctx, buildRequest(http.MethodDelete, path, nil, opts))
}

// Do runs the pipeline, sends the request, and resolves to either a success
// envelope or a *CallError holding the classified error envelope. Callers
// never see a raw transport response.
func (g *Gateway) Do(ctx context.Context, req Request) (*Envelope, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	started := time.Now()

	for _, interceptor := range g.interceptors {
		if err := interceptor.Intercept(ctx, &req); err != nil {
			return nil, g.fail(req, FailureRequestSetup, classifySetup(err), started)
		}
	}

	httpReq, err := g.buildHTTPRequest(ctx, &req)
	if err != nil {
		return nil, g.fail(req, FailureRequestSetup, classifySetup(err), started)
	}

	g.logRequest(ctx, &req, httpReq.URL.String())

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, g.fail(req, FailureNetworkUnavailable, classifyTransport(err), started)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, g.fail(req, FailureNetworkUnavailable, classifyTransport(err), started)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, g.fail(req, FailureServerRejected, classifyResponse(resp.StatusCode, body), started)
	}

	env := Normalize(body)
	if env.Error {
		// A 2xx body shaped as an error envelope still rejects the call.
		if env.StatusCode == 0 {
			env.StatusCode = resp.StatusCode
		}
		if strings.TrimSpace(env.Message) == "" {
			env.Message = defaultErrorMessage
		}
		return nil, g.fail(req, FailureServerRejected, env, started)
	}

	g.metrics.ObserveRequest(req.Method, successOutcome, time.Since(started))
	return env, nil
}

func (g *Gateway) fail(req Request, kind FailureKind, env *Envelope, started time.Time) error {
	g.metrics.ObserveRequest(req.Method, string(kind), time.Since(started))
	if !g.suppressed(&req) {
		g.notifier.Notify(env)
	}
	return &CallError{Kind: kind, Envelope: env}
}

func (g *Gateway) suppressed(req *Request) bool {
	if req.Header != nil {
		switch strings.ToLower(req.Header.Get(ShowErrorHeader)) {
		case "false":
			return true
		case "true":
			return false
		}
	}
	return !g.showErrors
}

func (g *Gateway) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target := g.buildURL(req.Path)
	if len(req.Query) > 0 {
		joiner := "?"
		if strings.Contains(target, "?") {
			joiner = "&"
		}
		target += joiner + req.Query.Encode()
	}

	var reader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Set(key, value)
		}
	}
	return httpReq, nil
}

func (g *Gateway) buildURL(path string) string {
	trimmed := strings.TrimRight(g.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return trimmed + "/" + path
}

// logRequest emits the development-only request line. The Authorization
// header never appears in it.
func (g *Gateway) logRequest(ctx context.Context, req *Request, target string) {
	if g.logg == nil {
		return
	}
	fields := map[string]any{
		"method":   req.Method,
		"url":      target,
		"base_url": g.baseURL,
	}
	if len(req.Query) > 0 {
		fields["params"] = req.Query.Encode()
	}
	if req.Body != nil {
		if payload, err := json.Marshal(req.Body); err == nil {
			fields["body"] = string(payload)
		}
	}
	if id := req.Header.Get(requestIDHeader); id != "" {
		fields["request_id"] = id
	}
	g.logg.Debug(g.logg.WithFields(ctx, fields), "outgoing request")
}

func buildRequest(method, path string, body any, opts []CallOption) Request {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}
