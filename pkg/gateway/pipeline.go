package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/voyago/voyago-client/pkg/tokenstore"
)

// ShowErrorHeader is the per-request opt-out: setting it to "false" keeps the
// notifier quiet for that call only.
const ShowErrorHeader = "X-Show-Error"

const requestIDHeader = "X-Request-Id"

// Request is the outgoing request descriptor interceptors operate on.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

func (r *Request) ensureHeader() http.Header {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	return r.Header
}

// CallOption mutates a request before the pipeline runs.
type CallOption func(*Request)

// WithQuery adds a query parameter.
func WithQuery(key, value string) CallOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		r.Query.Add(key, value)
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) CallOption {
	return func(r *Request) {
		r.ensureHeader().Set(key, value)
	}
}

// SuppressNotify keeps the notifier quiet for this call.
func SuppressNotify() CallOption {
	return WithHeader(ShowErrorHeader, "false")
}

// Interceptor is one request-transform step applied before transport. An
// error rejects the call before it is sent, classified as a setup failure.
type Interceptor interface {
	Intercept(ctx context.Context, req *Request) error
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(ctx context.Context, req *Request) error

func (f InterceptorFunc) Intercept(ctx context.Context, req *Request) error {
	return f(ctx, req)
}

// AuthInterceptor injects the persisted bearer token. A missing bundle or a
// failed read sends the request unauthenticated; that is not an error here.
type AuthInterceptor struct {
	tokens tokenstore.Store
}

func NewAuthInterceptor(tokens tokenstore.Store) *AuthInterceptor {
	return &AuthInterceptor{tokens: tokens}
}

func (i *AuthInterceptor) Intercept(ctx context.Context, req *Request) error {
	if i == nil || i.tokens == nil {
		return nil
	}
	bundle, ok := i.tokens.Read(ctx)
	if !ok || !bundle.HasAccessToken() {
		return nil
	}
	req.ensureHeader().Set("Authorization", "Bearer "+bundle.AccessToken)
	return nil
}

// RequestIDInterceptor tags every outgoing call so client and backend logs
// can be correlated.
type RequestIDInterceptor struct{}

func (RequestIDInterceptor) Intercept(_ context.Context, req *Request) error {
	header := req.ensureHeader()
	if header.Get(requestIDHeader) == "" {
		header.Set(requestIDHeader, uuid.NewString())
	}
	return nil
}
