package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/voyago/voyago-client/pkg/config"
	pkgerrors "github.com/voyago/voyago-client/pkg/errors"
	"github.com/voyago/voyago-client/pkg/gateway"
	"github.com/voyago/voyago-client/pkg/tokenstore"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type fakeBackend struct {
	primary     func(req *http.Request) (*http.Response, error)
	secondary   func(req *http.Request) (*http.Response, error)
	primaryHits int
	restPaths   []string
}

func (b *fakeBackend) roundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Path, "graphql") {
		b.primaryHits++
		return b.primary(req)
	}
	b.restPaths = append(b.restPaths, req.URL.Path)
	return b.secondary(req)
}

func buildTestService(t *testing.T, backend *fakeBackend) (*Service, *tokenstore.MemStore) {
	t.Helper()
	tokens := tokenstore.NewMemStore()
	gw := gateway.New(
		config.APIConfig{BaseURL: "http://api.test", Timeout: time.Second},
		gateway.WithHTTPClient(&http.Client{Transport: roundTripFunc(backend.roundTrip)}),
	)
	svc, err := NewService(ServiceParams{Gateway: gw, Tokens: tokens})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, tokens
}

func TestLoginPrimaryNestedShape(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			body := `{"data":{"login":{"user":{"id":"1"},"tokens":{"accessToken":"t1","refreshToken":"r1","expiresIn":3600}}}}`
			return jsonResponse(http.StatusOK, body), nil
		},
	}
	svc, tokens := buildTestService(t, backend)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != "1" {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if result.Tokens.AccessToken != "t1" || result.Tokens.RefreshToken != "r1" || result.Tokens.ExpiresIn != 3600 {
		t.Fatalf("unexpected tokens %+v", result.Tokens)
	}
	if len(backend.restPaths) != 0 {
		t.Fatalf("primary success must not touch rest: %v", backend.restPaths)
	}

	stored, ok := tokens.Read(context.Background())
	if !ok || stored.AccessToken != "t1" {
		t.Fatalf("tokens not persisted: %+v (ok=%v)", stored, ok)
	}
}

func TestLoginPrimaryFlatTokens(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			body := `{"data":{"login":{"user":{"id":"5"},"accessToken":"t5","refreshToken":"r5"}}}`
			return jsonResponse(http.StatusOK, body), nil
		},
	}
	svc, _ := buildTestService(t, backend)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.AccessToken != "t5" || result.Tokens.RefreshToken != "r5" {
		t.Fatalf("flat tokens not unified: %+v", result.Tokens)
	}
}

func TestLoginFallsBackOnNetworkError(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
		secondary: func(req *http.Request) (*http.Response, error) {
			body := `{"error":false,"message":"Success","data":{"user":{"id":"2"},"tokens":{"accessToken":"t2","refreshToken":"r2","expiresIn":1800}}}`
			return jsonResponse(http.StatusOK, body), nil
		},
	}
	svc, tokens := buildTestService(t, backend)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != "2" || result.Tokens.AccessToken != "t2" {
		t.Fatalf("secondary payload not unified: %+v", result)
	}
	if backend.primaryHits != 1 || len(backend.restPaths) != 1 || backend.restPaths[0] != "/auth/login" {
		t.Fatalf("unexpected attempt sequence: %d graphql, %v rest", backend.primaryHits, backend.restPaths)
	}
	if stored, ok := tokens.Read(context.Background()); !ok || stored.AccessToken != "t2" {
		t.Fatalf("tokens not persisted after fallback")
	}
}

func TestLoginFallsBackOnGraphQLErrors(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"data":null,"errors":[{"message":"Invalid credentials"}]}`), nil
		},
		secondary: func(req *http.Request) (*http.Response, error) {
			body := `{"error":false,"message":"Success","data":{"user":{"id":"3"},"tokens":{"accessToken":"t3","refreshToken":"r3"}}}`
			return jsonResponse(http.StatusOK, body), nil
		},
	}
	svc, _ := buildTestService(t, backend)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != "3" {
		t.Fatalf("expected secondary result, got %+v", result)
	}
}

func TestLoginSurfacesOnlySecondaryFailure(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("primary exploded")
		},
		secondary: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnauthorized, `{}`), nil
		},
	}
	svc, _ := buildTestService(t, backend)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	if err == nil {
		t.Fatalf("expected failure")
	}

	var callErr *gateway.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected classified error, got %T", err)
	}
	if callErr.Envelope.StatusCode != 401 {
		t.Fatalf("expected the secondary's 401, got %d", callErr.Envelope.StatusCode)
	}
	if callErr.Envelope.Message != "Unauthorized. Please log in again." {
		t.Fatalf("unexpected message %q", callErr.Envelope.Message)
	}
	if strings.Contains(callErr.Envelope.Message, "primary exploded") {
		t.Fatalf("primary failure must be discarded")
	}
}

func TestLoginValidationSkipsTransport(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			t.Fatalf("transport must not be reached")
			return nil, nil
		},
	}
	svc, _ := buildTestService(t, backend)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: ""})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.primaryHits != 0 {
		t.Fatalf("no call should have been made")
	}
}

func TestRegisterFallback(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusInternalServerError, `{}`), nil
		},
		secondary: func(req *http.Request) (*http.Response, error) {
			body := `{"error":false,"message":"Success","data":{"user":{"id":"9","email":"new@b.com"},"tokens":{"accessToken":"t9","refreshToken":"r9"}}}`
			return jsonResponse(http.StatusCreated, body), nil
		},
	}
	svc, _ := buildTestService(t, backend)

	result, err := svc.Register(context.Background(), RegisterRequest{Email: "new@b.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.ID != "9" || result.Tokens.AccessToken != "t9" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(backend.restPaths) != 1 || backend.restPaths[0] != "/auth/register" {
		t.Fatalf("unexpected rest paths %v", backend.restPaths)
	}
}

func TestRequestPasswordResetPrimary(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"data":{"forgotPassword":{"ok":true,"message":"sent"}}}`), nil
		},
	}
	svc, _ := buildTestService(t, backend)

	result, err := svc.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if !result.OK || result.Message != "sent" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestMeExtractsUser(t *testing.T) {
	backend := &fakeBackend{
		primary: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"data":{"me":{"id":"7","email":"me@b.com","firstName":"Mo"}}}`), nil
		},
	}
	svc, _ := buildTestService(t, backend)

	user, err := svc.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.ID != "7" || user.FirstName != "Mo" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestLogoutClearsTokensEvenWhenBackendFails(t *testing.T) {
	backend := &fakeBackend{
		secondary: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("backend gone")
		},
	}
	svc, tokens := buildTestService(t, backend)
	_ = tokens.Write(context.Background(), &tokenstore.TokenBundle{AccessToken: "abc"})

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := tokens.Read(context.Background()); ok {
		t.Fatalf("tokens must be cleared")
	}
}

func TestRefreshSessionNotImplemented(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := buildTestService(t, backend)

	_, err := svc.RefreshSession(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotImplemented {
		t.Fatalf("expected not-implemented error, got %v", err)
	}
}
