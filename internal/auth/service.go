package auth

import (
	"context"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/voyago/voyago-client/pkg/errors"
	"github.com/voyago/voyago-client/pkg/gateway"
	"github.com/voyago/voyago-client/pkg/logger"
	"github.com/voyago/voyago-client/pkg/tokenstore"
)

// Service owns the authentication operations. Login, registration, and
// password reset attempt the GraphQL surface first and retry against the REST
// surface on any primary failure, because the backend protocol for these
// operations is not finalized. The two attempts are strictly sequential and
// only the secondary outcome surfaces once a fallback begins.
type Service struct {
	gw      *gateway.Gateway
	tokens  tokenstore.Store
	logg    *logger.Logger
	metrics *gateway.ClientMetrics
}

// ServiceParams bundles the dependencies required to build the auth service.
type ServiceParams struct {
	Gateway *gateway.Gateway
	Tokens  tokenstore.Store
	Logger  *logger.Logger
	Metrics *gateway.ClientMetrics
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	return &Service{
		gw:      params.Gateway,
		tokens:  params.Tokens,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

type protocolCall func(ctx context.Context) (*gateway.Envelope, error)

// callWithFallback runs the primary attempt and, on any failure, the
// secondary one. The primary's failure is discarded once the secondary
// attempt starts.
func (s *Service) callWithFallback(ctx context.Context, op string, primary, secondary protocolCall) (json.RawMessage, error) {
	env, err := primary(ctx)
	if err == nil {
		raw, _, xerr := extractOperation(env, op)
		if xerr == nil {
			return raw, nil
		}
		err = xerr
	}

	s.debug(ctx, op, "primary protocol failed, retrying over rest", err)
	s.metrics.IncFallback(op)

	env, err = secondary(ctx)
	if err != nil {
		return nil, err
	}
	return extractSecondary(env), nil
}

// Login authenticates the user and persists the returned token bundle.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	raw, err := s.callWithFallback(ctx, "login",
		func(ctx context.Context) (*gateway.Envelope, error) {
			return s.gw.Post(ctx, graphQLPath, graphQLRequest{
				Query: loginDocument,
				Variables: map[string]any{
					"email":    req.Email,
					"password": req.Password,
				},
			})
		},
		func(ctx context.Context) (*gateway.Envelope, error) {
			return s.gw.Post(ctx, loginPath, req)
		},
	)
	if err != nil {
		return nil, err
	}

	return s.finishAuth(ctx, "login", raw)
}

// Register creates an account and persists the returned token bundle.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	variables := map[string]any{
		"email":    req.Email,
		"password": req.Password,
	}
	if req.Username != "" {
		variables["username"] = req.Username
	}
	if req.FirstName != "" {
		variables["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		variables["lastName"] = req.LastName
	}

	raw, err := s.callWithFallback(ctx, "register",
		func(ctx context.Context) (*gateway.Envelope, error) {
			return s.gw.Post(ctx, graphQLPath, graphQLRequest{
				Query:     registerDocument,
				Variables: variables,
			})
		},
		func(ctx context.Context) (*gateway.Envelope, error) {
			return s.gw.Post(ctx, registerPath, req)
		},
	)
	if err != nil {
		return nil, err
	}

	return s.finishAuth(ctx, "register", raw)
}

// RequestPasswordReset asks the backend to start a reset flow for the email.
func (s *Service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (*PasswordResetResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	raw, err := s.callWithFallback(ctx, "forgotPassword",
		func(ctx context.Context) (*gateway.Envelope, error) {
			return s.gw.Post(ctx, graphQLPath, graphQLRequest{
				Query:     forgotPasswordDocument,
				Variables: map[string]any{"email": req.Email},
			})
		},
		func(ctx context.Context) (*gateway.Envelope, error) {
			return s.gw.Post(ctx, forgotPasswordPath, req)
		},
	)
	if err != nil {
		return nil, err
	}

	result := &PasswordResetResult{OK: true}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			// Lenient: an unknown success shape still means the request went through.
			result = &PasswordResetResult{OK: true}
		}
	}
	return result, nil
}

// Me fetches the authenticated user. GraphQL only; the backend defines no
// REST twin for this query.
func (s *Service) Me(ctx context.Context) (*User, error) {
	env, err := s.gw.Post(ctx, graphQLPath, graphQLRequest{Query: meDocument})
	if err != nil {
		return nil, err
	}
	raw, _, err := extractOperation(env, "me")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeServerRejected, err, "fetch current user")
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode current user")
	}
	return &user, nil
}

// UpdateProfile mutates the authenticated user's profile fields.
func (s *Service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	variables := map[string]any{}
	if req.AvatarURL != "" {
		variables["avatarUrl"] = req.AvatarURL
	}
	if req.PrimaryContact != "" {
		variables["primaryContact"] = req.PrimaryContact
	}
	if req.SecondaryContact != "" {
		variables["secondaryContact"] = req.SecondaryContact
	}

	env, err := s.gw.Post(ctx, graphQLPath, graphQLRequest{
		Query:     updateProfileDocument,
		Variables: variables,
	})
	if err != nil {
		return nil, err
	}
	raw, _, err := extractOperation(env, "updateProfile")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeServerRejected, err, "update profile")
	}

	var payload struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode updated profile")
	}
	return &payload.User, nil
}

// Logout clears the persisted bundle and tells the backend, best effort. The
// backend call never blocks local logout and never notifies the user.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.gw.Post(ctx, logoutPath, nil, gateway.SuppressNotify()); err != nil {
		s.debug(ctx, "logout", "backend logout failed, clearing local tokens anyway", err)
	}
	return s.tokens.Clear(ctx)
}

// RefreshSession will exchange the refresh token for a new bundle once the
// backend exposes the operation.
func (s *Service) RefreshSession(_ context.Context) (*tokenstore.TokenBundle, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotImplemented, "session refresh is not implemented")
}

// finishAuth decodes the unified payload and persists the token bundle.
func (s *Service) finishAuth(ctx context.Context, op string, raw json.RawMessage) (*AuthResult, error) {
	result, err := decodeAuthResult(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("decode %s result", op))
	}
	if result.Tokens.HasAccessToken() {
		if err := s.tokens.Write(ctx, &result.Tokens); err != nil {
			s.debug(ctx, op, "persisting tokens failed", err)
		}
	}
	return result, nil
}

// decodeAuthResult accepts both payload forms: tokens nested under a "tokens"
// object, or flat accessToken/refreshToken fields beside the user.
func decodeAuthResult(raw json.RawMessage) (*AuthResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty auth payload")
	}

	var payload struct {
		User         User                    `json:"user"`
		Tokens       *tokenstore.TokenBundle `json:"tokens"`
		AccessToken  string                  `json:"accessToken"`
		RefreshToken string                  `json:"refreshToken"`
		ExpiresIn    int64                   `json:"expiresIn"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	result := &AuthResult{User: payload.User}
	if payload.Tokens != nil {
		result.Tokens = *payload.Tokens
	} else {
		result.Tokens = tokenstore.TokenBundle{
			AccessToken:  payload.AccessToken,
			RefreshToken: payload.RefreshToken,
			ExpiresIn:    payload.ExpiresIn,
		}
	}
	return result, nil
}

func (s *Service) debug(ctx context.Context, op, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithOperation(ctx, op)
	if err != nil {
		ctx = s.logg.WithField(ctx, "error", err.Error())
	}
	s.logg.Debug(ctx, msg)
}
