package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voyago/voyago-client/pkg/authtoken"
	"github.com/voyago/voyago-client/pkg/config"
	"github.com/voyago/voyago-client/pkg/logger"
)

// Server is a self-contained development backend exposing both protocol
// surfaces the SDK understands: a GraphQL document endpoint and the flat REST
// auth endpoints, both speaking the envelope contract.
type Server struct {
	cfg   config.DevServerConfig
	store *Store
	logg  *logger.Logger
	now   func() time.Time
}

func NewServer(cfg config.DevServerConfig, store *Store, logg *logger.Logger) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		logg:  logg,
		now:   time.Now,
	}
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/graphql", s.handleGraphQL)
	r.Post("/graphql/", s.handleGraphQL)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/logout", s.handleLogout)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := s.now()
		next.ServeHTTP(w, r)
		if s.logg == nil {
			return
		}
		ctx := s.logg.WithFields(r.Context(), map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(started).Milliseconds(),
		})
		if id := r.Header.Get("X-Request-Id"); id != "" {
			ctx = s.logg.WithRequestID(ctx, id)
		}
		s.logg.Debug(ctx, "handled request")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, envelope{Message: "Success", Data: map[string]string{"status": "ok"}})
}

// envelope mirrors the wire contract the mobile gateway normalizes.
type envelope struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Error: true, Message: message, StatusCode: status})
}

// bearerClaims extracts and verifies the Authorization header.
func (s *Server) bearerClaims(r *http.Request) (*authtoken.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := authtoken.Parse(s.cfg.JWT(), strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

// issueTokens mints the access token and a placeholder refresh token.
func (s *Server) issueTokens(user *User) (map[string]any, error) {
	access, err := authtoken.Mint(s.cfg.JWT(), s.now(), authtoken.Payload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"accessToken":  access,
		"refreshToken": newRefreshToken(),
		"expiresIn":    int64(s.cfg.ExpirationMinutes) * 60,
	}, nil
}

func newRefreshToken() string {
	return "rt_" + uuid.NewString()
}

func userPayload(user *User) map[string]any {
	profile := map[string]any{}
	if user.ProfileJSON != "" {
		_ = json.Unmarshal([]byte(user.ProfileJSON), &profile)
	}
	return map[string]any{
		"id":               user.ID.String(),
		"username":         user.Username,
		"email":            user.Email,
		"firstName":        user.FirstName,
		"lastName":         user.LastName,
		"avatarUrl":        user.AvatarURL,
		"primaryContact":   user.PrimaryContact,
		"secondaryContact": user.SecondaryContact,
		"profileJson":      profile,
	}
}
