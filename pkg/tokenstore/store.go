package tokenstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StorageKey is the single key under which the serialized bundle lives.
const StorageKey = "auth.tokens"

// TokenBundle is the persisted access/refresh token pair plus expiry hint.
type TokenBundle struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// HasAccessToken reports whether the bundle carries a usable access token.
func (b *TokenBundle) HasAccessToken() bool {
	return b != nil && strings.TrimSpace(b.AccessToken) != ""
}

// ExpiryHint decodes the access token without verifying its signature and
// returns the embedded expiry. The gateway never enforces expiry; this only
// exists so callers can decide when to re-authenticate.
func (b *TokenBundle) ExpiryHint() (time.Time, bool) {
	if !b.HasAccessToken() {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(b.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Store persists the token bundle. Read is fail-open: any storage or
// deserialization failure reads as "no token present", never an error.
type Store interface {
	Read(ctx context.Context) (*TokenBundle, bool)
	Write(ctx context.Context, bundle *TokenBundle) error
	Clear(ctx context.Context) error
}

// MemStore keeps the bundle in memory; used in tests and as a default when no
// file path is configured.
type MemStore struct {
	mu     sync.RWMutex
	bundle *TokenBundle
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Read(_ context.Context) (*TokenBundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return nil, false
	}
	copied := *s.bundle
	return &copied, true
}

func (s *MemStore) Write(_ context.Context, bundle *TokenBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bundle == nil {
		s.bundle = nil
		return nil
	}
	copied := *bundle
	s.bundle = &copied
	return nil
}

func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = nil
	return nil
}
