package authtoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voyago/voyago-client/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "voyago-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseRoundtrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := Mint(cfg, time.Now(), Payload{
		UserID:   userID,
		Username: "ada",
		Email:    "ada@voyago.dev",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := Parse(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID || claims.Username != "ada" || claims.Email != "ada@voyago.dev" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != "voyago-test" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := Mint(cfg, time.Now(), Payload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := Parse(other, token); err == nil {
		t.Fatalf("wrong secret must fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := Mint(cfg, time.Now().Add(-time.Hour), Payload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := Parse(cfg, token); err == nil {
		t.Fatalf("expired token must fail")
	}
}

func TestMintValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.JWTConfig
	}{
		{"missing secret", config.JWTConfig{Issuer: "i", ExpirationMinutes: 5}},
		{"missing issuer", config.JWTConfig{Secret: "s", ExpirationMinutes: 5}},
		{"zero expiration", config.JWTConfig{Secret: "s", Issuer: "i"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Mint(tc.cfg, time.Now(), Payload{}); err == nil {
				t.Fatalf("expected config error")
			}
		})
	}
}
