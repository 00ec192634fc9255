package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storelinkhq/storelink-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storelink",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	ownerID := uuid.New()

	payload := AccessTokenPayload{
		OwnerID: ownerID,
		AgentID: "agent-42",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.OwnerID != ownerID {
		t.Fatalf("expected owner_id %s, got %s", ownerID, claims.OwnerID)
	}
	if claims.AgentID != "agent-42" {
		t.Fatalf("agent id not preserved, got %q", claims.AgentID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch, got %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now().UTC()
	valid := config.JWTConfig{Secret: "secret", Issuer: "storelink", ExpirationMinutes: 30}

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		{"missing secret", config.JWTConfig{Issuer: "storelink", ExpirationMinutes: 30}, AccessTokenPayload{OwnerID: uuid.New()}},
		{"missing issuer", config.JWTConfig{Secret: "secret", ExpirationMinutes: 30}, AccessTokenPayload{OwnerID: uuid.New()}},
		{"zero expiry", config.JWTConfig{Secret: "secret", Issuer: "storelink"}, AccessTokenPayload{OwnerID: uuid.New()}},
		{"missing owner", valid, AccessTokenPayload{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MintAccessToken(tc.cfg, now, tc.payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "storelink", ExpirationMinutes: 1}
	past := time.Now().UTC().Add(-time.Hour)

	token, err := MintAccessToken(cfg, past, AccessTokenPayload{OwnerID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	mintCfg := config.JWTConfig{Secret: "secret", Issuer: "other", ExpirationMinutes: 30}
	parseCfg := config.JWTConfig{Secret: "secret", Issuer: "storelink", ExpirationMinutes: 30}

	token, err := MintAccessToken(mintCfg, time.Now().UTC(), AccessTokenPayload{OwnerID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(parseCfg, token); err == nil {
		t.Fatal("expected issuer mismatch to fail validation")
	}
}
