package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
		"MONGO_URI":  "mongodb://localhost:27017",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Mongo.Database != "bus_ticketing" {
		t.Fatalf("unexpected database: %q", cfg.Mongo.Database)
	}
	if cfg.Mongo.MaxPoolSize != 50 {
		t.Fatalf("expected pool size 50, got %d", cfg.Mongo.MaxPoolSize)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env must not be production")
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatalf("expected error when JWT_SECRET and MONGO_URI are missing")
	}
	for _, want := range []string{"JWT_SECRET", "MONGO_URI"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestLoad_SeedRequiresBothFields(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "secret",
		"MONGO_URI":        "mongodb://localhost:27017",
		"SEED_ADMIN_EMAIL": "root@example.com",
	}))
	if err == nil || !strings.Contains(err.Error(), "SEED_ADMIN_PASSWORD") {
		t.Fatalf("expected seed validation error, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":          "secret",
		"MONGO_URI":           "mongodb://db:27017",
		"TOKEN_TTL":           "30m",
		"RATE_LIMIT_REQUESTS": "5",
		"ENV":                 "production",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.RateLimit.Requests != 5 {
		t.Fatalf("expected 5 requests, got %d", cfg.RateLimit.Requests)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
}
