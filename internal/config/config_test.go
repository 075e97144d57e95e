package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("unexpected access ttl: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("unexpected refresh ttl: %v", cfg.RefreshTokenTTL)
	}
	if cfg.RateBurst != 5 || cfg.RateWindow != 15*time.Minute {
		t.Fatalf("unexpected rate ceiling: %d per %v", cfg.RateBurst, cfg.RateWindow)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestLoadRejectsMisorderedTTLs(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "200h")
	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error when access ttl exceeds refresh ttl")
	}
}
