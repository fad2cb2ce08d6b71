package config

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_STORE", "")
	t.Setenv("BCRYPT_COST", "")
	cfg := Load()
	if cfg.Store != "postgres" {
		t.Fatalf("Store = %q, want postgres", cfg.Store)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.MailSendEnabled {
		t.Fatalf("MailSendEnabled should default to false")
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("BCRYPT_COST", "lots")
	t.Setenv("PROFILE_CACHE_TTL", "soon")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")
	cfg := Load()
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want default 10", cfg.BcryptCost)
	}
	if cfg.ProfileCacheTTL != 5*time.Minute {
		t.Fatalf("ProfileCacheTTL = %v, want 5m", cfg.ProfileCacheTTL)
	}
	if cfg.MailSendEnabled {
		t.Fatalf("MailSendEnabled should fall back to false")
	}
}

func TestSigningKey(t *testing.T) {
	raw := bytes.Repeat([]byte{0x7f}, 48)
	cfg := &Config{JWTSecret: base64.StdEncoding.EncodeToString(raw)}
	if !bytes.Equal(cfg.SigningKey(), raw) {
		t.Fatalf("expected base64 secret to be decoded")
	}

	cfg = &Config{JWTSecret: "plain-secret"}
	if string(cfg.SigningKey()) != "plain-secret" {
		t.Fatalf("expected plain secret to be used verbatim, got %q", cfg.SigningKey())
	}
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test ", ElasticsearchAddrs: ""}
	got := cfg.CORSOrigins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("CORSOrigins = %v", got)
	}
	if len(cfg.ESAddrs()) != 0 {
		t.Fatalf("ESAddrs should be empty, got %v", cfg.ESAddrs())
	}
}
