package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	os.Setenv("LAYER8_URL", "http://localhost:5001")
	os.Setenv("LAYER8_CLIENT_ID", "cid")
	os.Setenv("LAYER8_CLIENT_SECRET", "csecret")
	os.Setenv("LAYER8_CALLBACK_URL", "http://localhost:6191/oauth2/callback")
	defer func() {
		os.Unsetenv("LAYER8_URL")
		os.Unsetenv("LAYER8_CLIENT_ID")
		os.Unsetenv("LAYER8_CLIENT_SECRET")
		os.Unsetenv("LAYER8_CALLBACK_URL")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Layer8.BaseURL == "" || cfg.Layer8.ClientID == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if len(cfg.Layer8.Scopes) == 0 {
		t.Fatalf("expected default scopes, got none")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		t.Fatalf("expected positive access token TTL")
	}
}

func TestLoadConfig_IncompleteLayer8(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	os.Setenv("LAYER8_URL", "http://localhost:5001")
	os.Unsetenv("LAYER8_CLIENT_ID")
	os.Unsetenv("LAYER8_CLIENT_SECRET")
	os.Unsetenv("LAYER8_CALLBACK_URL")
	defer os.Unsetenv("LAYER8_URL")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for partial Layer8 registration")
	}
}
