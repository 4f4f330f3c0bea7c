package config

import (
	"strings"
	"testing"
)

func validConfig() EnvConfig {
	return EnvConfig{
		Port:          "5000",
		BaseURL:       "http://localhost:5000",
		FrontendURL:   "http://localhost:3000",
		AuthSecret:    strings.Repeat("s", 32),
		TokenTTL:      604800,
		AvatarBackend: "local",
	}
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	cfg := validConfig()
	if errs := cfg.validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.AuthSecret = "short"
	errs := cfg.validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "AUTH_SECRET") {
		t.Fatalf("expected AUTH_SECRET error, got %v", errs)
	}
}

func TestValidateRequiresOAuthPairs(t *testing.T) {
	cfg := validConfig()
	cfg.GoogleClientID = "id-without-secret"
	errs := cfg.validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "GOOGLE_CLIENT") {
		t.Fatalf("expected paired-credential error, got %v", errs)
	}
}

func TestValidateRequiresS3Fields(t *testing.T) {
	cfg := validConfig()
	cfg.AvatarBackend = "s3"
	errs := cfg.validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "S3_ENDPOINT") {
		t.Fatalf("expected s3 config error, got %v", errs)
	}

	cfg.S3Endpoint = "localhost:9000"
	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	cfg.S3Bucket = "avatars"
	if errs := cfg.validate(); len(errs) != 0 {
		t.Fatalf("expected no errors with full s3 config, got %v", errs)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret(""); got != "<not set>" {
		t.Fatalf("unexpected mask for empty: %q", got)
	}
	if got := MaskSecret("abc"); got != "***" {
		t.Fatalf("unexpected mask for short: %q", got)
	}
	if got := MaskSecret("abcdefghijkl"); got != "abcd...ijkl" {
		t.Fatalf("unexpected mask: %q", got)
	}
}
