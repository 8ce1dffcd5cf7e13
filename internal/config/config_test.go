package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Poll.Attempts != 5 {
		t.Errorf("poll attempts = %d, want 5", cfg.Poll.Attempts)
	}
	if cfg.Poll.Interval != time.Second {
		t.Errorf("poll interval = %v, want 1s", cfg.Poll.Interval)
	}
	if cfg.RecordTTL != 900 {
		t.Errorf("record ttl = %d, want 900", cfg.RecordTTL)
	}
	if cfg.DeletePolicy != DeletePolicyRetain {
		t.Errorf("delete policy = %v, want retain", cfg.DeletePolicy)
	}
	if cfg.AWSCallTimeout != 30*time.Second {
		t.Errorf("aws call timeout = %v, want 30s", cfg.AWSCallTimeout)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("ACMDNS_POLL_ATTEMPTS", "3")
	t.Setenv("ACMDNS_POLL_INTERVAL", "250ms")
	t.Setenv("ACMDNS_DELETE_POLICY", "Remove")
	t.Setenv("ACMDNS_AWS_REGION", "us-east-2")

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Poll.Attempts != 3 {
		t.Errorf("poll attempts = %d, want 3", cfg.Poll.Attempts)
	}
	if cfg.Poll.Interval != 250*time.Millisecond {
		t.Errorf("poll interval = %v, want 250ms", cfg.Poll.Interval)
	}
	if cfg.DeletePolicy != DeletePolicyRemove {
		t.Errorf("delete policy = %v, want remove", cfg.DeletePolicy)
	}
	if cfg.AWS.Region != "us-east-2" {
		t.Errorf("region = %v, want us-east-2", cfg.AWS.Region)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("ACMDNS_RECORD_TTL", "300")

	cfg, err := Load(nil, []string{"--record_ttl=60", "--log_level=debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RecordTTL != 60 {
		t.Errorf("record ttl = %d, want 60", cfg.RecordTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %v, want debug", cfg.LogLevel)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "poll_attempts: 7\nresponse_margin: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ACMDNS_CONFIG", path)

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Poll.Attempts != 7 {
		t.Errorf("poll attempts = %d, want 7", cfg.Poll.Attempts)
	}
	if cfg.ResponseMargin != 5*time.Second {
		t.Errorf("response margin = %v, want 5s", cfg.ResponseMargin)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{name: "zero attempts", env: map[string]string{"ACMDNS_POLL_ATTEMPTS": "0"}, wantMsg: "poll_attempts"},
		{name: "unknown delete policy", env: map[string]string{"ACMDNS_DELETE_POLICY": "purge"}, wantMsg: "delete_policy"},
		{name: "unknown env", env: map[string]string{"ACMDNS_ENV": "staging"}, wantMsg: "env must be"},
		{name: "half static credentials", env: map[string]string{"ACMDNS_AWS_ACCESS_KEY_ID": "AKIA"}, wantMsg: "must be set together"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(nil, nil)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestConfig_DumpRedactsSecrets(t *testing.T) {
	cfg := Config{AWS: AWSConfig{AccessKeyID: "AKIA", SecretAccessKey: "very-secret", SessionToken: "token"}}
	dump := cfg.Dump()
	if strings.Contains(dump, "very-secret") || strings.Contains(dump, "\"token\"") {
		t.Errorf("Dump() leaks credentials: %s", dump)
	}
}
