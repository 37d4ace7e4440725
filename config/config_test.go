package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.BroadcastScope != ScopeOwner {
		t.Errorf("BroadcastScope = %q, want owner", cfg.Server.BroadcastScope)
	}
	if cfg.Server.HeartbeatInterval != 25*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 25s", cfg.Server.HeartbeatInterval)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Storage.SQLitePath != "taskboard.db" {
		t.Errorf("SQLitePath = %q, want taskboard.db", cfg.Storage.SQLitePath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_SERVER_PORT", "9001")
	t.Setenv("TASKBOARD_SERVER_BROADCAST_SCOPE", "global")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Server.BroadcastScope != ScopeGlobal {
		t.Errorf("BroadcastScope = %q, want global", cfg.Server.BroadcastScope)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskboard.yaml")
	contents := []byte("server:\n  port: 7777\nauth:\n  jwt_secret: file-secret\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("JWTSecret = %q, want file-secret", cfg.Auth.JWTSecret)
	}
	// Unset keys keep their defaults.
	if cfg.Server.BroadcastScope != ScopeOwner {
		t.Errorf("BroadcastScope = %q, want owner", cfg.Server.BroadcastScope)
	}
}

func TestLoadRejectsMalformedImplicitFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("server:\n  port: [not\n")
	if err := os.WriteFile(filepath.Join(dir, "taskboard.yaml"), contents, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Chdir(dir)

	if _, err := Load(""); err == nil {
		t.Error("Load() silently ignored a malformed config file in the working directory")
	}
}

func TestLoadRejectsBadScope(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskboard.yaml")
	contents := []byte("server:\n  broadcast_scope: everyone\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() accepted invalid broadcast scope")
	}
}
