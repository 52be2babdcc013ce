package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("SENGLED_CONFIG")
	defer os.Setenv("SENGLED_CONFIG", originalEnv)

	os.Setenv("SENGLED_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is invalid.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
service:
  id: test-bridge

addon:
  host: "127.0.0.1"
  port: 54448

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 60

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 8080
  timeouts:
    read: 30
    write: 60
    idle: 120
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("SENGLED_CONFIG")
	defer os.Setenv("SENGLED_CONFIG", originalEnv)
	os.Setenv("SENGLED_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("SENGLED_CONFIG")
	defer os.Setenv("SENGLED_CONFIG", originalEnv)

	os.Unsetenv("SENGLED_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("SENGLED_CONFIG")
	defer os.Setenv("SENGLED_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("SENGLED_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_UnreachableBroker verifies run fails setup when the MQTT broker
// cannot be reached, rather than starting half-connected.
// Uses a port nothing listens on; the connect timeout bounds the test.
func TestRun_UnreachableBroker(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
service:
  id: test-bridge

addon:
  host: "127.0.0.1"
  port: 54448

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
    tls: false
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 5

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 8080
  timeouts:
    read: 30
    write: 60
    idle: 120
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("SENGLED_CONFIG")
	defer os.Setenv("SENGLED_CONFIG", originalEnv)
	os.Setenv("SENGLED_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail when the MQTT broker is unreachable")
	}
	t.Logf("run() returned error (expected): %v", err)
}
