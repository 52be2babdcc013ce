package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
service:
  id: "test-bridge"
addon:
  host: "192.168.1.50"
  port: 54448
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-bridge" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-bridge")
	}

	if cfg.Addon.Host != "192.168.1.50" {
		t.Errorf("Addon.Host = %q, want %q", cfg.Addon.Host, "192.168.1.50")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
service:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty service.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	validBase := func() *Config {
		return &Config{
			Service: ServiceConfig{ID: "bridge-001"},
			Addon: AddonConfig{
				Host: "192.168.1.50",
				Port: 54448,
			},
			Database: DatabaseConfig{
				Path: "/data/sengled-bridge.db",
			},
			MQTT: MQTTConfig{
				Broker: MQTTBrokerConfig{Host: "localhost", Port: 1883},
				QoS:    1,
			},
			API: APIConfig{
				Port: 8080,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name:    "missing service ID",
			mutate:  func(c *Config) { c.Service.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing addon host",
			mutate:  func(c *Config) { c.Addon.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid addon port",
			mutate:  func(c *Config) { c.Addon.Port = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid API port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid API port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestConfig_AddonBaseURL(t *testing.T) {
	cfg := &Config{
		Addon: AddonConfig{Host: "192.168.1.50", Port: 54448},
	}

	want := "http://192.168.1.50:54448"
	if got := cfg.AddonBaseURL(); got != want {
		t.Errorf("AddonBaseURL() = %q, want %q", got, want)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("SENGLED_ADDON_HOST", "addon.local")
	t.Setenv("SENGLED_ADDON_PORT", "8888")
	t.Setenv("SENGLED_DATABASE_PATH", "/custom/path.db")
	t.Setenv("SENGLED_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SENGLED_MQTT_PORT", "8883")
	t.Setenv("SENGLED_MQTT_USERNAME", "testuser")
	t.Setenv("SENGLED_MQTT_PASSWORD", "testpass")
	t.Setenv("SENGLED_API_HOST", "192.168.1.1")
	t.Setenv("SENGLED_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Addon.Host != "addon.local" {
		t.Errorf("Addon.Host = %q, want %q", cfg.Addon.Host, "addon.local")
	}

	if cfg.Addon.Port != 8888 {
		t.Errorf("Addon.Port = %d, want 8888", cfg.Addon.Port)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	original := cfg.Addon.Port

	t.Setenv("SENGLED_ADDON_PORT", "not-a-number")
	applyEnvOverrides(cfg)

	if cfg.Addon.Port != original {
		t.Errorf("Addon.Port = %d, want unchanged %d", cfg.Addon.Port, original)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Service.ID == "" {
		t.Error("defaultConfig should have non-empty Service.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
