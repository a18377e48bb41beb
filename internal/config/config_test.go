package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Scan.WindowSeconds != 10 {
		t.Errorf("Scan.WindowSeconds = %d, want 10", cfg.Scan.WindowSeconds)
	}
	if cfg.Scan.IncludeUnnamed {
		t.Error("Scan.IncludeUnnamed should default to false")
	}
	if cfg.Connect.TimeoutSeconds != 15 {
		t.Errorf("Connect.TimeoutSeconds = %d, want 15", cfg.Connect.TimeoutSeconds)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled should default to false")
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT.Broker = %q, want %q", cfg.MQTT.Broker, "tcp://localhost:1883")
	}
	if cfg.MQTT.TopicPrefix != "blesense" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "blesense")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Output != "discard" {
		t.Errorf("Log.Output = %q, want %q", cfg.Log.Output, "discard")
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
scan:
  window_seconds: 5
  include_unnamed: true
connect:
  timeout_seconds: 30
mqtt:
  enabled: true
  broker: tcp://broker.example.com:1883
  client_id: lab-bench
  topic_prefix: sensors
  qos: 1
log:
  level: debug
  format: json
  output: stderr
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scan.WindowSeconds != 5 {
		t.Errorf("Scan.WindowSeconds = %d, want 5", cfg.Scan.WindowSeconds)
	}
	if !cfg.Scan.IncludeUnnamed {
		t.Error("Scan.IncludeUnnamed = false, want true")
	}
	if cfg.Connect.TimeoutSeconds != 30 {
		t.Errorf("Connect.TimeoutSeconds = %d, want 30", cfg.Connect.TimeoutSeconds)
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.MQTT.Broker != "tcp://broker.example.com:1883" {
		t.Errorf("MQTT.Broker = %q, want %q", cfg.MQTT.Broker, "tcp://broker.example.com:1883")
	}
	if cfg.MQTT.ClientID != "lab-bench" {
		t.Errorf("MQTT.ClientID = %q, want %q", cfg.MQTT.ClientID, "lab-bench")
	}
	if cfg.MQTT.TopicPrefix != "sensors" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "sensors")
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT.QoS = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Log.Output != "stderr" {
		t.Errorf("Log.Output = %q, want %q", cfg.Log.Output, "stderr")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	yamlContent := `
scan:
  window_seconds: 20
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scan.WindowSeconds != 20 {
		t.Errorf("Scan.WindowSeconds = %d, want 20", cfg.Scan.WindowSeconds)
	}
	if cfg.Connect.TimeoutSeconds != 15 {
		t.Errorf("Connect.TimeoutSeconds = %d, want default 15", cfg.Connect.TimeoutSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, "info")
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
log:
  output: ~/logs/blesense.log
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := filepath.Join(home, "logs/blesense.log")
	if cfg.Log.Output != expected {
		t.Errorf("Log.Output = %q, want %q", cfg.Log.Output, expected)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("scan: [not: a: mapping"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(cfgPath); err == nil {
		t.Error("Load() should return error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero scan window",
			modify:  func(c *Config) { c.Scan.WindowSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative connect timeout",
			modify:  func(c *Config) { c.Connect.TimeoutSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "mqtt enabled without broker",
			modify:  func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker = "" },
			wantErr: true,
		},
		{
			name:    "mqtt enabled without client id",
			modify:  func(c *Config) { c.MQTT.Enabled = true; c.MQTT.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "mqtt enabled without topic prefix",
			modify:  func(c *Config) { c.MQTT.Enabled = true; c.MQTT.TopicPrefix = "" },
			wantErr: true,
		},
		{
			name:    "mqtt disabled ignores empty broker",
			modify:  func(c *Config) { c.MQTT.Broker = "" },
			wantErr: false,
		},
		{
			name:    "qos out of range",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	cfg.Scan.WindowSeconds = 7
	cfg.Connect.TimeoutSeconds = 42

	if got := cfg.ScanWindow(); got != 7*time.Second {
		t.Errorf("ScanWindow() = %v, want 7s", got)
	}
	if got := cfg.ConnectTimeout(); got != 42*time.Second {
		t.Errorf("ConnectTimeout() = %v, want 42s", got)
	}
}

func TestWriteDefault_CreatesFile(t *testing.T) {
	// Use a temp dir as fake home to avoid touching real config
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	expectedPath := filepath.Join(tmpHome, ".config", "blesense", "config.yaml")
	if path != expectedPath {
		t.Errorf("WriteDefault() path = %q, want %q", path, expectedPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}

	if !strings.HasPrefix(string(data), "# blesense") {
		t.Error("written config should start with header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Scan.WindowSeconds != 10 {
		t.Errorf("written config Scan.WindowSeconds = %d, want 10", cfg.Scan.WindowSeconds)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("written config MQTT.Broker = %q, want %q", cfg.MQTT.Broker, "tcp://localhost:1883")
	}
}

func TestWriteDefault_NoOpIfExists(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "blesense")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	existingContent := []byte("scan:\n  window_seconds: 3\n")
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, existingContent, 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteDefault() path = %q, want empty string for existing file", path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != string(existingContent) {
		t.Error("WriteDefault() should not overwrite existing config file")
	}
}
