package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes validation for the iotda transport.
func validConfig() *Config {
	cfg := Default()
	cfg.IoTDA.Endpoint = "iotda.example.com"
	cfg.IoTDA.AccessKey = "ak"
	cfg.IoTDA.SecretKey = "sk"
	cfg.IoTDA.DeviceID = "gateway-1"
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  host: "0.0.0.0"
  port: 9700
dispatch:
  workers: 4
  timeout: 2.5
iotda:
  endpoint: "iotda.example.com"
  ak: "file-ak"
  sk: "file-sk"
  device_id: "gateway-1"
  instance_id: "instance-1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9700 {
		t.Errorf("API.Port = %d, want 9700", cfg.API.Port)
	}
	if cfg.Dispatch.Workers != 4 {
		t.Errorf("Dispatch.Workers = %d, want 4", cfg.Dispatch.Workers)
	}
	if got := cfg.GetDispatchTimeout(); got != 2500*time.Millisecond {
		t.Errorf("GetDispatchTimeout() = %v, want 2.5s", got)
	}
	// Unset keys keep their defaults.
	if cfg.Dispatch.ServiceID != "control" {
		t.Errorf("Dispatch.ServiceID = %q, want control", cfg.Dispatch.ServiceID)
	}
	if cfg.IoTDA.RegionID != "cn-north-4" {
		t.Errorf("IoTDA.RegionID = %q, want cn-north-4", cfg.IoTDA.RegionID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_CredentialsFromEnv(t *testing.T) {
	path := writeConfig(t, `
iotda:
  endpoint: "iotda.example.com"
  device_id: "gateway-1"
`)
	t.Setenv("CMDBRIDGE_IOTDA_AK", "env-ak")
	t.Setenv("CMDBRIDGE_IOTDA_SK", "env-sk")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IoTDA.AccessKey != "env-ak" || cfg.IoTDA.SecretKey != "env-sk" {
		t.Errorf("credentials = %q/%q, want env-ak/env-sk", cfg.IoTDA.AccessKey, cfg.IoTDA.SecretKey)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
iotda:
  endpoint: ""
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "iotda.endpoint") {
		t.Errorf("error = %v, want mention of iotda.endpoint", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid iotda config", mutate: func(*Config) {}},
		{
			name: "valid mqtt config",
			mutate: func(c *Config) {
				c.Dispatch.Transport = TransportMQTT
				c.MQTT.DeviceID = "Gateway_1"
				c.IoTDA = IoTDAConfig{}
			},
		},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Dispatch.Workers = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Dispatch.Timeout = 0 }, wantErr: true},
		{name: "negative max pending", mutate: func(c *Config) { c.Dispatch.MaxPending = -1 }, wantErr: true},
		{name: "missing service id", mutate: func(c *Config) { c.Dispatch.ServiceID = "" }, wantErr: true},
		{
			name: "write timeout equal to dispatch timeout",
			mutate: func(c *Config) {
				c.API.Timeouts.Write = 5
				c.Dispatch.Timeout = 5
			},
			wantErr: true,
		},
		{
			name: "write timeout shorter than dispatch timeout",
			mutate: func(c *Config) {
				c.API.Timeouts.Write = 3
				c.Dispatch.Timeout = 4.5
			},
			wantErr: true,
		},
		{
			name:   "write timeout just above dispatch timeout",
			mutate: func(c *Config) { c.API.Timeouts.Write = 6 },
		},
		{
			name:   "write timeout disabled",
			mutate: func(c *Config) { c.API.Timeouts.Write = 0 },
		},
		{name: "unknown transport", mutate: func(c *Config) { c.Dispatch.Transport = "coap" }, wantErr: true},
		{name: "missing access key", mutate: func(c *Config) { c.IoTDA.AccessKey = "" }, wantErr: true},
		{name: "missing device id", mutate: func(c *Config) { c.IoTDA.DeviceID = "" }, wantErr: true},
		{
			name: "mqtt without device id",
			mutate: func(c *Config) {
				c.Dispatch.Transport = TransportMQTT
				c.MQTT.DeviceID = ""
			},
			wantErr: true,
		},
		{
			name: "mqtt invalid qos",
			mutate: func(c *Config) {
				c.Dispatch.Transport = TransportMQTT
				c.MQTT.DeviceID = "Gateway_1"
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name: "file logging without path",
			mutate: func(c *Config) {
				c.Logging.Output = "file"
				c.Logging.File.Path = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
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
				Read:     30,
				Write:    45,
				Idle:     60,
				Shutdown: 10,
			},
		},
		IoTDA: IoTDAConfig{HTTPTimeout: 5},
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
	if got := cfg.GetShutdownTimeout().Seconds(); got != 10 {
		t.Errorf("GetShutdownTimeout() = %v, want 10", got)
	}
	if got := cfg.GetIoTDAHTTPTimeout().Seconds(); got != 5 {
		t.Errorf("GetIoTDAHTTPTimeout() = %v, want 5", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("CMDBRIDGE_API_HOST", "0.0.0.0")
	t.Setenv("CMDBRIDGE_API_PORT", "9800")
	t.Setenv("CMDBRIDGE_DISPATCH_TRANSPORT", "mqtt")
	t.Setenv("CMDBRIDGE_IOTDA_ENDPOINT", "iotda.example.com")
	t.Setenv("CMDBRIDGE_IOTDA_PROJECT_ID", "project-1")
	t.Setenv("CMDBRIDGE_IOTDA_DEVICE_ID", "device-1")
	t.Setenv("CMDBRIDGE_IOTDA_INSTANCE_ID", "instance-1")
	t.Setenv("CMDBRIDGE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("CMDBRIDGE_MQTT_USERNAME", "testuser")
	t.Setenv("CMDBRIDGE_MQTT_PASSWORD", "testpass")

	applyEnvOverrides(cfg)

	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host = %q, want 0.0.0.0", cfg.API.Host)
	}
	if cfg.API.Port != 9800 {
		t.Errorf("API.Port = %d, want 9800", cfg.API.Port)
	}
	if cfg.Dispatch.Transport != TransportMQTT {
		t.Errorf("Dispatch.Transport = %q, want mqtt", cfg.Dispatch.Transport)
	}
	if cfg.IoTDA.Endpoint != "iotda.example.com" {
		t.Errorf("IoTDA.Endpoint = %q", cfg.IoTDA.Endpoint)
	}
	if cfg.IoTDA.ProjectID != "project-1" {
		t.Errorf("IoTDA.ProjectID = %q", cfg.IoTDA.ProjectID)
	}
	if cfg.IoTDA.DeviceID != "device-1" || cfg.IoTDA.InstanceID != "instance-1" {
		t.Errorf("IoTDA ids = %q/%q", cfg.IoTDA.DeviceID, cfg.IoTDA.InstanceID)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v", cfg.MQTT.Auth)
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	cfg := Default()
	t.Setenv("CMDBRIDGE_API_PORT", "not-a-port")

	applyEnvOverrides(cfg)

	if cfg.API.Port != 9600 {
		t.Errorf("API.Port = %d, want default 9600", cfg.API.Port)
	}
}
