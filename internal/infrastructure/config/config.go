package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported command transports.
const (
	// TransportIoTDA sends commands through the Huawei Cloud IoTDA application API.
	TransportIoTDA = "iotda"

	// TransportMQTT publishes device-protocol command messages straight to a broker.
	TransportMQTT = "mqtt"
)

// Config is the root configuration structure for the command bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	IoTDA    IoTDAConfig    `yaml:"iotda"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read     int `yaml:"read"`
	Write    int `yaml:"write"`
	Idle     int `yaml:"idle"`
	Shutdown int `yaml:"shutdown"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
// Empty fields fall back to the permissive defaults used by the web front-end.
type CORSConfig struct {
	AllowedOrigin  string   `yaml:"allowed_origin"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	ExposedHeaders []string `yaml:"exposed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// DispatchConfig controls how commands are submitted to the remote platform.
type DispatchConfig struct {
	// Transport selects the commander: "iotda" (default) or "mqtt".
	Transport string `yaml:"transport"`

	// Workers is the number of concurrent remote calls. Fixed at startup.
	Workers int `yaml:"workers"`

	// Timeout is the bounded wait for a single dispatch, in seconds.
	// Fractional values are allowed (e.g. 0.5).
	Timeout float64 `yaml:"timeout"`

	// MaxPending caps submissions waiting for a worker. 0 means unbounded.
	MaxPending int `yaml:"max_pending"`

	// ServiceID is the default device service commands are addressed to.
	ServiceID string `yaml:"service_id"`
}

// IoTDAConfig contains Huawei Cloud IoTDA application-side settings.
type IoTDAConfig struct {
	RegionID   string `yaml:"region_id"`
	Endpoint   string `yaml:"endpoint"`
	ProjectID  string `yaml:"project_id"`
	AccessKey  string `yaml:"ak"`
	SecretKey  string `yaml:"sk"`
	DeviceID   string `yaml:"device_id"`
	InstanceID string `yaml:"instance_id"`

	// HTTPTimeout bounds each SDK request, in seconds.
	HTTPTimeout int `yaml:"http_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for the mqtt transport.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// DeviceID is the gateway device id used in $oc/devices/{id}/... topics.
	DeviceID string `yaml:"device_id"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings (output: "file").
type FileLoggingConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CMDBRIDGE_SECTION_KEY
// For example: CMDBRIDGE_API_PORT, CMDBRIDGE_IOTDA_AK
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the stock settings of the control server:
// localhost:9600, 8 workers, 5 second timeout, service "control".
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host: "localhost",
			Port: 9600,
			Timeouts: APITimeoutConfig{
				Read:     30,
				Write:    30,
				Idle:     60,
				Shutdown: 10,
			},
		},
		Dispatch: DispatchConfig{
			Transport: TransportIoTDA,
			Workers:   8,
			Timeout:   5,
			ServiceID: "control",
		},
		IoTDA: IoTDAConfig{
			RegionID:    "cn-north-4",
			HTTPTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "farm-command-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
			File: FileLoggingConfig{
				Path:       "./logs/cmdbridge.log",
				MaxSize:    50,
				MaxBackups: 5,
				MaxAge:     30,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CMDBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("CMDBRIDGE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CMDBRIDGE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Dispatch
	if v := os.Getenv("CMDBRIDGE_DISPATCH_TRANSPORT"); v != "" {
		cfg.Dispatch.Transport = v
	}

	// IoTDA credentials (never commit these to the config file)
	if v := os.Getenv("CMDBRIDGE_IOTDA_AK"); v != "" {
		cfg.IoTDA.AccessKey = v
	}
	if v := os.Getenv("CMDBRIDGE_IOTDA_SK"); v != "" {
		cfg.IoTDA.SecretKey = v
	}
	if v := os.Getenv("CMDBRIDGE_IOTDA_ENDPOINT"); v != "" {
		cfg.IoTDA.Endpoint = v
	}
	if v := os.Getenv("CMDBRIDGE_IOTDA_PROJECT_ID"); v != "" {
		cfg.IoTDA.ProjectID = v
	}
	if v := os.Getenv("CMDBRIDGE_IOTDA_DEVICE_ID"); v != "" {
		cfg.IoTDA.DeviceID = v
	}
	if v := os.Getenv("CMDBRIDGE_IOTDA_INSTANCE_ID"); v != "" {
		cfg.IoTDA.InstanceID = v
	}

	// MQTT
	if v := os.Getenv("CMDBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CMDBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CMDBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Dispatch.Workers < 1 {
		errs = append(errs, "dispatch.workers must be at least 1")
	}
	if c.Dispatch.Timeout <= 0 {
		errs = append(errs, "dispatch.timeout must be positive")
	}
	if c.Dispatch.MaxPending < 0 {
		errs = append(errs, "dispatch.max_pending must not be negative")
	}
	if c.Dispatch.ServiceID == "" {
		errs = append(errs, "dispatch.service_id is required")
	}
	// A write deadline inside the dispatch wait would cut off the timeout body.
	if c.API.Timeouts.Write > 0 && c.Dispatch.Timeout > 0 && c.GetWriteTimeout() <= c.GetDispatchTimeout() {
		errs = append(errs, "api.timeouts.write must be longer than dispatch.timeout")
	}

	switch c.Dispatch.Transport {
	case TransportIoTDA:
		if c.IoTDA.Endpoint == "" {
			errs = append(errs, "iotda.endpoint is required")
		}
		if c.IoTDA.AccessKey == "" || c.IoTDA.SecretKey == "" {
			errs = append(errs, "iotda.ak and iotda.sk are required (set CMDBRIDGE_IOTDA_AK and CMDBRIDGE_IOTDA_SK)")
		}
		if c.IoTDA.DeviceID == "" {
			errs = append(errs, "iotda.device_id is required")
		}
	case TransportMQTT:
		if c.MQTT.DeviceID == "" {
			errs = append(errs, "mqtt.device_id is required")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	default:
		errs = append(errs, fmt.Sprintf("dispatch.transport must be %q or %q", TransportIoTDA, TransportMQTT))
	}

	if c.Logging.Output == "file" && c.Logging.File.Path == "" {
		errs = append(errs, "logging.file.path is required when logging.output is file")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetShutdownTimeout returns the graceful shutdown drain period as a Duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Shutdown) * time.Second
}

// GetDispatchTimeout returns the bounded dispatch wait as a Duration.
func (c *Config) GetDispatchTimeout() time.Duration {
	return time.Duration(c.Dispatch.Timeout * float64(time.Second))
}

// GetIoTDAHTTPTimeout returns the SDK request timeout as a Duration.
func (c *Config) GetIoTDAHTTPTimeout() time.Duration {
	return time.Duration(c.IoTDA.HTTPTimeout) * time.Second
}
