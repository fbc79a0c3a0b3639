package mqtt

import (
	"testing"
	"time"

	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "cmdbridge-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
		DeviceID: "Gateway_1",
	}
}

func TestBrokerURL(t *testing.T) {
	cfg := testConfig()
	if got := brokerURL(cfg); got != "tcp://127.0.0.1:1883" {
		t.Errorf("brokerURL() = %q, want tcp://127.0.0.1:1883", got)
	}

	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	if got := brokerURL(cfg); got != "ssl://127.0.0.1:8883" {
		t.Errorf("brokerURL() = %q, want ssl://127.0.0.1:8883", got)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "farm", Password: "secret"}
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if opts.ClientID != "cmdbridge-test" {
		t.Errorf("ClientID = %q, want cmdbridge-test", opts.ClientID)
	}
	if opts.Username != "farm" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want farm/secret", opts.Username, opts.Password)
	}
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [ssl://127.0.0.1:1883]", opts.Servers)
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if opts.MaxReconnectInterval != 5*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 5s", opts.MaxReconnectInterval)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLSConfig not set with minimum version")
	}
}

func TestBuildClientOptions_Anonymous(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if opts.Username != "" {
		t.Errorf("Username = %q, want empty", opts.Username)
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion == tlsMinVersion {
		t.Error("TLSConfig set for plain tcp broker")
	}
}
