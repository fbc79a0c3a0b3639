// Farm Command Bridge
//
// This is the main entry point for the farm command bridge: a thin HTTP
// service that turns front-end button presses into device commands for the
// greenhouse gateway (fan, grow light, pump).
//
// Commands are delivered either through the Huawei Cloud IoTDA application
// API or straight to the gateway over MQTT, selected by dispatch.transport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/farm-command-bridge/internal/api"
	"github.com/nerrad567/farm-command-bridge/internal/bridges/devicemqtt"
	"github.com/nerrad567/farm-command-bridge/internal/command"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/config"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/farm-command-bridge/internal/iotda"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// transport is the commander chosen by configuration plus its health check.
type transport struct {
	commander command.Commander
	health    api.HealthChecker
	deviceID  string
	close     func()
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting farm command bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	defer log.Close()
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"output", cfg.Logging.Output,
	)

	tr, err := openTransport(cfg, log)
	if err != nil {
		return err
	}
	defer tr.close()

	pool := command.NewPool(cfg.Dispatch.Workers, cfg.Dispatch.MaxPending)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := command.NewMetrics(registry, pool)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	dispatcher, err := command.NewDispatcher(tr.commander, pool, command.Options{
		DeviceID:   tr.deviceID,
		InstanceID: cfg.IoTDA.InstanceID,
		ServiceID:  cfg.Dispatch.ServiceID,
		Timeout:    cfg.GetDispatchTimeout(),
		Logger:     log.With("component", "dispatcher"),
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	log.Info("dispatcher ready",
		"transport", cfg.Dispatch.Transport,
		"workers", pool.Workers(),
		"max_pending", cfg.Dispatch.MaxPending,
		"timeout", cfg.GetDispatchTimeout().String(),
	)

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Metrics:    cfg.Metrics,
		Logger:     log.With("component", "api"),
		Dispatcher: dispatcher,
		Health:     tr.health,
		Gatherer:   registry,
		Transport:  cfg.Dispatch.Transport,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal", "address", server.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. API server (drains in-flight HTTP requests)
	// 2. Transport
	// 3. Log file

	return nil
}

// openTransport builds the commander selected by dispatch.transport.
func openTransport(cfg *config.Config, log *logging.Logger) (*transport, error) {
	switch cfg.Dispatch.Transport {
	case config.TransportMQTT:
		return openMQTTTransport(cfg, log)
	case config.TransportIoTDA, "":
		commander, err := iotda.New(cfg.IoTDA, cfg.GetIoTDAHTTPTimeout())
		if err != nil {
			return nil, fmt.Errorf("creating IoTDA client: %w", err)
		}
		log.Info("IoTDA transport ready",
			"region", cfg.IoTDA.RegionID,
			"endpoint", cfg.IoTDA.Endpoint,
			"device_id", cfg.IoTDA.DeviceID,
		)
		return &transport{
			commander: commander,
			health:    commander,
			deviceID:  cfg.IoTDA.DeviceID,
			close:     func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Dispatch.Transport)
	}
}

func openMQTTTransport(cfg *config.Config, log *logging.Logger) (*transport, error) {
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	commander, err := devicemqtt.New(mqttClient, cfg.MQTT.DeviceID, log)
	if err != nil {
		_ = mqttClient.Close()
		return nil, fmt.Errorf("starting MQTT transport: %w", err)
	}

	return &transport{
		commander: commander,
		health:    commander,
		deviceID:  cfg.MQTT.DeviceID,
		close: func() {
			if closeErr := commander.Close(); closeErr != nil {
				log.Warn("error closing MQTT transport", "error", closeErr)
			}
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		},
	}, nil
}

// getConfigPath returns the configuration file path.
// Uses CMDBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CMDBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
