package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/config"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/logging"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("CMDBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config failure", err)
	}
}

// TestRun_MissingCredentials verifies validation stops startup before any client is built.
func TestRun_MissingCredentials(t *testing.T) {
	t.Setenv("CMDBRIDGE_CONFIG", writeConfig(t, `
iotda:
  endpoint: "iotda.example.com"
  device_id: "gateway-1"
logging:
  level: error
`))
	t.Setenv("CMDBRIDGE_IOTDA_AK", "")
	t.Setenv("CMDBRIDGE_IOTDA_SK", "")

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "iotda.ak") {
		t.Errorf("run() error = %v, want missing credentials", err)
	}
}

// TestRun_StartAndShutdown boots the bridge on the iotda transport and stops it via ctx.
// No command is sent, so no network access to the platform happens.
func TestRun_StartAndShutdown(t *testing.T) {
	port := freePort(t)
	t.Setenv("CMDBRIDGE_CONFIG", writeConfig(t, fmt.Sprintf(`
api:
  host: "127.0.0.1"
  port: %d
iotda:
  endpoint: "iotda.example.com"
  project_id: "project-1"
  device_id: "gateway-1"
logging:
  level: error
`, port)))
	t.Setenv("CMDBRIDGE_IOTDA_AK", "test-ak")
	t.Setenv("CMDBRIDGE_IOTDA_SK", "test-sk")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	var body string
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/")
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			body = string(b)
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if body != "Welcome to the IoT Device Control Server!" {
		cancel()
		t.Fatalf("GET / body = %q", body)
	}

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		cancel()
		t.Fatalf("GET /metrics: %v", err)
	}
	metrics, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(metrics), "cmdbridge_pool_workers 8") {
		t.Errorf("metrics missing pool gauge")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CMDBRIDGE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("CMDBRIDGE_CONFIG", "/etc/cmdbridge/config.yaml")
	if got := getConfigPath(); got != "/etc/cmdbridge/config.yaml" {
		t.Errorf("getConfigPath() = %q", got)
	}
}

func TestOpenTransport_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Dispatch.Transport = "coap"

	if _, err := openTransport(cfg, logging.Discard()); err == nil {
		t.Error("openTransport() expected error for unknown transport")
	}
}

func TestOpenTransport_IoTDAMissingCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.IoTDA.Endpoint = "iotda.example.com"

	if _, err := openTransport(cfg, logging.Discard()); err == nil {
		t.Error("openTransport() expected error without credentials")
	}
}
