package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/config"
)

// Client is the bridge's link to the broker the farm gateway listens on.
//
// Command requests go out through Publish; gateway replies come back through
// the handlers placed with Subscribe, which are placed again after every
// reconnect so a broker restart does not strand pending commands.
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	connected atomic.Bool

	// subscriptions is the set re-placed on reconnect, keyed by topic filter.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	hookMu sync.RWMutex
	hooks  hooks
}

// hooks are the optional observers set after Connect.
type hooks struct {
	onConnect    func()
	onDisconnect func(err error)
	logger       Logger
}

// Logger receives handler failures. *logging.Logger satisfies it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// MessageHandler receives one inbound message, typically a gateway command
// response. paho calls it from its own goroutine; it must return quickly.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker described by cfg and waits for the first CONNACK.
// Later connection losses are retried in the background.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleDisconnect(err) })

	c.client = pahomqtt.NewClient(opts)
	if err := await(c.client.Connect(), defaultConnectTimeout, ErrConnectionFailed); err != nil {
		return nil, err
	}

	// OnConnect fires asynchronously; callers may publish as soon as we return.
	c.connected.Store(true)
	return c, nil
}

func (c *Client) handleConnect() {
	c.connected.Store(true)
	c.resubscribe()

	if fn := c.currentHooks().onConnect; fn != nil {
		fn()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.connected.Store(false)

	if fn := c.currentHooks().onDisconnect; fn != nil {
		fn(err)
	}
}

// resubscribe places every tracked subscription again after a reconnect.
// Failures surface later as commands that time out.
func (c *Client) resubscribe() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for topic, sub := range c.subscriptions {
		c.client.Subscribe(topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// Close disconnects, giving in-flight publishes a short grace period.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.connected.Store(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether commands can currently be published.
func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.client != nil && c.client.IsConnected()
}

// QoS returns the configured QoS for command traffic.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}

// SetOnConnect registers fn for the first connect and every reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.hookMu.Lock()
	c.hooks.onConnect = fn
	c.hookMu.Unlock()
}

// SetOnDisconnect registers fn for connection loss.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.hookMu.Lock()
	c.hooks.onDisconnect = fn
	c.hookMu.Unlock()
}

// SetLogger sets where handler errors and panics are reported.
// Without one they are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.hookMu.Lock()
	c.hooks.logger = logger
	c.hookMu.Unlock()
}

func (c *Client) currentHooks() hooks {
	c.hookMu.RLock()
	defer c.hookMu.RUnlock()
	return c.hooks
}

func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.dispatchMessage(handler, msg.Topic(), msg.Payload())
	}
}

// dispatchMessage runs handler so that a malformed gateway reply can neither
// crash paho's router goroutine nor vanish silently.
func (c *Client) dispatchMessage(handler MessageHandler, topic string, payload []byte) {
	logger := c.currentHooks().logger

	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("MQTT handler panic recovered", "topic", topic, "panic", r)
		}
	}()

	if err := handler(topic, payload); err != nil && logger != nil {
		logger.Warn("MQTT handler returned error", "topic", topic, "error", err)
	}
}
