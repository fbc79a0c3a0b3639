package devicemqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/farm-command-bridge/internal/command"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/mqtt"
)

// Broker is the subset of *mqtt.Client used by Commander.
// This allows a fake broker in tests.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	QoS() byte
	HealthCheck(ctx context.Context) error
}

// Commander publishes commands to a gateway and waits for its response.
type Commander struct {
	broker    Broker
	gatewayID string
	topics    mqtt.Topics
	logger    *logging.Logger

	// pending maps request id to the waiter of that command.
	pending map[string]chan responseMessage
	closed  bool
	mu      sync.Mutex

	newRequestID func() string
}

// New subscribes to the gateway's command responses and returns a ready Commander.
//
// Parameters:
//   - broker: Connected MQTT client; subscriptions survive reconnects
//   - gatewayID: Device id the gateway registered with (topic segment)
//   - logger: Optional; nil discards
//
// Returns:
//   - *Commander: Ready for use
//   - error: If gatewayID is empty or the subscription fails
func New(broker Broker, gatewayID string, logger *logging.Logger) (*Commander, error) {
	if gatewayID == "" {
		return nil, ErrMissingGateway
	}
	if logger == nil {
		logger = logging.Discard()
	}

	c := &Commander{
		broker:       broker,
		gatewayID:    gatewayID,
		logger:       logger.With("component", "devicemqtt", "gateway_id", gatewayID),
		pending:      make(map[string]chan responseMessage),
		newRequestID: uuid.NewString,
	}

	topic := c.topics.AllCommandResponses(gatewayID)
	if err := broker.Subscribe(topic, broker.QoS(), c.handleResponse); err != nil {
		return nil, fmt.Errorf("subscribing to command responses: %w", err)
	}

	return c, nil
}

// SendCommand publishes req and blocks until the gateway answers or ctx ends.
func (c *Commander) SendCommand(ctx context.Context, req command.Request) (*command.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(requestMessage{
		ObjectDeviceID: req.DeviceID,
		ServiceID:      req.ServiceID,
		CommandName:    req.CommandName,
		Paras:          req.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding command %s: %w", req.CommandName, err)
	}

	requestID := c.newRequestID()
	waiter, err := c.register(requestID)
	if err != nil {
		return nil, err
	}
	defer c.forget(requestID)

	topic := c.topics.CommandRequest(c.gatewayID, requestID)
	if err := c.broker.Publish(topic, payload, c.broker.QoS(), false); err != nil {
		return nil, fmt.Errorf("publishing command %s: %w", req.CommandName, err)
	}

	select {
	case resp, ok := <-waiter:
		if !ok {
			return nil, ErrClosed
		}
		if resp.ResultCode != 0 {
			return nil, &command.RemoteError{
				RequestID: requestID,
				Code:      strconv.Itoa(resp.ResultCode),
				Message:   fmt.Sprintf("device rejected %s with result_code %d", req.CommandName, resp.ResultCode),
			}
		}
		return &command.Response{CommandID: requestID, Body: resp.Paras}, nil

	case <-ctx.Done():
		return nil, fmt.Errorf("%w: no response to request %s: %v", command.ErrTransportTimeout, requestID, ctx.Err())
	}
}

// HealthCheck reports the broker connection state.
func (c *Commander) HealthCheck(ctx context.Context) error {
	return c.broker.HealthCheck(ctx)
}

// Close drops the response subscription and releases every waiter.
// Safe to call multiple times.
func (c *Commander) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for id, waiter := range c.pending {
		close(waiter)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	return c.broker.Unsubscribe(c.topics.AllCommandResponses(c.gatewayID))
}

// Pending returns the number of commands awaiting a response.
func (c *Commander) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Commander) register(requestID string) (<-chan responseMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	waiter := make(chan responseMessage, 1)
	c.pending[requestID] = waiter
	return waiter, nil
}

func (c *Commander) forget(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// handleResponse runs on the MQTT client's goroutine for every response topic.
func (c *Commander) handleResponse(topic string, payload []byte) error {
	requestID, ok := c.topics.RequestID(topic)
	if !ok {
		return fmt.Errorf("%w: topic %s has no request id", ErrInvalidResponse, topic)
	}

	var resp responseMessage
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.mu.Lock()
	waiter, found := c.pending[requestID]
	if found {
		delete(c.pending, requestID)
	}
	c.mu.Unlock()

	if !found {
		// Late answer to a command that already timed out.
		c.logger.Debug("ignoring response for unknown request", "request_id", requestID)
		return nil
	}

	waiter <- resp
	return nil
}
