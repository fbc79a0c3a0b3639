package mqtt

import (
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Errors returned by the broker connection. The device transport maps any of
// them to a transport failure of the command in flight.
var (
	// ErrNotConnected means the broker link is down; no command can leave.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed means the first CONNECT to the broker did not succeed.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed means a command request was not acknowledged by the broker.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed means the response subscription could not be placed.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed means the response subscription could not be removed.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	ErrInvalidQoS   = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)

// await blocks on a paho token for at most wait and wraps any failure in kind.
func await(token pahomqtt.Token, wait time.Duration, kind error) error {
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("%w: timeout after %v", kind, wait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return nil
}
