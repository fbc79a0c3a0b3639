package devicemqtt

import "errors"

// Domain errors for the device MQTT transport.
var (
	// ErrMissingGateway is returned by New when no gateway device id is configured.
	ErrMissingGateway = errors.New("devicemqtt: gateway device id is required")

	// ErrClosed is returned by SendCommand after Close.
	ErrClosed = errors.New("devicemqtt: commander closed")

	// ErrInvalidResponse is returned by the response handler for payloads it cannot decode.
	ErrInvalidResponse = errors.New("devicemqtt: invalid command response")
)
