package command

import "errors"

var (
	// ErrTransportTimeout marks a Commander failure caused by a transport deadline.
	// The dispatcher reports it as KindTimeout.
	ErrTransportTimeout = errors.New("command: transport timed out")

	// ErrQueueFull is returned by Pool.Submit when MaxPending submissions are already waiting.
	ErrQueueFull = errors.New("command: dispatch queue full")
)

// CodeTransportError is the RemoteError code for failures that never reached the platform.
const CodeTransportError = "transport_error"
