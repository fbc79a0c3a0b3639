package command

import (
	"context"
	"fmt"
	"time"
)

// DefaultServiceID is the device service commands are addressed to unless overridden.
const DefaultServiceID = "control"

// Commander executes a single command against the remote platform.
//
// Implementations should honour ctx where the underlying transport allows it
// and wrap transport-level deadline failures with ErrTransportTimeout.
// A platform rejection is reported as *RemoteError.
type Commander interface {
	SendCommand(ctx context.Context, req Request) (*Response, error)
}

// Request is the immutable payload handed to a Commander.
type Request struct {
	DeviceID    string
	InstanceID  string
	ServiceID   string
	CommandName string
	Parameters  map[string]any
}

// Response is the platform acknowledgement of an accepted command.
type Response struct {
	// CommandID is the platform-assigned id, empty if the transport has none.
	CommandID string

	// Body is the device's response payload, if any.
	Body any
}

// Command describes what a caller wants dispatched.
// Zero ServiceID and Timeout fall back to the Dispatcher defaults.
type Command struct {
	Name       string
	ServiceID  string
	Parameters map[string]any
	Timeout    time.Duration
}

// Kind classifies a dispatch Outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindTimeout
	KindRemoteError
	KindRejected
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTimeout:
		return "timeout"
	case KindRemoteError:
		return "remote_error"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one dispatch.
// Response is set only for KindSuccess, Err only for KindRemoteError.
type Outcome struct {
	Kind     Kind
	Response *Response
	Err      *RemoteError
	Latency  time.Duration
}

// OK reports whether the command was accepted.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// RemoteError is a structured rejection from the remote platform.
type RemoteError struct {
	StatusCode int
	RequestID  string
	Code       string
	Message    string
}

// Error implements error.
func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}
