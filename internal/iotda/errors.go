package iotda

import (
	"errors"
	"fmt"
	"net"

	"github.com/huaweicloud/huaweicloud-sdk-go-v3/core/sdkerr"

	"github.com/nerrad567/farm-command-bridge/internal/command"
)

var (
	// ErrMissingCredentials is returned by New when the access key or secret key is empty.
	ErrMissingCredentials = errors.New("iotda: access key and secret key are required")

	// ErrMissingEndpoint is returned by New when no endpoint is configured.
	ErrMissingEndpoint = errors.New("iotda: endpoint is required")
)

// mapError converts an SDK error into the form the dispatcher classifies.
func mapError(err error) error {
	var svc *sdkerr.ServiceResponseError
	if errors.As(err, &svc) {
		msg := svc.ErrorMessage
		if msg == "" {
			msg = fmt.Sprintf("http status %d", svc.StatusCode)
		}
		return &command.RemoteError{
			StatusCode: svc.StatusCode,
			RequestID:  svc.RequestId,
			Code:       svc.ErrorCode,
			Message:    msg,
		}
	}

	// The SDK surfaces http.Client timeouts as *url.Error.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", command.ErrTransportTimeout, err)
	}

	return fmt.Errorf("iotda create command: %w", err)
}
