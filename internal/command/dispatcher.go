package command

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/logging"
)

// defaultTimeout applies when neither the Command nor Options set one.
const defaultTimeout = 5 * time.Second

// Options holds the fixed settings of a Dispatcher.
type Options struct {
	// DeviceID and InstanceID identify the target device. Configuration, never user input.
	DeviceID   string
	InstanceID string

	// ServiceID is used when a Command leaves it empty. Defaults to "control".
	ServiceID string

	// Timeout is used when a Command leaves it zero. Defaults to 5s.
	Timeout time.Duration

	Logger  *logging.Logger
	Metrics *Metrics
}

// Dispatcher submits commands through a Pool and classifies the result.
type Dispatcher struct {
	commander  Commander
	pool       *Pool
	deviceID   string
	instanceID string
	serviceID  string
	timeout    time.Duration
	logger     *logging.Logger
	metrics    *Metrics
}

// callResult carries a Commander return across the pool boundary.
type callResult struct {
	resp *Response
	err  error
}

// NewDispatcher creates a Dispatcher sharing the given pool.
//
// Returns:
//   - *Dispatcher: Ready for concurrent use
//   - error: If commander or pool is missing
func NewDispatcher(commander Commander, pool *Pool, opts Options) (*Dispatcher, error) {
	if commander == nil {
		return nil, fmt.Errorf("commander is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}

	d := &Dispatcher{
		commander:  commander,
		pool:       pool,
		deviceID:   opts.DeviceID,
		instanceID: opts.InstanceID,
		serviceID:  opts.ServiceID,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	if d.serviceID == "" {
		d.serviceID = DefaultServiceID
	}
	if d.timeout <= 0 {
		d.timeout = defaultTimeout
	}
	if d.logger == nil {
		d.logger = logging.Discard()
	}

	return d, nil
}

// Dispatch sends one command and waits at most the timeout for its outcome.
//
// The wait covers both queueing for a pool slot and the remote call. Dispatch
// never returns an error: every failure is folded into the Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) Outcome {
	start := time.Now()
	req := d.buildRequest(cmd)

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult, 1)
	var outcome Outcome

	if err := d.pool.Submit(ctx, func() { done <- d.call(ctx, req) }); err != nil {
		outcome = Outcome{Kind: KindRejected}
	} else {
		select {
		case r := <-done:
			outcome = classify(r)
		case <-ctx.Done():
			outcome = Outcome{Kind: KindTimeout}
		}
	}

	outcome.Latency = time.Since(start)
	d.record(req, outcome, timeout)
	return outcome
}

// buildRequest snapshots the command so later caller mutations cannot leak in.
func (d *Dispatcher) buildRequest(cmd Command) Request {
	serviceID := cmd.ServiceID
	if serviceID == "" {
		serviceID = d.serviceID
	}
	params := maps.Clone(cmd.Parameters)
	if params == nil {
		params = map[string]any{}
	}
	return Request{
		DeviceID:    d.deviceID,
		InstanceID:  d.instanceID,
		ServiceID:   serviceID,
		CommandName: cmd.Name,
		Parameters:  params,
	}
}

// call runs the commander, turning a panic into an error so the slot is always released.
func (d *Dispatcher) call(ctx context.Context, req Request) (result callResult) {
	defer func() {
		if r := recover(); r != nil {
			result = callResult{err: fmt.Errorf("commander panic: %v", r)}
		}
	}()
	resp, err := d.commander.SendCommand(ctx, req)
	return callResult{resp: resp, err: err}
}

// classify maps a commander return to an Outcome.
func classify(r callResult) Outcome {
	if r.err == nil {
		resp := r.resp
		if resp == nil {
			resp = &Response{}
		}
		return Outcome{Kind: KindSuccess, Response: resp}
	}

	var remote *RemoteError
	if errors.As(r.err, &remote) {
		return Outcome{Kind: KindRemoteError, Err: remote}
	}

	if errors.Is(r.err, ErrTransportTimeout) || errors.Is(r.err, context.DeadlineExceeded) {
		return Outcome{Kind: KindTimeout}
	}

	return Outcome{
		Kind: KindRemoteError,
		Err: &RemoteError{
			Code:    CodeTransportError,
			Message: r.err.Error(),
		},
	}
}

func (d *Dispatcher) record(req Request, o Outcome, timeout time.Duration) {
	d.metrics.observe(req.CommandName, o)

	args := []any{
		"command", req.CommandName,
		"service_id", req.ServiceID,
		"outcome", o.Kind.String(),
		"latency_ms", o.Latency.Milliseconds(),
	}

	switch o.Kind {
	case KindSuccess:
		d.logger.Info("command dispatched", args...)
	case KindTimeout:
		d.logger.Warn("command timed out", append(args, "timeout_ms", timeout.Milliseconds())...)
	case KindRemoteError:
		d.logger.Warn("command rejected by remote",
			append(args, "status_code", o.Err.StatusCode, "error_code", o.Err.Code, "request_id", o.Err.RequestID, "error", o.Err.Message)...)
	case KindRejected:
		d.logger.Warn("command rejected, dispatch queue full",
			append(args, "queued", d.pool.Queued(), "workers", d.pool.Workers())...)
	}
}
