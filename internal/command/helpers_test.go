package command

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeCommander records requests and delegates to fn.
type fakeCommander struct {
	mu       sync.Mutex
	requests []Request
	fn       func(ctx context.Context, req Request) (*Response, error)
}

func (f *fakeCommander) SendCommand(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.fn == nil {
		return &Response{CommandID: "cmd-1"}, nil
	}
	return f.fn(ctx, req)
}

func (f *fakeCommander) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCommander) last() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testDispatcher(t *testing.T, commander Commander, pool *Pool, timeout time.Duration) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(commander, pool, Options{
		DeviceID:   "device-1",
		InstanceID: "instance-1",
		Timeout:    timeout,
	})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	return d
}
