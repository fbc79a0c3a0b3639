package command

import (
	"context"
	"errors"
	"testing"
)

func TestNewPool_Bounds(t *testing.T) {
	if got := NewPool(0, 0).Workers(); got != 1 {
		t.Errorf("Workers() = %d, want 1 for zero workers", got)
	}
	if got := NewPool(8, -3).maxPending; got != 0 {
		t.Errorf("maxPending = %d, want 0 for negative input", got)
	}
}

func TestPool_SubmitRunsTask(t *testing.T) {
	pool := NewPool(2, 0)
	ran := make(chan struct{})

	if err := pool.Submit(context.Background(), func() { close(ran) }); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-ran

	waitFor(t, "slot release", func() bool { return pool.Running() == 0 && pool.Queued() == 0 })
}

func TestPool_CancelledBeforeSlotSkipsTask(t *testing.T) {
	pool := NewPool(1, 0)
	release := make(chan struct{})
	started := make(chan struct{})

	if err := pool.Submit(context.Background(), func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	ranSecond := make(chan struct{}, 1)
	if err := pool.Submit(ctx, func() { ranSecond <- struct{}{} }); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitFor(t, "second task queued", func() bool { return pool.Queued() == 1 })

	cancel()
	waitFor(t, "queued task dropped", func() bool { return pool.Queued() == 0 })
	close(release)
	waitFor(t, "first task finished", func() bool { return pool.Running() == 0 })

	select {
	case <-ranSecond:
		t.Error("cancelled task ran")
	default:
	}
}

func TestPool_MaxPending(t *testing.T) {
	pool := NewPool(1, 1)
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})

	block := func() { <-release }

	if err := pool.Submit(context.Background(), func() { close(started); block() }); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	<-started

	if err := pool.Submit(context.Background(), block); err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}

	if err := pool.Submit(context.Background(), block); !errors.Is(err, ErrQueueFull) {
		t.Errorf("third Submit() error = %v, want ErrQueueFull", err)
	}
	if got := pool.Queued(); got != 1 {
		t.Errorf("Queued() = %d after rejection, want 1", got)
	}
}
