package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &fakeService{name: "http"}
	waiting := &fakeService{name: "worker", block: true}
	closed := false
	runner := NewRunner(failing, waiting)
	runner.closers = append(runner.closers, func() { closed = true })

	bindErr := errors.New("bind failed")
	failing.startErr = bindErr
	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, bindErr) {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !waiting.stopped.Load() {
		t.Fatalf("expected every service to be stopped")
	}
	if !closed {
		t.Fatalf("expected closers to run")
	}
}

func TestRunnerCancelledContextIsCleanExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(&fakeService{name: "http", block: true})
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
}

func TestRunnerServiceReturningEarlyStopsOthers(t *testing.T) {
	done := &fakeService{name: "worker"}
	waiting := &fakeService{name: "http", block: true}
	if err := NewRunner(done, waiting).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !waiting.stopped.Load() {
		t.Fatalf("expected blocking service to be stopped")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
