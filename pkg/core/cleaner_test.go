package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingCleaner struct {
	mu       sync.Mutex
	loop     int
	teardown int
	block    chan struct{} // 非 nil 时循环清理阻塞直到关闭
	entered  chan struct{}
}

func (c *countingCleaner) Scrub(_ context.Context, trigger Trigger) Report {
	if trigger == TriggerLoop && c.block != nil {
		select {
		case c.entered <- struct{}{}:
		default:
		}
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch trigger {
	case TriggerLoop:
		c.loop++
	case TriggerTeardown:
		c.teardown++
	}
	return Report{Trigger: trigger, Started: time.Now()}
}

func (c *countingCleaner) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop, c.teardown
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestRunnerLoopsAndTearsDownOnce(t *testing.T) {
	cleaner := &countingCleaner{}
	runner := NewRunner(cleaner, 10*time.Millisecond, time.Second, nil)

	if runner.State() != StateIdle {
		t.Fatalf("expected idle, got %s", runner.State())
	}
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if runner.State() != StateRunning {
		t.Fatalf("expected running, got %s", runner.State())
	}

	waitFor(t, 2*time.Second, func() bool { return runner.Cycles() >= 3 })

	started := time.Now()
	report := runner.Stop()
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("stop took %v, expected the loop to exit promptly", elapsed)
	}
	if report.Trigger != TriggerTeardown {
		t.Fatalf("expected teardown report, got %q", report.Trigger)
	}

	select {
	case <-runner.Done():
	default:
		t.Fatal("expected loop goroutine to have exited")
	}

	loops, teardowns := cleaner.counts()
	if teardowns != 1 {
		t.Fatalf("expected exactly one teardown scrub, got %d", teardowns)
	}
	if int64(loops) != runner.Cycles() {
		t.Fatalf("loop count %d does not match cycles %d", loops, runner.Cycles())
	}
	if runner.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", runner.State())
	}

	runner.Stop()
	if _, teardowns := cleaner.counts(); teardowns != 1 {
		t.Fatalf("second Stop must not scrub again, got %d teardowns", teardowns)
	}
}

func TestRunnerFirstScrubIsImmediate(t *testing.T) {
	cleaner := &countingCleaner{}
	runner := NewRunner(cleaner, time.Hour, time.Second, nil)
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer runner.Stop()

	waitFor(t, time.Second, func() bool { return runner.Cycles() == 1 })
}

func TestRunnerStartTwice(t *testing.T) {
	runner := NewRunner(&countingCleaner{}, time.Hour, time.Second, nil)
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer runner.Stop()

	if err := runner.Start(context.Background()); !errors.Is(err, ErrRunnerStarted) {
		t.Fatalf("expected ErrRunnerStarted, got %v", err)
	}
}

func TestRunnerStopWithoutStart(t *testing.T) {
	cleaner := &countingCleaner{}
	runner := NewRunner(cleaner, time.Hour, time.Second, nil)
	runner.Stop()

	if runner.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", runner.State())
	}
	if loops, teardowns := cleaner.counts(); loops != 0 || teardowns != 0 {
		t.Fatalf("expected no scrubs, got loop=%d teardown=%d", loops, teardowns)
	}
	if err := runner.Start(context.Background()); !errors.Is(err, ErrRunnerStarted) {
		t.Fatalf("expected stopped runner to refuse Start, got %v", err)
	}
}

func TestRunnerStopBoundedWhenLoopIsStuck(t *testing.T) {
	cleaner := &countingCleaner{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	runner := NewRunner(cleaner, time.Hour, 50*time.Millisecond, nil)
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-cleaner.entered:
	case <-time.After(time.Second):
		t.Fatal("loop never started scrubbing")
	}

	started := time.Now()
	runner.Stop()
	elapsed := time.Since(started)
	if elapsed < 50*time.Millisecond || elapsed > time.Second {
		t.Fatalf("expected stop to wait about the teardown timeout, took %v", elapsed)
	}
	if _, teardowns := cleaner.counts(); teardowns != 1 {
		t.Fatalf("teardown must run even when the loop is stuck, got %d", teardowns)
	}

	close(cleaner.block)
	select {
	case <-runner.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after being released")
	}
}

func TestRunnerStopsWhenParentContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(&countingCleaner{}, 10*time.Millisecond, time.Second, nil)
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	select {
	case <-runner.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not observe parent cancellation")
	}
	runner.Stop()
}

func TestRunStateString(t *testing.T) {
	want := map[RunState]string{
		StateIdle:     "idle",
		StateRunning:  "running",
		StateStopping: "stopping",
		StateStopped:  "stopped",
		RunState(42):  "unknown",
	}
	for state, name := range want {
		if state.String() != name {
			t.Fatalf("RunState(%d).String() = %q, want %q", state, state.String(), name)
		}
	}
}
