package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrRunnerStarted Start 只能调用一次
var ErrRunnerStarted = errors.New("runner already started")

// Cleaner 可被周期执行的清理动作
type Cleaner interface {
	Scrub(ctx context.Context, trigger Trigger) Report
}

// RunState 循环清理器状态
type RunState int32

const (
	StateIdle RunState = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Runner 后台循环清理，退出时再同步清理一次
type Runner struct {
	cleaner         Cleaner
	interval        time.Duration
	teardownTimeout time.Duration
	logger          *slog.Logger

	state  atomic.Int32
	cycles atomic.Int64
	cancel context.CancelFunc
	done   chan struct{}

	stopOnce sync.Once
	teardown Report
}

// NewRunner 创建循环清理器
func NewRunner(cleaner Cleaner, interval, teardownTimeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = DiscardLogger()
	}
	return &Runner{
		cleaner:         cleaner,
		interval:        interval,
		teardownTimeout: teardownTimeout,
		logger:          logger,
		done:            make(chan struct{}),
	}
}

// State 当前状态
func (r *Runner) State() RunState { return RunState(r.state.Load()) }

// Cycles 后台循环已完成的清理次数
func (r *Runner) Cycles() int64 { return r.cycles.Load() }

// Done 后台循环退出后关闭
func (r *Runner) Done() <-chan struct{} { return r.done }

// Start 启动后台循环
func (r *Runner) Start(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrRunnerStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.logger.Info("scrub loop started", slog.Duration("interval", r.interval))
	go r.loop(loopCtx)
	return nil
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	for {
		if ctx.Err() != nil {
			return
		}

		r.cleaner.Scrub(ctx, TriggerLoop)
		r.cycles.Add(1)

		if ctx.Err() != nil {
			return
		}

		timer := time.NewTimer(r.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Stop 停止后台循环，最多等待 teardownTimeout，然后同步执行最后一次清理。
// 可重复调用，只有第一次生效。
func (r *Runner) Stop() Report {
	r.stopOnce.Do(func() {
		if !r.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
			r.state.Store(int32(StateStopped))
			return
		}

		r.cancel()

		timer := time.NewTimer(r.teardownTimeout)
		select {
		case <-r.done:
			timer.Stop()
		case <-timer.C:
			r.logger.Warn("scrub loop did not stop in time", slog.Duration("timeout", r.teardownTimeout))
		}

		r.teardown = r.cleaner.Scrub(context.Background(), TriggerTeardown)
		r.state.Store(int32(StateStopped))
		r.logger.Info("scrub loop stopped",
			slog.Int64("cycles", r.Cycles()),
			slog.Int("teardown_failed", r.teardown.Failures()),
		)
	})
	return r.teardown
}
