package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// stepOrder 清理步骤顺序：历史、缓存、系统日志
var stepOrder = []Category{CategoryHistory, CategoryCache, CategoryLogs}

// Scrubber 执行一次完整清理，任何失败都只记录在 Report 中
type Scrubber struct {
	targets        TargetSet
	whitelist      []string
	runner         CommandRunner
	commandTimeout time.Duration
	logger         *slog.Logger
	metrics        *Metrics
	now            func() time.Time

	mu sync.Mutex
}

// ScrubberOption 可选参数
type ScrubberOption func(*Scrubber)

// WithCommandRunner 替换外部命令执行器
func WithCommandRunner(runner CommandRunner) ScrubberOption {
	return func(s *Scrubber) { s.runner = runner }
}

// WithMetrics 记录指标
func WithMetrics(metrics *Metrics) ScrubberOption {
	return func(s *Scrubber) { s.metrics = metrics }
}

// NewScrubber 创建清理器
func NewScrubber(targets TargetSet, config *Config, logger *slog.Logger, opts ...ScrubberOption) *Scrubber {
	if logger == nil {
		logger = DiscardLogger()
	}
	s := &Scrubber{
		targets:        targets,
		whitelist:      append([]string(nil), config.Whitelist...),
		runner:         NewExecRunner(),
		commandTimeout: config.CommandTimeout.Std(),
		logger:         logger,
		now:            time.Now,
	}
	if s.commandTimeout <= 0 {
		s.commandTimeout = Default().CommandTimeout.Std()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrub 依次清理历史、缓存和系统日志。可重复调用，不返回错误。
func (s *Scrubber) Scrub(ctx context.Context, trigger Trigger) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := Report{Trigger: trigger, Started: s.now()}
	for _, category := range stepOrder {
		for _, target := range s.targets.ByCategory(category) {
			report.Steps = append(report.Steps, s.scrubTarget(ctx, target)...)
		}
	}
	report.Duration = s.now().Sub(report.Started)

	s.metrics.Observe(report)
	for _, step := range report.Steps {
		if step.Err != nil {
			s.logger.Debug("scrub target failed",
				slog.String("category", string(step.Category)),
				slog.String("target", step.Target),
				slog.Any("error", step.Err),
			)
		}
	}
	s.logger.Debug("scrub finished",
		slog.String("trigger", string(trigger)),
		slog.Int("cleared", report.Cleared()),
		slog.Int("failed", report.Failures()),
		slog.Int64("bytes", report.BytesCleared()),
		slog.Duration("duration", report.Duration),
	)
	return report
}

func (s *Scrubber) scrubTarget(ctx context.Context, target Target) (results []StepResult) {
	defer func() {
		if r := recover(); r != nil {
			results = append(results, StepResult{
				Category: target.Category,
				Target:   target.Name(),
				Outcome:  OutcomeFailed,
				Err:      fmt.Errorf("panic while scrubbing %s: %v", target.Name(), r),
			})
		}
	}()

	if target.Action == ActionCommand {
		return []StepResult{s.runCommand(ctx, target)}
	}

	for _, path := range expandPattern(target.Path) {
		result := StepResult{Category: target.Category, Target: path}
		if isWhitelisted(path, s.whitelist) {
			result.Outcome = OutcomeSkipped
			results = append(results, result)
			continue
		}

		switch target.Action {
		case ActionTruncate:
			result.Outcome, result.Bytes, result.Err = truncatePath(path)
		default:
			result.Outcome, result.Bytes, result.Err = clearPath(path)
		}
		results = append(results, result)
	}
	return results
}

func (s *Scrubber) runCommand(ctx context.Context, target Target) StepResult {
	result := StepResult{Category: target.Category, Target: target.Name()}
	if len(target.Command) == 0 {
		result.Outcome = OutcomeSkipped
		return result
	}

	cmdCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	defer cancel()

	if err := s.runner.Run(cmdCtx, target.Command[0], target.Command[1:]...); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("run %s: %w", target.Name(), err)
		return result
	}
	result.Outcome = OutcomeRan
	return result
}
