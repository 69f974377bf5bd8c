package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"hog/pkg/core"
)

const usageLine = "Usage: sudo hog --start"

var (
	errUsage   = errors.New("usage")
	errNotRoot = errors.New("hog must be run with sudo")
)

// 测试中替换
var (
	geteuid       = unix.Geteuid
	notifyContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, os.Interrupt, unix.SIGTERM)
	}
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run 解析参数并运行，返回进程退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var start bool
	helped := false

	cmd := &cobra.Command{
		Use:           "hog",
		Short:         "Periodically scrub shell history, caches and package logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !start {
				return errUsage
			}
			return daemon(cmd.Context(), stdout)
		},
	}
	cmd.Flags().BoolVar(&start, "start", false, "start scrubbing until interrupted")
	cmd.SetFlagErrorFunc(func(*cobra.Command, error) error { return errUsage })
	cmd.SetHelpFunc(func(*cobra.Command, []string) { helped = true })
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case helped || errors.Is(err, errUsage):
		fmt.Fprintln(stdout, usageLine)
		return 1
	case errors.Is(err, errNotRoot):
		fmt.Fprintln(stderr, "Error: hog must be run with sudo.")
		return 1
	case errors.Is(err, core.ErrUnsupportedDistro):
		fmt.Fprintln(stderr, "Unsupported distro.")
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// daemon 检查前置条件，启动循环清理直到收到信号
func daemon(ctx context.Context, stdout io.Writer) error {
	if geteuid() != 0 {
		return errNotRoot
	}

	config, _, err := core.Load("")
	if err != nil {
		return err
	}

	distro := core.DetectDistro(config.OSRelease)
	if distro == core.DistroUnknown {
		return core.ErrUnsupportedDistro
	}

	logger, logCloser, err := core.SetupLogger(config)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	lock, err := core.AcquireLock(config.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lock", slog.String("lock", lock.Path()), slog.Any("error", err))
		}
	}()

	sigCtx, stop := notifyContext(ctx)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := core.NewMetrics(registry)
	if config.MetricsAddr != "" {
		core.ServeMetrics(sigCtx, config.MetricsAddr, registry, logger)
	}

	targets := core.BuildTargets(config, distro)
	scrubber := core.NewScrubber(targets, config, logger, core.WithMetrics(metrics))
	runner := core.NewRunner(scrubber, config.Interval.Std(), config.TeardownTimeout.Std(), logger)

	logger.Info("hog starting",
		slog.String("distro", string(distro)),
		slog.String("home", config.Home),
		slog.Int("targets", targets.Len()),
	)
	fmt.Fprintln(stdout, "hog started, good luck.")

	if err := runner.Start(sigCtx); err != nil {
		return err
	}
	<-sigCtx.Done()

	report := runner.Stop()
	logger.Info("hog stopped",
		slog.Int("teardown_cleared", report.Cleared()),
		slog.Int("teardown_failed", report.Failures()),
	)
	return nil
}
