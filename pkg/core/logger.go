package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger 初始化日志系统：写入滚动日志文件，终端运行时同步输出到 stderr。
// 返回的 io.Closer 用于关闭日志文件。
func SetupLogger(config *Config) (*slog.Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if config.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		rotating := &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    config.LogMaxSize,
			MaxBackups: 3,
			MaxAge:     config.LogMaxAge,
			Compress:   true,
		}
		writers = append(writers, rotating)
		closer = rotating
	}

	if len(writers) == 0 || isTerminal(os.Stderr) {
		writers = append(writers, os.Stderr)
	}

	return NewLogger(io.MultiWriter(writers...), config.LogLevel), closer, nil
}

// NewLogger 在给定 writer 上构造文本格式的 slog 日志
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler).With(slog.String("component", "hog"))
}

// DiscardLogger 丢弃所有输出
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
