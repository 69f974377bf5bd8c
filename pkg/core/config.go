package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"hog/pkg/constants"
)

// Duration 支持 "5s"、"1m" 形式的 TOML 时长
type Duration time.Duration

// UnmarshalText 解析时长字符串
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText 输出时长字符串
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std 转换为 time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config 主配置
type Config struct {
	Interval        Duration `toml:"interval"`         // 循环清理间隔
	TeardownTimeout Duration `toml:"teardown_timeout"` // 退出时等待后台任务的上限
	CommandTimeout  Duration `toml:"command_timeout"`  // 外部命令超时

	Home      string `toml:"home"`       // 为空时取当前用户家目录
	Root      string `toml:"root"`       // 系统日志路径前缀
	OSRelease string `toml:"os_release"` // 发行版标识文件

	ExtraTargets []string `toml:"extra_targets"` // 额外清理路径，支持通配符和 ~/
	Whitelist    []string `toml:"whitelist"`     // 白名单通配符

	LockFile    string `toml:"lock_file"`
	LogFile     string `toml:"log_file"`
	LogLevel    string `toml:"log_level"`
	LogMaxSize  int    `toml:"log_max_size"` // MB
	LogMaxAge   int    `toml:"log_max_age"`  // 天
	MetricsAddr string `toml:"metrics_addr"` // 为空时不启用
}

// Default 返回默认配置
func Default() Config {
	return Config{
		Interval:        Duration(5 * time.Second),
		TeardownTimeout: Duration(time.Second),
		CommandTimeout:  Duration(30 * time.Second),
		Root:            "/",
		OSRelease:       constants.OSReleaseFile,
		LockFile:        constants.LockFile,
		LogFile:         constants.LogFile,
		LogLevel:        "info",
		LogMaxSize:      10,
		LogMaxAge:       7,
	}
}

// Load 读取配置文件，文件不存在时使用默认配置。
// path 为空时依次尝试 HOG_CONFIG 和默认路径。
func Load(path string) (*Config, bool, error) {
	if path == "" {
		path = os.Getenv(constants.ConfigEnv)
	}
	if path == "" {
		path = constants.ConfigFile
	}

	cfg := Default()
	exists := false

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		exists = true
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, true, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, false, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, exists, err
	}
	return &cfg, exists, nil
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Home) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		c.Home = home
	}
	if strings.TrimSpace(c.Root) == "" {
		c.Root = "/"
	}
	if c.OSRelease == "" {
		c.OSRelease = constants.OSReleaseFile
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.ExtraTargets = trimList(c.ExtraTargets)
	c.Whitelist = trimList(c.Whitelist)
	return nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.TeardownTimeout <= 0 {
		return errors.New("teardown_timeout must be positive")
	}
	if c.CommandTimeout <= 0 {
		return errors.New("command_timeout must be positive")
	}
	if c.LogMaxSize < 0 || c.LogMaxAge < 0 {
		return errors.New("log_max_size and log_max_age must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q", c.LogLevel)
	}
	return nil
}

func trimList(values []string) []string {
	out := values[:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || strings.HasPrefix(v, "#") {
			continue
		}
		out = append(out, v)
	}
	return out
}
