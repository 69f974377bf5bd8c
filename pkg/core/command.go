package core

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"hog/pkg/constants"
)

// CommandRunner 执行外部命令
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner 通过 os/exec 执行命令，输出全部丢弃
type ExecRunner struct {
	Env []string
}

// NewExecRunner 子进程环境中 HISTFILE 置空，当前进程环境不变
func NewExecRunner() ExecRunner {
	return ExecRunner{Env: scrubbedEnv(os.Environ())}
}

// Run 执行命令并等待结束
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = r.Env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

func scrubbedEnv(environ []string) []string {
	prefix := constants.HistFileEnvKey + "="
	out := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix)
}
