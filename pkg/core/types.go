package core

import (
	"time"
)

// Distro 发行版家族
type Distro string

const (
	DistroDebian  Distro = "debian"
	DistroArch    Distro = "arch"
	DistroUnknown Distro = "unknown"
)

// Category 清理目标所属的步骤
type Category string

const (
	CategoryHistory Category = "history"
	CategoryCache   Category = "cache"
	CategoryLogs    Category = "logs"
)

// Action 对目标执行的动作
type Action string

const (
	ActionTruncate Action = "truncate" // 仅截断文件
	ActionAuto     Action = "auto"     // 文件截断，目录递归删除
	ActionCommand  Action = "command"  // 执行外部命令
)

// Outcome 单个目标的处理结果
type Outcome string

const (
	OutcomeCleared Outcome = "cleared"
	OutcomeRemoved Outcome = "removed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeRan     Outcome = "ran"
	OutcomeFailed  Outcome = "failed"
)

// Trigger 触发清理的来源
type Trigger string

const (
	TriggerLoop     Trigger = "loop"
	TriggerTeardown Trigger = "teardown"
)

// Target 一个清理目标
type Target struct {
	Category Category
	Action   Action
	Path     string   // 文件或目录，可含通配符
	Command  []string // 仅 ActionCommand 使用
}

// Name 用于日志和指标的目标名称
func (t Target) Name() string {
	if t.Action == ActionCommand && len(t.Command) > 0 {
		return t.Command[0]
	}
	return t.Path
}

// StepResult 单个目标的清理结果
type StepResult struct {
	Category Category
	Target   string
	Outcome  Outcome
	Bytes    int64
	Err      error
}

// Report 一次清理的汇总
type Report struct {
	Trigger  Trigger
	Started  time.Time
	Duration time.Duration
	Steps    []StepResult
}

// Failures 失败的目标数
func (r Report) Failures() int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Cleared 实际截断、删除或执行成功的目标数
func (r Report) Cleared() int {
	n := 0
	for _, s := range r.Steps {
		switch s.Outcome {
		case OutcomeCleared, OutcomeRemoved, OutcomeRan:
			n++
		}
	}
	return n
}

// BytesCleared 释放的字节数
func (r Report) BytesCleared() int64 {
	var total int64
	for _, s := range r.Steps {
		total += s.Bytes
	}
	return total
}

// Errors 返回所有失败目标的错误
func (r Report) Errors() []error {
	var errs []error
	for _, s := range r.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}
