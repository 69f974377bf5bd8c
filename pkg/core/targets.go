package core

import (
	"path/filepath"
	"strings"

	"hog/pkg/constants"
)

// TargetSet 启动时构建的清理目标列表，之后只读
type TargetSet struct {
	distro  Distro
	targets []Target
}

// BuildTargets 根据配置和发行版生成清理目标
func BuildTargets(config *Config, distro Distro) TargetSet {
	home := config.Home
	root := config.Root
	if root == "" {
		root = "/"
	}

	targets := []Target{
		{Category: CategoryHistory, Action: ActionTruncate, Path: filepath.Join(home, constants.BashHistory)},
		{Category: CategoryCache, Action: ActionAuto, Path: filepath.Join(home, constants.CacheDir)},
		{Category: CategoryCache, Action: ActionAuto, Path: filepath.Join(home, constants.WgetHSTS)},
		{Category: CategoryCache, Action: ActionAuto, Path: filepath.Join(home, constants.RecentlyUsed)},
	}

	for _, extra := range config.ExtraTargets {
		targets = append(targets, Target{
			Category: CategoryCache,
			Action:   ActionAuto,
			Path:     resolveHomePath(home, extra),
		})
	}

	switch distro {
	case DistroDebian:
		targets = append(targets,
			Target{Category: CategoryLogs, Action: ActionTruncate, Path: filepath.Join(root, constants.AptHistoryLog)},
		)
	case DistroArch:
		targets = append(targets,
			Target{Category: CategoryLogs, Action: ActionTruncate, Path: filepath.Join(root, constants.PacmanLog)},
			Target{Category: CategoryLogs, Action: ActionCommand, Command: append([]string(nil), constants.JournalVacuumCommand...)},
		)
	}

	return TargetSet{distro: distro, targets: targets}
}

// Distro 目标集对应的发行版
func (s TargetSet) Distro() Distro { return s.distro }

// Targets 返回目标副本
func (s TargetSet) Targets() []Target {
	out := make([]Target, len(s.targets))
	copy(out, s.targets)
	return out
}

// ByCategory 返回某一步骤的目标
func (s TargetSet) ByCategory(category Category) []Target {
	var out []Target
	for _, t := range s.targets {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Len 目标数量
func (s TargetSet) Len() int { return len(s.targets) }

func resolveHomePath(home, path string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(home, path)
	}
}
