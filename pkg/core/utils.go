package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/IGLOU-EU/go-wildcard"
	"golang.org/x/sys/unix"
)

var errSymlink = errors.New("refusing to follow symlink")

// truncatePath 将文件截断为 0 字节，不存在时跳过
func truncatePath(path string) (Outcome, int64, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return OutcomeSkipped, 0, nil
	}
	if err != nil {
		return OutcomeFailed, 0, err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return OutcomeFailed, 0, fmt.Errorf("truncate %s: %w", path, errSymlink)
	case info.IsDir():
		return OutcomeFailed, 0, fmt.Errorf("truncate %s: is a directory", path)
	}

	if err := unix.Truncate(path, 0); err != nil {
		return OutcomeFailed, 0, fmt.Errorf("truncate %s: %w", path, err)
	}
	return OutcomeCleared, info.Size(), nil
}

// removeTree 递归删除目录，返回删除前统计的字节数
func removeTree(path string) (Outcome, int64, error) {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})

	if err := os.RemoveAll(path); err != nil {
		return OutcomeFailed, 0, fmt.Errorf("remove %s: %w", path, err)
	}
	return OutcomeRemoved, size, nil
}

// clearPath 文件截断，目录递归删除
func clearPath(path string) (Outcome, int64, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return OutcomeSkipped, 0, nil
	}
	if err != nil {
		return OutcomeFailed, 0, err
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		// 只删除链接本身
		if err := os.Remove(path); err != nil {
			return OutcomeFailed, 0, fmt.Errorf("remove %s: %w", path, err)
		}
		return OutcomeRemoved, 0, nil
	case info.IsDir():
		return removeTree(path)
	}
	return truncatePath(path)
}

// expandPattern 展开通配符路径，不含通配符时原样返回
func expandPattern(pattern string) []string {
	if !hasWildcard(pattern) {
		return []string{pattern}
	}

	var matches []string
	baseDir := getBaseDir(pattern)
	_ = filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != baseDir && wildcard.Match(pattern, path) {
			matches = append(matches, path)
			if d.IsDir() {
				return filepath.SkipDir
			}
		}
		return nil
	})
	return matches
}

// isWhitelisted 路径是否命中白名单
func isWhitelisted(path string, whitelist []string) bool {
	for _, pattern := range whitelist {
		if wildcard.Match(pattern, path) {
			return true
		}
	}
	return false
}

func hasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// getBaseDir 从通配符路径中提取基目录
func getBaseDir(pattern string) string {
	idx := strings.IndexAny(pattern, "*?")
	if idx == -1 {
		return filepath.Dir(pattern)
	}
	return filepath.Dir(pattern[:idx])
}
