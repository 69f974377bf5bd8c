package core

import (
	"errors"
	"os"
	"strings"
)

// ErrUnsupportedDistro 无法识别发行版
var ErrUnsupportedDistro = errors.New("unsupported distro")

// DetectDistro 读取系统标识文件判断发行版，读取失败视为未知
func DetectDistro(path string) Distro {
	data, err := os.ReadFile(path)
	if err != nil {
		return DistroUnknown
	}
	return ParseDistro(string(data))
}

// ParseDistro 对标识内容做不区分大小写的子串匹配
func ParseDistro(data string) Distro {
	lower := strings.ToLower(data)
	switch {
	case strings.Contains(lower, "debian"), strings.Contains(lower, "ubuntu"):
		return DistroDebian
	case strings.Contains(lower, "arch"):
		return DistroArch
	default:
		return DistroUnknown
	}
}
