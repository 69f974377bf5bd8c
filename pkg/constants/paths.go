package constants

// 运行时文件
const (
	ConfigDir  = "/etc/hog/"
	ConfigFile = ConfigDir + "config.toml"
	LogDir     = "/var/log/hog/"
	LogFile    = LogDir + "hog.log"
	LockFile   = "/run/hog.lock"

	// ConfigEnv 指定配置文件路径的环境变量，命令行只保留 --start
	ConfigEnv = "HOG_CONFIG"
)

// 发行版识别
const (
	OSReleaseFile = "/etc/os-release"
)

// 家目录下的清理目标（相对路径）
const (
	BashHistory    = ".bash_history"
	CacheDir       = ".cache"
	WgetHSTS       = ".wget-hsts"
	RecentlyUsed   = ".local/share/recently-used.xbel"
	HistFileEnvKey = "HISTFILE"
)

// 发行版日志（绝对路径，测试时挂在 root 之下）
const (
	AptHistoryLog = "/var/log/apt/history.log"
	PacmanLog     = "/var/log/pacman.log"
)

// journalctl 清理命令
var JournalVacuumCommand = []string{"journalctl", "--vacuum-time=1s"}
