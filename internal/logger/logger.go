package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// Init 初始化日志系统
func Init(level string) {
	Logger = newLogger(os.Stderr, level)

	logDir := getLogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		Logger.Errorf("无法创建日志目录 %s: %v", logDir, err)
		return // 无法创建目录，日志将输出到stderr
	}

	logFile := filepath.Join(logDir, "fpgaterm.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		Logger.Errorf("无法打开日志文件 %s: %v", logFile, err)
		return // 无法打开文件，日志将输出到stderr
	}
	Logger.SetOutput(file)
}

// InitWithWriter points the package logger at w, used by tests.
func InitWithWriter(w io.Writer, level string) {
	Logger = newLogger(w, level)
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&CustomFormatter{})
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps a config level name to a logrus level. Unknown names mean INFO.
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// getLogDir 获取日志目录
func getLogDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".fpgaterm", "logs")
}

// Info 信息日志
func Info(args ...interface{}) {
	if Logger != nil {
		Logger.Info(args...)
	}
}

// Error 错误日志
func Error(args ...interface{}) {
	if Logger != nil {
		Logger.Error(args...)
	}
}

// Debug 调试日志
func Debug(args ...interface{}) {
	if Logger != nil {
		Logger.Debug(args...)
	}
}

// Warn 警告日志
func Warn(args ...interface{}) {
	if Logger != nil {
		Logger.Warn(args...)
	}
}
