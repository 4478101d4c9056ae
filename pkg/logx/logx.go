package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	level  atomic.Int32
	logger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
)

func init() {
	level.Store(int32(LevelInfo))
}

func SetLevel(l Level) { level.Store(int32(l)) }

func GetLevel() Level { return Level(level.Load()) }

// SetOutput redirects all log lines, mostly useful in tests
func SetOutput(w io.Writer) { logger.SetOutput(w) }

func enabled(l Level) bool { return l >= GetLevel() }

func output(l Level, msg string) {
	if !enabled(l) {
		return
	}
	_ = logger.Output(3, "["+l.String()+"] "+msg)
}

func Debug(args ...any) { output(LevelDebug, fmt.Sprint(args...)) }
func Info(args ...any)  { output(LevelInfo, fmt.Sprint(args...)) }
func Warn(args ...any)  { output(LevelWarn, fmt.Sprint(args...)) }
func Error(args ...any) { output(LevelError, fmt.Sprint(args...)) }

func Debugf(format string, args ...any) { output(LevelDebug, fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { output(LevelInfo, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { output(LevelWarn, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { output(LevelError, fmt.Sprintf(format, args...)) }

// Fatalf logs at error level and exits the process
func Fatalf(format string, args ...any) {
	_ = logger.Output(2, "[FATAL] "+fmt.Sprintf(format, args...))
	os.Exit(1)
}
