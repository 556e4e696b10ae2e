package logger

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel = LevelInfo
	logger       = stdlog.New(os.Stdout, "", 0)
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

// SetLevel sets the minimum level logged by the package-level Debug/Info/
// Warn/Error functions and by every Component created with Named.
// Unrecognized values are ignored, leaving the previous level in place.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

func log(level Level, component, format string, v ...any) {
	if level < currentLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	var prefix string
	if component == "" {
		prefix = fmt.Sprintf("[%s] [%s] ", timestamp, level.String())
	} else {
		prefix = fmt.Sprintf("[%s] [%s] [%s] ", timestamp, level.String(), component)
	}
	message := fmt.Sprintf(format, v...)
	logger.Println(prefix + message)
}

func Debug(format string, v ...any) {
	log(LevelDebug, "", format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, "", format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, "", format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, "", format, v...)
}

// Component is a logger scoped to one subsystem (e.g. "naming", "storage",
// "rmi"); every line it emits is tagged with that name so logs from the
// naming node, a storage node, and the RPC transport interleave legibly
// when run in the same process during tests.
type Component struct {
	name string
}

// Named returns a Component-scoped logger. It shares the package-level
// level setting; there is no per-component level override.
func Named(name string) Component {
	return Component{name: name}
}

func (c Component) Debug(format string, v ...any) {
	log(LevelDebug, c.name, format, v...)
}

func (c Component) Info(format string, v ...any) {
	log(LevelInfo, c.name, format, v...)
}

func (c Component) Warn(format string, v ...any) {
	log(LevelWarn, c.name, format, v...)
}

func (c Component) Error(format string, v ...any) {
	log(LevelError, c.name, format, v...)
}
