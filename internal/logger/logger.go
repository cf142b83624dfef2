package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
)

// Log levels
const (
	LevelError = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

var (
	loggers = map[int]*log.Logger{}

	// Control overall logging level
	LogLevel = LevelInfo

	// Control color output
	useColors = true
)

var levelNames = map[int]struct {
	label string
	color string
}{
	LevelError:   {"ERROR: ", colorRed},
	LevelWarning: {"WARNING: ", colorYellow},
	LevelInfo:    {"INFO: ", colorBlue},
	LevelDebug:   {"DEBUG: ", colorPurple},
}

// Initialize sets up the loggers with the specified outputs. Errors go
// to errHandle, everything else to outHandle; nil falls back to
// stdout/stderr.
func Initialize(outHandle, errHandle io.Writer) {
	if outHandle == nil {
		outHandle = os.Stdout
	}
	if errHandle == nil {
		errHandle = os.Stderr
	}

	for level, name := range levelNames {
		prefix := name.label
		if useColors {
			prefix = name.color + name.label + colorReset
		}
		w := outHandle
		if level == LevelError {
			w = errHandle
		}
		loggers[level] = log.New(w, prefix, log.Ldate|log.Ltime|log.Lshortfile)
	}
}

// DisableColors disables colored output
func DisableColors() {
	useColors = false
	Initialize(nil, nil)
}

// SetLevel sets the logging level
func SetLevel(level int) {
	if level >= LevelError && level <= LevelDebug {
		LogLevel = level
	}
}

func output(level int, format string, v ...interface{}) {
	if LogLevel >= level {
		loggers[level].Output(3, fmt.Sprintf(format, v...))
	}
}

func Infof(format string, v ...interface{}) {
	output(LevelInfo, format, v...)
}

func Debugf(format string, v ...interface{}) {
	output(LevelDebug, format, v...)
}

func Warningf(format string, v ...interface{}) {
	output(LevelWarning, format, v...)
}

func Errorf(format string, v ...interface{}) {
	output(LevelError, format, v...)
}

// Init is called automatically to initialize the logger with defaults
func init() {
	Initialize(nil, nil)
}
