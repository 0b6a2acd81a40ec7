package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logger  = newLogger(os.Stdout, zerolog.InfoLevel, false)
	logFile *os.File
	indent  atomic.Int32
)

// Init initializes the global logger.
// It configures a console logger that writes to the specified path (or stdout)
// at the specified level.
//
// path: Log file path. If empty, logs to stdout.
// level: Log level ("debug", "info", "warn", "error"). Defaults to "info".
func Init(path string, level string) error {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stdout
	var f *os.File
	noColor := false
	if path != "" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}

		var err error
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		w = f
		noColor = true
	}

	logger = newLogger(w, parseLevel(level), noColor)
	closeFile()
	logFile = f
	return nil
}

// Close closes the log file opened by Init, if any, and logs to stdout again.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	logger = newLogger(os.Stdout, logger.GetLevel(), false)
	return closeFile()
}

// closeFile must be called with mu held.
func closeFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// SetOutput redirects the global logger to w without colors.
func SetOutput(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, parseLevel(level), true)
	closeFile()
}

func newLogger(w io.Writer, lvl zerolog.Level, noColor bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:           w,
		NoColor:       noColor,
		TimeFormat:    time.TimeOnly,
		FormatMessage: formatMessage,
	}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

func formatMessage(i interface{}) string {
	prefix := strings.Repeat("  ", int(indent.Load()))
	if i == nil {
		return prefix
	}
	return prefix + fmt.Sprint(i)
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// PushIndent indents every following message by one level.
// The returned function pops the level again; calling it more than once is a no-op.
func PushIndent() func() {
	indent.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { indent.Add(-1) })
	}
}

// Indent reports the current indentation depth.
func Indent() int {
	return int(indent.Load())
}

func current() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := logger
	return &l
}

func Debug() *zerolog.Event { return current().Debug() }
func Info() *zerolog.Event  { return current().Info() }
func Warn() *zerolog.Event  { return current().Warn() }
func Error() *zerolog.Event { return current().Error() }
