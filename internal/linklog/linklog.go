// Package linklog is the structured logging façade used everywhere in
// place of the source's text_color_set/dw_printf pair — a global color
// selector followed by a printf call. charmbracelet/log gives the same
// "pick a severity, then write a line" shape with levels and structured
// key/value pairs instead of terminal color codes.
package linklog

import (
	"os"

	"github.com/charmbracelet/log"
)

// Level mirrors the source's dw_color_e selector: each source color maps
// to the log level that plays the same role in the output.
type Level = log.Level

const (
	LevelInfo  = log.InfoLevel
	LevelError = log.ErrorLevel
	LevelDebug = log.DebugLevel
	LevelWarn  = log.WarnLevel
)

var std = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	ReportTimestamp: true,
	ReportCaller:    false,
})

// SetLevel changes the minimum level that reaches the output, the
// equivalent of the source's debug-level command line flags.
func SetLevel(l Level) {
	std.SetLevel(l)
}

// Info logs at info level, the analogue of DW_COLOR_INFO.
func Info(msg string, kv ...any) {
	std.Info(msg, kv...)
}

// Error logs at error level, the analogue of DW_COLOR_ERROR.
func Error(msg string, kv ...any) {
	std.Error(msg, kv...)
}

// Debug logs at debug level, the analogue of DW_COLOR_DEBUG.
func Debug(msg string, kv ...any) {
	std.Debug(msg, kv...)
}

// Warn logs at warn level, the analogue of DW_COLOR_XMIT/REC status lines
// that warrant attention but are not errors.
func Warn(msg string, kv ...any) {
	std.Warn(msg, kv...)
}

// With returns a logger carrying the given key/value pairs on every
// subsequent call, for tagging a run of log lines with e.g. a channel or
// device name the way the source's banners named a channel once per block.
func With(kv ...any) *log.Logger {
	return std.With(kv...)
}
