// Package logging builds the zap loggers used by the genapi CLI.
//
// Verbosity follows the -v flag count:
//
//	0 (none)  -> WarnLevel  (writer diagnostics only)
//	1 (-v)    -> InfoLevel  (+ per-run summaries)
//	2+ (-vv)  -> DebugLevel (+ per-namespace progress)
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	VerbosityQuiet = 0
	VerbosityInfo  = 1
	VerbosityDebug = 2
)

// Options configures a logger
type Options struct {
	Verbosity int
	// JSON selects structured output for machine consumption
	JSON bool
	// Output defaults to stderr so declarations on stdout stay clean
	Output io.Writer
}

// VerbosityToLevel maps a -v count to a zap level
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New creates a logger writing to opts.Output
func New(opts Options) *zap.Logger {
	return zap.New(NewCore(opts))
}

// NewCore creates the core behind New, for callers that tee it with a Collector
func NewCore(opts Options) zapcore.Core {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if _, isFile := out.(*os.File); !isFile {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(out), VerbosityToLevel(opts.Verbosity))
}
