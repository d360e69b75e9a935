// Package observability contains logging setup and other observability
// utilities.
package observability

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"taskwire/pkg/config"
)

// SetupLogger builds the process logger from cfg, installs it as the zap
// global and captures stdlib log output. The caller should defer
// logger.Sync().
func SetupLogger(cfg config.LogConfig) (*zap.Logger, error) {
	core := zapcore.NewCore(
		newEncoder(cfg),
		combinedSink(cfg),
		zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
	)

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	logger := zap.New(core, opts...)
	zap.ReplaceGlobals(logger)
	_, _ = zap.RedirectStdLogAt(logger, zap.InfoLevel)
	return logger, nil
}

// parseLevel maps a config string to a zap level; unknown values log at
// info rather than failing startup.
func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// newEncoder picks the encoder config by development mode and the encoding
// by format.
func newEncoder(cfg config.LogConfig) zapcore.Encoder {
	var ec zapcore.EncoderConfig
	if cfg.Development {
		ec = zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec = zap.NewProductionEncoderConfig()
	}
	if strings.EqualFold(cfg.Format, "json") {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

// combinedSink folds every configured output into one write syncer.
func combinedSink(cfg config.LogConfig) zapcore.WriteSyncer {
	if len(cfg.Outputs) == 0 {
		return zapcore.AddSync(os.Stdout)
	}
	sinks := make([]zapcore.WriteSyncer, 0, len(cfg.Outputs))
	for _, out := range cfg.Outputs {
		sinks = append(sinks, openSink(out, cfg.Rotation))
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return zapcore.NewMultiWriteSyncer(sinks...)
}

// openSink resolves one output name: the standard streams by keyword,
// anything else as a file path, rotated when rotation is enabled.
func openSink(out string, rot config.RotationConfig) zapcore.WriteSyncer {
	switch strings.ToLower(out) {
	case "stdout":
		return zapcore.AddSync(os.Stdout)
	case "stderr":
		return zapcore.AddSync(os.Stderr)
	}

	if rot.Enable {
		rot = rotationFloor(rot)
		name := out
		if f := strings.TrimSpace(rot.Filename); f != "" {
			name = f
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   name,
			MaxSize:    rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAgeDays,
			Compress:   rot.Compress,
		})
	}

	if dir := filepath.Dir(out); dir != "." && dir != string(filepath.Separator) {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		// fall back to stderr on a bad path
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(f)
}

// rotationFloor clamps rotation limits to workable minimums.
func rotationFloor(r config.RotationConfig) config.RotationConfig {
	if r.MaxSizeMB < 10 {
		r.MaxSizeMB = 10
	}
	if r.MaxBackups < 1 {
		r.MaxBackups = 1
	}
	if r.MaxAgeDays < 7 {
		r.MaxAgeDays = 7
	}
	return r
}
