// pkg/logging/logging.go
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the file sink
type Options struct {
	Dir       string // Directory holding the log files
	Name      string // File name prefix
	Level     string // debug, info, warn, error
	MaxSizeMB int    // Rotation threshold
}

// NewFileLogger builds a zap logger that writes JSON lines to a rotating file only.
// Nothing is written to the console; user-facing output goes through stdout separately.
func NewFileLogger(opts Options) (*zap.Logger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Name == "" {
		opts.Name = "leadsync"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", opts.Name, time.Now().Format("20060102_150405"))),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: 10,
		LocalTime:  true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(sink),
		level,
	)

	return zap.New(core, zap.AddCaller()), nil
}

var (
	reToken = regexp.MustCompile(`(?i)(token=|password=)([^\s&;]+)`)
	reURL   = regexp.MustCompile(`(?i)(://)([^:/@]+):([^@]+)(@)`)
)

// Mask hides credentials embedded in connection strings before they are logged
func Mask(s string) string {
	out := reToken.ReplaceAllString(s, "$1***")
	return reURL.ReplaceAllString(out, "$1$2:***$4")
}
