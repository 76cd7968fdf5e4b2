// Package log builds the zap loggers used by the CLI and the utils facade.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is used to configure the logger.
type Config struct {
	Format string `mapstructure:"format"` // console, logfmt or json
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Output string `mapstructure:"output"` // stderr, stdout or file path

	// MaxSizeMB caps a file output before it is rotated. Zero disables
	// rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{Format: "console", Level: "info", Output: "stderr"}
}

// Validate checks the format and level names.
func (c Config) Validate() error {
	switch c.Format {
	case "", "console", "logfmt", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	if _, err := zapcore.ParseLevel(levelOrDefault(c.Level)); err != nil {
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	return nil
}

// New creates a zap logger for conf. Additional write syncers receive a copy
// of every entry. The returned close func syncs the logger and releases a file
// output; it is safe to call more than once.
func New(conf Config, extraWriters ...zapcore.WriteSyncer) (*zap.Logger, func() error, error) {
	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := zapcore.ParseLevel(levelOrDefault(conf.Level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}

	var encoder zapcore.Encoder
	switch conf.Format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	var (
		ws        zapcore.WriteSyncer
		closeFile = func() error { return nil }
	)
	switch conf.Output {
	case "", "stderr":
		ws = zapcore.Lock(os.Stderr)
	case "stdout":
		ws = zapcore.Lock(os.Stdout)
	default:
		if conf.MaxSizeMB > 0 {
			lj := &lumberjack.Logger{
				Filename: conf.Output,
				MaxSize:  conf.MaxSizeMB,
			}
			ws = zapcore.AddSync(lj)
			closeFile = lj.Close
		} else {
			sink, closeSink, err := zap.Open(conf.Output)
			if err != nil {
				return nil, nil, fmt.Errorf("open log output: %w", err)
			}
			ws = sink
			closeFile = func() error { closeSink(); return nil }
		}
	}
	wss := zapcore.NewMultiWriteSyncer(append(extraWriters, ws)...)

	core := zapcore.NewCore(encoder, wss, level)
	lg := zap.New(core, zap.AddCaller())

	var once sync.Once
	var closeErr error
	closeFn := func() error {
		once.Do(func() {
			_ = lg.Sync()
			closeErr = closeFile()
		})
		return closeErr
	}
	return lg, closeFn, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return strings.ToLower(level)
}
