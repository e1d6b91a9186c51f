package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/cabbage-miniapp/internal/config"
)

// Logger is the structured logging surface shared across packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// ZapLogger logs objects as a single structured field named `key`.
type ZapLogger struct {
	z *zap.Logger
}

// New wraps an existing zap logger.
func New(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

// Init builds a JSON zap logger on stderr using settings from config. Stdout
// is left to command output.
func Init(cfg *config.Config) (*ZapLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		ParseLevel(cfg.LogLevel),
	)

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.AppName), zap.String("env", cfg.Env))
	return New(z), nil
}

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered entries.
func (l *ZapLogger) Close() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}

func (l *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	l.z.Info(msg, zap.Any(key, obj))
}

func (l *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	l.z.Debug(msg, zap.Any(key, obj))
}

func (l *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	l.z.Warn(msg, zap.Any(key, obj))
}

func (l *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	l.z.Error(msg, zap.Any(key, obj))
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

var (
	_ Logger = (*ZapLogger)(nil)
	_ Logger = NopLogger{}
)
