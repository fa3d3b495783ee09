package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogPath = "./logs/partsbot.log"
	callerWidth    = 24
)

var (
	Logger      *zap.Logger        = zap.NewNop()
	Sugar       *zap.SugaredLogger = Logger.Sugar()
	atomicLevel                    = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// InitLogger builds the global logger. Development mode writes a colourless
// console stream only; otherwise JSON goes to a rotated file and a console
// copy goes to stdout.
func InitLogger(isDevelopment bool, logPath string, logLevel ...string) error {
	level := zap.InfoLevel
	if len(logLevel) > 0 && logLevel[0] != "" {
		if parsed, err := zapcore.ParseLevel(strings.ToLower(logLevel[0])); err == nil {
			level = parsed
		}
	}
	atomicLevel.SetLevel(level)

	encCfg := encoderConfig()
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), atomicLevel)

	core := consoleCore
	if !isDevelopment {
		fileCore, err := rotatingCore(logPath, encCfg)
		if err != nil {
			return err
		}
		core = zapcore.NewTee(fileCore, consoleCore)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1), // skip the package-level wrappers
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if isDevelopment {
		opts = append(opts, zap.Development())
	}

	Logger = zap.New(core, opts...)
	Sugar = Logger.Sugar()
	zap.ReplaceGlobals(Logger)

	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = fixedWidthLevel
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(shortCaller(caller))
	}
	return cfg
}

// rotatingCore writes JSON lines through lumberjack
func rotatingCore(logPath string, encCfg zapcore.EncoderConfig) (zapcore.Core, error) {
	if logPath == "" {
		logPath = defaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, atomicLevel), nil
}

func fixedWidthLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%-5s", level.CapitalString()))
}

// shortCaller renders package/file:line padded to a fixed column
func shortCaller(caller zapcore.EntryCaller) string {
	path := caller.TrimmedPath()
	if len(path) > callerWidth {
		path = "..." + path[len(path)-(callerWidth-3):]
	}
	return fmt.Sprintf("%-*s", callerWidth, path)
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Fatal logs a message at FatalLevel and exits
func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}

// BrowserLogf adapts zap to the printf-style hooks chromedp expects.
func BrowserLogf(format string, args ...interface{}) {
	Sugar.Debugf("chromedp: "+format, args...)
}

// BrowserErrorf is the chromedp error hook.
func BrowserErrorf(format string, args ...interface{}) {
	Sugar.Warnf("chromedp: "+format, args...)
}
