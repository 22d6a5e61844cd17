package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the content service and its tools.
// Debug/Info/Warn/Error/Fatal variants plus Init(level); backed by zap.

// fatalHook runs after a Fatal entry is written; tests swap in WriteThenPanic.
var fatalHook zapcore.CheckWriteHook = zapcore.WriteThenFatal

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
	sugar = newLogger(newCore(zapcore.Lock(os.Stdout)))
)

func newLogger(core zapcore.Core) *zap.SugaredLogger {
	return zap.New(core, zap.WithFatalHook(fatalHook)).Sugar()
}

func newCore(out zapcore.WriteSyncer) zapcore.Core {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(enc), out, level)
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	case "fatal":
		level.SetLevel(zap.FatalLevel)
	default:
		level.SetLevel(zap.InfoLevel)
	}
}

// SetCore swaps the output core. The core should honour Level() so Init keeps working.
func SetCore(core zapcore.Core) {
	mu.Lock()
	defer mu.Unlock()
	sugar = newLogger(core)
}

// Level exposes the shared atomic level for cores built outside this package.
func Level() zap.AtomicLevel { return level }

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { current().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { current().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }

// Fatalf logs at fatal level, which every configured level enables, then exits.
func Fatalf(format string, v ...interface{}) {
	current().Fatalf(format, v...)
}

// With returns a child logger carrying structured fields (key, value pairs).
func With(kv ...interface{}) *zap.SugaredLogger { return current().With(kv...) }

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Sync flushes buffered entries.
func Sync() { _ = current().Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	return level.Level().String()
}
