// Package logger wires zap behind a logr.Logger and carries it through
// contexts.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/xmltab/pkg/settings"
)

// Define an unexported custom type for the context key to prevent collisions.
type loggerContextKey struct{}

const (
	BinaryKey    = "binary"
	CommandKey   = "command"
	InputKey     = "input"
	CommitKey    = "commit"
	VersionKey   = "version"
	GoVersionKey = "go_version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
)

var (
	once sync.Once

	// globalZapLogger backs Sync.
	globalZapLogger *zap.Logger

	globalLogrLogger *logr.Logger

	defaultNoopLogger logr.Logger = logr.Discard()
)

// NewZap builds a JSON zap logger writing to w. Levels follow zapcore, so -1
// enables debug output and logr V(1) messages.
func NewZap(w io.Writer, logLevel int8) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(zapcore.Level(logLevel)),
	).With([]zapcore.Field{
		zap.String(BinaryKey, settings.CliBinaryName),
		zap.String(CommitKey, settings.VersionInformation.Commit),
		zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		zap.String(GoVersionKey, goVersion),
	})

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
}

// New returns a logr.Logger writing JSON to w.
func New(w io.Writer, logLevel int8) logr.Logger {
	return zapr.NewLogger(NewZap(w, logLevel))
}

// Get initializes the global logger on stderr on first use and returns it.
// Later calls ignore logLevel.
func Get(logLevel int8) *logr.Logger {
	once.Do(func() {
		globalZapLogger = NewZap(os.Stderr, logLevel)
		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// WithLogger returns a context carrying log. A context that already carries
// the same logger is returned unchanged.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context logger, else the global logger, else a
// no-op logger.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries; call it before exit.
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

// isIgnorableSyncError reports the errors Sync returns for pipes and TTYs.
// Windows consoles wrap ERROR_INVALID_HANDLE in *os.PathError, so the
// message is matched too.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}

// GetGlobalLogger returns the global logger, or a no-op logger before Get.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a new logger with keysAndValues attached.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}
