package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogLevel is zapcore.InfoLevel.
const mockLogLevel int8 = 0

func TestGetReturnsSameInstanceOnSubsequentCalls(t *testing.T) {
	logger1 := Get(mockLogLevel)
	logger2 := Get(-1)
	require.NotNil(t, logger1)
	assert.Same(t, logger1, logger2)
}

func TestGetReturnsNoopLoggerIfGlobalLoggerNil(t *testing.T) {
	Get(mockLogLevel)
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Get(mockLogLevel))
}

func TestNewWritesJSONWithBuildFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, mockLogLevel)
	log.Info("loaded", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry[MessageKey])
	assert.Equal(t, "xmltab", entry[BinaryKey])
	assert.EqualValues(t, 3, entry["rows"])
	assert.Contains(t, entry, TimeStampKey)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, mockLogLevel).V(1).Info("hidden")
	assert.Empty(t, buf.String())

	New(&buf, -1).V(1).Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	logger := Get(mockLogLevel)

	withLogger := WithLogger(ctx, logger)
	assert.Same(t, logger, withLogger.Value(loggerContextKey{}))
	assert.Equal(t, withLogger, WithLogger(withLogger, logger), "same logger keeps the context")

	other := logr.Discard()
	replaced := WithLogger(withLogger, &other)
	assert.Same(t, &other, replaced.Value(loggerContextKey{}))
}

func TestFromContext(t *testing.T) {
	global := Get(mockLogLevel)
	assert.Same(t, global, FromContext(context.Background()))

	other := logr.Discard()
	assert.Same(t, &other, FromContext(WithLogger(context.Background(), &other)))

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
	assert.Same(t, &defaultNoopLogger, GetGlobalLogger())
}

func TestSyncDoesNotPanicWhenGlobalZapLoggerIsNil(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()

	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.ENOTTY}))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}

func TestGetNoopLoggerIsNoop(t *testing.T) {
	logger := GetNoopLogger()
	require.Same(t, &defaultNoopLogger, logger)
	assert.NotPanics(t, func() { logger.Info("This should do nothing") })
}

func TestWithValues(t *testing.T) {
	logger := Get(mockLogLevel)
	newLogger := WithValues(logger, "key", "value")
	require.NotNil(t, newLogger)
	assert.NotSame(t, logger, newLogger)
	assert.NotSame(t, logger, WithValues(logger))

	var nilLogger *logr.Logger
	assert.Panics(t, func() { _ = WithValues(nilLogger, "key", "value") })
}
