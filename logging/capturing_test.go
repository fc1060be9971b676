package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingHandler_CapturesAndPassesThrough(t *testing.T) {
	collector := NewLogCollector()
	var buf bytes.Buffer
	handler := NewCapturingHandler(slog.NewJSONHandler(&buf, nil), collector, "fetch")

	logger := slog.New(handler)
	logger.Error("error fetching activities", "error", errors.New("connection refused"), "attempt", 1)

	logs := collector.Entries("fetch")
	require.Len(t, logs, 1)
	assert.Equal(t, "ERROR", logs[0].Level)
	assert.Equal(t, "error fetching activities", logs[0].Message)
	assert.Equal(t, "connection refused", logs[0].Attributes["error"])
	assert.Equal(t, int64(1), logs[0].Attributes["attempt"])

	assert.Contains(t, buf.String(), "error fetching activities")
}

func TestCapturingHandler_CapturesBelowUnderlyingLevel(t *testing.T) {
	collector := NewLogCollector()
	var buf bytes.Buffer
	underlying := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := NewCapturingHandler(underlying, collector, "signup")

	assert.True(t, handler.Enabled(context.Background(), slog.LevelDebug))

	slog.New(handler).Debug("submitting signup")

	assert.Len(t, collector.Entries("signup"), 1)
	assert.Empty(t, buf.String())
}

func TestCapturingHandler_WithAttrsAndGroups(t *testing.T) {
	collector := NewLogCollector()
	handler := NewCapturingHandler(slog.NewJSONHandler(bytes.NewBuffer(nil), nil), collector, "unregister")

	logger := slog.New(handler).With("session", "abc").WithGroup("req")
	logger.Info("unregister failed", "status", 404)

	_, ok := logger.Handler().(*CapturingHandler)
	require.True(t, ok, "derived handlers must keep capturing")

	logs := collector.Entries("unregister")
	require.Len(t, logs, 1)
	assert.Equal(t, "abc", logs[0].Attributes["session"])
	assert.Equal(t, int64(404), logs[0].Attributes["req.status"])
}

func TestResolveValue(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "x", resolveValue(slog.StringValue("x")))
	assert.Equal(t, true, resolveValue(slog.BoolValue(true)))
	assert.Equal(t, "1s", resolveValue(slog.DurationValue(time.Second)))
	assert.Equal(t, now, resolveValue(slog.TimeValue(now)))
	assert.Equal(t, "bad", resolveValue(slog.AnyValue(errors.New("bad"))))
	assert.Equal(t, map[string]interface{}{"a": int64(1)}, resolveValue(slog.GroupValue(slog.Int("a", 1))))
}

func TestCapturingLoggerHook_SeparatesComponents(t *testing.T) {
	baseLogger := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))
	collector := NewLogCollector()
	hook := NewCapturingLoggerHook(collector)

	fetch := hook.LoggerForComponent(baseLogger, "fetch")
	signup := hook.LoggerForComponent(baseLogger, "signup")
	fetch.Info("loaded")
	signup.Warn("rejected")

	all := collector.All()
	require.Len(t, all, 2)
	assert.Equal(t, "loaded", all["fetch"][0].Message)
	assert.Equal(t, "fetch", all["fetch"][0].Attributes["component"])
	assert.Equal(t, "rejected", all["signup"][0].Message)
}

func TestTaggingLoggerHook(t *testing.T) {
	var buf bytes.Buffer
	logger := TaggingLoggerHook{}.LoggerForComponent(slog.New(slog.NewJSONHandler(&buf, nil)), "fetch")
	logger.Info("hello")
	assert.Contains(t, buf.String(), `"component":"fetch"`)
}

func TestLogCollector_Bounded(t *testing.T) {
	collector := NewBoundedLogCollector(3)
	for i := 0; i < 5; i++ {
		collector.Add("fetch", LogEntry{Message: fmt.Sprintf("m%d", i)})
	}

	logs := collector.Entries("fetch")
	require.Len(t, logs, 3)
	assert.Equal(t, "m2", logs[0].Message)
	assert.Equal(t, "m4", logs[2].Message)
}

func TestLogCollector_ReturnsCopies(t *testing.T) {
	collector := NewLogCollector()
	collector.Add("fetch", LogEntry{Message: "original"})

	logs := collector.Entries("fetch")
	logs[0].Message = "modified"
	all := collector.All()
	all["fetch"][0].Message = "modified"

	assert.Equal(t, "original", collector.Entries("fetch")[0].Message)
	assert.Nil(t, collector.Entries("missing"))
}

func TestLogCollector_Clear(t *testing.T) {
	collector := NewLogCollector()
	collector.Add("fetch", LogEntry{Message: "a"})
	collector.Add("signup", LogEntry{Message: "b"})

	collector.Clear()
	assert.Empty(t, collector.All())
}

func TestLogCollector_Concurrent(t *testing.T) {
	collector := NewBoundedLogCollector(0)
	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				collector.Add("fetch", LogEntry{Message: "concurrent"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, collector.Entries("fetch"), goroutines*perGoroutine)
}
