package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withObservedLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	orig := log
	SetLogger(zap.New(core))
	t.Cleanup(func() { log = orig })
	return logs
}

func TestInit_DevelopmentAndProduction(t *testing.T) {
	orig := log
	t.Cleanup(func() {
		log = orig
		once = sync.Once{}
	})

	once = sync.Once{}
	Init("development")
	require.NotNil(t, GetLogger())

	once = sync.Once{}
	Init("production")
	require.NotNil(t, GetLogger())
}

func TestWithContext_AddsRequestID(t *testing.T) {
	logs := withObservedLogger(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-typed")
	Info(ctx, "typed")

	//nolint:staticcheck // mirrors how gin populates the request context
	ginCtx := context.WithValue(context.Background(), GinRequestIDKey, "req-gin")
	Warn(ginCtx, "plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "req-typed", entries[0].ContextMap()["request_id"])
	require.Equal(t, "req-gin", entries[1].ContextMap()["request_id"])
}

func TestWithContext_NilAndEmpty(t *testing.T) {
	withObservedLogger(t)
	//nolint:staticcheck // nil context is tolerated on purpose
	require.NotNil(t, WithContext(nil))
	require.NotNil(t, WithContext(context.Background()))
}

func TestLogRequest_ServerErrorsLogAtErrorLevel(t *testing.T) {
	logs := withObservedLogger(t)

	LogRequest(context.Background(), "GET", "/health", 200, time.Millisecond, "127.0.0.1")
	LogRequest(context.Background(), "POST", "/api/v1/webhooks/whop", 500, time.Millisecond, "127.0.0.1")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.InfoLevel, entries[0].Level)
	require.Equal(t, zap.ErrorLevel, entries[1].Level)
	require.Equal(t, int64(500), entries[1].ContextMap()["status"])
}

func TestSetLogger_NilFallsBackToNop(t *testing.T) {
	orig := log
	t.Cleanup(func() { log = orig })

	SetLogger(nil)
	require.NotNil(t, GetLogger())
	Debug(context.Background(), "discarded")
	Error(context.Background(), "discarded")
	Sync()
}

func TestWithFields_Accumulate(t *testing.T) {
	logs := withObservedLogger(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithFields(ctx, zap.String("receiptId", "r_1"))
	ctx = WithFields(ctx, zap.String("eventType", "payment.succeeded"))
	Info(ctx, "fields")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "r_1", fields["receiptId"])
	require.Equal(t, "payment.succeeded", fields["eventType"])
}
