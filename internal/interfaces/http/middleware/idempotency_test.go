package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propdesk.backend/pkg/redis"
)

func idempotentRouter(calls *int32, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyMiddleware())
	r.POST("/orders", func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_ReplaysWithMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = redis.Close() })

	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	first := postWithKey(r, "order-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := postWithKey(r, "order-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	postWithKey(r, "order-2")
	postWithKey(r, "")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestIdempotencyMiddleware_FailedResponsesReleaseKey(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = redis.Close() })

	var calls int32
	r := idempotentRouter(&calls, http.StatusBadRequest)

	postWithKey(r, "retry-me")
	postWithKey(r, "retry-me")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Empty(t, mr.Keys())
}

func TestIdempotencyMiddleware_WithHookedRedis(t *testing.T) {
	origEnabled, origGet, origSet, origSetNX, origDel := redisEnabled, redisGet, redisSet, redisSetNX, redisDel
	t.Cleanup(func() {
		redisEnabled, redisGet, redisSet, redisSetNX, redisDel = origEnabled, origGet, origSet, origSetNX, origDel
	})
	redisEnabled = func() bool { return true }
	redisSet = func(context.Context, string, interface{}, time.Duration) error { return nil }
	redisDel = func(context.Context, string) error { return nil }

	t.Run("processing conflict", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return processingMarker, nil }
		var calls int32
		w := postWithKey(idempotentRouter(&calls, http.StatusOK), "k")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Zero(t, calls)
	})

	t.Run("lock lost", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return "", goredis.Nil }
		redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return false, nil }
		var calls int32
		w := postWithKey(idempotentRouter(&calls, http.StatusOK), "k")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("lookup error passes through", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return "", errors.New("conn refused") }
		var calls int32
		w := postWithKey(idempotentRouter(&calls, http.StatusOK), "k")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(1), calls)
	})

	t.Run("corrupt entry is reprocessed", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return "not json", nil }
		redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return true, nil }
		var calls int32
		w := postWithKey(idempotentRouter(&calls, http.StatusOK), "k")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(1), calls)
	})
}

func TestIdempotencyMiddleware_DisabledWithoutRedis(t *testing.T) {
	require.NoError(t, redis.Close())
	var calls int32
	r := idempotentRouter(&calls, http.StatusOK)
	postWithKey(r, "same")
	postWithKey(r, "same")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
