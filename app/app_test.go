package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Gin_postgres_redis_tool_ledger/cache"
	"Gin_postgres_redis_tool_ledger/config"
	"Gin_postgres_redis_tool_ledger/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, rdb *redis.Client) *gin.Engine {
	t.Helper()
	cfg := config.Defaults()
	cfg.GinMode = gin.TestMode
	a := NewWithDeps(cfg, logging.Discard(), nil, rdb, nil)

	a.Router.POST("/things", a.Idempotency(), func(c *Ctx) {
		if c.Query("fail") == "1" {
			c.JSON(http.StatusConflict, ErrorBody("NOPE", "nope"))
			return
		}
		c.JSON(http.StatusCreated, H{"rid": c.GetString("requestID")})
	})
	return a.Router
}

func post(r *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newRouter(t, nil)

	w := post(r, "/things", "")
	require.Equal(t, http.StatusCreated, w.Code)
	rid := w.Header().Get(RequestIDHeader)
	assert.Len(t, rid, 36)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, rid, body["rid"])
}

func TestIdempotency(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	r := newRouter(t, rdb)

	assert.Equal(t, http.StatusCreated, post(r, "/things", "abc").Code)

	w := post(r, "/things", "abc")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":{"code":"DUPLICATE_REQUEST","message":"request with this Idempotency-Key was already received"}}`, w.Body.String())

	// no key, no guard
	assert.Equal(t, http.StatusCreated, post(r, "/things", "").Code)
	assert.Equal(t, http.StatusCreated, post(r, "/things", "").Code)

	// failures release the key
	assert.Equal(t, http.StatusConflict, post(r, "/things?fail=1", "retry").Code)
	assert.False(t, mr.Exists("idem:POST:/things:retry"))
	assert.Equal(t, http.StatusCreated, post(r, "/things", "retry").Code)

	mr.FastForward(config.Defaults().IdempotencyTTL + time.Second)
	assert.Equal(t, http.StatusCreated, post(r, "/things", "abc").Code)
}

func TestIdempotencyWithoutRedis(t *testing.T) {
	r := newRouter(t, nil)
	assert.Equal(t, http.StatusCreated, post(r, "/things", "abc").Code)
	assert.Equal(t, http.StatusCreated, post(r, "/things", "abc").Code)
}

func TestIdempotencyRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	r := newRouter(t, rdb)
	mr.Close()

	assert.Equal(t, http.StatusCreated, post(r, "/things", "abc").Code)
}

func TestCORS(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/things", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGuardKeyUsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	g := cache.NewGuard(rdb, time.Minute, "idem")
	r := gin.New()
	r.POST("/x", Idempotency(g, logging.Discard()), func(c *Ctx) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, post(r, "/x", "k").Code)
	assert.True(t, mr.Exists("idem:POST:/x:k"))
}
