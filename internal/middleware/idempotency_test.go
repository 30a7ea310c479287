package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

const (
	idempCacheKey = "idemp:/leave/apply:jdoe:key-1"
	idempLockKey  = idempCacheKey + ":lock"
)

func newIdempotencyRouter(rdb *redis.Client, handled *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/leave/apply",
		func(c *gin.Context) { c.Set("username", "jdoe") },
		middleware.Idempotency(rdb),
		func(c *gin.Context) {
			*handled = true
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})
	return r
}

func postWithKey(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leave/apply", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("cached response is replayed", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).SetVal(`{"name":"spring-break"}`)

		var handled bool
		w := postWithKey(newIdempotencyRouter(rdb, &handled))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, handled)

		var body struct {
			Ok   bool            `json:"ok"`
			Data json.RawMessage `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Ok)
		assert.JSONEq(t, `{"name":"spring-break"}`, string(body.Data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt cache entry is dropped and the request runs", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).SetVal(`{"name":`)
		mock.ExpectDel(idempCacheKey).SetVal(1)
		mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetVal(true)

		var handled bool
		w := postWithKey(newIdempotencyRouter(rdb, &handled))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in-flight duplicate is rejected", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).RedisNil()
		mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetVal(false)

		var handled bool
		w := postWithKey(newIdempotencyRouter(rdb, &handled))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing key skips the whole guard", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		var handled bool
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leave/apply", nil)
		newIdempotencyRouter(rdb, &handled).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
