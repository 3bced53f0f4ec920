package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newGinTestRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware(logger))
	return router
}

func findRequestLog(entries []observer.LoggedEntry) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == "HTTP Request" {
			return &entries[i]
		}
	}
	return nil
}

func TestGinMiddleware_SuccessLogsInfo(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	router := newGinTestRouter(logger)
	router.GET("/payments", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments?open=true", nil)
	router.ServeHTTP(w, req)

	httpLog := findRequestLog(recorded.TakeAll())
	require.NotNil(t, httpLog)
	assert.Equal(t, zapcore.InfoLevel, httpLog.Level)

	fields := httpLog.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/payments", fields["path"])
	assert.Equal(t, "open=true", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestGinMiddleware_ClientErrorLogsWarn(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	router := newGinTestRouter(logger)
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	httpLog := findRequestLog(recorded.TakeAll())
	require.NotNil(t, httpLog)
	assert.Equal(t, zapcore.WarnLevel, httpLog.Level)
}

func TestGinMiddleware_ServerErrorLogsError(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)

	router := newGinTestRouter(logger)
	router.GET("/broken", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))

	httpLog := findRequestLog(recorded.TakeAll())
	require.NotNil(t, httpLog)
	assert.Equal(t, zapcore.ErrorLevel, httpLog.Level)
}

func TestGinMiddleware_PropagatesRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-abc")
		c.Next()
	})
	router.Use(GinMiddleware(logger))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	httpLog := findRequestLog(recorded.TakeAll())
	require.NotNil(t, httpLog)
	assert.Equal(t, "req-abc", httpLog.ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "Panic recovered", entries[0].Message)
	assert.Equal(t, "/panic", entries[0].ContextMap()["path"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns request-scoped logger", func(t *testing.T) {
		logger := zap.NewNop()
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("logger", logger)

		assert.Same(t, logger, GetGinLogger(c))
	})

	t.Run("falls back to no-op", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.NotNil(t, GetGinLogger(c))
	})
}
