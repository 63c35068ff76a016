package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestZapLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		handler       echo.HandlerFunc
		expectedCode  int
		expectedLevel zapcore.Level
	}{
		{
			name:          "completed request",
			handler:       func(c echo.Context) error { return c.NoContent(http.StatusOK) },
			expectedCode:  http.StatusOK,
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name: "rejected request",
			handler: func(c echo.Context) error {
				return c.JSON(http.StatusConflict, map[string]string{"code": "COUNTER_EXHAUSTED"})
			},
			expectedCode:  http.StatusConflict,
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "panicking handler",
			handler:       func(echo.Context) error { panic("boom") },
			expectedCode:  http.StatusInternalServerError,
			expectedLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			e := echo.New()
			e.Use(middleware.RequestID())
			e.Use(ZapLoggerMiddleware(zap.New(core)))
			e.Use(middleware.Recover())
			e.GET("/posts/:id", tt.handler)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/42", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.expectedLevel, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, "/posts/:id", fields["route"])
			assert.Equal(t, int64(tt.expectedCode), fields["status"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}

func TestZapLoggerMiddleware_StoresRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	e := echo.New()
	e.Use(ZapLoggerMiddleware(zap.New(core)))
	e.GET("/", func(c echo.Context) error {
		logger.FromContext(c.Request().Context()).Debug("from context")
		GetLoggerFromContext(c).Debug("from echo")
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, logs.FilterMessage("from context").Len())
	assert.Equal(t, 1, logs.FilterMessage("from echo").Len())
}
