package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yakoovad/volunteer-board/internal/auth"
	"github.com/yakoovad/volunteer-board/internal/service"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const loggerKey = "logger"

// ZapLoggerMiddleware attaches a request-scoped logger carrying the request id and
// writes one access line per request. Server errors log at error level, client
// errors at warn.
func ZapLoggerMiddleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()

			reqLogger := base.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			c.Set(loggerKey, reqLogger)
			c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), reqLogger)))

			err := next(c)
			if err != nil {
				// Let echo write the error response so the logged status is final.
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("route", c.Path()),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(started)),
				zap.Int64("bytes_out", res.Size),
			}
			if id, ok := auth.IdentityFromContext(req.Context()); ok {
				fields = append(fields, zap.String("session_email", id.Email))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				reqLogger.Error("request failed", fields...)
			case res.Status >= http.StatusBadRequest:
				reqLogger.Warn("request rejected", fields...)
			default:
				reqLogger.Info("request completed", fields...)
			}

			return nil
		}
	}
}

func GetLoggerFromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// AuthMiddleware rejects requests without a valid session cookie and stores the
// verified identity in the request context. Requests for which skipper returns
// true pass through untouched.
func AuthMiddleware(tokens *auth.TokenManager, skipper middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			unauthorized := service.NewError(service.ErrorCodeUnauthorized, "unauthorized access")

			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return writeError(c, http.StatusUnauthorized, unauthorized)
			}

			identity, ok := tokens.Identify(cookie.Value)
			if !ok {
				GetLoggerFromContext(c).Info("rejected session token")
				return writeError(c, http.StatusUnauthorized, unauthorized)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), identity)))

			return next(c)
		}
	}
}
