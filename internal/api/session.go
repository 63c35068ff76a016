package api

import (
	"github.com/labstack/echo/v4"
	"github.com/yakoovad/volunteer-board/internal/auth"
	"github.com/yakoovad/volunteer-board/internal/service"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"net/http"
)

const SessionCookieName = "token"

type sessionResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) StartSession(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"max=200"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	token, err := h.tokens.GenerateToken(auth.Identity{Email: req.Email, Name: req.Name})
	if err != nil {
		l.Error("failed to issue session token", zap.Error(err))
		return h.transportError(e, service.NewError(service.ErrorCodeUnspecified, "failed to start session"))
	}

	e.SetCookie(h.sessionCookie(token, int(h.tokens.TTL().Seconds())))

	l.Info("session started", zap.String("email", req.Email))

	return e.JSON(http.StatusOK, sessionResponse{Success: true})
}

func (h *Handler) EndSession(e echo.Context) error {
	e.SetCookie(h.sessionCookie("", -1))
	return e.JSON(http.StatusOK, sessionResponse{Success: true})
}

// sessionCookie builds the token cookie. A negative maxAge clears it.
func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	if h.production {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}

	return cookie
}
