package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/yakoovad/volunteer-board/internal/auth"
	"github.com/yakoovad/volunteer-board/internal/service"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type Handler struct {
	posts    *service.PostService
	requests *service.RequestService
	tokens   *auth.TokenManager

	healthChecker HealthChecker

	allowedOrigins []string
	requestTimeout time.Duration
	production     bool

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger, tokens *auth.TokenManager) *Handler {
	return &Handler{
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithPostService(posts *service.PostService) *Handler {
	h.posts = posts
	return h
}

func (h *Handler) WithRequestService(requests *service.RequestService) *Handler {
	h.requests = requests
	return h
}

// WithAllowedOrigins restricts CORS to the given origins. Credentials are always allowed
// because the session travels in a cookie.
func (h *Handler) WithAllowedOrigins(origins []string) *Handler {
	h.allowedOrigins = origins
	return h
}

func (h *Handler) WithRequestTimeout(d time.Duration) *Handler {
	h.requestTimeout = d
	return h
}

// WithProduction marks the session cookie Secure with SameSite=None.
func (h *Handler) WithProduction(production bool) *Handler {
	h.production = production
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     h.allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	if h.requestTimeout > 0 {
		e.Use(middleware.ContextTimeout(h.requestTimeout))
	}

	e.GET("/", h.Root)
	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	e.POST("/session", h.StartSession)
	e.GET("/session/end", h.EndSession)

	// Listing by organizer needs a verified identity, the plain listing does not.
	e.GET("/posts", h.ListPosts, AuthMiddleware(h.tokens, func(c echo.Context) bool {
		return c.QueryParam("organizer") == ""
	}))
	e.GET("/posts/upcoming", h.ListUpcomingPosts)
	e.GET("/posts/:id", h.GetPost)
	e.POST("/posts", h.CreatePost)
	e.PUT("/posts/:id", h.ReplacePost)
	e.DELETE("/posts/:id", h.DeletePost)

	e.GET("/catalog", h.Catalog)
	e.GET("/catalog/count", h.CatalogCount)

	requireSession := AuthMiddleware(h.tokens, middleware.DefaultSkipper)

	e.POST("/requests", h.SubmitRequest)
	e.GET("/requests", h.ListRequests, requireSession)
	e.DELETE("/requests", h.WithdrawRequest, requireSession)
}

func (h *Handler) Root(e echo.Context) error {
	return e.String(http.StatusOK, "Server is running.....")
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

// parseID rejects ids that cannot name a stored record before they reach storage.
func parseID(raw, what string) (string, *service.Error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", service.NewError(service.ErrorCodeInvalidBody, "invalid "+what+" id")
	}
	return id.String(), nil
}

// requireIdentity checks that the verified caller is the owner named by email.
func requireIdentity(e echo.Context, email string) *service.Error {
	id, ok := auth.IdentityFromContext(e.Request().Context())
	if !ok {
		return service.NewError(service.ErrorCodeUnauthorized, "unauthorized access")
	}
	if id.Email != email {
		return service.NewError(service.ErrorCodeForbidden, "forbidden access")
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	return writeError(e, statusFor(err.Code), err)
}

func statusFor(code service.ErrorCode) int {
	switch code {
	case service.ErrorCodeInvalidBody, service.ErrorCodeDuplicateRequest:
		return http.StatusBadRequest
	case service.ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case service.ErrorCodeForbidden:
		return http.StatusForbidden
	case service.ErrorCodeNotFound, service.ErrorCodePostNotFound:
		return http.StatusNotFound
	case service.ErrorCodeCounterExhausted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(e echo.Context, status int, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	return e.JSON(status, response)
}
