package api

import (
	"github.com/labstack/echo/v4"
	"github.com/yakoovad/volunteer-board/internal/auth"
	"github.com/yakoovad/volunteer-board/internal/model"
	"github.com/yakoovad/volunteer-board/internal/service"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"net/http"
)

func (h *Handler) SubmitRequest(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req model.VolunteerRequest
	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("submitting volunteer request",
		zap.String("post_id", req.PostID),
		zap.String("volunteer_email", req.VolunteerEmail))

	created, err := h.requests.SubmitRequest(e.Request().Context(), &req)
	if err != nil {
		l.Info("volunteer request rejected",
			zap.String("post_id", req.PostID),
			zap.String("volunteer_email", req.VolunteerEmail),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, created)
}

// ListRequests lists requests either received by an organizer or made by a
// volunteer. Exactly one of the two query parameters must be set and it must
// name the caller.
func (h *Handler) ListRequests(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	organizer, volunteer := e.QueryParam("organizer"), e.QueryParam("volunteer")
	if (organizer == "") == (volunteer == "") {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody,
			"exactly one of organizer or volunteer is required"))
	}

	var (
		reqs []*model.VolunteerRequest
		err  *service.Error
	)

	if organizer != "" {
		if err = requireIdentity(e, organizer); err != nil {
			return h.transportError(e, err)
		}
		reqs, err = h.requests.ListByOrganizer(ctx, organizer)
	} else {
		if err = requireIdentity(e, volunteer); err != nil {
			return h.transportError(e, err)
		}
		reqs, err = h.requests.ListByVolunteer(ctx, volunteer)
	}

	if err != nil {
		l.Error("failed to list requests", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, reqs)
}

func (h *Handler) WithdrawRequest(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	caller, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return h.transportError(e, service.NewError(service.ErrorCodeUnauthorized, "unauthorized access"))
	}

	volunteer := e.QueryParam("volunteer")
	if volunteer == "" {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "volunteer is required"))
	}

	postID, err := parseID(e.QueryParam("post"), "post")
	if err != nil {
		return h.transportError(e, err)
	}

	l.Info("withdrawing volunteer request",
		zap.String("post_id", postID),
		zap.String("volunteer_email", volunteer),
		zap.String("caller_email", caller.Email))

	if err = h.requests.WithdrawRequest(ctx, caller.Email, volunteer, postID); err != nil {
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}
