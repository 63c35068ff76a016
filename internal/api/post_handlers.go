package api

import (
	"github.com/labstack/echo/v4"
	"github.com/yakoovad/volunteer-board/internal/model"
	"github.com/yakoovad/volunteer-board/internal/service"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"net/http"
)

type catalogRequest struct {
	Page     int    `query:"page" validate:"gte=0,lte=1000000"`
	Size     int    `query:"size" validate:"gte=0,lte=100"`
	Category string `query:"filter" validate:"max=100"`
	Search   string `query:"search" validate:"max=200"`
	Sort     string `query:"sort" validate:"omitempty,oneof=asc desc"`
}

func (h *Handler) ListPosts(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var (
		posts []*model.Post
		err   *service.Error
	)

	if organizer := e.QueryParam("organizer"); organizer != "" {
		if err = requireIdentity(e, organizer); err != nil {
			l.Warn("organizer listing denied", zap.String("organizer_email", organizer))
			return h.transportError(e, err)
		}
		posts, err = h.posts.ListByOrganizer(ctx, organizer)
	} else {
		posts, err = h.posts.ListPosts(ctx)
	}

	if err != nil {
		l.Error("failed to list posts", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, posts)
}

func (h *Handler) ListUpcomingPosts(e echo.Context) error {
	posts, err := h.posts.ListUpcoming(e.Request().Context())
	if err != nil {
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, posts)
}

func (h *Handler) GetPost(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, err := parseID(e.Param("id"), "post")
	if err != nil {
		return h.transportError(e, err)
	}

	post, err := h.posts.GetPost(e.Request().Context(), id)
	if err != nil {
		l.Info("failed to get post", zap.String("post_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, post)
}

func (h *Handler) CreatePost(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req model.Post
	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating post",
		zap.String("organizer_email", req.OrganizerEmail),
		zap.Int("volunteers_total", req.VolunteersTotal))

	post, err := h.posts.CreatePost(e.Request().Context(), &req)
	if err != nil {
		l.Error("failed to create post", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, post)
}

func (h *Handler) ReplacePost(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, err := parseID(e.Param("id"), "post")
	if err != nil {
		return h.transportError(e, err)
	}

	var req model.Post
	if err = h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.String("post_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("replacing post", zap.String("post_id", id))

	post, err := h.posts.ReplacePost(e.Request().Context(), id, &req)
	if err != nil {
		l.Error("failed to replace post", zap.String("post_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, err := parseID(e.Param("id"), "post")
	if err != nil {
		return h.transportError(e, err)
	}

	l.Info("deleting post", zap.String("post_id", id))

	if err = h.posts.DeletePost(e.Request().Context(), id); err != nil {
		l.Error("failed to delete post", zap.String("post_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) Catalog(e echo.Context) error {
	var req catalogRequest

	if err := ProcessRequest(e, &req, bindCatalogQuery, validateCatalogQuery); err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, err.Error()))
	}

	posts, err := h.posts.Catalog(e.Request().Context(), model.CatalogQuery{
		PostFilter: model.PostFilter{Category: req.Category, Search: req.Search},
		Page:       req.Page,
		Size:       req.Size,
		Sort:       model.SortOrder(req.Sort),
	})
	if err != nil {
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, posts)
}

func (h *Handler) CatalogCount(e echo.Context) error {
	var req catalogRequest

	if err := ProcessRequest(e, &req, bindCatalogQuery, validateCatalogQuery); err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, err.Error()))
	}

	count, err := h.posts.CountCatalog(e.Request().Context(), model.PostFilter{
		Category: req.Category,
		Search:   req.Search,
	})
	if err != nil {
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, count)
}

func bindCatalogQuery(e echo.Context, req *catalogRequest) error {
	return (&echo.DefaultBinder{}).BindQueryParams(e, req)
}

func validateCatalogQuery(e echo.Context, req *catalogRequest) error {
	return e.Validate(req)
}
