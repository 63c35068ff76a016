package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/yakoovad/volunteer-board/internal/db"
	"github.com/yakoovad/volunteer-board/internal/model"
	"github.com/yakoovad/volunteer-board/internal/repository"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"math"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// PostService is the catalog of volunteer posts.
type PostService struct {
	tx db.Transactor

	posts repository.PostRepository

	newID func() string
}

func NewPostService(tx db.Transactor) *PostService {
	return &PostService{
		tx:    tx,
		newID: uuid.NewString,
	}
}

func (s *PostService) CreatePost(ctx context.Context, post *model.Post) (*model.Post, *Error) {
	l := logger.FromContext(ctx)

	repoPost := toRepositoryPost(post)
	repoPost.ID = s.newID()

	if err := s.posts.Create(ctx, repoPost); err != nil {
		l.Error("failed to create post", zap.String("title", post.Title), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create post")
	}

	l.Debug("post created", zap.String("post_id", repoPost.ID))

	return toModelPost(repoPost), nil
}

// ReplacePost overwrites the post with the given id, creating it when absent.
// The post row is locked before the upsert so the recomputed counter sees every
// request committed by a concurrent submission.
func (s *PostService) ReplacePost(ctx context.Context, id string, post *model.Post) (*model.Post, *Error) {
	l := logger.FromContext(ctx).With(zap.String("post_id", id))

	repoPost := toRepositoryPost(post)
	repoPost.ID = id

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.posts.GetForUpdate(txCtx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			l.Error("failed to lock post", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to replace post")
		}

		err := s.posts.Upsert(txCtx, repoPost)
		switch {
		case errors.Is(err, repository.ErrInvalid):
			l.Warn("post replacement rejected", zap.Error(err))
			return NewError(ErrorCodeInvalidBody, "post violates volunteer slot limits")
		case err != nil:
			l.Error("failed to replace post", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to replace post")
		}
		return nil
	})
	if err != nil {
		return nil, asError(err, "failed to replace post")
	}

	return toModelPost(repoPost), nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, *Error) {
	post, err := s.posts.Get(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NewError(ErrorCodeNotFound, "post not found")
	case err != nil:
		logger.FromContext(ctx).Error("failed to get post", zap.String("post_id", id), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get post")
	}
	return toModelPost(post), nil
}

func (s *PostService) DeletePost(ctx context.Context, id string) *Error {
	err := s.posts.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NewError(ErrorCodeNotFound, "post not found")
	case err != nil:
		logger.FromContext(ctx).Error("failed to delete post", zap.String("post_id", id), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete post")
	}
	return nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]*model.Post, *Error) {
	return s.list(ctx, repository.PostQuery{})
}

// ListUpcoming returns every post with the nearest deadline first.
func (s *PostService) ListUpcoming(ctx context.Context) ([]*model.Post, *Error) {
	return s.list(ctx, repository.PostQuery{Order: repository.PostOrderDeadlineAsc})
}

func (s *PostService) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*model.Post, *Error) {
	return s.list(ctx, repository.PostQuery{OrganizerEmail: organizerEmail})
}

// Catalog returns one page of posts matching the query. Page is 1-based.
func (s *PostService) Catalog(ctx context.Context, q model.CatalogQuery) ([]*model.Post, *Error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	// A page whose offset does not fit in an int is past the end of any catalog.
	if q.Page-1 > math.MaxInt/q.Size {
		return []*model.Post{}, nil
	}

	pq := repository.PostQuery{
		Category: q.Category,
		Search:   q.Search,
		Limit:    q.Size,
		Offset:   (q.Page - 1) * q.Size,
	}
	switch q.Sort {
	case model.SortAsc:
		pq.Order = repository.PostOrderDeadlineAsc
	case model.SortDesc:
		pq.Order = repository.PostOrderDeadlineDesc
	}

	return s.list(ctx, pq)
}

func (s *PostService) CountCatalog(ctx context.Context, f model.PostFilter) (*model.PostCount, *Error) {
	total, err := s.posts.Count(ctx, repository.PostQuery{Category: f.Category, Search: f.Search})
	if err != nil {
		logger.FromContext(ctx).Error("failed to count posts", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to count posts")
	}
	return &model.PostCount{Total: total}, nil
}

func (s *PostService) list(ctx context.Context, q repository.PostQuery) ([]*model.Post, *Error) {
	repoPosts, err := s.posts.List(ctx, q)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list posts", zap.Any("query", q), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list posts")
	}

	posts := make([]*model.Post, 0, len(repoPosts))
	for _, p := range repoPosts {
		posts = append(posts, toModelPost(p))
	}
	return posts, nil
}

func (s *PostService) WithPostRepo(r repository.PostRepository) *PostService {
	s.posts = r
	return s
}

func toRepositoryPost(p *model.Post) *repository.Post {
	return &repository.Post{
		ID:               p.ID,
		Title:            p.Title,
		Category:         p.Category,
		Description:      p.Description,
		Location:         p.Location,
		Thumbnail:        p.Thumbnail,
		OrganizerName:    p.OrganizerName,
		OrganizerEmail:   p.OrganizerEmail,
		Deadline:         p.Deadline,
		VolunteersTotal:  p.VolunteersTotal,
		VolunteersNeeded: p.VolunteersNeeded,
	}
}

func toModelPost(p *repository.Post) *model.Post {
	return &model.Post{
		ID:               p.ID,
		Title:            p.Title,
		Category:         p.Category,
		Description:      p.Description,
		Location:         p.Location,
		Thumbnail:        p.Thumbnail,
		OrganizerName:    p.OrganizerName,
		OrganizerEmail:   p.OrganizerEmail,
		Deadline:         p.Deadline,
		VolunteersTotal:  p.VolunteersTotal,
		VolunteersNeeded: p.VolunteersNeeded,
		CreatedAt:        p.CreatedAt,
	}
}
