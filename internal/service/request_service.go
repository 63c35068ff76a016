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
)

type RequestService struct {
	tx db.Transactor

	posts    repository.PostRepository
	requests repository.RequestRepository

	newID func() string
}

func NewRequestService(tx db.Transactor) *RequestService {
	return &RequestService{
		tx:    tx,
		newID: uuid.NewString,
	}
}

// SubmitRequest records a volunteer request against a post and takes one of the
// post's remaining slots. Both writes happen in one transaction that holds the post
// row lock, so concurrent submissions for the same post run one at a time on every
// server instance. A duplicate is reported before an exhausted counter.
func (s *RequestService) SubmitRequest(ctx context.Context, req *model.VolunteerRequest) (*model.VolunteerRequest, *Error) {
	l := logger.FromContext(ctx).With(
		zap.String("post_id", req.PostID),
		zap.String("volunteer_email", req.VolunteerEmail))

	created := &model.VolunteerRequest{}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		post, err := s.posts.GetForUpdate(txCtx, req.PostID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			l.Warn("request for unknown post")
			return NewError(ErrorCodePostNotFound, "post not found")
		case err != nil:
			l.Error("failed to lock post", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to submit request")
		}

		repoReq := &repository.Request{
			ID:             s.newID(),
			PostID:         post.ID,
			VolunteerEmail: req.VolunteerEmail,
			VolunteerName:  req.VolunteerName,
			OrganizerEmail: post.OrganizerEmail,
			Suggestion:     req.Suggestion,
			Status:         model.RequestStatusRequested,
		}

		err = s.requests.Create(txCtx, repoReq)
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			l.Warn("duplicate volunteer request")
			return NewError(ErrorCodeDuplicateRequest, "you have already requested this post")
		case errors.Is(err, repository.ErrNotFound):
			return NewError(ErrorCodePostNotFound, "post not found")
		case err != nil:
			l.Error("failed to create request", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to submit request")
		}

		remaining, err := s.posts.TakeSlot(txCtx, post.ID)
		switch {
		case errors.Is(err, repository.ErrNoSlotsLeft):
			l.Warn("no volunteer slots left")
			return NewError(ErrorCodeCounterExhausted, "no volunteer slots left for this post")
		case err != nil:
			l.Error("failed to take volunteer slot", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to submit request")
		}

		l.Debug("volunteer request submitted", zap.Int("remaining", remaining))

		*created = *toModelRequest(repoReq)
		return nil
	})
	if err != nil {
		return nil, asError(err, "failed to submit request")
	}

	return created, nil
}

// WithdrawRequest deletes the volunteer's request against the post and gives the
// slot back. Only the volunteer or the post's organizer may do this.
func (s *RequestService) WithdrawRequest(ctx context.Context, callerEmail, volunteerEmail, postID string) *Error {
	l := logger.FromContext(ctx).With(
		zap.String("post_id", postID),
		zap.String("volunteer_email", volunteerEmail))

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Lock order matches SubmitRequest: post first, then request.
		post, err := s.posts.GetForUpdate(txCtx, postID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return NewError(ErrorCodeNotFound, "request not found")
		case err != nil:
			l.Error("failed to lock post", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to withdraw request")
		}

		repoReq, err := s.requests.GetForUpdate(txCtx, volunteerEmail, postID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return NewError(ErrorCodeNotFound, "request not found")
		case err != nil:
			l.Error("failed to get request", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to withdraw request")
		}

		if callerEmail != repoReq.VolunteerEmail && callerEmail != post.OrganizerEmail {
			l.Warn("withdraw by unrelated caller", zap.String("caller_email", callerEmail))
			return NewError(ErrorCodeForbidden, "forbidden access")
		}

		if err = s.requests.Delete(txCtx, volunteerEmail, postID); err != nil {
			l.Error("failed to delete request", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to withdraw request")
		}

		if err = s.posts.ReleaseSlot(txCtx, postID); err != nil {
			l.Error("failed to release volunteer slot", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to withdraw request")
		}

		l.Debug("volunteer request withdrawn")
		return nil
	})

	return asError(err, "failed to withdraw request")
}

func (s *RequestService) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*model.VolunteerRequest, *Error) {
	repoReqs, err := s.requests.ListByOrganizer(ctx, organizerEmail)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list organizer requests",
			zap.String("organizer_email", organizerEmail), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list requests")
	}
	return toModelRequests(repoReqs), nil
}

func (s *RequestService) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.VolunteerRequest, *Error) {
	repoReqs, err := s.requests.ListByVolunteer(ctx, volunteerEmail)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list volunteer requests",
			zap.String("volunteer_email", volunteerEmail), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list requests")
	}
	return toModelRequests(repoReqs), nil
}

func (s *RequestService) WithPostRepo(r repository.PostRepository) *RequestService {
	s.posts = r
	return s
}

func (s *RequestService) WithRequestRepo(r repository.RequestRepository) *RequestService {
	s.requests = r
	return s
}

func toModelRequests(repoReqs []*repository.Request) []*model.VolunteerRequest {
	reqs := make([]*model.VolunteerRequest, 0, len(repoReqs))
	for _, r := range repoReqs {
		reqs = append(reqs, toModelRequest(r))
	}
	return reqs
}

func toModelRequest(r *repository.Request) *model.VolunteerRequest {
	return &model.VolunteerRequest{
		ID:             r.ID,
		PostID:         r.PostID,
		VolunteerEmail: r.VolunteerEmail,
		VolunteerName:  r.VolunteerName,
		OrganizerEmail: r.OrganizerEmail,
		Suggestion:     r.Suggestion,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
}
