package service

import (
	"context"
	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/volunteer-board/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *repository.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Upsert(ctx context.Context, post *repository.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Get(ctx context.Context, id string) (*repository.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Post), args.Error(1)
}

func (m *MockPostRepository) GetForUpdate(ctx context.Context, id string) (*repository.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, q repository.PostQuery) ([]*repository.Post, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context, q repository.PostQuery) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) TakeSlot(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) ReleaseSlot(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *repository.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetForUpdate(ctx context.Context, volunteerEmail, postID string) (*repository.Request, error) {
	args := m.Called(ctx, volunteerEmail, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Request), args.Error(1)
}

func (m *MockRequestRepository) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*repository.Request, error) {
	args := m.Called(ctx, organizerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Request), args.Error(1)
}

func (m *MockRequestRepository) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*repository.Request, error) {
	args := m.Called(ctx, volunteerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Request), args.Error(1)
}

func (m *MockRequestRepository) Delete(ctx context.Context, volunteerEmail, postID string) error {
	args := m.Called(ctx, volunteerEmail, postID)
	return args.Error(0)
}
