package service

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/volunteer-board/internal/model"
	"github.com/yakoovad/volunteer-board/internal/repository"
	"testing"
)

const testPostID = "5b0c6f0e-6a1f-4d53-9a52-3c2a3c0f7d11"

type failingTransactor struct{}

func (failingTransactor) WithinTransaction(context.Context, func(context.Context) error) error {
	return errors.New("failed to begin transaction")
}

func TestRequestService_SubmitRequest(t *testing.T) {
	post := &repository.Post{
		ID:               testPostID,
		Title:            "Beach cleanup",
		OrganizerEmail:   "organizer@x.com",
		VolunteersTotal:  3,
		VolunteersNeeded: 1,
	}

	tests := []struct {
		name          string
		req           *model.VolunteerRequest
		setupMocks    func(*MockPostRepository, *MockRequestRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "success: request created and slot taken",
			req: &model.VolunteerRequest{
				PostID:         testPostID,
				VolunteerEmail: "volunteer@x.com",
				OrganizerEmail: "spoofed@x.com",
			},
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("Create", mock.Anything, mock.MatchedBy(func(r *repository.Request) bool {
					return r.PostID == testPostID &&
						r.VolunteerEmail == "volunteer@x.com" &&
						r.OrganizerEmail == "organizer@x.com" &&
						r.Status == model.RequestStatusRequested &&
						r.ID != ""
				})).Return(nil)
				pr.On("TakeSlot", mock.Anything, testPostID).Return(0, nil)
			},
		},
		{
			name: "failure: post not found",
			req:  &model.VolunteerRequest{PostID: testPostID, VolunteerEmail: "volunteer@x.com"},
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodePostNotFound,
		},
		{
			name: "failure: duplicate request does not touch the counter",
			req:  &model.VolunteerRequest{PostID: testPostID, VolunteerEmail: "volunteer@x.com"},
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("Create", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeDuplicateRequest,
		},
		{
			name: "failure: counter exhausted",
			req:  &model.VolunteerRequest{PostID: testPostID, VolunteerEmail: "volunteer2@x.com"},
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("Create", mock.Anything, mock.Anything).Return(nil)
				pr.On("TakeSlot", mock.Anything, testPostID).Return(0, repository.ErrNoSlotsLeft)
			},
			expectedError: true,
			errorCode:     ErrorCodeCounterExhausted,
		},
		{
			name: "failure: storage error while locking post",
			req:  &model.VolunteerRequest{PostID: testPostID, VolunteerEmail: "volunteer@x.com"},
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
		{
			name: "failure: storage error while taking slot",
			req:  &model.VolunteerRequest{PostID: testPostID, VolunteerEmail: "volunteer@x.com"},
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("Create", mock.Anything, mock.Anything).Return(nil)
				pr.On("TakeSlot", mock.Anything, testPostID).Return(0, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockPostRepo := new(MockPostRepository)
			mockRequestRepo := new(MockRequestRepository)

			tt.setupMocks(mockPostRepo, mockRequestRepo)

			service := NewRequestService(mockTx).
				WithPostRepo(mockPostRepo).
				WithRequestRepo(mockRequestRepo)

			got, err := service.SubmitRequest(context.Background(), tt.req)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotNil(t, got)
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, "organizer@x.com", got.OrganizerEmail)
				assert.Equal(t, model.RequestStatusRequested, got.Status)
			}

			mockPostRepo.AssertExpectations(t)
			mockRequestRepo.AssertExpectations(t)
			if tt.errorCode == ErrorCodeDuplicateRequest {
				mockPostRepo.AssertNotCalled(t, "TakeSlot", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRequestService_SubmitRequest_TransactionFailure(t *testing.T) {
	service := NewRequestService(failingTransactor{}).
		WithPostRepo(new(MockPostRepository)).
		WithRequestRepo(new(MockRequestRepository))

	got, err := service.SubmitRequest(context.Background(), &model.VolunteerRequest{
		PostID:         testPostID,
		VolunteerEmail: "volunteer@x.com",
	})

	assert.Nil(t, got)
	if assert.NotNil(t, err) {
		assert.Equal(t, ErrorCodeUnspecified, err.Code)
	}
}

func TestRequestService_WithdrawRequest(t *testing.T) {
	post := &repository.Post{ID: testPostID, OrganizerEmail: "organizer@x.com", VolunteersTotal: 2}
	request := &repository.Request{
		ID:             "r1",
		PostID:         testPostID,
		VolunteerEmail: "volunteer@x.com",
		OrganizerEmail: "organizer@x.com",
	}

	tests := []struct {
		name          string
		caller        string
		setupMocks    func(*MockPostRepository, *MockRequestRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:   "success: volunteer withdraws",
			caller: "volunteer@x.com",
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("GetForUpdate", mock.Anything, "volunteer@x.com", testPostID).Return(request, nil)
				rr.On("Delete", mock.Anything, "volunteer@x.com", testPostID).Return(nil)
				pr.On("ReleaseSlot", mock.Anything, testPostID).Return(nil)
			},
		},
		{
			name:   "success: organizer removes request",
			caller: "organizer@x.com",
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("GetForUpdate", mock.Anything, "volunteer@x.com", testPostID).Return(request, nil)
				rr.On("Delete", mock.Anything, "volunteer@x.com", testPostID).Return(nil)
				pr.On("ReleaseSlot", mock.Anything, testPostID).Return(nil)
			},
		},
		{
			name:   "failure: unrelated caller",
			caller: "stranger@x.com",
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("GetForUpdate", mock.Anything, "volunteer@x.com", testPostID).Return(request, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeForbidden,
		},
		{
			name:   "failure: request not found",
			caller: "volunteer@x.com",
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(post, nil)
				rr.On("GetForUpdate", mock.Anything, "volunteer@x.com", testPostID).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:   "failure: post not found",
			caller: "volunteer@x.com",
			setupMocks: func(pr *MockPostRepository, rr *MockRequestRepository) {
				pr.On("GetForUpdate", mock.Anything, testPostID).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockPostRepo := new(MockPostRepository)
			mockRequestRepo := new(MockRequestRepository)

			tt.setupMocks(mockPostRepo, mockRequestRepo)

			service := NewRequestService(mockTx).
				WithPostRepo(mockPostRepo).
				WithRequestRepo(mockRequestRepo)

			err := service.WithdrawRequest(context.Background(), tt.caller, "volunteer@x.com", testPostID)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				mockRequestRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.Nil(t, err)
			}

			mockPostRepo.AssertExpectations(t)
			mockRequestRepo.AssertExpectations(t)
		})
	}
}

func TestRequestService_ListRequests(t *testing.T) {
	mockRequestRepo := new(MockRequestRepository)
	mockRequestRepo.On("ListByOrganizer", mock.Anything, "organizer@x.com").Return([]*repository.Request{
		{ID: "r1", PostID: testPostID, VolunteerEmail: "a@x.com", OrganizerEmail: "organizer@x.com"},
		{ID: "r2", PostID: testPostID, VolunteerEmail: "b@x.com", OrganizerEmail: "organizer@x.com"},
	}, nil)
	mockRequestRepo.On("ListByVolunteer", mock.Anything, "broken@x.com").Return(nil, errors.New("db error"))

	service := NewRequestService(new(MockTransactor)).WithRequestRepo(mockRequestRepo)

	got, err := service.ListByOrganizer(context.Background(), "organizer@x.com")
	assert.Nil(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "a@x.com", got[0].VolunteerEmail)

	none, err := service.ListByVolunteer(context.Background(), "broken@x.com")
	assert.Nil(t, none)
	if assert.NotNil(t, err) {
		assert.Equal(t, ErrorCodeUnspecified, err.Code)
	}

	mockRequestRepo.AssertExpectations(t)
}
