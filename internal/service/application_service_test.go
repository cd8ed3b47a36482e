package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
)

type mockApplicationStore struct {
	mock.Mock
}

func (m *mockApplicationStore) Create(ctx context.Context, application *models.JobApplication) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *mockApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *mockApplicationStore) ListApplicants(ctx context.Context, jobID uuid.UUID) ([]models.Applicant, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.Applicant), args.Error(1)
}

func (m *mockApplicationStore) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.ApplicationWithJob, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).([]models.ApplicationWithJob), args.Error(1)
}

func (m *mockApplicationStore) UpdateStatus(ctx context.Context, applicationID uuid.UUID, status string) (*models.JobApplication, error) {
	args := m.Called(ctx, applicationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *mockApplicationStore) AcceptedFreelancer(ctx context.Context, jobID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockApplicationJobReader struct {
	mock.Mock
}

func (m *mockApplicationJobReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func TestApplicationService_Apply_Success(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: uuid.New(),
		Status:     models.JobStatusOpen,
	}, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(a *models.JobApplication) bool {
		return a.JobID == jobID && a.FreelancerID == freelancerID
	})).Return(nil)

	application, err := svc.Apply(ctx, freelancerID, jobID)
	assert.NoError(t, err)
	assert.Equal(t, jobID, application.JobID)
	repo.AssertExpectations(t)
}

func TestApplicationService_Apply_JobClosed(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: uuid.New(),
		Status:     models.JobStatusInProgress,
	}, nil)

	_, err := svc.Apply(ctx, uuid.New(), jobID)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.Code(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApplicationService_Apply_OwnJob(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	employerID := uuid.New()
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: employerID,
		Status:     models.JobStatusOpen,
	}, nil)

	_, err := svc.Apply(ctx, employerID, jobID)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestApplicationService_Apply_Duplicate(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: uuid.New(),
		Status:     models.JobStatusOpen,
	}, nil)
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrAlreadyApplied)

	_, err := svc.Apply(ctx, uuid.New(), jobID)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.Code(err))
}

func TestApplicationService_Accept_Success(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	notifier := new(mockNotifier)
	svc := NewApplicationService(repo, jobs, notifier)
	ctx := context.Background()

	employerID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()
	applicationID := uuid.New()

	repo.On("GetByID", ctx, applicationID).Return(&models.JobApplication{
		ID:           applicationID,
		JobID:        jobID,
		FreelancerID: freelancerID,
		Status:       models.ApplicationStatusApplied,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: employerID,
		Title:      "Вёрстка каталога",
		Status:     models.JobStatusOpen,
	}, nil)
	repo.On("AcceptedFreelancer", ctx, jobID).Return(uuid.Nil, repository.ErrNoAssignedFreelancer)
	repo.On("UpdateStatus", ctx, applicationID, models.ApplicationStatusAccepted).Return(&models.JobApplication{
		ID:           applicationID,
		JobID:        jobID,
		FreelancerID: freelancerID,
		Status:       models.ApplicationStatusAccepted,
	}, nil)
	notifier.On("BroadcastToUser", freelancerID, models.EventApplicationStatus, mock.Anything).Return(nil)

	accepted, err := svc.Accept(ctx, employerID, applicationID)
	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)
	notifier.AssertExpectations(t)
}

func TestApplicationService_Accept_FreelancerAlreadyAssigned(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	employerID := uuid.New()
	jobID := uuid.New()
	applicationID := uuid.New()

	repo.On("GetByID", ctx, applicationID).Return(&models.JobApplication{
		ID:     applicationID,
		JobID:  jobID,
		Status: models.ApplicationStatusApplied,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: employerID,
	}, nil)
	repo.On("AcceptedFreelancer", ctx, jobID).Return(uuid.New(), nil)

	_, err := svc.Accept(ctx, employerID, applicationID)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.Code(err))
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_Accept_AlreadyDecided(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	employerID := uuid.New()
	jobID := uuid.New()
	applicationID := uuid.New()

	repo.On("GetByID", ctx, applicationID).Return(&models.JobApplication{
		ID:     applicationID,
		JobID:  jobID,
		Status: models.ApplicationStatusRejected,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: employerID,
	}, nil)

	_, err := svc.Accept(ctx, employerID, applicationID)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.Code(err))
}

func TestApplicationService_Reject_NotOwner(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	jobID := uuid.New()
	applicationID := uuid.New()

	repo.On("GetByID", ctx, applicationID).Return(&models.JobApplication{
		ID:     applicationID,
		JobID:  jobID,
		Status: models.ApplicationStatusApplied,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: uuid.New(),
	}, nil)

	_, err := svc.Reject(ctx, uuid.New(), applicationID)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestApplicationService_ListApplicants_NotOwner(t *testing.T) {
	repo := new(mockApplicationStore)
	jobs := new(mockApplicationJobReader)
	svc := NewApplicationService(repo, jobs, nil)
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		EmployerID: uuid.New(),
	}, nil)

	_, err := svc.ListApplicants(ctx, uuid.New(), jobID)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
