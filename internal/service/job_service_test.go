package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
)

type mockJobStore struct {
	mock.Mock
}

func (m *mockJobStore) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockJobStore) ListOpen(ctx context.Context, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobStore) ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, employerID, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobStore) AllocatedBudget(ctx context.Context, jobID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockJobWalletReader struct {
	mock.Mock
}

func (m *mockJobWalletReader) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func TestJobService_PostJob_Success(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	employerID := uuid.New()
	wallets.On("GetWallet", ctx, employerID).Return(&models.Wallet{
		UserID:  employerID,
		Balance: decimal.NewFromInt(5000),
	}, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(j *models.Job) bool {
		return j.EmployerID == employerID && j.Budget.Equal(decimal.NewFromInt(3000))
	})).Return(nil)

	job, err := svc.PostJob(ctx, employerID, PostJobInput{
		Title:          "Разработка лендинга",
		Description:    "Нужен адаптивный лендинг с формой обратной связи и интеграцией с CRM.",
		Budget:         decimal.NewFromInt(3000),
		SkillsRequired: []string{"html", "css", "javascript"},
	})
	assert.NoError(t, err)
	assert.Equal(t, employerID, job.EmployerID)
	repo.AssertExpectations(t)
}

func TestJobService_PostJob_BudgetAboveWalletBalance(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	employerID := uuid.New()
	wallets.On("GetWallet", ctx, employerID).Return(&models.Wallet{
		UserID:  employerID,
		Balance: decimal.NewFromInt(1000),
	}, nil)

	_, err := svc.PostJob(ctx, employerID, PostJobInput{
		Title:          "Разработка мобильного приложения",
		Description:    "Кроссплатформенное приложение для заказа доставки с push-уведомлениями.",
		Budget:         decimal.NewFromInt(2000),
		SkillsRequired: []string{"flutter"},
	})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInsufficientFunds, apperror.Code(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJobService_PostJob_BudgetEqualsBalance(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	employerID := uuid.New()
	wallets.On("GetWallet", ctx, employerID).Return(&models.Wallet{
		UserID:  employerID,
		Balance: decimal.NewFromInt(1500),
	}, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	// Бюджет ровно в баланс — допустимо.
	_, err := svc.PostJob(ctx, employerID, PostJobInput{
		Title:          "Настройка CI",
		Description:    "Сборка, тесты и выкладка по тегу для монорепозитория на GitLab CI.",
		Budget:         decimal.NewFromInt(1500),
		SkillsRequired: []string{"devops"},
	})
	assert.NoError(t, err)
}

func TestJobService_PostJob_InvalidBudget(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	_, err := svc.PostJob(ctx, uuid.New(), PostJobInput{
		Title:          "Работа с нулевым бюджетом",
		Description:    "Описание достаточно длинное, чтобы пройти проверку минимальной длины.",
		Budget:         decimal.Zero,
		SkillsRequired: []string{"go"},
	})
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.Code(err))
	wallets.AssertNotCalled(t, "GetWallet", mock.Anything, mock.Anything)
}

func TestJobService_GetJob_WithBudget(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	jobID := uuid.New()
	repo.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:     jobID,
		Budget: decimal.NewFromInt(1000),
	}, nil)
	repo.On("AllocatedBudget", ctx, jobID).Return(decimal.NewFromInt(350), nil)

	job, err := svc.GetJob(ctx, jobID)
	assert.NoError(t, err)
	assert.True(t, job.AllocatedBudget.Equal(decimal.NewFromInt(350)))
	assert.True(t, job.RemainingBudget.Equal(decimal.NewFromInt(650)))
}

func TestJobService_GetJob_NotFound(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	repo.On("GetByID", ctx, mock.Anything).Return(nil, repository.ErrJobNotFound)

	_, err := svc.GetJob(ctx, uuid.New())
	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestJobService_ListOpen_NormalizesPagination(t *testing.T) {
	repo := new(mockJobStore)
	wallets := new(mockJobWalletReader)
	svc := NewJobService(repo, wallets)
	ctx := context.Background()

	repo.On("ListOpen", ctx, 20, 0).Return([]models.Job{}, nil)

	_, err := svc.ListOpen(ctx, -1, -10)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
