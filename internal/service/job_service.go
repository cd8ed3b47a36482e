package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
	"github.com/dkondrashov/marketplace-backend/internal/validation"
)

// JobStore описывает зависимости JobService от слоя хранилища.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Job, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]models.Job, error)
	AllocatedBudget(ctx context.Context, jobID uuid.UUID) (decimal.Decimal, error)
}

// JobWalletReader читает баланс работодателя при публикации работы.
type JobWalletReader interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
}

// JobService содержит бизнес-логику публикации и просмотра работ.
type JobService struct {
	repo    JobStore
	wallets JobWalletReader
}

// PostJobInput содержит данные новой работы.
type PostJobInput struct {
	Title          string
	Description    string
	Budget         decimal.Decimal
	SkillsRequired []string
	Duration       *string
}

// JobWithBudget — работа вместе с информацией о распределении бюджета.
type JobWithBudget struct {
	*models.Job
	AllocatedBudget decimal.Decimal `json:"allocated_budget"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
}

// NewJobService создаёт сервис работ.
func NewJobService(repo JobStore, wallets JobWalletReader) *JobService {
	return &JobService{repo: repo, wallets: wallets}
}

// PostJob публикует новую работу работодателя.
// Бюджет не должен превышать текущий баланс кошелька: работодатель
// не может обещать больше, чем способен оплатить.
func (s *JobService) PostJob(ctx context.Context, employerID uuid.UUID, in PostJobInput) (*models.Job, error) {
	if err := validation.ValidateJobTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateJobDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAmount("бюджет", in.Budget); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.SkillsRequired); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	wallet, err := s.wallets.GetWallet(ctx, employerID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(in.Budget) {
		return nil, apperror.New(apperror.ErrCodeInsufficientFunds,
			"бюджет работы превышает баланс кошелька")
	}

	job := &models.Job{
		EmployerID:     employerID,
		Title:          in.Title,
		Description:    in.Description,
		Budget:         in.Budget,
		SkillsRequired: in.SkillsRequired,
		Duration:       in.Duration,
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob возвращает работу вместе с остатком бюджета.
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*JobWithBudget, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	allocated, err := s.repo.AllocatedBudget(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &JobWithBudget{
		Job:             job,
		AllocatedBudget: allocated,
		RemainingBudget: job.Budget.Sub(allocated),
	}, nil
}

// ListOpen возвращает открытые работы для каталога.
func (s *JobService) ListOpen(ctx context.Context, limit, offset int) ([]models.Job, error) {
	limit, offset = normalizePagination(limit, offset)
	return s.repo.ListOpen(ctx, limit, offset)
}

// ListMine возвращает работы работодателя.
func (s *JobService) ListMine(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	limit, offset = normalizePagination(limit, offset)
	return s.repo.ListByEmployer(ctx, employerID, limit, offset)
}

// RemainingBudget возвращает нераспределённый остаток бюджета работы.
func (s *JobService) RemainingBudget(ctx context.Context, jobID uuid.UUID) (decimal.Decimal, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return decimal.Zero, apperror.ErrJobNotFound
		}
		return decimal.Zero, err
	}

	allocated, err := s.repo.AllocatedBudget(ctx, jobID)
	if err != nil {
		return decimal.Zero, err
	}

	return job.Budget.Sub(allocated), nil
}

// normalizePagination приводит параметры пагинации к допустимым значениям.
func normalizePagination(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
