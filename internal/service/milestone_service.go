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

// Итоги отправки вехи на проверку. Повторная отправка не ошибка,
// а информационная ситуация: клиенту сообщается фактическое состояние.
const (
	SubmitOutcomeSubmitted        = "submitted"
	SubmitOutcomeAlreadyOnReview  = "already_for_approval"
	SubmitOutcomeAlreadyApproved  = "already_approved"
)

// MilestoneStore описывает зависимости MilestoneService от слоя хранилища.
type MilestoneStore interface {
	Create(ctx context.Context, milestone *models.Milestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error)
	Submit(ctx context.Context, milestoneID, freelancerID uuid.UUID) (*models.Milestone, bool, error)
}

// MilestoneJobStore читает работы и распределение бюджета.
type MilestoneJobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	AllocatedBudget(ctx context.Context, jobID uuid.UUID) (decimal.Decimal, error)
}

// MilestoneAssignmentReader возвращает принятого на работу фрилансера.
type MilestoneAssignmentReader interface {
	AcceptedFreelancer(ctx context.Context, jobID uuid.UUID) (uuid.UUID, error)
}

// MilestoneService содержит бизнес-логику вех.
// Финансовые эффекты одобрения живут в EscrowService.
type MilestoneService struct {
	repo         MilestoneStore
	jobs         MilestoneJobStore
	applications MilestoneAssignmentReader
	notifier     Notifier
}

// SubmitResult описывает итог отправки вехи на проверку.
type SubmitResult struct {
	Milestone *models.Milestone
	Outcome   string
}

// NewMilestoneService создаёт сервис вех.
func NewMilestoneService(repo MilestoneStore, jobs MilestoneJobStore, applications MilestoneAssignmentReader, notifier Notifier) *MilestoneService {
	return &MilestoneService{repo: repo, jobs: jobs, applications: applications, notifier: notifier}
}

// AddMilestone добавляет веху к работе.
// Сумма вехи не может превышать нераспределённый остаток бюджета:
// инвариант sum(payment) <= budget сохраняется при каждом добавлении.
func (s *MilestoneService) AddMilestone(ctx context.Context, employerID, jobID uuid.UUID, title string, payment decimal.Decimal) (*models.Milestone, error) {
	if err := validation.ValidateMilestoneTitle(title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAmount("оплата вехи", payment); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, apperror.ErrForbidden
	}

	freelancerID, err := s.applications.AcceptedFreelancer(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNoAssignedFreelancer) {
			return nil, apperror.ErrNoAssignedFreelancer
		}
		return nil, err
	}

	allocated, err := s.jobs.AllocatedBudget(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if allocated.Add(payment).GreaterThan(job.Budget) {
		return nil, apperror.ErrBudgetExceeded
	}

	milestone := &models.Milestone{
		JobID:        jobID,
		FreelancerID: freelancerID,
		Title:        title,
		Payment:      payment,
	}
	if err := s.repo.Create(ctx, milestone); err != nil {
		return nil, err
	}

	return milestone, nil
}

// ListJobMilestones возвращает вехи работы.
// Доступно владельцу работы и назначенному фрилансеру.
func (s *MilestoneService) ListJobMilestones(ctx context.Context, userID, jobID uuid.UUID) ([]models.Milestone, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if job.EmployerID != userID {
		freelancerID, err := s.applications.AcceptedFreelancer(ctx, jobID)
		if err != nil || freelancerID != userID {
			return nil, apperror.ErrForbidden
		}
	}

	return s.repo.ListByJob(ctx, jobID)
}

// Submit отправляет веху на проверку работодателю.
// Повторная отправка идемпотентна: статус не откатывается,
// клиент получает фактическое состояние вехи.
func (s *MilestoneService) Submit(ctx context.Context, freelancerID, milestoneID uuid.UUID) (*SubmitResult, error) {
	milestone, changed, err := s.repo.Submit(ctx, milestoneID, freelancerID)
	if err != nil {
		if errors.Is(err, repository.ErrMilestoneNotFound) {
			return nil, apperror.ErrMilestoneNotFound
		}
		return nil, err
	}

	result := &SubmitResult{Milestone: milestone}
	if !changed {
		if milestone.Status == models.MilestoneStatusApproved {
			result.Outcome = SubmitOutcomeAlreadyApproved
		} else {
			result.Outcome = SubmitOutcomeAlreadyOnReview
		}
		return result, nil
	}

	result.Outcome = SubmitOutcomeSubmitted

	job, err := s.jobs.GetByID(ctx, milestone.JobID)
	if err == nil {
		notify(s.notifier, job.EmployerID, models.EventMilestoneSubmitted, map[string]any{
			"milestone_id": milestone.ID,
			"job_id":       milestone.JobID,
			"title":        milestone.Title,
			"payment":      milestone.Payment,
		})
	}

	return result, nil
}
