package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
)

// ApplicationStore описывает зависимости ApplicationService от слоя хранилища.
type ApplicationStore interface {
	Create(ctx context.Context, application *models.JobApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error)
	ListApplicants(ctx context.Context, jobID uuid.UUID) ([]models.Applicant, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.ApplicationWithJob, error)
	UpdateStatus(ctx context.Context, applicationID uuid.UUID, status string) (*models.JobApplication, error)
	AcceptedFreelancer(ctx context.Context, jobID uuid.UUID) (uuid.UUID, error)
}

// ApplicationJobReader читает работы для проверок прав и статусов.
type ApplicationJobReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ApplicationService содержит бизнес-логику откликов на работы.
type ApplicationService struct {
	repo     ApplicationStore
	jobs     ApplicationJobReader
	notifier Notifier
}

// NewApplicationService создаёт сервис откликов.
func NewApplicationService(repo ApplicationStore, jobs ApplicationJobReader, notifier Notifier) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, notifier: notifier}
}

// Apply создаёт отклик фрилансера на открытую работу.
func (s *ApplicationService) Apply(ctx context.Context, freelancerID, jobID uuid.UUID) (*models.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if job.Status != models.JobStatusOpen {
		return nil, apperror.New(apperror.ErrCodeConflict, "работа закрыта для откликов")
	}
	if job.EmployerID == freelancerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя откликнуться на собственную работу")
	}

	application := &models.JobApplication{
		JobID:        jobID,
		FreelancerID: freelancerID,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже откликнулись на эту работу")
		}
		return nil, err
	}

	return application, nil
}

// ListApplicants возвращает отклики на работу. Доступно только её владельцу.
func (s *ApplicationService) ListApplicants(ctx context.Context, employerID, jobID uuid.UUID) ([]models.Applicant, error) {
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

	return s.repo.ListApplicants(ctx, jobID)
}

// ListMy возвращает отклики фрилансера.
func (s *ApplicationService) ListMy(ctx context.Context, freelancerID uuid.UUID) ([]models.ApplicationWithJob, error) {
	return s.repo.ListByFreelancer(ctx, freelancerID)
}

// Accept принимает отклик. Работа переходит в in_progress, и с этого
// момента у неё есть единственный назначенный фрилансер.
func (s *ApplicationService) Accept(ctx context.Context, employerID, applicationID uuid.UUID) (*models.JobApplication, error) {
	return s.decide(ctx, employerID, applicationID, models.ApplicationStatusAccepted)
}

// Reject отклоняет отклик.
func (s *ApplicationService) Reject(ctx context.Context, employerID, applicationID uuid.UUID) (*models.JobApplication, error) {
	return s.decide(ctx, employerID, applicationID, models.ApplicationStatusRejected)
}

// decide выполняет решение работодателя по отклику.
func (s *ApplicationService) decide(ctx context.Context, employerID, applicationID uuid.UUID, status string) (*models.JobApplication, error) {
	application, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, application.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, apperror.ErrForbidden
	}

	if application.Status != models.ApplicationStatusApplied {
		return nil, apperror.New(apperror.ErrCodeConflict, "решение по отклику уже принято")
	}

	if status == models.ApplicationStatusAccepted {
		// На работу принимается только один фрилансер.
		if _, err := s.repo.AcceptedFreelancer(ctx, application.JobID); err == nil {
			return nil, apperror.New(apperror.ErrCodeConflict, "на работу уже принят фрилансер")
		} else if !errors.Is(err, repository.ErrNoAssignedFreelancer) {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, applicationID, status)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	notify(s.notifier, updated.FreelancerID, models.EventApplicationStatus, map[string]any{
		"application_id": updated.ID,
		"job_id":         updated.JobID,
		"job_title":      job.Title,
		"status":         updated.Status,
	})

	return updated, nil
}
