package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dkondrashov/marketplace-backend/internal/models"
)

var (
	// ErrApplicationNotFound возвращается, когда отклик не найден.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrAlreadyApplied возвращается при повторном отклике на ту же работу.
	ErrAlreadyApplied = errors.New("already applied")
	// ErrNoAssignedFreelancer возвращается, когда на работу нет принятого фрилансера.
	ErrNoAssignedFreelancer = errors.New("no assigned freelancer")
)

// ApplicationRepository отвечает за таблицу job_applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository создаёт экземпляр репозитория.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create сохраняет отклик фрилансера на работу со статусом applied.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.JobApplication) error {
	query := `
		INSERT INTO job_applications (job_id, freelancer_id, status)
		VALUES ($1, $2, 'applied')
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, application.JobID, application.FreelancerID).
		Scan(&application.ID, &application.Status, &application.CreatedAt, &application.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyApplied
		}
		return fmt.Errorf("application repository: create %w", err)
	}
	return nil
}

// GetByID возвращает отклик по идентификатору.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	var application models.JobApplication
	if err := r.db.GetContext(ctx, &application, `SELECT * FROM job_applications WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by id %w", err)
	}
	return &application, nil
}

// ListApplicants возвращает отклики на работу вместе с профилями фрилансеров.
func (r *ApplicationRepository) ListApplicants(ctx context.Context, jobID uuid.UUID) ([]models.Applicant, error) {
	var applicants []models.Applicant
	err := r.db.SelectContext(ctx, &applicants, `
		SELECT ja.id AS application_id, u.id AS freelancer_id, u.username,
		       u.skills, u.experience, u.hourly_rate, ja.status, ja.created_at
		FROM job_applications ja
		JOIN users u ON u.id = ja.freelancer_id
		WHERE ja.job_id = $1
		ORDER BY ja.created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("application repository: list applicants %w", err)
	}
	return applicants, nil
}

// ListByFreelancer возвращает отклики фрилансера вместе с информацией о работах.
func (r *ApplicationRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.ApplicationWithJob, error) {
	var applications []models.ApplicationWithJob
	err := r.db.SelectContext(ctx, &applications, `
		SELECT ja.id, j.id AS job_id, j.title AS job_title, j.budget, ja.status, ja.created_at
		FROM job_applications ja
		JOIN jobs j ON j.id = ja.job_id
		WHERE ja.freelancer_id = $1
		ORDER BY ja.created_at DESC
	`, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("application repository: list by freelancer %w", err)
	}
	return applications, nil
}

// UpdateStatus меняет статус отклика. При принятии работа переводится
// в in_progress той же транзакцией, чтобы каталог сразу перестал её показывать.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID uuid.UUID, status string) (*models.JobApplication, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var application models.JobApplication
	err = tx.GetContext(ctx, &application, `
		UPDATE job_applications SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, job_id, freelancer_id, status, created_at, updated_at
	`, applicationID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: update status %w", err)
	}

	if status == models.ApplicationStatusAccepted {
		if _, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'in_progress', updated_at = NOW() WHERE id = $1
		`, application.JobID); err != nil {
			return nil, fmt.Errorf("application repository: mark job in progress %w", err)
		}
	}

	return &application, tx.Commit()
}

// AcceptedFreelancer возвращает идентификатор принятого на работу фрилансера.
// По инварианту принятый отклик у работы не более одного.
func (r *ApplicationRepository) AcceptedFreelancer(ctx context.Context, jobID uuid.UUID) (uuid.UUID, error) {
	var freelancerID uuid.UUID
	err := r.db.GetContext(ctx, &freelancerID, `
		SELECT freelancer_id FROM job_applications WHERE job_id = $1 AND status = 'accepted'
	`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrNoAssignedFreelancer
		}
		return uuid.Nil, fmt.Errorf("application repository: accepted freelancer %w", err)
	}
	return freelancerID, nil
}
