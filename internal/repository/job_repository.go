package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dkondrashov/marketplace-backend/internal/models"
)

// ErrJobNotFound возвращается, когда работа не найдена.
var ErrJobNotFound = errors.New("job not found")

// JobRepository отвечает за таблицу jobs.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository создаёт экземпляр репозитория.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create публикует новую работу со статусом open.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (employer_id, title, description, budget, skills_required, duration, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING id, status, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		job.EmployerID, job.Title, job.Description, job.Budget, job.SkillsRequired, job.Duration,
	).Scan(&job.ID, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("job repository: create %w", err)
	}
	return nil
}

// GetByID возвращает работу по идентификатору.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get by id %w", err)
	}
	return &job, nil
}

// ListOpen возвращает открытые работы (для каталога фрилансера).
func (r *JobRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs WHERE status = 'open' ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("job repository: list open %w", err)
	}
	return jobs, nil
}

// ListByEmployer возвращает работы, опубликованные работодателем.
func (r *JobRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs WHERE employer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, employerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("job repository: list by employer %w", err)
	}
	return jobs, nil
}

// AllocatedBudget возвращает сумму payment всех вех работы.
// Остаток бюджета = job.budget - AllocatedBudget.
func (r *JobRepository) AllocatedBudget(ctx context.Context, jobID uuid.UUID) (decimal.Decimal, error) {
	var allocated decimal.Decimal
	err := r.db.GetContext(ctx, &allocated, `
		SELECT COALESCE(SUM(payment), 0) FROM milestones WHERE job_id = $1
	`, jobID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("job repository: allocated budget %w", err)
	}
	return allocated, nil
}

// UpdateStatus меняет статус работы.
func (r *JobRepository) UpdateStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1
	`, jobID, status)
	if err != nil {
		return fmt.Errorf("job repository: update status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("job repository: update status rows affected %w", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}
