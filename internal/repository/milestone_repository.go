package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkondrashov/marketplace-backend/internal/models"
)

// ErrMilestoneNotFound возвращается, когда веха не найдена.
var ErrMilestoneNotFound = errors.New("milestone not found")

// MilestoneRepository отвечает за таблицу milestones.
// Финансовые эффекты одобрения вехи живут в EscrowRepository.
type MilestoneRepository struct {
	db *sqlx.DB
}

// NewMilestoneRepository создаёт экземпляр репозитория.
func NewMilestoneRepository(db *sqlx.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Create добавляет веху со статусом pending.
// Валидация бюджета выполняется сервисом до вызова.
func (r *MilestoneRepository) Create(ctx context.Context, milestone *models.Milestone) error {
	query := `
		INSERT INTO milestones (job_id, freelancer_id, title, payment, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, status, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		milestone.JobID, milestone.FreelancerID, milestone.Title, milestone.Payment,
	).Scan(&milestone.ID, &milestone.Status, &milestone.CreatedAt, &milestone.UpdatedAt); err != nil {
		return fmt.Errorf("milestone repository: create %w", err)
	}
	return nil
}

// GetByID возвращает веху по идентификатору.
func (r *MilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := r.db.GetContext(ctx, &milestone, `SELECT * FROM milestones WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("milestone repository: get by id %w", err)
	}
	return &milestone, nil
}

// ListByJob возвращает вехи работы в порядке создания.
func (r *MilestoneRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := r.db.SelectContext(ctx, &milestones, `
		SELECT * FROM milestones WHERE job_id = $1 ORDER BY created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("milestone repository: list by job %w", err)
	}
	return milestones, nil
}

// Submit переводит веху pending -> for_approval.
// Если веха уже в for_approval или approved, возвращает её без изменений
// и changed = false: повторная отправка — идемпотентная информационная
// ситуация, а не ошибка.
func (r *MilestoneRepository) Submit(ctx context.Context, milestoneID, freelancerID uuid.UUID) (*models.Milestone, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var milestone models.Milestone
	err = tx.GetContext(ctx, &milestone, `
		SELECT * FROM milestones WHERE id = $1 AND freelancer_id = $2 FOR UPDATE
	`, milestoneID, freelancerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrMilestoneNotFound
		}
		return nil, false, fmt.Errorf("milestone repository: submit read %w", err)
	}

	if milestone.Status != models.MilestoneStatusPending {
		return &milestone, false, tx.Commit()
	}

	err = tx.GetContext(ctx, &milestone, `
		UPDATE milestones SET status = 'for_approval', updated_at = NOW()
		WHERE id = $1
		RETURNING id, job_id, freelancer_id, title, payment, status, created_at, updated_at
	`, milestoneID)
	if err != nil {
		return nil, false, fmt.Errorf("milestone repository: submit update %w", err)
	}

	return &milestone, true, tx.Commit()
}
