package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Статусы работ
const (
	JobStatusOpen       = "open"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
)

// Статусы откликов
const (
	ApplicationStatusApplied  = "applied"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// Job описывает опубликованную работу.
// Инвариант: сумма payment всех вех работы не превышает budget.
type Job struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	EmployerID     uuid.UUID       `db:"employer_id" json:"employer_id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	Budget         decimal.Decimal `db:"budget" json:"budget"`
	SkillsRequired pq.StringArray  `db:"skills_required" json:"skills_required,omitempty"`
	Duration       *string         `db:"duration" json:"duration,omitempty"`
	Status         string          `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// JobApplication представляет отклик фрилансера на работу.
type JobApplication struct {
	ID           uuid.UUID `db:"id" json:"id"`
	JobID        uuid.UUID `db:"job_id" json:"job_id"`
	FreelancerID uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Applicant — отклик вместе с профилем фрилансера для списка откликов работодателя.
type Applicant struct {
	ApplicationID uuid.UUID        `db:"application_id" json:"application_id"`
	FreelancerID  uuid.UUID        `db:"freelancer_id" json:"freelancer_id"`
	Username      string           `db:"username" json:"username"`
	Skills        pq.StringArray   `db:"skills" json:"skills,omitempty"`
	Experience    *string          `db:"experience" json:"experience,omitempty"`
	HourlyRate    *decimal.Decimal `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Status        string           `db:"status" json:"status"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// ApplicationWithJob — отклик вместе с краткой информацией о работе
// для списка "мои отклики" фрилансера.
type ApplicationWithJob struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	JobID     uuid.UUID       `db:"job_id" json:"job_id"`
	JobTitle  string          `db:"job_title" json:"job_title"`
	Budget    decimal.Decimal `db:"budget" json:"budget"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
