package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Статусы вех. Переходы строго монотонны:
// pending -> for_approval -> approved, откатов и удаления нет.
const (
	MilestoneStatusPending     = "pending"
	MilestoneStatusForApproval = "for_approval"
	MilestoneStatusApproved    = "approved"
)

// Milestone — отдельно оплачиваемая веха внутри работы.
// Принадлежит единственному принятому на работу фрилансеру.
type Milestone struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	JobID        uuid.UUID       `db:"job_id" json:"job_id"`
	FreelancerID uuid.UUID       `db:"freelancer_id" json:"freelancer_id"`
	Title        string          `db:"title" json:"title"`
	Payment      decimal.Decimal `db:"payment" json:"payment"`
	Status       string          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
