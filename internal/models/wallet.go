package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы транзакций
const (
	TransactionTypeDeposit       = "deposit"
	TransactionTypeWithdrawal    = "withdrawal"
	TransactionTypeEscrowHold    = "escrow_hold"
	TransactionTypeEscrowRelease = "escrow_release"
)

// Wallet представляет основной кошелёк пользователя.
// Баланс всегда читается из базы, инвариант balance >= 0 обеспечивается
// проверками в транзакциях репозитория.
type Wallet struct {
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// EscrowBalance — временный кошелёк пары (фрилансер, работодатель).
// Накапливает оплату одобренных вех и обнуляется при финальном расчёте,
// когда все вехи работы одобрены.
type EscrowBalance struct {
	FreelancerID uuid.UUID       `db:"freelancer_id" json:"freelancer_id"`
	EmployerID   uuid.UUID       `db:"employer_id" json:"employer_id"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction представляет запись в журнале движений средств.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	JobID       *uuid.UUID      `db:"job_id" json:"job_id,omitempty"`
	MilestoneID *uuid.UUID      `db:"milestone_id" json:"milestone_id,omitempty"`
	Type        string          `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
