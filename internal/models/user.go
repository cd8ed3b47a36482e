package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Роли пользователей
const (
	RoleEmployer   = "employer"
	RoleFreelancer = "freelancer"
)

// User описывает сущность пользователя платформы.
// Профильные поля (навыки, опыт, ставка) хранятся в той же таблице:
// отдельная таблица профилей для этого домена избыточна.
type User struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Email        string           `db:"email" json:"email"`
	Username     string           `db:"username" json:"username"`
	PasswordHash string           `db:"password_hash" json:"-"`
	Role         string           `db:"role" json:"role"`
	IsActive     bool             `db:"is_active" json:"is_active"`
	Skills       pq.StringArray   `db:"skills" json:"skills,omitempty"`
	Experience   *string          `db:"experience" json:"experience,omitempty"`
	HourlyRate   *decimal.Decimal `db:"hourly_rate" json:"hourly_rate,omitempty"`
	CompanyName  *string          `db:"company_name" json:"company_name,omitempty"`
	LastLoginAt  *time.Time       `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
