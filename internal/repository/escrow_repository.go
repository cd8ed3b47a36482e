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

var (
	// ErrNotJobOwner возвращается, когда веху одобряет не владелец работы.
	ErrNotJobOwner = errors.New("not job owner")
	// ErrNotAssignedFreelancer возвращается, когда финальный расчёт
	// запрашивает не принятый на работу фрилансер.
	ErrNotAssignedFreelancer = errors.New("not assigned freelancer")
	// ErrUnapprovedMilestones возвращается при попытке финального расчёта,
	// пока у работы остаются неодобренные вехи (или вех нет вовсе).
	ErrUnapprovedMilestones = errors.New("job has unapproved milestones")
)

// SettlementResult описывает итог одобрения вехи.
type SettlementResult struct {
	Milestone *models.Milestone
	// AlreadyApproved — повторное одобрение, мутаций не было.
	AlreadyApproved bool
	// EscrowBalance — баланс временного кошелька пары после операции.
	EscrowBalance decimal.Decimal
	// Finalized — все вехи работы одобрены, накопленная сумма
	// переведена на основной кошелёк фрилансера.
	Finalized bool
	// Released — сумма, зачисленная фрилансеру при финальном расчёте.
	Released decimal.Decimal
}

// EscrowRepository реализует расчётный механизм вех.
//
// Одобрение вехи — одна транзакция базы: проверка баланса работодателя,
// списание, зачисление во временный кошелёк пары (фрилансер, работодатель),
// смена статуса вехи и, если неодобренных вех не осталось, финальный расчёт.
// Любая ошибка откатывает всё: частичных списаний не бывает.
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository создаёт экземпляр репозитория.
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// milestoneWithEmployer — веха вместе с владельцем работы для проверки прав.
type milestoneWithEmployer struct {
	models.Milestone
	EmployerID uuid.UUID `db:"employer_id"`
}

// ApproveMilestone одобряет веху от имени работодателя employerID.
//
// Порядок внутри транзакции:
//  1. веха и работа читаются под FOR UPDATE — это сериализует одобрения
//     в рамках одной работы, и подсчёт неодобренных вех видит
//     согласованный срез;
//  2. баланс работодателя читается под FOR UPDATE, проверка и списание
//     неразделимы;
//  3. сумма вехи зачисляется во временный кошелёк пары (upsert);
//  4. веха помечается approved;
//  5. если неодобренных вех у работы не осталось — финальный расчёт
//     в той же транзакции.
func (r *EscrowRepository) ApproveMilestone(ctx context.Context, employerID, milestoneID uuid.UUID) (*SettlementResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var row milestoneWithEmployer
	err = tx.GetContext(ctx, &row, `
		SELECT m.id, m.job_id, m.freelancer_id, m.title, m.payment, m.status,
		       m.created_at, m.updated_at, j.employer_id
		FROM milestones m
		JOIN jobs j ON j.id = m.job_id
		WHERE m.id = $1
		FOR UPDATE OF m, j
	`, milestoneID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("escrow repository: approve read milestone %w", err)
	}

	if row.EmployerID != employerID {
		return nil, ErrNotJobOwner
	}

	milestone := row.Milestone

	// Повторное одобрение — идемпотентный no-op без движения средств.
	if milestone.Status == models.MilestoneStatusApproved {
		return &SettlementResult{Milestone: &milestone, AlreadyApproved: true}, tx.Commit()
	}

	var employerBalance decimal.Decimal
	err = tx.GetContext(ctx, &employerBalance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, employerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("escrow repository: approve read employer balance %w", err)
	}
	if employerBalance.LessThan(milestone.Payment) {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, employerID, milestone.Payment); err != nil {
		return nil, fmt.Errorf("escrow repository: approve debit employer %w", err)
	}

	var escrowBalance decimal.Decimal
	err = tx.GetContext(ctx, &escrowBalance, `
		INSERT INTO escrow_balances (freelancer_id, employer_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (freelancer_id, employer_id)
		DO UPDATE SET balance = escrow_balances.balance + $3, updated_at = NOW()
		RETURNING balance
	`, milestone.FreelancerID, employerID, milestone.Payment)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: approve credit escrow %w", err)
	}

	err = tx.GetContext(ctx, &milestone, `
		UPDATE milestones SET status = 'approved', updated_at = NOW()
		WHERE id = $1
		RETURNING id, job_id, freelancer_id, title, payment, status, created_at, updated_at
	`, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: approve update status %w", err)
	}

	holdDescription := fmt.Sprintf("Оплата вехи '%s' помещена во временный кошелёк", milestone.Title)
	if _, err := insertTransaction(ctx, tx, &models.Transaction{
		UserID:      employerID,
		JobID:       &milestone.JobID,
		MilestoneID: &milestone.ID,
		Type:        models.TransactionTypeEscrowHold,
		Amount:      milestone.Payment,
		Description: &holdDescription,
	}); err != nil {
		return nil, fmt.Errorf("escrow repository: approve journal %w", err)
	}

	var remaining int
	err = tx.GetContext(ctx, &remaining, `
		SELECT COUNT(*) FROM milestones WHERE job_id = $1 AND status <> 'approved'
	`, milestone.JobID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: approve count remaining %w", err)
	}

	result := &SettlementResult{
		Milestone:     &milestone,
		EscrowBalance: escrowBalance,
	}

	if remaining == 0 {
		released, ok, err := finalizeLocked(ctx, tx, milestone.FreelancerID, employerID, milestone.JobID)
		if err != nil {
			return nil, err
		}
		result.Finalized = ok
		result.Released = released
		if ok {
			result.EscrowBalance = decimal.Zero
		}
	}

	return result, tx.Commit()
}

// FinalizePayment переводит накопленный временный баланс пары на основной
// кошелёк фрилансера. Это путь восстановления после сбоев: расчёт выполняется
// только для принятого на работу фрилансера и только когда все вехи работы
// одобрены — средства не выходят из временного кошелька раньше одобрения
// последней вехи. Отсутствующий или нулевой баланс (расчёт уже прошёл
// автоматически) — безобидный no-op.
func (r *EscrowRepository) FinalizePayment(ctx context.Context, freelancerID, jobID uuid.UUID) (decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var employerID uuid.UUID
	err = tx.GetContext(ctx, &employerID, `SELECT employer_id FROM jobs WHERE id = $1 FOR UPDATE`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrJobNotFound
		}
		return decimal.Zero, fmt.Errorf("escrow repository: finalize read job %w", err)
	}

	var assigned uuid.UUID
	err = tx.GetContext(ctx, &assigned, `
		SELECT freelancer_id FROM job_applications WHERE job_id = $1 AND status = 'accepted'
	`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrNoAssignedFreelancer
		}
		return decimal.Zero, fmt.Errorf("escrow repository: finalize read assignment %w", err)
	}
	if assigned != freelancerID {
		return decimal.Zero, ErrNotAssignedFreelancer
	}

	// Работа под FOR UPDATE, поэтому подсчёт видит согласованный срез
	// и не гоняется с одновременным одобрением вех.
	var counts struct {
		Total      int `db:"total"`
		Unapproved int `db:"unapproved"`
	}
	err = tx.GetContext(ctx, &counts, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status <> 'approved') AS unapproved
		FROM milestones WHERE job_id = $1
	`, jobID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("escrow repository: finalize count milestones %w", err)
	}
	if counts.Total == 0 || counts.Unapproved > 0 {
		return decimal.Zero, ErrUnapprovedMilestones
	}

	released, _, err := finalizeLocked(ctx, tx, freelancerID, employerID, jobID)
	if err != nil {
		return decimal.Zero, err
	}

	return released, tx.Commit()
}

// GetEscrowBalance возвращает текущий временный баланс пары.
// Отсутствие строки означает нулевой баланс.
func (r *EscrowRepository) GetEscrowBalance(ctx context.Context, freelancerID, employerID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `
		SELECT balance FROM escrow_balances WHERE freelancer_id = $1 AND employer_id = $2
	`, freelancerID, employerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("escrow repository: get escrow balance %w", err)
	}
	return balance, nil
}

// ListEscrowBalances возвращает все временные балансы фрилансера.
func (r *EscrowRepository) ListEscrowBalances(ctx context.Context, freelancerID uuid.UUID) ([]models.EscrowBalance, error) {
	var balances []models.EscrowBalance
	err := r.db.SelectContext(ctx, &balances, `
		SELECT * FROM escrow_balances WHERE freelancer_id = $1 ORDER BY updated_at DESC
	`, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: list escrow balances %w", err)
	}
	return balances, nil
}

// finalizeLocked выполняет финальный расчёт внутри открытой транзакции:
// зачисляет временный баланс пары фрилансеру, удаляет строку временного
// кошелька и помечает работу завершённой. Средства не теряются и не
// задваиваются: все три шага коммитятся вместе.
func finalizeLocked(ctx context.Context, tx *sqlx.Tx, freelancerID, employerID, jobID uuid.UUID) (decimal.Decimal, bool, error) {
	var escrowBalance decimal.Decimal
	err := tx.GetContext(ctx, &escrowBalance, `
		SELECT balance FROM escrow_balances
		WHERE freelancer_id = $1 AND employer_id = $2
		FOR UPDATE
	`, freelancerID, employerID)
	if err != nil {
		// Нет строки — нечего переводить.
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("escrow repository: finalize read escrow %w", err)
	}
	if escrowBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2, updated_at = NOW()
	`, freelancerID, escrowBalance); err != nil {
		return decimal.Zero, false, fmt.Errorf("escrow repository: finalize credit freelancer %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM escrow_balances WHERE freelancer_id = $1 AND employer_id = $2
	`, freelancerID, employerID); err != nil {
		return decimal.Zero, false, fmt.Errorf("escrow repository: finalize clear escrow %w", err)
	}

	releaseDescription := "Все вехи одобрены, оплата переведена на основной кошелёк"
	if _, err := insertTransaction(ctx, tx, &models.Transaction{
		UserID:      freelancerID,
		JobID:       &jobID,
		Type:        models.TransactionTypeEscrowRelease,
		Amount:      escrowBalance,
		Description: &releaseDescription,
	}); err != nil {
		return decimal.Zero, false, fmt.Errorf("escrow repository: finalize journal %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE jobs SET status = 'completed', updated_at = NOW() WHERE id = $1
	`, jobID); err != nil {
		return decimal.Zero, false, fmt.Errorf("escrow repository: finalize mark job completed %w", err)
	}

	return escrowBalance, true, nil
}
