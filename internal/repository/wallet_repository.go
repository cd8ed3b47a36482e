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
	// ErrInsufficientFunds возвращается при попытке списать больше, чем есть на балансе.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWalletNotFound возвращается, когда кошелёк пользователя не найден.
	ErrWalletNotFound = errors.New("wallet not found")
)

// WalletRepository отвечает за таблицы wallets и transactions.
// Любая мутация баланса проходит через транзакцию и пишет строку журнала.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository создаёт экземпляр репозитория.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetWallet возвращает кошелёк пользователя, создаёт если не существует.
// Баланс всегда перечитывается из базы, кэширования нет.
func (r *WalletRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = wallets.updated_at
		RETURNING user_id, balance, updated_at
	`
	if err := r.db.GetContext(ctx, &wallet, query, userID); err != nil {
		return nil, fmt.Errorf("wallet repository: get wallet %w", err)
	}
	return &wallet, nil
}

// Deposit пополняет кошелёк пользователя.
func (r *WalletRepository) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2, updated_at = NOW()
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: deposit update balance %w", err)
	}

	transaction, err := insertTransaction(ctx, tx, &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeDeposit,
		Amount:      amount,
		Description: &description,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet repository: deposit journal %w", err)
	}

	return transaction, tx.Commit()
}

// Withdraw списывает средства с кошелька.
// Проверка баланса и списание выполняются под FOR UPDATE в одной транзакции,
// поэтому баланс не может уйти в минус.
func (r *WalletRepository) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var balance decimal.Decimal
	err = tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("wallet repository: withdraw read balance %w", err)
	}
	if balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw update balance %w", err)
	}

	transaction, err := insertTransaction(ctx, tx, &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeWithdrawal,
		Amount:      amount,
		Description: &description,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw journal %w", err)
	}

	return transaction, tx.Commit()
}

// ListTransactions возвращает историю транзакций пользователя.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list transactions %w", err)
	}
	return transactions, nil
}

// insertTransaction пишет строку журнала внутри открытой транзакции.
func insertTransaction(ctx context.Context, tx *sqlx.Tx, t *models.Transaction) (*models.Transaction, error) {
	err := tx.GetContext(ctx, t, `
		INSERT INTO transactions (user_id, job_id, milestone_id, type, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, job_id, milestone_id, type, amount, description, created_at
	`, t.UserID, t.JobID, t.MilestoneID, t.Type, t.Amount, t.Description)
	if err != nil {
		return nil, err
	}
	return t, nil
}
