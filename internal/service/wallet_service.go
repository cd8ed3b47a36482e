package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
	"github.com/dkondrashov/marketplace-backend/internal/validation"
)

// WalletStore описывает зависимости WalletService от слоя хранилища.
type WalletStore interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// WalletService содержит бизнес-логику основного кошелька.
type WalletService struct {
	repo WalletStore
}

// NewWalletService создаёт сервис кошелька.
func NewWalletService(repo WalletStore) *WalletService {
	return &WalletService{repo: repo}
}

// GetBalance возвращает кошелёк пользователя.
// Баланс всегда перечитывается из базы.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return s.repo.GetWallet(ctx, userID)
}

// Deposit пополняет кошелёк.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	if err := validation.ValidateAmount("сумма пополнения", amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return s.repo.Deposit(ctx, userID, amount, "Пополнение кошелька")
}

// Withdraw списывает средства с кошелька.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	if err := validation.ValidateAmount("сумма вывода", amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	transaction, err := s.repo.Withdraw(ctx, userID, amount, "Вывод средств")
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, apperror.ErrInsufficientFunds
		}
		return nil, err
	}
	return transaction, nil
}

// ListTransactions возвращает историю транзакций пользователя.
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}

// parseAmount разбирает денежную сумму из строки запроса.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.ErrInvalidAmount
	}
	return amount, nil
}
