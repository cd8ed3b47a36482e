package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
)

type mockWalletStore struct {
	mock.Mock
}

func (m *mockWalletStore) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletStore) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWalletStore) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWalletStore) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func TestWalletService_GetBalance(t *testing.T) {
	repo := new(mockWalletStore)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.Wallet{UserID: userID, Balance: decimal.NewFromInt(1000)}
	repo.On("GetWallet", ctx, userID).Return(expected, nil)

	wallet, err := svc.GetBalance(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, expected, wallet)
	repo.AssertExpectations(t)
}

func TestWalletService_Deposit_Success(t *testing.T) {
	repo := new(mockWalletStore)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()
	amount := decimal.NewFromInt(1000)

	expected := &models.Transaction{ID: uuid.New(), Amount: amount, Type: models.TransactionTypeDeposit}
	repo.On("Deposit", ctx, userID, amount, "Пополнение кошелька").Return(expected, nil)

	tx, err := svc.Deposit(ctx, userID, amount)
	assert.NoError(t, err)
	assert.Equal(t, expected, tx)
}

func TestWalletService_Deposit_InvalidAmount(t *testing.T) {
	repo := new(mockWalletStore)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Deposit(ctx, userID, decimal.Zero)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.Code(err))

	_, err = svc.Deposit(ctx, userID, decimal.NewFromInt(-100))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Deposit")
}

func TestWalletService_Withdraw_Success(t *testing.T) {
	repo := new(mockWalletStore)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()
	amount := decimal.NewFromInt(300)

	expected := &models.Transaction{ID: uuid.New(), Amount: amount, Type: models.TransactionTypeWithdrawal}
	repo.On("Withdraw", ctx, userID, amount, "Вывод средств").Return(expected, nil)

	tx, err := svc.Withdraw(ctx, userID, amount)
	assert.NoError(t, err)
	assert.Equal(t, expected, tx)
}

func TestWalletService_Withdraw_InsufficientFunds(t *testing.T) {
	repo := new(mockWalletStore)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()
	amount := decimal.NewFromInt(5000)

	repo.On("Withdraw", ctx, userID, amount, "Вывод средств").Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.Withdraw(ctx, userID, amount)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInsufficientFunds, apperror.Code(err))
}

func TestWalletService_ListTransactions_DefaultLimit(t *testing.T) {
	repo := new(mockWalletStore)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListTransactions", ctx, userID, 20, 0).Return([]models.Transaction{}, nil)

	_, err := svc.ListTransactions(ctx, userID, 0, -5)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
