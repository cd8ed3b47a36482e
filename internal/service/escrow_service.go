package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkondrashov/marketplace-backend/internal/logger"
	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
)

// EscrowStore описывает зависимости EscrowService от слоя хранилища.
type EscrowStore interface {
	ApproveMilestone(ctx context.Context, employerID, milestoneID uuid.UUID) (*repository.SettlementResult, error)
	FinalizePayment(ctx context.Context, freelancerID, jobID uuid.UUID) (decimal.Decimal, error)
	GetEscrowBalance(ctx context.Context, freelancerID, employerID uuid.UUID) (decimal.Decimal, error)
	ListEscrowBalances(ctx context.Context, freelancerID uuid.UUID) ([]models.EscrowBalance, error)
}

// EscrowService оборачивает расчётный механизм вех: переводит ошибки
// хранилища в ошибки API и рассылает уведомления об оплатах.
type EscrowService struct {
	repo     EscrowStore
	notifier Notifier
}

// NewEscrowService создаёт сервис расчётов.
func NewEscrowService(repo EscrowStore, notifier Notifier) *EscrowService {
	return &EscrowService{repo: repo, notifier: notifier}
}

// ApproveMilestone одобряет веху от имени работодателя.
// Списание с кошелька, зачисление во временный кошелёк и, при одобрении
// последней вехи, финальный расчёт выполняются одной транзакцией базы.
func (s *EscrowService) ApproveMilestone(ctx context.Context, employerID, milestoneID uuid.UUID) (*repository.SettlementResult, error) {
	result, err := s.repo.ApproveMilestone(ctx, employerID, milestoneID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMilestoneNotFound):
			return nil, apperror.ErrMilestoneNotFound
		case errors.Is(err, repository.ErrNotJobOwner):
			return nil, apperror.ErrForbidden
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, apperror.ErrInsufficientFunds
		}
		return nil, err
	}

	if result.AlreadyApproved {
		return result, nil
	}

	milestone := result.Milestone
	if logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"milestone_id": milestone.ID,
			"job_id":       milestone.JobID,
			"payment":      milestone.Payment,
			"finalized":    result.Finalized,
		}).Info("веха одобрена")
	}

	notify(s.notifier, milestone.FreelancerID, models.EventMilestoneApproved, map[string]any{
		"milestone_id": milestone.ID,
		"job_id":       milestone.JobID,
		"title":        milestone.Title,
		"payment":      milestone.Payment,
	})

	if result.Finalized {
		notify(s.notifier, milestone.FreelancerID, models.EventPaymentReleased, map[string]any{
			"job_id": milestone.JobID,
			"amount": result.Released,
		})
	}

	return result, nil
}

// FinalizePayment вручную переводит накопленный временный баланс фрилансеру.
// Обычно расчёт происходит автоматически при одобрении последней вехи,
// ручной вызов покрывает восстановление после сбоев. Доступен только
// принятому на работу фрилансеру и только когда все вехи одобрены;
// нулевой или отсутствующий баланс — безобидный no-op.
func (s *EscrowService) FinalizePayment(ctx context.Context, freelancerID, jobID uuid.UUID) (decimal.Decimal, error) {
	released, err := s.repo.FinalizePayment(ctx, freelancerID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrJobNotFound):
			return decimal.Zero, apperror.ErrJobNotFound
		case errors.Is(err, repository.ErrNoAssignedFreelancer):
			return decimal.Zero, apperror.ErrNoAssignedFreelancer
		case errors.Is(err, repository.ErrNotAssignedFreelancer):
			return decimal.Zero, apperror.ErrForbidden
		case errors.Is(err, repository.ErrUnapprovedMilestones):
			return decimal.Zero, apperror.New(apperror.ErrCodeConflict, "не все вехи работы одобрены")
		}
		return decimal.Zero, err
	}

	if released.GreaterThan(decimal.Zero) {
		notify(s.notifier, freelancerID, models.EventPaymentReleased, map[string]any{
			"job_id": jobID,
			"amount": released,
		})
	}

	return released, nil
}

// GetEscrowBalance возвращает временный баланс пары (фрилансер, работодатель).
func (s *EscrowService) GetEscrowBalance(ctx context.Context, freelancerID, employerID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.GetEscrowBalance(ctx, freelancerID, employerID)
}

// ListEscrowBalances возвращает все временные балансы фрилансера.
func (s *EscrowService) ListEscrowBalances(ctx context.Context, freelancerID uuid.UUID) ([]models.EscrowBalance, error) {
	return s.repo.ListEscrowBalances(ctx, freelancerID)
}
