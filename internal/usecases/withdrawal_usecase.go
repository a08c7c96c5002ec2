package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/domain/repositories"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/utils"
)

// WithdrawalNotifier is told about payout decisions.
type WithdrawalNotifier interface {
	WithdrawalStatusChanged(ctx context.Context, user *entities.User, w *entities.Withdrawal)
}

// WithdrawalUsecase handles payout requests.
type WithdrawalUsecase struct {
	withdrawals repositories.WithdrawalRepository
	accounts    repositories.TradingAccountRepository
	users       repositories.UserRepository
	uow         repositories.UnitOfWork
	notifier    WithdrawalNotifier

	now func() time.Time
}

// NewWithdrawalUsecase creates a new withdrawal usecase
func NewWithdrawalUsecase(
	withdrawals repositories.WithdrawalRepository,
	accounts repositories.TradingAccountRepository,
	users repositories.UserRepository,
	uow repositories.UnitOfWork,
	notifier WithdrawalNotifier,
) *WithdrawalUsecase {
	return &WithdrawalUsecase{
		withdrawals: withdrawals,
		accounts:    accounts,
		users:       users,
		uow:         uow,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Request files a payout request. A user may have one pending request at a time.
func (u *WithdrawalUsecase) Request(ctx context.Context, userID uuid.UUID, input *entities.CreateWithdrawalInput) (*entities.Withdrawal, error) {
	if !input.Amount.IsPositive() {
		return nil, domainerrors.BadRequest("amount must be positive")
	}

	w := &entities.Withdrawal{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		AccountID: input.AccountID,
		Amount:    input.Amount,
		Method:    input.Method,
		Status:    entities.WithdrawalStatusPending,
	}
	switch input.Method {
	case entities.WithdrawalMethodCrypto:
		w.WalletAddress = strings.TrimSpace(input.WalletAddress)
		if w.WalletAddress == "" {
			return nil, domainerrors.BadRequest("walletAddress is required for crypto withdrawals")
		}
		w.CryptoAsset = strings.ToUpper(strings.TrimSpace(input.CryptoAsset))
		if w.CryptoAsset != "" {
			if _, err := entities.ParseAsset(w.CryptoAsset); err != nil {
				return nil, err
			}
		}
	case entities.WithdrawalMethodBank:
		w.Bank = input.Bank
		if strings.TrimSpace(w.Bank.AccountName) == "" ||
			(strings.TrimSpace(w.Bank.IBAN) == "" && strings.TrimSpace(w.Bank.AccountNumber) == "") {
			return nil, domainerrors.BadRequest("bank withdrawals need an account name and an IBAN or account number")
		}
	default:
		return nil, domainerrors.BadRequest("method must be crypto or bank")
	}

	if input.AccountID != nil {
		account, err := u.accounts.GetByID(ctx, *input.AccountID)
		if err != nil {
			return nil, err
		}
		if account.UserID != userID {
			return nil, domainerrors.Forbidden("account does not belong to you")
		}
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		pending, err := u.withdrawals.GetPendingByUser(txCtx, userID)
		switch {
		case err == nil && pending != nil:
			return domainerrors.ErrPendingWithdrawal
		case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
			return err
		}
		if err := u.withdrawals.Create(txCtx, w); err != nil {
			// a concurrent request won the pending slot
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return domainerrors.ErrPendingWithdrawal
			}
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Withdrawal requested",
		zap.String("withdrawalId", w.ID.String()),
		zap.String("amount", w.Amount.String()),
		zap.String("method", string(w.Method)),
	)
	return w, nil
}

// ListMine returns the caller's payout requests.
func (u *WithdrawalUsecase) ListMine(ctx context.Context, userID uuid.UUID) ([]*entities.Withdrawal, error) {
	return u.withdrawals.ListByUser(ctx, userID)
}

// List returns a page of payout requests, optionally filtered by status.
func (u *WithdrawalUsecase) List(ctx context.Context, status entities.WithdrawalStatus, p utils.PaginationParams) ([]*entities.Withdrawal, int64, error) {
	return u.withdrawals.List(ctx, status, p)
}

// Update records an admin decision on a payout request and tells the user.
func (u *WithdrawalUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdateWithdrawalInput) (*entities.Withdrawal, error) {
	w, err := u.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := w.Status != input.Status
	if changed && input.Status == entities.WithdrawalStatusPending {
		if other, err := u.withdrawals.GetPendingByUser(ctx, w.UserID); err == nil && other.ID != w.ID {
			return nil, domainerrors.ErrPendingWithdrawal
		}
	}
	w.Status = input.Status
	w.AdminNotes = strings.TrimSpace(input.AdminNotes)
	if input.Status == entities.WithdrawalStatusPending {
		w.ProcessedAt = nil
	} else if changed || w.ProcessedAt == nil {
		now := u.now()
		w.ProcessedAt = &now
	}

	if err := u.withdrawals.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	logger.Info(ctx, "Withdrawal updated", zap.String("withdrawalId", id.String()), zap.String("status", string(w.Status)))

	if changed && u.notifier != nil {
		if user, err := u.users.GetByID(ctx, w.UserID); err == nil {
			u.notifier.WithdrawalStatusChanged(ctx, user, w)
		} else {
			logger.Warn(ctx, "Withdrawal email skipped", zap.String("withdrawalId", id.String()), zap.Error(err))
		}
	}
	return w, nil
}
