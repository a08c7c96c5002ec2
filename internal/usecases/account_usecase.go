package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/domain/repositories"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/utils"
)

// AccountNotifier is told when an account receives its credentials.
type AccountNotifier interface {
	CredentialsIssued(ctx context.Context, user *entities.User, account *entities.TradingAccount)
}

// AccountUsecase handles trading accounts and purchase history.
type AccountUsecase struct {
	accounts  repositories.TradingAccountRepository
	purchases repositories.PurchaseRepository
	users     repositories.UserRepository
	notifier  AccountNotifier

	now func() time.Time
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(
	accounts repositories.TradingAccountRepository,
	purchases repositories.PurchaseRepository,
	users repositories.UserRepository,
	notifier AccountNotifier,
) *AccountUsecase {
	return &AccountUsecase{
		accounts:  accounts,
		purchases: purchases,
		users:     users,
		notifier:  notifier,
		now:       time.Now,
	}
}

// ListMine returns the caller's trading accounts.
func (u *AccountUsecase) ListMine(ctx context.Context, userID uuid.UUID) ([]*entities.TradingAccount, error) {
	return u.accounts.ListByUser(ctx, userID)
}

// List returns a page of accounts for the back-office.
func (u *AccountUsecase) List(ctx context.Context, filter entities.AccountFilter, p utils.PaginationParams) ([]*entities.TradingAccount, int64, error) {
	return u.accounts.List(ctx, filter, p)
}

// ListMyPurchases returns the caller's purchases, newest first.
func (u *AccountUsecase) ListMyPurchases(ctx context.Context, userID uuid.UUID, p utils.PaginationParams) ([]*entities.Purchase, int64, error) {
	return u.purchases.List(ctx, entities.PurchaseFilter{UserID: &userID}, p)
}

// ListPurchases returns a page of purchases for the back-office.
func (u *AccountUsecase) ListPurchases(ctx context.Context, filter entities.PurchaseFilter, p utils.PaginationParams) ([]*entities.Purchase, int64, error) {
	return u.purchases.List(ctx, filter, p)
}

// AttachCredentials activates an account and emails the login bundle to its owner.
// Attaching to an active account rotates the credentials.
func (u *AccountUsecase) AttachCredentials(ctx context.Context, id uuid.UUID, creds entities.Credentials) (*entities.TradingAccount, error) {
	account, err := u.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.AttachCredentials(creds, u.now()); err != nil {
		return nil, err
	}
	if err := u.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	logger.Info(ctx, "Credentials attached", zap.String("accountId", id.String()))

	if u.notifier != nil {
		user, err := u.users.GetByID(ctx, account.UserID)
		if err != nil {
			logger.Warn(ctx, "Credentials email skipped, owner not found",
				zap.String("accountId", id.String()), zap.Error(err))
		} else {
			u.notifier.CredentialsIssued(ctx, user, account)
		}
	}
	return account, nil
}

// UpdateStatus moves an account to status, keeping the credentials invariant.
func (u *AccountUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus) (*entities.TradingAccount, error) {
	account, err := u.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.SetStatus(status); err != nil {
		return nil, err
	}
	if err := u.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	logger.Info(ctx, "Account status changed", zap.String("accountId", id.String()), zap.String("status", string(status)))
	return account, nil
}
