package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/domain/repositories"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/utils"
)

// Identity is the caller as asserted by a validated identity token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// UserUsecase handles profiles and the admin user directory.
type UserUsecase struct {
	users    repositories.UserRepository
	accounts repositories.TradingAccountRepository
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(users repositories.UserRepository, accounts repositories.TradingAccountRepository) *UserUsecase {
	return &UserUsecase{users: users, accounts: accounts}
}

// EnsureProfile returns the caller's user record, creating it on first sign-in.
// Users created by the reconciler keep their record and get missing fields filled in.
func (u *UserUsecase) EnsureProfile(ctx context.Context, id Identity, input *entities.EnsureProfileInput) (*entities.User, error) {
	email := normalizeEmail(id.Email)
	if email == "" {
		return nil, domainerrors.ErrMissingEmail
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(id.Name)
	}

	user, err := u.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		changed := false
		if user.Name == "" && name != "" {
			user.Name = name
			changed = true
		}
		if user.Country == "" && input.Country != "" {
			user.Country = strings.TrimSpace(input.Country)
			changed = true
		}
		if changed {
			if err := u.users.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to update profile: %w", err)
			}
		}
		return u.withAccounts(ctx, user)
	case !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}

	first, last := splitName(name, email)
	user = &entities.User{
		ID:        utils.GenerateUUIDv7(),
		Email:     email,
		Name:      name,
		FirstName: first,
		LastName:  last,
		Country:   strings.TrimSpace(input.Country),
		KYCStatus: entities.KYCStatusPending,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// Two first requests raced; the other one won.
			existing, getErr := u.users.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, getErr
			}
			return u.withAccounts(ctx, existing)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	logger.Info(ctx, "Profile created", zap.String("userId", user.ID.String()))
	user.Accounts = []uuid.UUID{}
	return user, nil
}

// GetByEmail returns the user with the given email and their account ids.
func (u *UserUsecase) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := u.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return u.withAccounts(ctx, user)
}

// List returns a page of users matching search.
func (u *UserUsecase) List(ctx context.Context, search string, p utils.PaginationParams) ([]*entities.User, int64, error) {
	return u.users.List(ctx, strings.TrimSpace(search), p)
}

// SetAdmin toggles the admin flag of a user.
func (u *UserUsecase) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*entities.User, error) {
	if err := u.users.SetAdmin(ctx, id, isAdmin); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Admin flag changed", zap.String("userId", id.String()), zap.Bool("isAdmin", isAdmin))
	return u.users.GetByID(ctx, id)
}

func (u *UserUsecase) withAccounts(ctx context.Context, user *entities.User) (*entities.User, error) {
	ids, err := u.accounts.ListIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	user.Accounts = ids
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
