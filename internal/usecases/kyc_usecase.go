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

// KYCNotifier is told about review decisions.
type KYCNotifier interface {
	KYCStatusChanged(ctx context.Context, user *entities.User, sub *entities.KYCSubmission)
}

// KYCUsecase handles identity verification submissions and reviews.
type KYCUsecase struct {
	kyc      repositories.KYCRepository
	users    repositories.UserRepository
	uow      repositories.UnitOfWork
	notifier KYCNotifier

	now func() time.Time
}

// NewKYCUsecase creates a new KYC usecase
func NewKYCUsecase(kyc repositories.KYCRepository, users repositories.UserRepository, uow repositories.UnitOfWork, notifier KYCNotifier) *KYCUsecase {
	return &KYCUsecase{kyc: kyc, users: users, uow: uow, notifier: notifier, now: time.Now}
}

// Submit creates or replaces the caller's submission and puts it back in review.
func (u *KYCUsecase) Submit(ctx context.Context, userID uuid.UUID, input *entities.SubmitKYCInput) (*entities.KYCSubmission, error) {
	existing, err := u.kyc.GetByUserID(ctx, userID)
	switch {
	case err == nil && existing.Status == entities.KYCStatusApproved:
		return nil, domainerrors.Conflict("KYC is already approved")
	case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}

	refs := make([]string, 0, len(input.DocumentRefs))
	for _, r := range input.DocumentRefs {
		if r = strings.TrimSpace(r); r != "" {
			refs = append(refs, r)
		}
	}
	if len(refs) == 0 {
		return nil, domainerrors.BadRequest("at least one document reference is required")
	}

	sub := &entities.KYCSubmission{
		ID:           utils.GenerateUUIDv7(),
		UserID:       userID,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		DateOfBirth:  input.DateOfBirth,
		Nationality:  input.Nationality,
		Address:      input.Address,
		City:         input.City,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		Phone:        input.Phone,
		DocumentType: input.DocumentType,
		DocumentRefs: refs,
		Status:       entities.KYCStatusPending,
		SubmittedAt:  u.now(),
	}
	if existing != nil {
		sub.ID = existing.ID
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.kyc.Upsert(txCtx, sub); err != nil {
			return fmt.Errorf("failed to save KYC submission: %w", err)
		}
		return u.users.SetKYCStatus(txCtx, userID, entities.KYCStatusPending)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "KYC submitted", zap.String("userId", userID.String()))
	return sub, nil
}

// GetMine returns the caller's submission.
func (u *KYCUsecase) GetMine(ctx context.Context, userID uuid.UUID) (*entities.KYCSubmission, error) {
	return u.kyc.GetByUserID(ctx, userID)
}

// List returns a page of submissions, optionally filtered by status.
func (u *KYCUsecase) List(ctx context.Context, status entities.KYCStatus, p utils.PaginationParams) ([]*entities.KYCSubmission, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domainerrors.BadRequest("invalid KYC status")
	}
	return u.kyc.List(ctx, status, p)
}

// Review approves or rejects a submission and mirrors the decision onto the user.
func (u *KYCUsecase) Review(ctx context.Context, userID uuid.UUID, input *entities.ReviewKYCInput) (*entities.KYCSubmission, error) {
	if input.Status != entities.KYCStatusApproved && input.Status != entities.KYCStatusRejected {
		return nil, domainerrors.BadRequest("status must be approved or rejected")
	}

	var sub *entities.KYCSubmission
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		if sub, err = u.kyc.GetByUserID(txCtx, userID); err != nil {
			return err
		}
		now := u.now()
		sub.Status = input.Status
		sub.ReviewerNotes = strings.TrimSpace(input.Notes)
		sub.ReviewedAt = &now
		if err := u.kyc.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to update KYC submission: %w", err)
		}
		return u.users.SetKYCStatus(txCtx, userID, input.Status)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "KYC reviewed", zap.String("userId", userID.String()), zap.String("status", string(input.Status)))

	if u.notifier != nil {
		if user, err := u.users.GetByID(ctx, userID); err == nil {
			u.notifier.KYCStatusChanged(ctx, user, sub)
		} else {
			logger.Warn(ctx, "KYC email skipped", zap.String("userId", userID.String()), zap.Error(err))
		}
	}
	return sub, nil
}
