package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/internal/infrastructure/repositories/repotest"
)

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := repotest.NewDB(t)
	u := &UnitOfWorkImpl{db: db}
	users := NewUserRepository(db)

	err := u.Do(context.Background(), func(ctx context.Context) error {
		return users.Create(ctx, &entities.User{Email: "one@example.com"})
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	err = u.Do(context.Background(), func(ctx context.Context) error {
		if err := users.Create(ctx, &entities.User{Email: "two@example.com"}); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoJoinsOuter(t *testing.T) {
	db := repotest.NewDB(t)
	u := &UnitOfWorkImpl{db: db}
	users := NewUserRepository(db)

	err := u.Do(context.Background(), func(ctx context.Context) error {
		outer := GetDB(ctx, db)
		return u.Do(ctx, func(inner context.Context) error {
			require.Same(t, outer, GetDB(inner, db))
			return users.Create(inner, &entities.User{Email: "nested@example.com"})
		})
	})
	require.NoError(t, err)

	_, err = users.GetByEmail(context.Background(), "nested@example.com")
	require.NoError(t, err)
}

func TestUnitOfWork_GetDB(t *testing.T) {
	db := repotest.NewDB(t)
	u := &UnitOfWorkImpl{db: db}

	require.NotNil(t, u.GetDB(context.Background()))

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx, u.GetDB(txCtx))
	tx.Rollback()
}

func TestUnitOfWork_DoBeginFailure(t *testing.T) {
	db := repotest.NewDB(t)
	u := &UnitOfWorkImpl{db: db}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = u.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to begin transaction")
}

func TestUnitOfWork_DoCommitFailure_WithHook(t *testing.T) {
	db := repotest.NewDB(t)
	u := &UnitOfWorkImpl{db: db}

	origCommit := commitTx
	t.Cleanup(func() { commitTx = origCommit })
	commitTx = func(tx *gorm.DB) error {
		return errors.New("forced commit fail")
	}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		return NewUserRepository(db).Create(ctx, &entities.User{Email: "c@example.com"})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to commit transaction")
}

func TestTranslateError(t *testing.T) {
	require.NoError(t, translateError(nil))
	require.ErrorIs(t, translateError(gorm.ErrRecordNotFound), domainerrors.ErrNotFound)
	require.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), domainerrors.ErrAlreadyExists)
	require.ErrorIs(t, translateError(errors.New(`pq: duplicate key value violates unique constraint "idx"`)), domainerrors.ErrAlreadyExists)
	other := errors.New("boom")
	require.Equal(t, other, translateError(other))
}
