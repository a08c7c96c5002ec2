package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"propdesk.backend/internal/config"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/infrastructure/datasources/postgres"
	"propdesk.backend/internal/infrastructure/repositories"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/crypto"
)

var openAdminDB = postgres.NewConnection

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type adminRuntime interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*entities.User, error)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func prepareAdminRuntime(cfg *config.Config) (adminRuntime, io.Closer, error) {
	db, err := openAdminDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}
	sqlDB, err := openAdminSQLDB(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}
	sealer, err := crypto.NewSealer(cfg.Security.CredentialsEncryptionKey)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("invalid credentials encryption key: %w", err)
	}

	users := usecases.NewUserUsecase(
		repositories.NewUserRepository(db),
		repositories.NewTradingAccountRepository(db, sealer),
	)
	return users, sqlDB, nil
}

func grantAdminCmd(deps cliDeps) *cobra.Command {
	var (
		email  string
		revoke bool
	)

	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Grant or revoke the admin flag on an existing profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			runtime, closer, err := deps.prepare(deps.loadConfig())
			if err != nil {
				return err
			}
			if closer == nil {
				closer = nopCloser{}
			}
			defer closer.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			user, err := runtime.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("failed to load profile %s: %w", email, err)
			}
			updated, err := runtime.SetAdmin(ctx, user.ID, !revoke)
			if err != nil {
				return fmt.Errorf("failed to update profile %s: %w", email, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user_id=%s\n", updated.ID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "email=%s\n", updated.Email)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "is_admin=%t\n", updated.IsAdmin)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "profile email (required)")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "clear the admin flag instead of setting it")
	return cmd
}
