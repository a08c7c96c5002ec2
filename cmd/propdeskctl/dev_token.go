package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"propdesk.backend/pkg/jwt"
)

func devTokenCmd(deps cliDeps) *cobra.Command {
	var (
		email   string
		name    string
		subject string
	)

	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Mint an identity token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg := deps.loadConfig()
			if cfg.Server.IsProduction() {
				return fmt.Errorf("refusing to mint tokens with SERVER_ENV=production")
			}
			if subject == "" {
				subject = uuid.NewString()
			}

			svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
			token, err := svc.GenerateToken(subject, email, name)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sub=%s\n", subject)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "expires_in=%s\n", cfg.JWT.AccessExpiry)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "TOKEN=%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "identity email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	cmd.Flags().StringVar(&subject, "subject", "", "subject claim (random uuid when empty)")
	return cmd
}
