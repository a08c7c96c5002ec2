package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"propdesk.backend/pkg/crypto"
)

const credentialsKeyBytes = 32

var randomHex = crypto.GenerateRandomToken

func keygenCmd(deps cliDeps) *cobra.Command {
	var secretBytes int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a credentials encryption key and a webhook secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secretBytes < 16 {
				return fmt.Errorf("invalid secret-bytes: %d (minimum 16)", secretBytes)
			}

			key, err := randomHex(credentialsKeyBytes)
			if err != nil {
				return fmt.Errorf("failed to generate encryption key: %w", err)
			}
			if _, err := crypto.NewSealer(key); err != nil {
				return err
			}
			secret, err := randomHex(secretBytes)
			if err != nil {
				return fmt.Errorf("failed to generate webhook secret: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Generated secrets")
			_, _ = fmt.Fprintf(out, "CREDENTIALS_ENCRYPTION_KEY=%s\n", key)
			_, _ = fmt.Fprintf(out, "WHOP_WEBHOOK_SECRET=whsec_%s\n", secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&secretBytes, "secret-bytes", 24, "random bytes in the webhook secret")
	return cmd
}
