package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"propdesk.backend/internal/interfaces/http/handlers"
	"propdesk.backend/internal/usecases"
)

func signWebhookCmd(deps cliDeps) *cobra.Command {
	var (
		secret     string
		withHeader bool
	)

	cmd := &cobra.Command{
		Use:   "sign-webhook [payload-file]",
		Short: "Sign a webhook payload the way the payment processor does",
		Long:  "Reads the payload from the given file, or stdin when no file is given, and prints its HMAC-SHA256 signature.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = deps.loadConfig().Webhook.Secret
			}
			if secret == "" {
				return fmt.Errorf("--secret or WHOP_WEBHOOK_SECRET is required")
			}

			var (
				payload []byte
				err     error
			)
			if len(args) == 1 {
				payload, err = os.ReadFile(args[0])
			} else {
				payload, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
			if len(payload) == 0 {
				return fmt.Errorf("payload is empty")
			}

			sig := usecases.SignPayload(secret, payload)
			if withHeader {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", handlers.SignatureHeader, sig)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "webhook secret (defaults to WHOP_WEBHOOK_SECRET)")
	cmd.Flags().BoolVar(&withHeader, "header", false, "print as an HTTP header line")
	return cmd
}
