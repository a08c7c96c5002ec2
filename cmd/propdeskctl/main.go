package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"propdesk.backend/internal/config"
)

var Version = "dev"

// cliDeps carries everything the subcommands touch outside the process.
type cliDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (adminRuntime, io.Closer, error)
	in      io.Reader
	out     io.Writer
}

func defaultCLIDeps() cliDeps {
	return cliDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareAdminRuntime,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// loadConfig reads .env when present and returns the environment config.
func (d cliDeps) loadConfig() *config.Config {
	if err := d.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return d.loadCfg()
}

func newRootCmd(deps cliDeps) *cobra.Command {
	root := &cobra.Command{
		Use:           "propdeskctl",
		Short:         "Operator tooling for the PropDesk backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(deps.in)
	root.SetOut(deps.out)

	root.AddCommand(keygenCmd(deps))
	root.AddCommand(signWebhookCmd(deps))
	root.AddCommand(devTokenCmd(deps))
	root.AddCommand(grantAdminCmd(deps))
	return root
}

func main() {
	if err := newRootCmd(defaultCLIDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
