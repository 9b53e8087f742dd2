package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"addictiontube/internal/config"
	"addictiontube/internal/search"
)

var (
	gatewayURL string
	timeout    time.Duration
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "addictiontube",
		Short:         "Query the AddictionTube search gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&gatewayURL, "gateway", cfg.CLI.GatewayURL, "Gateway base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", cfg.CLI.Timeout, "Request timeout")

	root.AddCommand(
		newSearchCmd(),
		newRagCmd(),
		newShellCmd(cfg.CLI.HistoryFile),
		newProbeCmd(cfg.CLI.ProbeRate),
	)
	return root
}

func service() *search.Service {
	return search.New(gatewayURL, timeout)
}

func main() {
	if err := newRootCmd(config.Get()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
