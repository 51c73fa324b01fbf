package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgconfig "labboard/pkg/config"
)

var version = "dev"

type rootOptions struct {
	env       string
	configDir string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "labboard",
		Short: "Lab research dashboard: API server, event worker and maintenance tools",
		Long: `labboard tracks research projects through their milestone stages.

Commands:
  serve   - HTTP API plus the outbox dispatcher
  worker  - consumes project.created and checklist.toggled events
  recalc  - recomputes a project's stored overall progress
`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", pkgconfig.GetConfigEnv(), "Config environment (base.yaml overlaid with <env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", pkgconfig.GetEnv("CONFIG_DIR", "config"), "Directory holding the YAML config files")

	cmd.AddCommand(serveCmd(opts), workerCmd(opts), recalcCmd(opts))
	return cmd
}
