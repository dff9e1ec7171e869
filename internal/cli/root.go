// Package cli implements the catalog command line.
package cli

import (
	"fmt"
	"os"

	"catalog/internal/config"
	"catalog/pkg/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags "-X catalog/internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	configFile string
}

// NewRootCommand builds the command tree. Running it without a subcommand serves HTTP.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Product catalog service",
		Long: `Product catalog service: create, list, update, delete and search products
over a JSON HTTP API backed by SQLite or PostgreSQL.

Configuration is read from the environment, a .env file in the working
directory and, optionally, the file given with --config.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (yaml, json, toml or .env)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration and builds the logger every command needs.
func load(opts *rootOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(viper.New(), opts.configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
