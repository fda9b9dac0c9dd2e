// Package cmd implements mcportalctl, the operator CLI. It talks to the
// store and the game server directly and needs no running portal.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.pilab.hu/mcportal/config"
	"go.pilab.hu/mcportal/internal/app"
	"go.pilab.hu/mcportal/log"
	"go.pilab.hu/mcportal/services"
)

// AppName is the binary name.
const AppName = "mcportalctl"

// Env carries the process dependencies of the commands.
type Env struct {
	Out         io.Writer
	LoadConfig  func() (*config.ServerConfig, error)
	OpenStorage func(ctx context.Context, cfg *config.ServerConfig) (*app.Storage, error)
	Pinger      services.StatusPinger // nil means a pinger built from config

	logger log.Logger
	cfg    *config.ServerConfig
}

// DefaultEnv returns the Env used by the real binary.
func DefaultEnv() *Env {
	return &Env{
		Out:         os.Stdout,
		LoadConfig:  config.LoadConfig,
		OpenStorage: app.OpenStorage,
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(env *Env) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           AppName,
		Short:         AppName + " manages a mcportal installation",
		Long:          `A command-line interface for checking the game server and managing portal users and admins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			env.logger = log.Setup(level, true)

			cfg, err := env.LoadConfig()
			if err != nil {
				env.logger.Error(cmd.Context(), "Failed to load configuration", err)
				return err
			}
			env.cfg = cfg
			return nil
		},
	}
	rootCmd.SetOut(env.Out)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newStatusCmd(env), newUsersCmd(env))
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	env := DefaultEnv()
	if err := NewRootCmd(env).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
