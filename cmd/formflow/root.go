package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/internal/config"
	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/spf13/cobra"
)

// Exit codes beyond the generic failure.
const (
	exitNotFound         = 2
	exitStoreUnavailable = 3
)

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "formflow interprets form graphs for remote participants",
	Long: `formflow serves forms drawn in a visual graph editor as a sequence of actions.
It tracks each participant's position, validates answers and renders the next step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The command context is cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrFormNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return exitNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return exitStoreUnavailable
	default:
		return 1
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "SQLite form database (selects the sqlite schema backend)")
}

// loadConfig reads the config file, then the environment, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Schema.Backend = config.BackendSQLite
		cfg.Schema.SQLitePath = db
	}
	return cfg, nil
}

// openApp builds the engine for a command. Callers must Close the App.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	return cli.NewApp(cmd.Context(), cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
