// Package cli implements the taxbox command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/evanesaias-afk/taxbox/internal/config"
	"github.com/evanesaias-afk/taxbox/internal/domain"
	"github.com/evanesaias-afk/taxbox/internal/infra/jsonstore"
	"github.com/evanesaias-afk/taxbox/internal/infra/pgstore"
	"github.com/evanesaias-afk/taxbox/internal/infra/sqlitestore"
	"github.com/evanesaias-afk/taxbox/internal/ledger"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "taxbox.toml", "Path to the taxbox config file")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "taxbox",
	Short: "Guild shop ledger, seller tax, and tier role accounting",
	Long: `taxbox tracks customer spend and seller earnings for a guild shop,
accrues a configurable tax on every sale, grants spend-tier roles, and runs
a weekly reminder sweep that suspends sellers with unpaid tax.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ─── taxbox init ────────────────────────────────────────────────────────────

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Write a default taxbox.toml to the --config path. Refuses to overwrite.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", configPath)
	}
	if err := config.Save(configPath, config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✅ Wrote %s\n", configPath)
	fmt.Fprintln(os.Stdout, "   Fill in [discord] and export DISCORD_TOKEN, then run: taxbox serve")
	return nil
}

// ─── taxbox version ─────────────────────────────────────────────────────────

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the taxbox version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "taxbox %s\n", Version)
	},
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// openStore opens the ledger backend named in the config. The returned
// closer is a no-op for the JSON backend.
func openStore(cfg config.Config) (domain.LedgerStore, func() error, error) {
	switch cfg.Store.Backend {
	case "json", "":
		store, err := jsonstore.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	case "sqlite":
		store, err := sqlitestore.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "postgres":
		store, err := pgstore.Open(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// serviceConfig derives the engine policy from the loaded config.
func serviceConfig(cfg config.Config) (ledger.Config, error) {
	rate, err := cfg.TaxRate()
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		TaxRate:      rate,
		Tiers:        cfg.TierRules(),
		SellerRoleID: cfg.Discord.SellerRoleID,
	}, nil
}

// newService loads the config, opens the store, and builds a headless
// service. Used by the one-shot commands; serve does its own wiring.
func newService() (*ledger.Service, func() error, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	lcfg, err := serviceConfig(cfg)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return ledger.NewService(store, nil, nil, lcfg, newLogger()), closer, nil
}
