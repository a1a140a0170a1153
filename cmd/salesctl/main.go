// Command salesctl runs reports, exports and maintenance tasks against the
// configured record store without starting the web server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"salesbook/internal/backend"
	"salesbook/internal/cli"
	"salesbook/internal/config"
	applog "salesbook/internal/log"
)

var (
	backendFlag string
	dataDirFlag string
	dbPathFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Inspect and maintain the salesbook record store",
	Long: `salesctl reads the same environment as the salesbook server
(DATA_BACKEND, DATA_DIR, SQLITE_DB_PATH, ID_POLICY). Flags override it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "record store: "+fmt.Sprint(backend.GetBackendTypeStrings()))
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory of the csv tables")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "sqlite database path")

	rootCmd.AddCommand(reportCmd, exportCmd, importCmd, listCmd)
}

func main() {
	cli.LoadEnvFile()
	cli.SetupLogger(envOr("LOG_LEVEL", "warn"))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig applies the persistent flags over the environment config.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if backendFlag != "" {
		cfg.DataBackend = backendFlag
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if dbPathFlag != "" {
		cfg.SQLiteDBPath = dbPathFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured backend without an event publisher.
func openStore(ctx context.Context) (*backend.BackendResult, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.AMQPURL = ""
	return cli.OpenBackend(ctx, applog.Default(applog.ComponentCLI).Logger, cfg)
}
