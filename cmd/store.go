package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/internal/iocache"
	"github.com/huangsam/prefscore/internal/outwriter"
	"github.com/huangsam/prefscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadStoreConfig reads the store and output settings without the full shared setup,
// so store commands work without a catalog.
func loadStoreConfig() error {
	if err := readConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("output")))
	contract.InitLogger(contract.LogConfig{Level: viper.GetString("log-level"), Format: viper.GetString("log-format")})
	return nil
}

// storeSetup loads the store settings and opens the recommendation store.
func storeSetup() error {
	if err := loadStoreConfig(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	storeManager = iocache.Manager
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetupWrapper only loads settings. It does NOT open the store or create
// tables, so migrations can run on a fresh database.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return loadStoreConfig()
}

// storeCmd focused on recommendation store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of the full
// sharedSetup used by rating commands. This avoids catalog and rating config validation.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage recorded rating runs and exports",
	Long: `Manage the recommendation store that records every rating run.

When enabled, prefscore stores:
- Run metadata (timestamp, user, algorithm, configuration, duration)
- Every rating produced, including undefined and vetoed ones
- The contribution of every product tag, in total and per preference

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded data
  migrate - Run database schema migrations

Examples:
  # Check store status
  prefscore store status

  # Export for analysis in pandas/DuckDB
  prefscore store export --output-file prefscore-data`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, connection state, number of recorded runs, the last and oldest
run, and the number of rows in each store table.

Examples:
  prefscore store status
  prefscore store status --output json`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status := schema.StoreStatus{Backend: string(schema.NoneBackend)}
		if store := storeManager.GetRecommendationStore(); store != nil {
			var err error
			if status, err = store.GetStatus(); err != nil {
				contract.LogFatal("Failed to get store status", err)
			}
		}
		if err := outwriter.WriteStoreStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded rating runs",
	Long: `Delete all recorded runs, ratings and contributions.

For SQLite the database file is removed. For MySQL and PostgreSQL the store tables are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  prefscore store export --output-file backup
  prefscore store clear`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.StoreDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetStoreDBFilePath()
		}
		if err := iocache.ClearStore(cfg.StoreBackend, dbFilePath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeExportCmd exports store data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded data to Parquet files named after --output-file:

- <prefix>.runs.parquet            - metadata about each rating run
- <prefix>.recommendations.parquet - every rating with its flags
- <prefix>.contributions.parquet   - product tag contributions per preference

Requires: --output-file parameter

Examples:
  prefscore store export --output-file prefscore-data
  duckdb -c "SELECT * FROM read_parquet('prefscore-data.recommendations.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportStore(os.Stdout, storeManager.GetRecommendationStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the recommendation store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the recommendation store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  prefscore store migrate

  # Migrate to specific version
  prefscore store migrate --target-version 1

  # Rollback everything
  prefscore store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateStore(os.Stdout, cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
