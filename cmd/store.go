package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/outwriter"
	"github.com/votary/canvass/internal/parquet"
	"github.com/votary/canvass/internal/tallystore"
	"github.com/votary/canvass/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup,
// which would require an election definition.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	backend := schema.DatabaseBackend(backendStr)
	if backendStr == "" {
		backend = schema.SQLiteBackend
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by status and export)
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = viper.GetString("output-file")
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	// Initialize the store with the loaded config
	if err := tallystore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	backend := schema.DatabaseBackend(backendStr)
	if backendStr == "" {
		backend = schema.SQLiteBackend
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for migrate.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on tally store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by tabulation commands. This avoids requiring an
// election definition for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the tally store",
	Long: `Manage the persistence layer that holds external tallies and
tabulation-run history.

The store tracks:
- External tallies (SEMS imports and manually entered results)
- Every tabulation run (timestamp, election hash, ballots counted)

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  clear   - Remove all stored tally data
  migrate - Run database schema migrations
  export  - Export tabulation runs to Parquet for analytics

Examples:
  # Check store status
  canvass store status

  # Export run history for analysis in pandas/DuckDB
  canvass store export --output-file runs.parquet`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display tally store statistics and connection details",
	Long: `Show detailed information about the tally store.

Displays:
- Backend type and connection status
- Total number of recorded tabulation runs
- Last tabulation timestamp
- Whether external tallies are stored

Examples:
  # Check store status
  canvass store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := tallystore.Store().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.WriteStoreStatusResults(status, cfg); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored tally data",
	Long: `Delete all stored external tallies and tabulation-run history.

WARNING: This action cannot be undone. Consider exporting run history first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tally tables

Examples:
  # Export before clearing
  canvass store export --output-file backup.parquet
  canvass store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := tallystore.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Tally store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the tally store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the tally store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  canvass store migrate

  # Migrate to specific version
  canvass store migrate --target-version 1

  # Rollback to initial state
  canvass store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := tallystore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// storeExportCmd exports tabulation runs to a Parquet file.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tabulation run history to Parquet for analytics",
	Long: `Export all recorded tabulation runs to Parquet format for use with
analytics tools (DuckDB, Apache Spark, pandas, BI dashboards).

Requires: --output-file parameter

Examples:
  # Export run history
  canvass store export --output-file runs.parquet

  # Use with DuckDB for analysis
  canvass store export --output-file runs.parquet
  duckdb -c "SELECT * FROM read_parquet('runs.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := executeStoreExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export tabulation runs", err)
		}
	},
}

// executeStoreExport performs the actual export of run history to Parquet.
func executeStoreExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := tallystore.Store()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TabulationRuns == 0 {
		return errors.New("no tabulation runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total tabulation runs: %d\n", status.TabulationRuns)

	runs, err := store.ListTabulationRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve tabulation runs: %w", err)
	}

	rows := parquet.ConvertTabulationRunRecords(runs)
	if err := parquet.WriteTabulationRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write tabulation runs: %w", err)
	}
	fmt.Printf("Exported %d tabulation runs to: %s\n", len(rows), outputFile)

	return nil
}
