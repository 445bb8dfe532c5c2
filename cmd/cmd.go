// Package cmd defines the command-line interface for canvass.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(tabulateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(semsCmd)
	rootCmd.AddCommand(manualCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the sems subcommands to the parent sems command
	semsCmd.AddCommand(semsImportCmd)
	semsCmd.AddCommand(semsCheckCmd)

	// Add the manual subcommands to the parent manual command
	manualCmd.AddCommand(manualSetCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("election", "e", "", "Path to the election definition JSON file")
	rootCmd.PersistentFlags().Bool("include-test", false, "Include ballots flagged as test ballots")
	rootCmd.PersistentFlags().String("precinct", "", "Restrict tallies to one precinct id")
	rootCmd.PersistentFlags().String("scanner", "", "Restrict tallies to one scanner id")
	rootCmd.PersistentFlags().String("batch", "", "Restrict tallies to one batch id")
	rootCmd.PersistentFlags().String("party", "", "Restrict tallies to one party id")
	rootCmd.PersistentFlags().String("voting-method", "", "Restrict tallies to one voting method: standard or absentee or unknown")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for percentage columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Tally store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of manualSetCmd to Viper
	manualSetCmd.Flags().String("manual-voting-method", string(schema.VotingMethodPrecinct), "Voting method attributed to manually entered tallies")
	if err := viper.BindPFlags(manualSetCmd.Flags()); err != nil {
		contract.LogFatal("Error binding manual set flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
