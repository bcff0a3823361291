// Package cmd defines the command-line interface for prefscore.
package cmd

import (
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("catalog", "c", "", "Path to the catalog (yaml, json, toml or a directory of csv files)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Id of the user to rate for")
	rootCmd.PersistentFlags().StringP("product", "p", "", "Id of the product to rate or explain")
	rootCmd.PersistentFlags().String("algorithm", schema.DefaultAlgorithm, "Rating algorithm")
	rootCmd.PersistentFlags().Float64("mean-user-preference", schema.DefaultMeanUserPreference, "Neutral preference score; scores range from 0 to twice this value")
	rootCmd.PersistentFlags().Float64("max-allowed-association", schema.DefaultMaxAllowedAssociation, "Largest absolute association value")
	rootCmd.PersistentFlags().Float64("mean-product-rating", schema.DefaultMeanProductRating, "Rating of a product without preference")
	rootCmd.PersistentFlags().Float64("rating-scale", schema.DefaultRatingScale, "Distance between the mean rating and the best or worst rating")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display (0 = all)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Recommendation store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error or disabled")
	rootCmd.PersistentFlags().String("log-format", contract.ConsoleLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
