package cmd

import (
	"github.com/huangsam/prefscore/core"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/spf13/cobra"
)

// rankCmd rates every product for one user.
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank every product of the catalog for a user.",
	Long: `Rate every product of the catalog for one user and rank them.

Products whose tags tell nothing about the user's preferences come first, since
they are the ones worth a closer look. The rest follow from best to worst rating.
Products that contradict a strongly held preference are vetoed and rated 0.

Examples:
  # Rank products for Thomas
  prefscore rank --catalog catalog.yaml --user Thomas

  # Show the ten best candidates with the tags behind each rating
  prefscore rank --catalog catalog.yaml --user Thomas --limit 10

  # Export the ranking for further analysis
  prefscore rank --catalog catalog.yaml --user Thomas --output parquet --output-file ranking.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRank(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot rank products", err)
		}
	},
}

// rateCmd rates one product.
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate one product for a user, or for every user.",
	Long: `Rate a single product.

With --user the product is rated for that user. Without it the product is rated
for every user of the catalog and the users are ranked by how much they would like it.

Examples:
  # Rate product 2 for Thomas
  prefscore rate --catalog catalog.yaml --user Thomas --product 2

  # Find the users most likely to enjoy product 2
  prefscore rate --catalog catalog.yaml --product 2`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot rate product", err)
		}
	},
}

// explainCmd breaks a rating into its contributions.
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain where a rating comes from.",
	Long: `Break the rating of one product for one user down into contributions.

Shows:
- How much each preference moved the rating, and its share of the total
- How much each product tag moved the rating, and its share of the total
- Which product tags contributed through each preference
- Which associations vetoed the product, if any

Examples:
  prefscore explain --catalog catalog.yaml --user Thomas --product 3`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExplain(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot explain rating", err)
		}
	},
}

// usersCmd lists the users of the catalog.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users with the stance behind each preference.",
	Long: `List every user of the catalog together with how many preferences they are for,
against or neutral about, the total distance of their scores from neutral, and the
size of their purchase history.

Examples:
  prefscore users --catalog catalog.yaml
  prefscore users --catalog catalog.yaml --output csv --output-file users.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteUsers(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list users", err)
		}
	},
}
