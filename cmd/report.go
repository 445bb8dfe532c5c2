package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/votary/canvass/core/run"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/outwriter"
	"github.com/votary/canvass/internal/tallystore"
)

// reportCmd produces a combined report of tabulated and external results.
var reportCmd = &cobra.Command{
	Use:   "report <cvr-file>...",
	Short: "Report combined scanner and external results for a ballot partition.",
	Long: `Tabulate cast-vote-record files and merge in the external tallies held
in the tally store (SEMS imports and manually entered results), resolved
against the same filter.

External sources carry only per-precinct breakdowns. A scanner or batch
filter therefore excludes external results entirely, and a voting-method
filter includes an external source only when its declared method matches.

Examples:
  # Countywide report including imported SEMS results
  canvass report --election election.json cvrs.jsonl

  # One precinct, scanner results plus external results for that precinct
  canvass report --election election.json --precinct precinct-5 cvrs.jsonl`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		store := tallystore.Store()

		full, _, err := run.GetTabulationResults(cfg, store)
		if err != nil {
			contract.LogFatal("Cannot tabulate CVR files", err)
		}

		externals, err := run.LoadExternalTallies(store)
		if err != nil {
			contract.LogFatal("Cannot load external tallies", err)
		}

		tally := run.GetFilteredTally(full, cfg)
		merged := run.MergeExternalTallies(tally, cfg, externals)
		if err := outwriter.WriteTallyResults(merged, &cfg.Election.Election, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write tally results", err)
		}
	},
}
