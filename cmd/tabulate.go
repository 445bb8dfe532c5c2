package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/votary/canvass/core/run"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/outwriter"
	"github.com/votary/canvass/internal/tallystore"
)

// tabulateCmd parses CVR files and prints contest results.
var tabulateCmd = &cobra.Command{
	Use:   "tabulate <cvr-file>...",
	Short: "Tabulate cast vote record files into contest results.",
	Long: `Parse newline-delimited cast-vote-record JSON files, validate every
record against the election definition, and tabulate the valid ballots into
contest results.

Each ballot's selections are counted per contest, with overvotes and
undervotes derived from the contest's seat count. Results are broken down
by precinct, scanner, batch, party and voting method; the filter flags
select one of those breakdowns.

Invalid CVR lines are reported as warnings and excluded; they never abort
the tabulation. Test ballots are excluded unless --include-test is given.

Examples:
  # Tabulate one export against an election definition
  canvass tabulate --election election.json cvrs.jsonl

  # Per-precinct results for one precinct
  canvass tabulate --election election.json --precinct precinct-5 cvrs.jsonl

  # Absentee ballots only, exported as CSV
  canvass tabulate --election election.json --voting-method absentee --output csv cvrs.jsonl`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()

		full, invalid, err := run.GetTabulationResults(cfg, tallystore.Store())
		if err != nil {
			contract.LogFatal("Cannot tabulate CVR files", err)
		}
		for _, bad := range invalid {
			contract.LogWarning(fmt.Sprintf("line %d: %s", bad.LineNumber, strings.Join(bad.Errors, "; ")))
		}

		tally := run.GetFilteredTally(full, cfg)
		if err := outwriter.WriteTallyResults(tally, &cfg.Election.Election, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write tally results", err)
		}
	},
}
