package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/votary/canvass/core/manual"
	"github.com/votary/canvass/core/run"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/tallystore"
	"github.com/votary/canvass/schema"
)

// manualCmd groups the manually-entered tally subcommands.
var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Manage manually entered tallies",
	Long: `Work with hand-entered per-precinct tallies, used for ballots counted
outside the scanner pipeline (hand counts, provisional resolutions).

Manual tallies become an external tally source alongside scanner results
and SEMS imports.

Examples:
  # Load a hand-count file
  canvass manual set --election election.json hand-counts.json`,
}

// manualSetCmd loads a manual tally file into the store.
var manualSetCmd = &cobra.Command{
	Use:   "set <tally-file>",
	Short: "Load manually entered tallies, replacing prior manual data.",
	Long: `Validate a manual tally JSON document and store it as the manual
external tally source. Setting manual tallies replaces the prior manual
data wholesale; entries are never merged incrementally.

The document maps precinct ids to contests to option vote counts, with
per-contest ballot, overvote and undervote totals:

  {
    "votingMethod": "standard",
    "precincts": {
      "precinct-5": {
        "mayor": {
          "options": {"alice": 120, "bob": 95},
          "ballots": 230, "overvotes": 5, "undervotes": 10
        }
      }
    }
  }

Examples:
  # Load a hand-count file attributed to absentee ballots
  canvass manual set --election election.json --manual-voting-method absentee hand-counts.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			contract.LogFatal("Cannot read manual tally file", err)
		}

		file, err := manual.Parse(data)
		if err != nil {
			contract.LogFatal("Cannot parse manual tally file", err)
		}

		votingMethod := schema.VotingMethod(viper.GetString("manual-voting-method"))
		if _, ok := schema.ValidVotingMethods[votingMethod]; !ok {
			contract.LogFatal("Invalid manual voting method", fmt.Errorf("%q is not standard, absentee or unknown", votingMethod))
		}

		tally, err := manual.Convert(cfg.Election, file, votingMethod, time.Now())
		if err != nil {
			contract.LogFatal("Cannot convert manual tallies", err)
		}

		if err := run.SaveExternalTally(tallystore.Store(), tally); err != nil {
			contract.LogFatal("Cannot store manual tallies", err)
		}
		fmt.Printf("Stored manual tallies: %d ballots across %d precincts\n",
			tally.OverallTally.NumberOfBallotsCounted, len(tally.ResultsByPrecinct))
	},
}
