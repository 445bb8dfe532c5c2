package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/votary/canvass/core/run"
	"github.com/votary/canvass/core/sems"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/tallystore"
)

// semsCmd groups the SEMS import and validation subcommands.
var semsCmd = &cobra.Command{
	Use:   "sems",
	Short: "Import and validate SEMS county tally exports",
	Long: `Work with SEMS files, the fixed-field comma-delimited tally export
used by county election-management systems.

Each SEMS row carries one candidate's vote count in one precinct, with
sentinel candidate ids for overvotes, undervotes and write-ins. Imported
files become an external tally source alongside scanner results.

Subcommands:
  import - Convert a SEMS file and store it as an external tally
  check  - Validate a SEMS file without storing anything

Examples:
  # Validate before importing
  canvass sems check --election election.json results.txt
  canvass sems import --election election.json results.txt`,
}

// semsImportCmd converts a SEMS file and stores it.
var semsImportCmd = &cobra.Command{
	Use:   "import <sems-file>",
	Short: "Convert a SEMS file and store it as an external tally.",
	Long: `Validate and convert a SEMS file into an external tally source, then
store it. Re-importing a file with the same name replaces the prior import
wholesale; imports are never merged incrementally.

Examples:
  # Import a county SEMS export
  canvass sems import --election election.json results.txt`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			contract.LogFatal("Cannot read SEMS file", err)
		}

		tally, err := sems.Convert(cfg.Election, string(data), filepath.Base(args[0]), time.Now())
		if err != nil {
			contract.LogFatal("Cannot convert SEMS file", err)
		}

		if err := run.SaveExternalTally(tallystore.Store(), tally); err != nil {
			contract.LogFatal("Cannot store SEMS tally", err)
		}
		fmt.Printf("Imported %s: %d ballots across %d precincts\n",
			tally.InputSourceName, tally.OverallTally.NumberOfBallotsCounted, len(tally.ResultsByPrecinct))
	},
}

// semsCheckCmd validates a SEMS file.
var semsCheckCmd = &cobra.Command{
	Use:   "check <sems-file>",
	Short: "Validate a SEMS file against the election definition.",
	Long: `Check every row of a SEMS file against the election definition
without storing anything. All problems are reported, not just the first.

Exits nonzero when the file has validation problems, which makes this
suitable for scripted pre-import checks.

Examples:
  # Validate a county SEMS export
  canvass sems check --election election.json results.txt`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			contract.LogFatal("Cannot read SEMS file", err)
		}

		problems := sems.Validate(cfg.Election, string(data))
		if len(problems) == 0 {
			fmt.Println("SEMS file is valid.")
			return
		}
		for _, problem := range problems {
			contract.LogWarning(problem)
		}
		contract.LogFatal("SEMS file failed validation", fmt.Errorf("%d problems found", len(problems)))
	},
}
