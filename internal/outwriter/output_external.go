package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

// WriteExternalTallyResults outputs the external tally sources, dispatching
// based on the output format configured.
func WriteExternalTallyResults(tallies []*schema.FullElectionExternalTally, election *schema.Election, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForExternal(w, tallies)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, externalCSVHeader(), func(csvWriter *csv.Writer) error {
				return writeCSVResultsForExternal(csvWriter, tallies)
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExternalTable(tallies, election, cfg, w)
		}, "Wrote table")
	}
	return nil
}

// externalCSVHeader returns the CSV header for external tally sources.
func externalCSVHeader() []string {
	return []string{
		"source",
		"input_source",
		"voting_method",
		"ballots_counted",
		"precincts",
		"created",
	}
}

// writeExternalTable generates and writes the human-readable table.
func writeExternalTable(tallies []*schema.FullElectionExternalTally, election *schema.Election, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Source", "Input", "Method", "Ballots", "Precincts", "Created"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxLabel := getMaxTableLabelWidth(cfg)
	totalBallots := 0
	var data [][]string
	for _, tally := range tallies {
		source := string(tally.Source)
		if cfg.UseColors {
			source = contract.ContestColor.Sprint(source)
		}
		data = append(data, []string{
			source,
			contract.TruncateLabel(tally.InputSourceName, maxLabel),
			string(tally.VotingMethod),
			strconv.Itoa(tally.OverallTally.NumberOfBallotsCounted),
			strconv.Itoa(reportedPrecincts(tally)),
			tally.TimestampCreated.Format(time.DateTime),
		})
		totalBallots += tally.OverallTally.NumberOfBallotsCounted
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d external sources (ballots counted: %d, election precincts: %d)\n",
		len(tallies), totalBallots, len(election.Precincts)); err != nil {
		return err
	}
	return nil
}

// reportedPrecincts counts precincts with a nonzero external ballot count.
func reportedPrecincts(tally *schema.FullElectionExternalTally) int {
	count := 0
	for _, precinctTally := range tally.ResultsByPrecinct {
		if precinctTally.NumberOfBallotsCounted > 0 {
			count++
		}
	}
	return count
}

// writeCSVResultsForExternal writes external tally sources in CSV format.
func writeCSVResultsForExternal(w *csv.Writer, tallies []*schema.FullElectionExternalTally) error {
	for _, tally := range tallies {
		rec := []string{
			string(tally.Source),
			tally.InputSourceName,
			string(tally.VotingMethod),
			strconv.Itoa(tally.OverallTally.NumberOfBallotsCounted),
			strconv.Itoa(reportedPrecincts(tally)),
			tally.TimestampCreated.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForExternal writes external tally sources in JSON format.
func writeJSONResultsForExternal(w io.Writer, tallies []*schema.FullElectionExternalTally) error {
	// 1. Prepare the data structure for JSON with per-precinct counts flattened
	type JSONExternalResult struct {
		Source            schema.ExternalTallySource `json:"source"`
		InputSourceName   string                     `json:"inputSourceName"`
		VotingMethod      schema.VotingMethod        `json:"votingMethod"`
		TimestampCreated  time.Time                  `json:"timestampCreated"`
		BallotsCounted    int                        `json:"ballotsCounted"`
		BallotsByPrecinct map[string]int             `json:"ballotsByPrecinct"`
		OverallTally      *schema.ExternalTally      `json:"overallTally"`
	}

	output := make([]JSONExternalResult, len(tallies))
	for i, tally := range tallies {
		byPrecinct := make(map[string]int, len(tally.ResultsByPrecinct))
		for key, precinctTally := range tally.ResultsByPrecinct {
			byPrecinct[key] = precinctTally.NumberOfBallotsCounted
		}
		output[i] = JSONExternalResult{
			Source:            tally.Source,
			InputSourceName:   tally.InputSourceName,
			VotingMethod:      tally.VotingMethod,
			TimestampCreated:  tally.TimestampCreated,
			BallotsCounted:    tally.OverallTally.NumberOfBallotsCounted,
			BallotsByPrecinct: byPrecinct,
			OverallTally:      tally.OverallTally,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}
