package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/votary/canvass/core"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/parquet"
	"github.com/votary/canvass/schema"
)

// WriteTallyResults outputs contest results, dispatching based on the output format configured.
func WriteTallyResults(tally *schema.Tally, election *schema.Election, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtPct, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeTallyJSONResults(tally, election, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeTallyCSVResults(tally, election, cfg, fmtPct, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		rows := parquet.ConvertContestResults(election, tally)
		if err := parquet.WriteContestResultsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d contest rows to %s\n", len(rows), cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTallyTable(tally, election, cfg, fmtPct, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeTallyJSONResults handles opening the file and calling the JSON writer.
func writeTallyJSONResults(tally *schema.Tally, election *schema.Election, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForTally(w, tally, election)
	}, "Wrote JSON")
}

// writeTallyCSVResults handles opening the file and calling the CSV writer.
func writeTallyCSVResults(tally *schema.Tally, election *schema.Election, cfg *contract.Config, fmtPct func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForTally(csvWriter, tally, election, fmtPct, intFmt)
	}, "Wrote CSV")
}

// orderedContestTallies returns the contest tallies in ballot order, with
// either/neither pairs expanded in place of their parent contest.
func orderedContestTallies(tally *schema.Tally, election *schema.Election) []*schema.ContestTally {
	expanded := core.ExpandEitherNeitherContests(election)
	ordered := make([]*schema.ContestTally, 0, len(tally.ContestTallies))
	for i := range expanded {
		if ct, ok := tally.ContestTallies[expanded[i].ID]; ok {
			ordered = append(ordered, ct)
		}
	}
	return ordered
}

// sortedOptions returns a contest's option tallies sorted by votes
// descending, breaking ties by label for stable output.
func sortedOptions(ct *schema.ContestTally) []*schema.ContestOptionTally {
	options := make([]*schema.ContestOptionTally, 0, len(ct.Tallies))
	for _, opt := range ct.Tallies {
		options = append(options, opt)
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].Tally != options[j].Tally {
			return options[i].Tally > options[j].Tally
		}
		return options[i].Label < options[j].Label
	})
	return options
}

// validVotes sums the option tallies of a contest.
func validVotes(ct *schema.ContestTally) int {
	total := 0
	for _, opt := range ct.Tallies {
		total += opt.Tally
	}
	return total
}

// contestTitle returns the display title of a tallied contest, falling back
// to the contest id for ids not present in the election definition.
func contestTitle(election *schema.Election, contestID string) string {
	for i := range election.Contests {
		c := &election.Contests[i]
		if c.ID == contestID {
			return c.Title
		}
		if c.EitherNeitherContestID == contestID {
			return c.Title + " " + c.EitherNeitherLabel
		}
		if c.PickOneContestID == contestID {
			return c.Title + " " + c.PickOneLabel
		}
	}
	return contestID
}

// writeTallyTable generates and writes the human-readable table.
func writeTallyTable(tally *schema.Tally, election *schema.Election, cfg *contract.Config, fmtPct func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Contest", "Option", "Votes", "Share"}
	table.Header(headers)

	// 2. Configure alignment for the numeric columns
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxLabel := getMaxTableLabelWidth(cfg)
	ordered := orderedContestTallies(tally, election)

	// 3. Populate Rows
	var data [][]string
	for _, ct := range ordered {
		title := contract.TruncateLabel(contestTitle(election, ct.ContestID), maxLabel)
		if cfg.UseColors {
			title = contract.ContestColor.Sprint(title)
		}

		options := sortedOptions(ct)
		total := validVotes(ct)
		for i, opt := range options {
			label := contract.TruncateLabel(opt.Label, maxLabel)
			if cfg.UseColors {
				switch {
				case i == 0 && opt.Tally > 0:
					label = contract.LeaderColor.Sprint(label)
				case opt.OptionID == schema.WriteInID:
					label = contract.WriteInColor.Sprint(label)
				}
			}
			contestCol := ""
			if i == 0 {
				contestCol = title
			}
			data = append(data, []string{
				contestCol,
				label,
				fmt.Sprintf(intFmt, opt.Tally),
				fmtPct(pctOf(opt.Tally, total)),
			})
		}

		// Ballot accounting rows after the options
		overLabel, underLabel := "(overvotes)", "(undervotes)"
		if cfg.UseColors {
			overLabel = contract.WarnColor.Sprint(overLabel)
			underLabel = contract.WarnColor.Sprint(underLabel)
		}
		data = append(data,
			[]string{"", "(ballots cast)", fmt.Sprintf(intFmt, ct.Metadata.Ballots), ""},
			[]string{"", overLabel, fmt.Sprintf(intFmt, ct.Metadata.Overvotes), ""},
			[]string{"", underLabel, fmt.Sprintf(intFmt, ct.Metadata.Undervotes), ""},
		)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	if _, err := fmt.Fprintf(writer, "Showing %d contests (ballots counted: %d)\n", len(ordered), tally.NumberOfBallotsCounted); err != nil {
		return err
	}
	for _, method := range schema.AllVotingMethods {
		if count := tally.BallotCountsByVotingMethod[method]; count > 0 {
			if _, err := fmt.Fprintf(writer, "  %s ballots: %d\n", method, count); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(writer, "Tabulation completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForTally writes contest results in CSV format.
func writeCSVResultsForTally(w *csv.Writer, tally *schema.Tally, election *schema.Election, fmtPct func(float64) string, intFmt string) error {
	// CSV header
	header := []string{
		"contest_id",
		"contest_title",
		"option_id",
		"option_label",
		"votes",
		"share",
		"ballots",
		"overvotes",
		"undervotes",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, ct := range orderedContestTallies(tally, election) {
		title := contestTitle(election, ct.ContestID)
		total := validVotes(ct)
		for _, opt := range sortedOptions(ct) {
			rec := []string{
				ct.ContestID,                                // Contest ID
				title,                                       // Contest Title
				opt.OptionID,                                // Option ID
				opt.Label,                                   // Option Label
				fmt.Sprintf(intFmt, opt.Tally),              // Votes
				fmtPct(pctOf(opt.Tally, total)),             // Share of valid votes
				fmt.Sprintf(intFmt, ct.Metadata.Ballots),    // Ballots cast
				fmt.Sprintf(intFmt, ct.Metadata.Overvotes),  // Overvotes
				fmt.Sprintf(intFmt, ct.Metadata.Undervotes), // Undervotes
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeJSONResultsForTally writes contest results in JSON format.
func writeJSONResultsForTally(w io.Writer, tally *schema.Tally, election *schema.Election) error {
	// 1. Prepare the data structure for JSON with contests in ballot order
	type JSONContestResult struct {
		ContestID string                       `json:"contestId"`
		Title     string                       `json:"title"`
		Options   []*schema.ContestOptionTally `json:"options"`
		Metadata  schema.ContestTallyMeta      `json:"metadata"`
	}
	type JSONTallyResult struct {
		NumberOfBallotsCounted     int                         `json:"numberOfBallotsCounted"`
		BallotCountsByVotingMethod map[schema.VotingMethod]int `json:"ballotCountsByVotingMethod"`
		Contests                   []JSONContestResult         `json:"contests"`
	}

	ordered := orderedContestTallies(tally, election)
	output := JSONTallyResult{
		NumberOfBallotsCounted:     tally.NumberOfBallotsCounted,
		BallotCountsByVotingMethod: tally.BallotCountsByVotingMethod,
		Contests:                   make([]JSONContestResult, len(ordered)),
	}
	for i, ct := range ordered {
		output.Contests[i] = JSONContestResult{
			ContestID: ct.ContestID,
			Title:     contestTitle(election, ct.ContestID),
			Options:   sortedOptions(ct),
			Metadata:  ct.Metadata,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}
