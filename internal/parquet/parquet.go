// Package parquet provides data structures and functions for exporting
// tally data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/votary/canvass/schema"
)

// ContestResult represents one contest option of a tabulated tally.
// One row is written per option, with the contest-level ballot accounting
// repeated on each row so the file is self-contained for analytics tools.
type ContestResult struct {
	// ContestID is the id of the tallied contest
	ContestID string `parquet:"contest_id,snappy"`

	// ContestTitle is the display title of the contest
	ContestTitle string `parquet:"contest_title,snappy"`

	// OptionID is the id of the contest option
	OptionID string `parquet:"option_id,snappy"`

	// OptionLabel is the display label of the contest option
	OptionLabel string `parquet:"option_label,snappy"`

	// Votes is the number of valid votes for this option
	Votes int32 `parquet:"votes,snappy"`

	// Ballots is the number of ballots cast in this contest
	Ballots int32 `parquet:"ballots,snappy"`

	// Overvotes is the number of overvote units in this contest
	Overvotes int32 `parquet:"overvotes,snappy"`

	// Undervotes is the number of undervote units in this contest
	Undervotes int32 `parquet:"undervotes,snappy"`
}

// TabulationRun represents a single tabulation run with metadata.
// This struct maps to the canvass_tabulation_runs database table.
type TabulationRun struct {
	// RunID is the unique identifier for this tabulation run
	RunID int64 `parquet:"run_id,snappy"`

	// ElectionHash identifies the election definition that was tabulated
	ElectionHash string `parquet:"election_hash,snappy"`

	// StartedAt is when the tabulation began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the tabulation completed (nullable, stored as TIMESTAMP with nanosecond precision)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// BallotsCounted is the number of ballots counted in this run
	BallotsCounted int32 `parquet:"ballots_counted,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ConvertContestResults flattens a tally into per-option Parquet rows in
// ballot order.
func ConvertContestResults(election *schema.Election, tally *schema.Tally) []ContestResult {
	var rows []ContestResult
	appendContest := func(contestID, title string) {
		ct, ok := tally.ContestTallies[contestID]
		if !ok {
			return
		}
		optionIDs := make([]string, 0, len(ct.Tallies))
		for optionID := range ct.Tallies {
			optionIDs = append(optionIDs, optionID)
		}
		sort.Strings(optionIDs)
		for _, optionID := range optionIDs {
			opt := ct.Tallies[optionID]
			rows = append(rows, ContestResult{
				ContestID:    contestID,
				ContestTitle: title,
				OptionID:     opt.OptionID,
				OptionLabel:  opt.Label,
				Votes:        int32(opt.Tally),
				Ballots:      int32(ct.Metadata.Ballots),
				Overvotes:    int32(ct.Metadata.Overvotes),
				Undervotes:   int32(ct.Metadata.Undervotes),
			})
		}
	}

	for i := range election.Contests {
		contest := &election.Contests[i]
		if contest.Type == schema.EitherNeitherContestType {
			appendContest(contest.EitherNeitherContestID, contest.Title+" "+contest.EitherNeitherLabel)
			appendContest(contest.PickOneContestID, contest.Title+" "+contest.PickOneLabel)
			continue
		}
		appendContest(contest.ID, contest.Title)
	}
	return rows
}

// ConvertTabulationRunRecords converts stored tabulation runs into Parquet rows.
func ConvertTabulationRunRecords(runs []schema.TabulationRun) []TabulationRun {
	rows := make([]TabulationRun, len(runs))
	for i, run := range runs {
		rows[i] = TabulationRun{
			RunID:          run.RunID,
			ElectionHash:   run.ElectionHash,
			StartedAt:      run.StartedAt,
			FinishedAt:     run.FinishedAt,
			BallotsCounted: int32(run.BallotsCounted),
		}
		if run.ConfigParams != "" {
			params := run.ConfigParams
			rows[i].ConfigParams = &params
		}
	}
	return rows
}

// WriteContestResultsParquet writes a slice of ContestResult structs to a Parquet file.
func WriteContestResultsParquet(data []ContestResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTabulationRunsParquet writes a slice of TabulationRun structs to a Parquet file.
func WriteTabulationRunsParquet(data []TabulationRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes any row type to a Parquet file using struct schema
// inference from the row's parquet tags.
func writeParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
