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

// WriteStoreStatusResults outputs tally store status, dispatching based on
// the output format configured.
func WriteStoreStatusResults(status schema.StoreStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusText(status, w)
		}, "Wrote status")
	}
}

// writeStatusText writes the store status as plain key/value lines.
func writeStatusText(status schema.StoreStatus, w io.Writer) error {
	lastTabulation := "never"
	if !status.LastTabulation.IsZero() {
		lastTabulation = status.LastTabulation.Format(time.DateTime)
	}
	lines := []string{
		fmt.Sprintf("Backend: %s", status.Backend),
		fmt.Sprintf("Tabulation runs: %d", status.TabulationRuns),
		fmt.Sprintf("Last tabulation: %s", lastTabulation),
		fmt.Sprintf("External tallies stored: %t", status.HasExternalTallies),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteTabulationRunResults outputs recorded tabulation runs, dispatching
// based on the output format configured.
func WriteTabulationRunResults(runs []schema.TabulationRun, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		header := []string{"run_id", "election_hash", "started", "finished", "ballots_counted"}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return writeCSVResultsForRuns(csvWriter, runs)
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsTable(runs, cfg, w)
		}, "Wrote table")
	}
	return nil
}

// writeRunsTable generates and writes the human-readable table.
func writeRunsTable(runs []schema.TabulationRun, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run", "Election Hash", "Started", "Finished", "Ballots"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.DateTime)
		}
		data = append(data, []string{
			strconv.FormatInt(run.RunID, 10),
			shortHash(run.ElectionHash),
			run.StartedAt.Format(time.DateTime),
			finished,
			strconv.Itoa(run.BallotsCounted),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %d tabulation runs\n", len(runs))
	return err
}

// shortHash abbreviates an election hash for table display.
func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

// writeCSVResultsForRuns writes tabulation runs in CSV format.
func writeCSVResultsForRuns(w *csv.Writer, runs []schema.TabulationRun) error {
	for _, run := range runs {
		finished := ""
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		rec := []string{
			strconv.FormatInt(run.RunID, 10),
			run.ElectionHash,
			run.StartedAt.Format(time.RFC3339),
			finished,
			strconv.Itoa(run.BallotsCounted),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
