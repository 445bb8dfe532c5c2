// Package run orchestrates end-to-end tabulation flows shared by the CLI
// and the MCP server: reading CVR files, parsing and screening records,
// tabulating, filtering and maintaining the stored external tallies.
package run

import (
	"fmt"
	"os"
	"time"

	"github.com/votary/canvass/core"
	"github.com/votary/canvass/core/cvr"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/tallystore"
	"github.com/votary/canvass/schema"
)

// ReadCVRFiles reads and concatenates the given CVR files. Files are joined
// with a newline so line numbers reset per file never merge two records.
func ReadCVRFiles(paths []string) (string, error) {
	var content string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("cannot read CVR file %q: %w", path, err)
		}
		if content != "" && content[len(content)-1] != '\n' {
			content += "\n"
		}
		content += string(data)
	}
	return content, nil
}

// GetTabulationResults reads and parses the configured CVR files, screens
// out test ballots unless configured otherwise, tabulates the remainder and
// records the run in the tally store. Invalid parsed lines are returned for
// reporting; they never abort the tabulation.
func GetTabulationResults(cfg *contract.Config, store contract.TallyStore) (*schema.FullElectionTally, []cvr.ParsedCVR, error) {
	content, err := ReadCVRFiles(cfg.CVRPaths)
	if err != nil {
		return nil, nil, err
	}

	records, invalid := cvr.ValidRecords(content, cfg.Election)
	if !cfg.IncludeTestBallots {
		kept := records[:0]
		for _, record := range records {
			if !record.TestBallot {
				kept = append(kept, record)
			}
		}
		records = kept
	}

	runID, err := store.BeginTabulation(time.Now(), cfg.Election.ElectionHash, configParams(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record tabulation start: %w", err)
	}

	full := core.TabulateCVRs(cfg.Election, records)

	if err := store.EndTabulation(runID, time.Now(), full.OverallTally.NumberOfBallotsCounted); err != nil {
		return nil, nil, fmt.Errorf("failed to record tabulation end: %w", err)
	}

	return full, invalid, nil
}

// configParams captures the run parameters persisted with a tabulation run.
func configParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"cvr_paths":            cfg.CVRPaths,
		"include_test_ballots": cfg.IncludeTestBallots,
	}
}

// FilterFromConfig builds the tally filter carried by the config.
func FilterFromConfig(cfg *contract.Config) core.TallyFilter {
	precinctID, scannerID, batchID, partyID, votingMethod := cfg.Filter()
	return core.TallyFilter{
		PrecinctID:   precinctID,
		ScannerID:    scannerID,
		BatchID:      batchID,
		PartyID:      partyID,
		VotingMethod: votingMethod,
	}
}

// GetFilteredTally resolves the configured filter against a tabulation
// snapshot.
func GetFilteredTally(full *schema.FullElectionTally, cfg *contract.Config) *schema.Tally {
	return core.FilterTally(full, cfg.Election, FilterFromConfig(cfg))
}

// MergeExternalTallies folds stored external tallies matching the
// configured filter into a tabulated tally. External sources carry no
// scanner or batch breakdowns, so those filters exclude them entirely. The
// input tally is not mutated.
func MergeExternalTallies(tally *schema.Tally, cfg *contract.Config, externals []*schema.FullElectionExternalTally) *schema.Tally {
	if len(externals) == 0 {
		return tally
	}
	filter := FilterFromConfig(cfg)

	merged := &schema.Tally{
		NumberOfBallotsCounted:     tally.NumberOfBallotsCounted,
		ContestTallies:             make(map[string]*schema.ContestTally, len(tally.ContestTallies)),
		BallotCountsByVotingMethod: make(map[schema.VotingMethod]int, len(tally.BallotCountsByVotingMethod)),
	}
	for contestID, ct := range tally.ContestTallies {
		merged.ContestTallies[contestID] = ct
	}
	for method, count := range tally.BallotCountsByVotingMethod {
		merged.BallotCountsByVotingMethod[method] = count
	}

	for _, external := range externals {
		filtered := core.FilterExternalTally(external, cfg.Election, filter)
		merged.NumberOfBallotsCounted += filtered.NumberOfBallotsCounted
		merged.BallotCountsByVotingMethod[external.VotingMethod] += filtered.NumberOfBallotsCounted
		for contestID, ct := range filtered.ContestTallies {
			if existing, ok := merged.ContestTallies[contestID]; ok {
				merged.ContestTallies[contestID] = core.CombineContestTallies(existing, ct)
			} else {
				copied := *ct
				merged.ContestTallies[contestID] = &copied
			}
		}
	}
	return merged
}

// LoadExternalTallies reads the stored external tally collection. A store
// with no collection yields an empty slice.
func LoadExternalTallies(store contract.TallyStore) ([]*schema.FullElectionExternalTally, error) {
	payload, ok, err := store.GetExternalTallies()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return tallystore.DeserializeExternalTallies(payload)
}

// SaveExternalTally adds or replaces one external tally in the stored
// collection. An existing entry with the same source and input source name
// is replaced wholesale; re-importing a file never duplicates it.
func SaveExternalTally(store contract.TallyStore, tally *schema.FullElectionExternalTally) error {
	existing, err := LoadExternalTallies(store)
	if err != nil {
		return err
	}

	replaced := false
	for i, entry := range existing {
		if entry.Source == tally.Source && entry.InputSourceName == tally.InputSourceName {
			existing[i] = tally
			replaced = true
			break
		}
	}
	if !replaced {
		existing = append(existing, tally)
	}

	payload, err := tallystore.SerializeExternalTallies(existing)
	if err != nil {
		return err
	}
	return store.ReplaceExternalTallies(payload)
}
