// Package sems imports the legacy fixed-field county tally export format
// (SEMS) into the same contest tally shape used by the scanner pipeline.
package sems

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/votary/canvass/core"
	"github.com/votary/canvass/schema"
)

// Reserved candidate-id sentinels in SEMS rows. Overvote and undervote
// counts are carried directly in the file, not derived.
const (
	overvoteCandidateID  = "0"
	undervoteCandidateID = "1"
	writeInCandidateID   = "2"
)

// rowFieldCount is the number of comma-delimited fields in a SEMS row:
// county id, precinct id, contest id, contest title, party id, party name,
// candidate id, candidate name, candidate party id, candidate party name,
// vote count. Shorter rows are silently ignored.
const rowFieldCount = 11

// row is one decoded SEMS line.
type row struct {
	precinctID    string
	contestID     string
	candidateID   string
	candidateName string
	votes         int
}

// parseRows decodes SEMS content into rows. Each field may be wrapped in
// single, double or backtick quotes, which are stripped; the vote count is
// parsed as a base-10 integer.
func parseRows(content string) []row {
	var rows []row
	for line := range strings.Lines(content) {
		fields := strings.Split(line, ",")
		if len(fields) < rowFieldCount {
			continue
		}
		for i := range fields {
			fields[i] = stripQuotes(fields[i])
		}
		votes, err := strconv.Atoi(fields[10])
		if err != nil {
			continue
		}
		rows = append(rows, row{
			precinctID:    fields[1],
			contestID:     fields[2],
			candidateID:   fields[6],
			candidateName: fields[7],
			votes:         votes,
		})
	}
	return rows
}

// stripQuotes trims whitespace and one layer of matching surrounding
// quotes from a field.
func stripQuotes(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 {
		first, last := field[0], field[len(field)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return field[1 : len(field)-1]
		}
	}
	return field
}

// Validate checks SEMS content against the election definition and returns
// every problem found as a user-facing error string. A write-in row with
// zero votes is tolerated even for contests that disallow write-ins; a
// nonzero one is rejected.
func Validate(ed *schema.ElectionDefinition, content string) []string {
	election := &ed.Election
	contestsByID := expandedContestsByID(election)

	var errs []string
	for _, r := range parseRows(content) {
		if election.PrecinctByID(r.precinctID) == nil {
			errs = append(errs, fmt.Sprintf("precinct %q in tally file is not in the election definition", r.precinctID))
			continue
		}
		contest, ok := contestsByID[r.contestID]
		if !ok {
			errs = append(errs, fmt.Sprintf("contest %q in tally file is not in the election definition", r.contestID))
			continue
		}
		if err := validateCandidate(contest, r); err != "" {
			errs = append(errs, err)
		}
	}
	return errs
}

// validateCandidate checks the candidate/option id of one row against its
// contest, returning an error string or "".
func validateCandidate(contest *schema.Contest, r row) string {
	switch r.candidateID {
	case overvoteCandidateID, undervoteCandidateID:
		return ""
	case writeInCandidateID:
		if contest.Type == schema.CandidateContestType && contest.AllowWriteIns {
			return ""
		}
		if r.votes == 0 {
			// Exporters emit zero-vote write-in rows even for contests that
			// disallow write-ins; tolerate them as a no-op.
			return ""
		}
		return fmt.Sprintf("contest %q does not allow write-ins but tally file has %d write-in votes for it", contest.ID, r.votes)
	}

	if contest.Type == schema.CandidateContestType {
		for _, candidate := range contest.Candidates {
			if candidate.ID == r.candidateID {
				return ""
			}
		}
		return fmt.Sprintf("candidate %q in tally file is not in contest %q", r.candidateID, contest.ID)
	}
	if r.candidateID == schema.OptionYes || r.candidateID == schema.OptionNo {
		return ""
	}
	return fmt.Sprintf("option %q in tally file is not valid for contest %q", r.candidateID, contest.ID)
}

// Convert parses SEMS content into a full external tally source. It
// validates first and refuses to convert content with any validation
// error.
func Convert(ed *schema.ElectionDefinition, content, sourceName string, createdAt time.Time) (*schema.FullElectionExternalTally, error) {
	if errs := Validate(ed, content); len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "; "))
	}

	election := &ed.Election
	contestsByID := expandedContestsByID(election)

	// precinct id -> contest id -> accumulated counts
	type contestAccumulator struct {
		optionVotes map[string]int
		overvotes   int
		undervotes  int
	}
	byPrecinct := make(map[string]map[string]*contestAccumulator)

	for _, r := range parseRows(content) {
		contests, ok := byPrecinct[r.precinctID]
		if !ok {
			contests = make(map[string]*contestAccumulator)
			byPrecinct[r.precinctID] = contests
		}
		acc, ok := contests[r.contestID]
		if !ok {
			acc = &contestAccumulator{optionVotes: make(map[string]int)}
			contests[r.contestID] = acc
		}

		switch r.candidateID {
		case overvoteCandidateID:
			acc.overvotes += r.votes
		case undervoteCandidateID:
			acc.undervotes += r.votes
		case writeInCandidateID:
			// A file may list several named write-in rows for the same
			// contest; they all roll into the one write-in entry.
			if contestsByID[r.contestID].AllowWriteIns {
				acc.optionVotes[schema.WriteInID] += r.votes
			}
		default:
			acc.optionVotes[r.candidateID] += r.votes
		}
	}

	talliesByPrecinct := make(map[string]map[string]*schema.ContestTally, len(byPrecinct))
	for precinctID, contests := range byPrecinct {
		contestTallies := make(map[string]*schema.ContestTally, len(contests))
		for contestID, acc := range contests {
			contest := contestsByID[contestID]
			tally := core.NewContestTally(contest)

			validVotes := 0
			for optionID, votes := range acc.optionVotes {
				tally.Tallies[optionID].Tally = votes
				validVotes += votes
			}

			// Ballot count is an approximation for multi-seat contests:
			// voters who under- or over-select inconsistently across seats
			// make the exact count unrecoverable from vote totals alone.
			tally.Metadata = schema.ContestTallyMeta{
				Ballots:    validVotes/contest.SeatCount() + acc.overvotes + acc.undervotes,
				Overvotes:  acc.overvotes,
				Undervotes: acc.undervotes,
			}
			contestTallies[contestID] = tally
		}
		talliesByPrecinct[precinctID] = contestTallies
	}

	return core.NewFullElectionExternalTally(
		election,
		talliesByPrecinct,
		schema.ExternalTallySourceSEMS,
		sourceName,
		schema.VotingMethodPrecinct,
		createdAt,
	), nil
}

// expandedContestsByID indexes the expanded contests by id.
func expandedContestsByID(election *schema.Election) map[string]*schema.Contest {
	expanded := core.ExpandEitherNeitherContests(election)
	byID := make(map[string]*schema.Contest, len(expanded))
	for i := range expanded {
		byID[expanded[i].ID] = &expanded[i]
	}
	return byID
}
