// Package manual loads hand-entered per-precinct tallies from JSON into
// the same contest tally shape used by the scanner pipeline.
package manual

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/votary/canvass/core"
	"github.com/votary/canvass/schema"
)

// ContestEntry is the hand-entered result of one contest in one precinct.
type ContestEntry struct {
	Options    map[string]int `json:"options"`
	Ballots    int            `json:"ballots"`
	Overvotes  int            `json:"overvotes"`
	Undervotes int            `json:"undervotes"`
}

// File is the manual tally input document: per-precinct, per-contest
// entries plus an optional voting method override.
type File struct {
	VotingMethod string                              `json:"votingMethod,omitempty"`
	Precincts    map[string]map[string]ContestEntry `json:"precincts"`
}

// Parse decodes a manual tally document.
func Parse(data []byte) (*File, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse manual tally file: %w", err)
	}
	if len(file.Precincts) == 0 {
		return nil, fmt.Errorf("manual tally file has no precinct entries")
	}
	return &file, nil
}

// Validate checks every precinct, contest and option id against the
// election definition. All problems are collected, not just the first.
func Validate(ed *schema.ElectionDefinition, file *File) []string {
	election := &ed.Election
	contests := expandedContestsByID(election)

	var problems []string
	for precinctID, contestEntries := range file.Precincts {
		if election.PrecinctByID(precinctID) == nil {
			problems = append(problems, fmt.Sprintf("precinct %q is not in the election definition", precinctID))
			continue
		}
		for contestID, entry := range contestEntries {
			contest, ok := contests[contestID]
			if !ok {
				problems = append(problems, fmt.Sprintf("contest %q is not in the election definition", contestID))
				continue
			}
			template := core.NewContestTally(contest)
			for optionID := range entry.Options {
				if _, ok := template.Tallies[optionID]; !ok {
					problems = append(problems, fmt.Sprintf("option %q is not valid for contest %q", optionID, contestID))
				}
			}
		}
	}
	return problems
}

// Convert validates a manual tally document and builds the external tally
// source it describes.
func Convert(ed *schema.ElectionDefinition, file *File, votingMethod schema.VotingMethod, createdAt time.Time) (*schema.FullElectionExternalTally, error) {
	if problems := Validate(ed, file); len(problems) > 0 {
		return nil, fmt.Errorf("manual tally file failed validation: %s", problems[0])
	}

	election := &ed.Election
	contests := expandedContestsByID(election)
	if file.VotingMethod != "" {
		method := schema.VotingMethod(file.VotingMethod)
		if _, ok := schema.ValidVotingMethods[method]; !ok {
			return nil, fmt.Errorf("invalid voting method %q in manual tally file", file.VotingMethod)
		}
		votingMethod = method
	}

	talliesByPrecinct := make(map[string]map[string]*schema.ContestTally, len(file.Precincts))
	for precinctID, contestEntries := range file.Precincts {
		contestTallies := make(map[string]*schema.ContestTally, len(contestEntries))
		for contestID, entry := range contestEntries {
			tally := core.NewContestTally(contests[contestID])
			for optionID, votes := range entry.Options {
				tally.Tallies[optionID].Tally = votes
			}
			tally.Metadata = schema.ContestTallyMeta{
				Ballots:    entry.Ballots,
				Overvotes:  entry.Overvotes,
				Undervotes: entry.Undervotes,
			}
			contestTallies[contestID] = tally
		}
		talliesByPrecinct[precinctID] = contestTallies
	}

	return core.NewFullElectionExternalTally(
		election,
		talliesByPrecinct,
		schema.ExternalTallySourceManual,
		"manual",
		votingMethod,
		createdAt,
	), nil
}

// expandedContestsByID indexes contests by id with either/neither pairs
// expanded in place of their parents.
func expandedContestsByID(election *schema.Election) map[string]*schema.Contest {
	expanded := core.ExpandEitherNeitherContests(election)
	byID := make(map[string]*schema.Contest, len(expanded))
	for i := range expanded {
		byID[expanded[i].ID] = &expanded[i]
	}
	return byID
}
