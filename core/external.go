package core

import (
	"fmt"
	"time"

	"github.com/votary/canvass/schema"
)

// CombineContestTallies additively merges two tallies for the same contest:
// option counts summed option by option, metadata fields summed. It panics
// if the contest ids differ, which is an integrity error in the caller.
// Combining with an all-zero tally is an identity operation.
func CombineContestTallies(a, b *schema.ContestTally) *schema.ContestTally {
	if a.ContestID != b.ContestID {
		panic(fmt.Sprintf("cannot combine tallies for different contests: %q vs %q", a.ContestID, b.ContestID))
	}

	tallies := make(map[string]*schema.ContestOptionTally, len(a.Tallies))
	for optionID, optionTally := range a.Tallies {
		combined := *optionTally
		if other, ok := b.Tallies[optionID]; ok {
			combined.Tally += other.Tally
		}
		tallies[optionID] = &combined
	}
	for optionID, optionTally := range b.Tallies {
		if _, ok := tallies[optionID]; !ok {
			copied := *optionTally
			tallies[optionID] = &copied
		}
	}

	return &schema.ContestTally{
		ContestID: a.ContestID,
		Tallies:   tallies,
		Metadata: schema.ContestTallyMeta{
			Ballots:    a.Metadata.Ballots + b.Metadata.Ballots,
			Overvotes:  a.Metadata.Overvotes + b.Metadata.Overvotes,
			Undervotes: a.Metadata.Undervotes + b.Metadata.Undervotes,
		},
	}
}

// TotalBallotsForContests computes the across-election ballot count from
// per-contest ballot counts. Contests are partitioned into disjoint sets by
// ballot-style co-occurrence: two contests share a set only if some ballot
// style presents both. The count for each set is the max within it (one
// ballot-style group's ballots), and the sets sum. This avoids double or
// under counting when different ballot styles expose different contest
// subsets.
func TotalBallotsForContests(election *schema.Election, ballotsByContest map[string]int) int {
	// Union-find over contest ids, joined per ballot style.
	parent := make(map[string]string, len(ballotsByContest))
	for contestID := range ballotsByContest {
		parent[contestID] = contestID
	}
	var find func(string) string
	find = func(id string) string {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	union := func(a, b string) {
		rootA, rootB := find(a), find(b)
		if rootA != rootB {
			parent[rootA] = rootB
		}
	}

	for i := range election.BallotStyles {
		style := &election.BallotStyles[i]
		contests := ContestsForBallotStyle(election, style)
		var first string
		for j := range contests {
			if _, ok := ballotsByContest[contests[j].ID]; !ok {
				continue
			}
			if first == "" {
				first = contests[j].ID
				continue
			}
			union(first, contests[j].ID)
		}
	}

	maxBySet := make(map[string]int)
	for contestID, ballots := range ballotsByContest {
		root := find(contestID)
		if ballots > maxBySet[root] {
			maxBySet[root] = ballots
		}
	}

	total := 0
	for _, ballots := range maxBySet {
		total += ballots
	}
	return total
}

// NewExternalTally assembles an external tally from per-contest tallies,
// deriving the total ballot count from the contest ballot metadata.
func NewExternalTally(election *schema.Election, contestTallies map[string]*schema.ContestTally) *schema.ExternalTally {
	ballotsByContest := make(map[string]int, len(contestTallies))
	for contestID, tally := range contestTallies {
		ballotsByContest[contestID] = tally.Metadata.Ballots
	}
	return &schema.ExternalTally{
		NumberOfBallotsCounted: TotalBallotsForContests(election, ballotsByContest),
		ContestTallies:         contestTallies,
	}
}

// NewFullElectionExternalTally folds per-precinct contest tallies into one
// external tally source: each precinct's tallies are kept as a breakdown
// and combined additively into the overall tally. Both manual entry and
// SEMS conversion produce their results through this constructor.
func NewFullElectionExternalTally(
	election *schema.Election,
	talliesByPrecinct map[string]map[string]*schema.ContestTally,
	source schema.ExternalTallySource,
	inputSourceName string,
	votingMethod schema.VotingMethod,
	createdAt time.Time,
) *schema.FullElectionExternalTally {
	resultsByPrecinct := make(map[string]*schema.ExternalTally, len(talliesByPrecinct))
	overall := make(map[string]*schema.ContestTally)

	for precinctID, contestTallies := range talliesByPrecinct {
		resultsByPrecinct[precinctID] = NewExternalTally(election, contestTallies)
		for contestID, tally := range contestTallies {
			if existing, ok := overall[contestID]; ok {
				overall[contestID] = CombineContestTallies(existing, tally)
			} else {
				copied := *tally
				overall[contestID] = &copied
			}
		}
	}

	return &schema.FullElectionExternalTally{
		OverallTally:      NewExternalTally(election, overall),
		ResultsByPrecinct: resultsByPrecinct,
		Source:            source,
		InputSourceName:   inputSourceName,
		VotingMethod:      votingMethod,
		TimestampCreated:  createdAt,
	}
}

// CombineExternalTallies folds several external tally sources into one
// combined external tally (overall only; per-precinct breakdowns stay with
// their sources).
func CombineExternalTallies(election *schema.Election, tallies []*schema.FullElectionExternalTally) *schema.ExternalTally {
	combined := make(map[string]*schema.ContestTally)
	for _, source := range tallies {
		for contestID, tally := range source.OverallTally.ContestTallies {
			if existing, ok := combined[contestID]; ok {
				combined[contestID] = CombineContestTallies(existing, tally)
			} else {
				copied := *tally
				combined[contestID] = &copied
			}
		}
	}
	return NewExternalTally(election, combined)
}

// EmptyExternalTally returns a zero-valued external tally with the complete
// expanded contest set.
func EmptyExternalTally(election *schema.Election) *schema.ExternalTally {
	contestTallies := make(map[string]*schema.ContestTally)
	for _, contest := range ExpandEitherNeitherContests(election) {
		contestTallies[contest.ID] = NewContestTally(&contest)
	}
	return &schema.ExternalTally{ContestTallies: contestTallies}
}

// FilterExternalTally answers the same filter queries as FilterTally for an
// external tally source. External sources carry no scanner or batch
// provenance, so those filters (and a non-matching voting-method filter)
// yield a fully populated zero tally rather than nil.
func FilterExternalTally(external *schema.FullElectionExternalTally, ed *schema.ElectionDefinition, filter TallyFilter) *schema.ExternalTally {
	election := &ed.Election

	if filter.ScannerID != "" || filter.BatchID != "" {
		return EmptyExternalTally(election)
	}
	if filter.VotingMethod != "" && filter.VotingMethod != external.VotingMethod {
		return EmptyExternalTally(election)
	}

	result := external.OverallTally
	if filter.PrecinctID != "" {
		precinctTally, ok := external.ResultsByPrecinct[filter.PrecinctID]
		if !ok {
			return EmptyExternalTally(election)
		}
		result = precinctTally
	}

	if filter.PartyID != "" {
		districts := DistrictsForParty(election, filter.PartyID)
		districtOf := make(map[string]string)
		for _, contest := range ExpandEitherNeitherContests(election) {
			districtOf[contest.ID] = contest.DistrictID
		}
		restricted := make(map[string]*schema.ContestTally)
		for contestID, tally := range result.ContestTallies {
			if _, ok := districts[districtOf[contestID]]; ok {
				restricted[contestID] = tally
			}
		}
		result = NewExternalTally(election, restricted)
	}

	return result
}
