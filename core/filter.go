package core

import (
	"github.com/votary/canvass/schema"
)

// TallyFilter is a combination of independent filter parameters for a tally
// query. Zero-valued fields are unset.
type TallyFilter struct {
	PrecinctID   string
	ScannerID    string
	BatchID      string
	PartyID      string
	VotingMethod schema.VotingMethod
}

// IsEmpty reports whether no filter field is set.
func (f *TallyFilter) IsEmpty() bool {
	return f.PrecinctID == "" && f.ScannerID == "" && f.BatchID == "" &&
		f.PartyID == "" && f.VotingMethod == ""
}

// activeCount returns how many filter fields are set.
func (f *TallyFilter) activeCount() int {
	count := 0
	for _, set := range []bool{
		f.PrecinctID != "",
		f.ScannerID != "",
		f.BatchID != "",
		f.PartyID != "",
		f.VotingMethod != "",
	} {
		if set {
			count++
		}
	}
	return count
}

// Matches reports whether a normalized vote record satisfies every set
// filter field.
func (f *TallyFilter) Matches(record *schema.VoteRecord) bool {
	if f.PrecinctID != "" && record.PrecinctID != f.PrecinctID {
		return false
	}
	if f.ScannerID != "" && record.ScannerID != f.ScannerID {
		return false
	}
	if f.BatchID != "" && record.BatchID != f.BatchID {
		return false
	}
	if f.PartyID != "" && record.PartyID != f.PartyID {
		return false
	}
	if f.VotingMethod != "" && record.VotingMethod != f.VotingMethod {
		return false
	}
	return true
}

// EmptyTally returns a fully populated zero-valued tally with the complete
// expanded contest set. Filter queries that match nothing return this shape
// rather than nil so callers can render zeros uniformly.
func EmptyTally(election *schema.Election) *schema.Tally {
	return tallyForRecords(election, nil)
}

// FilterTally answers a filtered tally query against a previously built
// full election tally without re-parsing raw CVR text. Single-category
// filters resolve from the pre-computed breakdowns; any combination of two
// or more filters (and any party filter) re-tabulates the retained records
// matching the intersection, which by construction equals a fresh
// tabulation over only the matching CVR subset.
func FilterTally(full *schema.FullElectionTally, ed *schema.ElectionDefinition, filter TallyFilter) *schema.Tally {
	election := &ed.Election

	if filter.IsEmpty() {
		return full.OverallTally
	}

	if filter.activeCount() == 1 {
		switch {
		case filter.PrecinctID != "":
			if tally, ok := full.ResultsByCategory.Precinct[filter.PrecinctID]; ok {
				return tally
			}
			return EmptyTally(election)
		case filter.ScannerID != "":
			if tally, ok := full.ResultsByCategory.Scanner[filter.ScannerID]; ok {
				return tally
			}
			return EmptyTally(election)
		case filter.BatchID != "":
			if tally, ok := full.ResultsByCategory.Batch[filter.BatchID]; ok {
				return tally
			}
			return EmptyTally(election)
		case filter.VotingMethod != "":
			if tally, ok := full.ResultsByCategory.VotingMethod[string(filter.VotingMethod)]; ok {
				return tally
			}
			return EmptyTally(election)
		}
		// Party is the remaining single filter; it restricts the contest
		// set, so it always goes through the re-tabulation path below.
	}

	var matched []schema.VoteRecord
	for i := range full.Records {
		if filter.Matches(&full.Records[i]) {
			matched = append(matched, full.Records[i])
		}
	}
	tally := tallyForRecords(election, matched)

	if filter.PartyID != "" {
		restrictTallyToParty(tally, election, filter.PartyID)
	}
	return tally
}

// restrictTallyToParty discards contest tallies whose district is not
// reachable from any ballot style of the given party. The resulting contest
// set may be smaller than the original even when no other filter applied.
func restrictTallyToParty(tally *schema.Tally, election *schema.Election, partyID string) {
	districts := DistrictsForParty(election, partyID)
	districtOf := make(map[string]string)
	for _, contest := range ExpandEitherNeitherContests(election) {
		districtOf[contest.ID] = contest.DistrictID
	}
	for contestID := range tally.ContestTallies {
		if _, ok := districts[districtOf[contestID]]; !ok {
			delete(tally.ContestTallies, contestID)
		}
	}
}
