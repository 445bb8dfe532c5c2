package core

import (
	"github.com/votary/canvass/schema"
)

// TabulateCVRs runs a full tabulation over validated cast vote records and
// assembles the overall tally plus every per-category breakdown. Building a
// new snapshot never mutates a prior one; every map in the result is built
// fresh within this call.
//
// CVRs that failed structural validation must be filtered out by the caller
// first. The builder does not re-validate and panics on integrity errors
// such as an unknown ballot style.
func TabulateCVRs(ed *schema.ElectionDefinition, cvrs []schema.CastVoteRecord) *schema.FullElectionTally {
	election := &ed.Election
	pairs := BuildEitherNeitherPairs(election)

	records := make([]schema.VoteRecord, 0, len(cvrs))
	for i := range cvrs {
		record := NewVoteRecord(election, &cvrs[i])
		dropLonePairKeys(pairs, record.Votes)
		records = append(records, record)
	}

	results := schema.ResultsByCategory{
		Precinct:     make(map[string]*schema.Tally),
		Scanner:      make(map[string]*schema.Tally),
		Party:        make(map[string]*schema.Tally),
		Batch:        make(map[string]*schema.Tally),
		VotingMethod: make(map[string]*schema.Tally),
	}

	// Precinct breakdown carries an explicit zero entry for every precinct
	// in the election, never a silent omission.
	byPrecinct := partitionRecords(records, func(r *schema.VoteRecord) string { return r.PrecinctID })
	for _, precinct := range election.Precincts {
		if _, ok := byPrecinct[precinct.ID]; !ok {
			byPrecinct[precinct.ID] = nil
		}
	}
	for key, group := range byPrecinct {
		results.Precinct[key] = tallyForRecords(election, group)
	}

	for key, group := range partitionRecords(records, func(r *schema.VoteRecord) string { return r.ScannerID }) {
		results.Scanner[key] = tallyForRecords(election, group)
	}
	for key, group := range partitionRecords(records, func(r *schema.VoteRecord) string { return r.BatchID }) {
		results.Batch[key] = tallyForRecords(election, group)
	}
	for key, group := range partitionRecords(records, func(r *schema.VoteRecord) string { return string(r.VotingMethod) }) {
		results.VotingMethod[key] = tallyForRecords(election, group)
	}

	// Party breakdown is restricted to parties that actually have primary
	// ballot styles, each with an explicit zero entry.
	byParty := partitionRecords(records, func(r *schema.VoteRecord) string { return r.PartyID })
	for _, party := range PartiesWithBallotStyles(election) {
		group := byParty[party.ID]
		results.Party[party.ID] = tallyForRecords(election, group)
	}

	return &schema.FullElectionTally{
		OverallTally:      tallyForRecords(election, records),
		ResultsByCategory: results,
		Records:           records,
	}
}

// dropLonePairKeys removes a linked sub-contest key when its partner key is
// absent, so a partially populated either/neither pair counts as absent in
// both the option and metadata passes. This mirrors upstream scanner
// behavior where the pair is always written together; a lone key indicates
// a scanner fault and is deliberately not counted.
func dropLonePairKeys(pairs *EitherNeitherPairs, votes schema.VotesDict) {
	for contestID := range votes {
		partner, ok := pairs.PartnerOf(contestID)
		if !ok {
			continue
		}
		if _, partnerPresent := votes[partner]; !partnerPresent {
			delete(votes, contestID)
		}
	}
}

// partitionRecords groups records by the given key function.
func partitionRecords(records []schema.VoteRecord, keyOf func(*schema.VoteRecord) string) map[string][]schema.VoteRecord {
	groups := make(map[string][]schema.VoteRecord)
	for i := range records {
		key := keyOf(&records[i])
		groups[key] = append(groups[key], records[i])
	}
	return groups
}

// tallyForRecords tabulates one partition of normalized vote records: the
// option-count pass, the companion metadata pass, and ballot counts by
// voting method.
func tallyForRecords(election *schema.Election, records []schema.VoteRecord) *schema.Tally {
	contestTallies := TallyVotesByContest(election, records)

	// Metadata pass: among records whose ballot style includes a contest, a
	// present selection larger than the seat allowance counts as overvotes,
	// a smaller one as undervotes; every present selection counts the
	// ballot. Each counted ballot contributes exactly SeatCount vote units.
	styleContests := make(map[string][]schema.Contest)
	for i := range records {
		record := &records[i]
		contests, ok := styleContests[record.BallotStyleID]
		if !ok {
			style := election.BallotStyleByID(record.BallotStyleID)
			contests = ContestsForBallotStyle(election, style)
			styleContests[record.BallotStyleID] = contests
		}
		for j := range contests {
			contest := &contests[j]
			selections, present := record.Votes[contest.ID]
			if !present {
				continue
			}
			tally := contestTallies[contest.ID]
			seats := contest.SeatCount()
			tally.Metadata.Ballots++
			if len(selections) > seats {
				tally.Metadata.Overvotes += seats
			} else {
				tally.Metadata.Undervotes += seats - len(selections)
			}
		}
	}

	ballotCounts := make(map[schema.VotingMethod]int, len(schema.AllVotingMethods))
	for _, method := range schema.AllVotingMethods {
		ballotCounts[method] = 0
	}
	for i := range records {
		ballotCounts[records[i].VotingMethod]++
	}

	return &schema.Tally{
		NumberOfBallotsCounted:     len(records),
		ContestTallies:             contestTallies,
		BallotCountsByVotingMethod: ballotCounts,
	}
}
