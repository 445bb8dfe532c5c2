package core

import (
	"fmt"

	"github.com/votary/canvass/schema"
)

// missingBatchPrefix groups CVRs that carry no batch id. The scanner id is
// appended so distinct scanners never collapse into one synthetic batch.
const missingBatchPrefix = "missing-batch-"

// NewContestTally returns a contest tally with every valid option
// enumerated at zero: candidates (plus the synthetic write-in option when
// allowed) for candidate contests, the literal yes/no options otherwise.
func NewContestTally(contest *schema.Contest) *schema.ContestTally {
	tallies := make(map[string]*schema.ContestOptionTally)
	switch contest.Type {
	case schema.CandidateContestType:
		for _, candidate := range contest.Candidates {
			tallies[candidate.ID] = &schema.ContestOptionTally{
				OptionID: candidate.ID,
				Label:    candidate.Name,
			}
		}
		if contest.AllowWriteIns {
			tallies[schema.WriteInID] = &schema.ContestOptionTally{
				OptionID: schema.WriteInID,
				Label:    schema.WriteInLabel,
			}
		}
	default:
		tallies[schema.OptionYes] = &schema.ContestOptionTally{OptionID: schema.OptionYes, Label: "Yes"}
		tallies[schema.OptionNo] = &schema.ContestOptionTally{OptionID: schema.OptionNo, Label: "No"}
	}
	return &schema.ContestTally{
		ContestID: contest.ID,
		Tallies:   tallies,
	}
}

// TallyVotesByContest produces one contest tally per expanded contest from
// a set of normalized vote records. Only option counts are filled here;
// ballot/overvote/undervote metadata comes from the companion metadata pass
// in the builder. Selections exceeding the seat allowance or empty
// selections contribute nothing to option counts.
func TallyVotesByContest(election *schema.Election, records []schema.VoteRecord) map[string]*schema.ContestTally {
	contestTallies := make(map[string]*schema.ContestTally)
	expanded := ExpandEitherNeitherContests(election)

	for i := range expanded {
		contest := &expanded[i]
		tally := NewContestTally(contest)
		seats := contest.SeatCount()

		for _, record := range records {
			selections, ok := record.Votes[contest.ID]
			if !ok {
				continue
			}
			if len(selections) == 0 || len(selections) > seats {
				continue
			}
			for _, optionID := range selections {
				if optionTally, ok := tally.Tallies[optionID]; ok {
					optionTally.Tally++
				}
			}
		}
		contestTallies[contest.ID] = tally
	}
	return contestTallies
}

// NewVoteRecord normalizes a validated cast vote record for tallying:
// write-in spellings collapse to the canonical sentinel, the ballot style's
// party and the ballot-type voting method are derived, and missing batch
// ids fall back to a per-scanner synthetic batch key.
func NewVoteRecord(election *schema.Election, cvr *schema.CastVoteRecord) schema.VoteRecord {
	style := election.BallotStyleByID(cvr.BallotStyleID)
	if style == nil {
		// Callers tabulate only CVRs that passed structural validation, so
		// an unknown ballot style here is a data-integrity bug.
		panic(fmt.Sprintf("unknown ballot style %q referenced by ballot %q", cvr.BallotStyleID, cvr.BallotID))
	}

	votes := make(schema.VotesDict, len(cvr.Votes))
	for contestID, selections := range cvr.Votes {
		normalized := make([]string, len(selections))
		for i, optionID := range selections {
			normalized[i] = schema.NormalizeWriteInID(optionID)
		}
		votes[contestID] = normalized
	}

	batchID := cvr.BatchID
	if batchID == "" {
		batchID = missingBatchPrefix + cvr.ScannerID
	}

	return schema.VoteRecord{
		BallotStyleID: cvr.BallotStyleID,
		PrecinctID:    cvr.PrecinctID,
		ScannerID:     cvr.ScannerID,
		BatchID:       batchID,
		PartyID:       PartyIDForBallotStyle(election, style),
		VotingMethod:  schema.VotingMethodForBallotType(cvr.BallotType),
		Votes:         votes,
	}
}
