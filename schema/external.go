package schema

import "time"

// ExternalTally is a tabulation result sourced from outside the
// ballot-scanning pipeline. It is structurally parallel to Tally but has no
// per-voting-method ballot counts: an external source declares a single
// voting method for all of its ballots.
type ExternalTally struct {
	NumberOfBallotsCounted int                      `json:"numberOfBallotsCounted"`
	ContestTallies         map[string]*ContestTally `json:"contestTallies"`
}

// FullElectionExternalTally is one imported or hand-entered tally source:
// an overall tally, a per-precinct breakdown, and provenance. Instances are
// created once per import or save action and replaced wholesale on
// re-import; they are never mutated field-by-field.
type FullElectionExternalTally struct {
	OverallTally      *ExternalTally            `json:"overallTally"`
	ResultsByPrecinct map[string]*ExternalTally `json:"resultsByPrecinct"`

	Source           ExternalTallySource `json:"source"`
	InputSourceName  string              `json:"inputSourceName"`
	VotingMethod     VotingMethod        `json:"votingMethod"`
	TimestampCreated time.Time           `json:"timestampCreated"`
}
