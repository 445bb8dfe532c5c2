package schema

// ContestOptionTally is the vote count for one option of one contest.
type ContestOptionTally struct {
	OptionID string `json:"optionId"`
	Label    string `json:"label"`
	Tally    int    `json:"tally"`
}

// ContestTallyMeta carries the per-contest ballot accounting computed in the
// metadata pass. Every counted ballot contributes exactly SeatCount vote
// units split across valid selections, undervotes and overvotes.
type ContestTallyMeta struct {
	Ballots    int `json:"ballots"`
	Overvotes  int `json:"overvotes"`
	Undervotes int `json:"undervotes"`
}

// ContestTally is the tabulation result for a single contest.
type ContestTally struct {
	ContestID string                         `json:"contestId"`
	Tallies   map[string]*ContestOptionTally `json:"tallies"`
	Metadata  ContestTallyMeta               `json:"metadata"`
}

// Tally is the tabulation result for some partition of the ballots, for
// example one precinct or one scanner.
type Tally struct {
	NumberOfBallotsCounted     int                      `json:"numberOfBallotsCounted"`
	ContestTallies             map[string]*ContestTally `json:"contestTallies"`
	BallotCountsByVotingMethod map[VotingMethod]int     `json:"ballotCountsByVotingMethod"`
}

// ResultsByCategory holds one per-key tally breakdown for each partition
// axis. A fixed-shape struct is used instead of a category-keyed map so
// every category is populated by construction.
type ResultsByCategory struct {
	Precinct     map[string]*Tally `json:"precinct"`
	Scanner      map[string]*Tally `json:"scanner"`
	Party        map[string]*Tally `json:"party"`
	Batch        map[string]*Tally `json:"batch"`
	VotingMethod map[string]*Tally `json:"votingMethod"`
}

// FullElectionTally is an immutable-once-built snapshot of a full
// tabulation run: the overall tally, every per-category breakdown, and the
// normalized vote records the snapshot was built from. The records allow
// composite filter queries to re-tabulate the matching subset without
// re-parsing raw CVR text.
type FullElectionTally struct {
	OverallTally      *Tally            `json:"overallTally"`
	ResultsByCategory ResultsByCategory `json:"resultsByCategory"`
	Records           []VoteRecord      `json:"-"`
}
