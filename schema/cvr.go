package schema

// BallotLocale describes the language(s) a ballot was rendered in.
type BallotLocale struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// VotesDict maps a contest id to the selected option ids for that contest.
// Candidate contests carry candidate ids (write-ins already normalized to
// the canonical sentinel); yes/no contests carry ["yes"], ["no"] or [].
type VotesDict map[string][]string

// CastVoteRecord is one voter's recorded selections plus scan metadata, as
// decoded from a single CVR file line.
type CastVoteRecord struct {
	BallotID      string
	BallotStyleID string
	PrecinctID    string
	ScannerID     string
	BatchID       string
	TestBallot    bool
	BallotType    string
	PageNumber    *int
	PageNumbers   []int
	Locales       *BallotLocale
	Votes         VotesDict
}

// VoteRecord is the normalized form of a CastVoteRecord retained for
// tallying: write-ins collapsed, party and voting method derived, batch id
// fall-back applied. Partitioning and filtered re-tabulation both run over
// these records rather than raw CVR text.
type VoteRecord struct {
	BallotStyleID string
	PrecinctID    string
	ScannerID     string
	BatchID       string
	PartyID       string
	VotingMethod  VotingMethod
	Votes         VotesDict
}
