package schema

// Custom string types for type safety.
type (
	// ContestType distinguishes candidate, yes/no and either/neither contests.
	ContestType string

	// VotingMethod is the method a ballot was cast by.
	VotingMethod string

	// TallyCategory is one of the partition axes of a full election tally.
	TallyCategory string

	// ExternalTallySource identifies where an external tally came from.
	ExternalTallySource string

	// OutputMode represents the format of report output.
	OutputMode string

	// DatabaseBackend represents the database backend for the tally store.
	DatabaseBackend string
)

// All contest types supported.
const (
	CandidateContestType     ContestType = "candidate"
	YesNoContestType         ContestType = "yesno"
	EitherNeitherContestType ContestType = "ms-either-neither"
)

// All voting methods supported. CVR ballot types map onto these; anything
// unrecognized lands in the Unknown bucket rather than being dropped.
const (
	VotingMethodPrecinct VotingMethod = "standard"
	VotingMethodAbsentee VotingMethod = "absentee"
	VotingMethodUnknown  VotingMethod = "unknown"
)

// AllVotingMethods lists every voting method bucket in display order.
var AllVotingMethods = []VotingMethod{VotingMethodPrecinct, VotingMethodAbsentee, VotingMethodUnknown}

// ValidVotingMethods lists all valid voting method filters.
var ValidVotingMethods = map[VotingMethod]struct{}{
	VotingMethodPrecinct: {},
	VotingMethodAbsentee: {},
	VotingMethodUnknown:  {},
}

// All tally categories supported.
const (
	TallyCategoryPrecinct     TallyCategory = "precinct"
	TallyCategoryScanner      TallyCategory = "scanner"
	TallyCategoryParty        TallyCategory = "party"
	TallyCategoryBatch        TallyCategory = "batch"
	TallyCategoryVotingMethod TallyCategory = "votingmethod"
)

// All external tally sources supported.
const (
	ExternalTallySourceSEMS   ExternalTallySource = "sems"
	ExternalTallySourceManual ExternalTallySource = "manual"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStoreBackends lists all valid store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidExternalTallySources lists all valid external tally sources.
var ValidExternalTallySources = map[ExternalTallySource]struct{}{
	ExternalTallySourceSEMS:   {},
	ExternalTallySourceManual: {},
}

// VoteMetadataPrefix namespaces CVR metadata fields apart from per-contest
// vote keys. Unknown prefixed fields are ignored for forward compatibility.
const VoteMetadataPrefix = "_"

// Reserved CVR metadata field names.
const (
	CVRBallotIDField    = "_ballotId"
	CVRBallotStyleField = "_ballotStyleId"
	CVRPrecinctField    = "_precinctId"
	CVRScannerField     = "_scannerId"
	CVRTestBallotField  = "_testBallot"
	CVRBatchIDField     = "_batchId"
	CVRPageNumberField  = "_pageNumber"
	CVRPageNumbersField = "_pageNumbers"
	CVRLocalesField     = "_locales"
	CVRBallotTypeField  = "_ballotType"
)

// Option ids for yes/no contests.
const (
	OptionYes = "yes"
	OptionNo  = "no"
)

// WriteInID is the canonical sentinel id all recognized write-in spellings
// normalize to.
const WriteInID = "write-in"

// WriteInLabel is the display label for the aggregate write-in option.
const WriteInLabel = "Write-In"
