package schema

import "strings"

// writeInSpellings is the explicit allow-list of recognized write-in id
// prefixes. Historical CVR exports spell the sentinel several ways; new
// spellings must be added here deliberately, never inferred.
var writeInSpellings = []string{
	"write-in",
	"writein",
	"__write-in",
	"__writein",
}

// IsWriteInOption reports whether an option id is any accepted spelling of
// the write-in sentinel.
func IsWriteInOption(optionID string) bool {
	for _, s := range writeInSpellings {
		if strings.HasPrefix(optionID, s) {
			return true
		}
	}
	return false
}

// NormalizeWriteInID collapses any accepted write-in spelling to the
// canonical WriteInID. Other option ids pass through unchanged.
func NormalizeWriteInID(optionID string) string {
	if IsWriteInOption(optionID) {
		return WriteInID
	}
	return optionID
}

// VotingMethodForBallotType maps a CVR ballot-type string onto a voting
// method bucket. Absent or unrecognized types land in the unknown bucket.
func VotingMethodForBallotType(ballotType string) VotingMethod {
	switch ballotType {
	case string(VotingMethodAbsentee):
		return VotingMethodAbsentee
	case string(VotingMethodPrecinct):
		return VotingMethodPrecinct
	default:
		return VotingMethodUnknown
	}
}
