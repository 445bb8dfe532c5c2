package sems

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votary/canvass/schema"
)

func loadTestElection(t *testing.T) *schema.ElectionDefinition {
	t.Helper()
	data, err := os.ReadFile("../testdata/election.json")
	require.NoError(t, err)
	ed, err := schema.ParseElection(data)
	require.NoError(t, err)
	return ed
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "alice", stripQuotes("'alice'"))
	assert.Equal(t, "alice", stripQuotes(`"alice"`))
	assert.Equal(t, "alice", stripQuotes("`alice`"))
	assert.Equal(t, "alice", stripQuotes("  'alice'  "))
	assert.Equal(t, "alice", stripQuotes("alice"))
	// Mismatched quotes are left alone.
	assert.Equal(t, `'alice"`, stripQuotes(`'alice"`))
	// Only one layer is stripped.
	assert.Equal(t, "'alice'", stripQuotes("''alice''"))
	assert.Equal(t, "", stripQuotes(""))
	assert.Equal(t, "'", stripQuotes("'"))
}

func TestParseRows(t *testing.T) {
	content := "10,'precinct-1','president','President','0','NP','alice','Alice Adams','0','NP',12\n" +
		"short,row\n" +
		"10,'precinct-1','president','President','0','NP','bob','Bob Brown','0','NP',notanumber\n" +
		"10,\"precinct-2\",\"president\",\"President\",\"0\",\"NP\",\"bob\",\"Bob Brown\",\"0\",\"NP\",7\n"

	rows := parseRows(content)

	require.Len(t, rows, 2)
	assert.Equal(t, "precinct-1", rows[0].precinctID)
	assert.Equal(t, "president", rows[0].contestID)
	assert.Equal(t, "alice", rows[0].candidateID)
	assert.Equal(t, "Alice Adams", rows[0].candidateName)
	assert.Equal(t, 12, rows[0].votes)
	assert.Equal(t, "precinct-2", rows[1].precinctID)
	assert.Equal(t, 7, rows[1].votes)
}

// semsRow formats one SEMS line for tests.
func semsRow(precinctID, contestID, candidateID, candidateName string, votes string) string {
	return "10,'" + precinctID + "','" + contestID + "','Title','0','NP','" + candidateID + "','" + candidateName + "','0','NP'," + votes + "\n"
}

func TestValidate(t *testing.T) {
	ed := loadTestElection(t)

	t.Run("valid content", func(t *testing.T) {
		content := semsRow("precinct-1", "president", "alice", "Alice Adams", "10") +
			semsRow("precinct-1", "president", "0", "OVER VOTES", "1") +
			semsRow("precinct-1", "president", "1", "UNDER VOTES", "2") +
			semsRow("precinct-1", "ballot-measure-1", "yes", "YES", "5")
		assert.Empty(t, Validate(ed, content))
	})

	t.Run("unknown precinct", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-99", "president", "alice", "Alice Adams", "10"))
		require.Len(t, errs, 1)
		assert.Equal(t, `precinct "precinct-99" in tally file is not in the election definition`, errs[0])
	})

	t.Run("unknown contest", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-1", "mayor", "alice", "Alice Adams", "10"))
		require.Len(t, errs, 1)
		assert.Equal(t, `contest "mayor" in tally file is not in the election definition`, errs[0])
	})

	t.Run("unknown candidate", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-1", "president", "zed", "Zed Zulu", "10"))
		require.Len(t, errs, 1)
		assert.Equal(t, `candidate "zed" in tally file is not in contest "president"`, errs[0])
	})

	t.Run("invalid yesno option", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-1", "ballot-measure-1", "maybe", "MAYBE", "10"))
		require.Len(t, errs, 1)
		assert.Equal(t, `option "maybe" in tally file is not valid for contest "ballot-measure-1"`, errs[0])
	})

	t.Run("zero-vote write-in tolerated without write-ins", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-1", "president", "2", "WRITE-IN", "0"))
		assert.Empty(t, errs)
	})

	t.Run("nonzero write-in rejected without write-ins", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-1", "president", "2", "WRITE-IN", "3"))
		require.Len(t, errs, 1)
		assert.Equal(t, `contest "president" does not allow write-ins but tally file has 3 write-in votes for it`, errs[0])
	})

	t.Run("write-in allowed where contest permits", func(t *testing.T) {
		errs := Validate(ed, semsRow("precinct-1", "county-commissioners", "2", "WRITE-IN", "3"))
		assert.Empty(t, errs)
	})

	t.Run("expanded either neither contests validate", func(t *testing.T) {
		content := semsRow("precinct-3", "measure-420A", "yes", "FOR EITHER", "5") +
			semsRow("precinct-3", "measure-420B", "no", "FOR 420B", "2")
		assert.Empty(t, Validate(ed, content))
	})
}

func TestConvert(t *testing.T) {
	ed := loadTestElection(t)
	createdAt := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)

	content := semsRow("precinct-1", "president", "alice", "Alice Adams", "10") +
		semsRow("precinct-1", "president", "bob", "Bob Brown", "6") +
		semsRow("precinct-1", "president", "0", "OVER VOTES", "1") +
		semsRow("precinct-1", "president", "1", "UNDER VOTES", "3") +
		semsRow("precinct-2", "president", "alice", "Alice Adams", "4")

	external, err := Convert(ed, content, "county.txt", createdAt)
	require.NoError(t, err)

	assert.Equal(t, schema.ExternalTallySourceSEMS, external.Source)
	assert.Equal(t, "county.txt", external.InputSourceName)
	assert.Equal(t, schema.VotingMethodPrecinct, external.VotingMethod)
	assert.Equal(t, createdAt, external.TimestampCreated)

	p1 := external.ResultsByPrecinct["precinct-1"]
	require.NotNil(t, p1)
	president := p1.ContestTallies["president"]
	require.NotNil(t, president)
	assert.Equal(t, 10, president.Tallies["alice"].Tally)
	assert.Equal(t, 6, president.Tallies["bob"].Tally)
	// 16 valid single-seat votes plus the reported over and under votes.
	assert.Equal(t, 20, president.Metadata.Ballots)
	assert.Equal(t, 1, president.Metadata.Overvotes)
	assert.Equal(t, 3, president.Metadata.Undervotes)

	overall := external.OverallTally.ContestTallies["president"]
	require.NotNil(t, overall)
	assert.Equal(t, 14, overall.Tallies["alice"].Tally)
	assert.Equal(t, 24, external.OverallTally.NumberOfBallotsCounted)
}

func TestConvert_WriteInRollup(t *testing.T) {
	ed := loadTestElection(t)

	// Several named write-in rows for one contest roll into the single
	// write-in entry.
	content := semsRow("precinct-1", "county-commissioners", "2", "MICKEY MOUSE", "2") +
		semsRow("precinct-1", "county-commissioners", "2", "DONALD DUCK", "5") +
		semsRow("precinct-1", "county-commissioners", "carol", "Carol Chen", "9")

	external, err := Convert(ed, content, "county.txt", time.Now())
	require.NoError(t, err)

	ct := external.ResultsByPrecinct["precinct-1"].ContestTallies["county-commissioners"]
	require.NotNil(t, ct)
	assert.Equal(t, 7, ct.Tallies[schema.WriteInID].Tally)
	assert.Equal(t, 9, ct.Tallies["carol"].Tally)
	// 16 valid votes over four seats.
	assert.Equal(t, 4, ct.Metadata.Ballots)
}

func TestConvert_MultiSeatBallotApproximation(t *testing.T) {
	ed := loadTestElection(t)

	content := semsRow("precinct-1", "county-commissioners", "carol", "Carol Chen", "8") +
		semsRow("precinct-1", "county-commissioners", "dave", "Dave Diaz", "4") +
		semsRow("precinct-1", "county-commissioners", "0", "OVER VOTES", "4") +
		semsRow("precinct-1", "county-commissioners", "1", "UNDER VOTES", "2")

	external, err := Convert(ed, content, "county.txt", time.Now())
	require.NoError(t, err)

	ct := external.ResultsByPrecinct["precinct-1"].ContestTallies["county-commissioners"]
	// 12 valid votes over four seats, plus reported over and under votes.
	assert.Equal(t, 12/4+4+2, ct.Metadata.Ballots)
	assert.Equal(t, 4, ct.Metadata.Overvotes)
	assert.Equal(t, 2, ct.Metadata.Undervotes)
}

func TestConvert_RefusesInvalidContent(t *testing.T) {
	ed := loadTestElection(t)

	_, err := Convert(ed, semsRow("precinct-1", "mayor", "alice", "Alice Adams", "10"), "county.txt", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `contest "mayor"`)
}
