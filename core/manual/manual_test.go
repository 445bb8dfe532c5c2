package manual

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

func TestParse(t *testing.T) {
	file, err := Parse([]byte(`{
		"precincts": {
			"precinct-1": {
				"president": {"options": {"alice": 10, "bob": 4}, "ballots": 15, "undervotes": 1}
			}
		}
	}`))
	require.NoError(t, err)
	require.Len(t, file.Precincts, 1)

	entry := file.Precincts["precinct-1"]["president"]
	assert.Equal(t, 10, entry.Options["alice"])
	assert.Equal(t, 15, entry.Ballots)
	assert.Equal(t, 1, entry.Undervotes)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse manual tally file")

	_, err = Parse([]byte(`{"precincts": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no precinct entries")
}

func TestValidate(t *testing.T) {
	ed := loadTestElection(t)

	file := &File{Precincts: map[string]map[string]ContestEntry{
		"precinct-99": {
			"president": {Options: map[string]int{"alice": 1}},
		},
		"precinct-1": {
			"mayor":     {Options: map[string]int{"alice": 1}},
			"president": {Options: map[string]int{"zed": 1}},
		},
	}}

	problems := Validate(ed, file)

	assert.Contains(t, problems, `precinct "precinct-99" is not in the election definition`)
	assert.Contains(t, problems, `contest "mayor" is not in the election definition`)
	assert.Contains(t, problems, `option "zed" is not valid for contest "president"`)
	assert.Len(t, problems, 3)
}

func TestValidate_WriteInOptionAccepted(t *testing.T) {
	ed := loadTestElection(t)

	file := &File{Precincts: map[string]map[string]ContestEntry{
		"precinct-1": {
			"county-commissioners": {Options: map[string]int{schema.WriteInID: 3}},
		},
	}}
	assert.Empty(t, Validate(ed, file))

	// The same option on a contest without write-ins is invalid.
	file = &File{Precincts: map[string]map[string]ContestEntry{
		"precinct-1": {
			"president": {Options: map[string]int{schema.WriteInID: 3}},
		},
	}}
	problems := Validate(ed, file)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], `option "write-in" is not valid for contest "president"`)
}

func TestConvert(t *testing.T) {
	ed := loadTestElection(t)
	createdAt := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	file := &File{Precincts: map[string]map[string]ContestEntry{
		"precinct-1": {
			"president": {
				Options:    map[string]int{"alice": 12, "bob": 8},
				Ballots:    22,
				Overvotes:  1,
				Undervotes: 1,
			},
		},
		"precinct-2": {
			"president": {
				Options: map[string]int{"bob": 5},
				Ballots: 5,
			},
		},
	}}

	external, err := Convert(ed, file, schema.VotingMethodAbsentee, createdAt)
	require.NoError(t, err)

	assert.Equal(t, schema.ExternalTallySourceManual, external.Source)
	assert.Equal(t, "manual", external.InputSourceName)
	assert.Equal(t, schema.VotingMethodAbsentee, external.VotingMethod)
	assert.Equal(t, createdAt, external.TimestampCreated)

	p1 := external.ResultsByPrecinct["precinct-1"].ContestTallies["president"]
	require.NotNil(t, p1)
	assert.Equal(t, 12, p1.Tallies["alice"].Tally)
	assert.Equal(t, 22, p1.Metadata.Ballots)
	assert.Equal(t, 1, p1.Metadata.Overvotes)

	overall := external.OverallTally.ContestTallies["president"]
	assert.Equal(t, 13, overall.Tallies["bob"].Tally)
	assert.Equal(t, 27, external.OverallTally.NumberOfBallotsCounted)
}

func TestConvert_VotingMethodOverride(t *testing.T) {
	ed := loadTestElection(t)

	file := &File{
		VotingMethod: "standard",
		Precincts: map[string]map[string]ContestEntry{
			"precinct-1": {
				"president": {Options: map[string]int{"alice": 1}, Ballots: 1},
			},
		},
	}

	// The document's declared method overrides the argument.
	external, err := Convert(ed, file, schema.VotingMethodAbsentee, time.Now())
	require.NoError(t, err)
	assert.Equal(t, schema.VotingMethodPrecinct, external.VotingMethod)
}

func TestConvert_InvalidVotingMethod(t *testing.T) {
	ed := loadTestElection(t)

	file := &File{
		VotingMethod: "carrier-pigeon",
		Precincts: map[string]map[string]ContestEntry{
			"precinct-1": {
				"president": {Options: map[string]int{"alice": 1}, Ballots: 1},
			},
		},
	}

	_, err := Convert(ed, file, schema.VotingMethodPrecinct, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid voting method "carrier-pigeon"`)
}

func TestConvert_RefusesInvalidFile(t *testing.T) {
	ed := loadTestElection(t)

	file := &File{Precincts: map[string]map[string]ContestEntry{
		"precinct-1": {
			"mayor": {Options: map[string]int{"alice": 1}},
		},
	}}

	_, err := Convert(ed, file, schema.VotingMethodPrecinct, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}
