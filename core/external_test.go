package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votary/canvass/schema"
)

func contestTally(contestID string, votes map[string]int, meta schema.ContestTallyMeta) *schema.ContestTally {
	tallies := make(map[string]*schema.ContestOptionTally, len(votes))
	for optionID, tally := range votes {
		tallies[optionID] = &schema.ContestOptionTally{OptionID: optionID, Label: optionID, Tally: tally}
	}
	return &schema.ContestTally{ContestID: contestID, Tallies: tallies, Metadata: meta}
}

func TestCombineContestTallies(t *testing.T) {
	a := contestTally("president", map[string]int{"alice": 3, "bob": 1}, schema.ContestTallyMeta{Ballots: 5, Overvotes: 1, Undervotes: 0})
	b := contestTally("president", map[string]int{"alice": 2, "bob": 4}, schema.ContestTallyMeta{Ballots: 6, Overvotes: 0, Undervotes: 2})

	combined := CombineContestTallies(a, b)

	assert.Equal(t, "president", combined.ContestID)
	assert.Equal(t, 5, combined.Tallies["alice"].Tally)
	assert.Equal(t, 5, combined.Tallies["bob"].Tally)
	assert.Equal(t, 11, combined.Metadata.Ballots)
	assert.Equal(t, 1, combined.Metadata.Overvotes)
	assert.Equal(t, 2, combined.Metadata.Undervotes)

	// Inputs are not mutated.
	assert.Equal(t, 3, a.Tallies["alice"].Tally)
	assert.Equal(t, 2, b.Tallies["alice"].Tally)
}

func TestCombineContestTallies_ZeroIdentity(t *testing.T) {
	a := contestTally("president", map[string]int{"alice": 3}, schema.ContestTallyMeta{Ballots: 3})
	zero := contestTally("president", map[string]int{"alice": 0}, schema.ContestTallyMeta{})

	combined := CombineContestTallies(a, zero)
	assert.Equal(t, 3, combined.Tallies["alice"].Tally)
	assert.Equal(t, 3, combined.Metadata.Ballots)
}

func TestCombineContestTallies_Associative(t *testing.T) {
	a := contestTally("president", map[string]int{"alice": 3, "bob": 1}, schema.ContestTallyMeta{Ballots: 4})
	b := contestTally("president", map[string]int{"alice": 2, "bob": 4}, schema.ContestTallyMeta{Ballots: 6, Overvotes: 1})
	c := contestTally("president", map[string]int{"alice": 1, "bob": 1}, schema.ContestTallyMeta{Ballots: 2, Undervotes: 1})

	left := CombineContestTallies(CombineContestTallies(a, b), c)
	right := CombineContestTallies(a, CombineContestTallies(b, c))

	assert.Equal(t, left, right)
	assert.Equal(t, left, CombineContestTallies(b, CombineContestTallies(a, c)))
}

func TestCombineContestTallies_DisjointOptions(t *testing.T) {
	a := contestTally("county-commissioners", map[string]int{"carol": 2}, schema.ContestTallyMeta{})
	b := contestTally("county-commissioners", map[string]int{"dave": 3}, schema.ContestTallyMeta{})

	combined := CombineContestTallies(a, b)
	assert.Equal(t, 2, combined.Tallies["carol"].Tally)
	assert.Equal(t, 3, combined.Tallies["dave"].Tally)
}

func TestCombineContestTallies_MismatchPanics(t *testing.T) {
	a := contestTally("president", nil, schema.ContestTallyMeta{})
	b := contestTally("ballot-measure-1", nil, schema.ContestTallyMeta{})

	assert.Panics(t, func() {
		CombineContestTallies(a, b)
	})
}

func TestTotalBallotsForContests_SharedStyle(t *testing.T) {
	ed := loadTestElection(t)

	// President and the commissioners race appear together on every county
	// ballot style, so their counts describe the same ballots.
	total := TotalBallotsForContests(&ed.Election, map[string]int{
		"president":            120,
		"county-commissioners": 115,
	})
	assert.Equal(t, 120, total)
}

func TestTotalBallotsForContests_DisjointStyles(t *testing.T) {
	ed := loadTestElection(t)

	// The two primary contests never share a ballot style, so their ballots
	// are additive.
	total := TotalBallotsForContests(&ed.Election, map[string]int{
		"governor-dem": 40,
		"governor-rep": 30,
	})
	assert.Equal(t, 70, total)
}

func TestTotalBallotsForContests_PrimaryJoinsCountyContests(t *testing.T) {
	ed := loadTestElection(t)

	// Style 1D presents both the county races and the Democratic primary, so
	// all three counts describe one overlapping ballot population.
	total := TotalBallotsForContests(&ed.Election, map[string]int{
		"president":    100,
		"governor-dem": 40,
	})
	assert.Equal(t, 100, total)
}

func TestNewFullElectionExternalTally(t *testing.T) {
	ed := loadTestElection(t)
	createdAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	talliesByPrecinct := map[string]map[string]*schema.ContestTally{
		"precinct-1": {
			"president": contestTally("president", map[string]int{"alice": 10, "bob": 5}, schema.ContestTallyMeta{Ballots: 16, Undervotes: 1}),
		},
		"precinct-2": {
			"president": contestTally("president", map[string]int{"alice": 4, "bob": 6}, schema.ContestTallyMeta{Ballots: 10}),
		},
	}

	external := NewFullElectionExternalTally(&ed.Election, talliesByPrecinct,
		schema.ExternalTallySourceSEMS, "county.txt", schema.VotingMethodPrecinct, createdAt)

	assert.Equal(t, schema.ExternalTallySourceSEMS, external.Source)
	assert.Equal(t, "county.txt", external.InputSourceName)
	assert.Equal(t, schema.VotingMethodPrecinct, external.VotingMethod)
	assert.Equal(t, createdAt, external.TimestampCreated)

	require.Len(t, external.ResultsByPrecinct, 2)
	assert.Equal(t, 16, external.ResultsByPrecinct["precinct-1"].NumberOfBallotsCounted)
	assert.Equal(t, 10, external.ResultsByPrecinct["precinct-2"].NumberOfBallotsCounted)

	overall := external.OverallTally
	assert.Equal(t, 26, overall.NumberOfBallotsCounted)
	president := overall.ContestTallies["president"]
	require.NotNil(t, president)
	assert.Equal(t, 14, president.Tallies["alice"].Tally)
	assert.Equal(t, 11, president.Tallies["bob"].Tally)
	assert.Equal(t, 26, president.Metadata.Ballots)
}

func TestCombineExternalTallies(t *testing.T) {
	ed := loadTestElection(t)
	createdAt := time.Now()

	sems := NewFullElectionExternalTally(&ed.Election, map[string]map[string]*schema.ContestTally{
		"precinct-1": {
			"president": contestTally("president", map[string]int{"alice": 10}, schema.ContestTallyMeta{Ballots: 10}),
		},
	}, schema.ExternalTallySourceSEMS, "county.txt", schema.VotingMethodPrecinct, createdAt)

	manual := NewFullElectionExternalTally(&ed.Election, map[string]map[string]*schema.ContestTally{
		"precinct-2": {
			"president": contestTally("president", map[string]int{"bob": 5}, schema.ContestTallyMeta{Ballots: 5}),
		},
	}, schema.ExternalTallySourceManual, "manual", schema.VotingMethodAbsentee, createdAt)

	combined := CombineExternalTallies(&ed.Election, []*schema.FullElectionExternalTally{sems, manual})

	assert.Equal(t, 15, combined.NumberOfBallotsCounted)
	president := combined.ContestTallies["president"]
	require.NotNil(t, president)
	assert.Equal(t, 10, president.Tallies["alice"].Tally)
	assert.Equal(t, 5, president.Tallies["bob"].Tally)
}

func TestFilterExternalTally(t *testing.T) {
	ed := loadTestElection(t)
	external := NewFullElectionExternalTally(&ed.Election, map[string]map[string]*schema.ContestTally{
		"precinct-1": {
			"president":    contestTally("president", map[string]int{"alice": 8}, schema.ContestTallyMeta{Ballots: 8}),
			"governor-dem": contestTally("governor-dem", map[string]int{"dee": 3}, schema.ContestTallyMeta{Ballots: 3}),
		},
		"precinct-2": {
			"president": contestTally("president", map[string]int{"bob": 4}, schema.ContestTallyMeta{Ballots: 4}),
		},
	}, schema.ExternalTallySourceSEMS, "county.txt", schema.VotingMethodPrecinct, time.Now())

	t.Run("no filter returns overall", func(t *testing.T) {
		result := FilterExternalTally(external, ed, TallyFilter{})
		assert.Same(t, external.OverallTally, result)
	})

	t.Run("scanner and batch filters yield zeros", func(t *testing.T) {
		for _, filter := range []TallyFilter{
			{ScannerID: "scanner-1"},
			{BatchID: "batch-1"},
		} {
			result := FilterExternalTally(external, ed, filter)
			assert.Equal(t, 0, result.NumberOfBallotsCounted)
			assert.Len(t, result.ContestTallies, 7)
		}
	})

	t.Run("mismatched voting method yields zeros", func(t *testing.T) {
		result := FilterExternalTally(external, ed, TallyFilter{VotingMethod: schema.VotingMethodAbsentee})
		assert.Equal(t, 0, result.NumberOfBallotsCounted)
	})

	t.Run("matching voting method passes through", func(t *testing.T) {
		result := FilterExternalTally(external, ed, TallyFilter{VotingMethod: schema.VotingMethodPrecinct})
		assert.Same(t, external.OverallTally, result)
	})

	t.Run("precinct filter selects breakdown", func(t *testing.T) {
		result := FilterExternalTally(external, ed, TallyFilter{PrecinctID: "precinct-2"})
		assert.Same(t, external.ResultsByPrecinct["precinct-2"], result)
	})

	t.Run("unknown precinct yields zeros", func(t *testing.T) {
		result := FilterExternalTally(external, ed, TallyFilter{PrecinctID: "precinct-nowhere"})
		assert.Equal(t, 0, result.NumberOfBallotsCounted)
	})

	t.Run("party filter restricts contests", func(t *testing.T) {
		result := FilterExternalTally(external, ed, TallyFilter{PartyID: "party-dem"})
		_, hasDem := result.ContestTallies["governor-dem"]
		assert.True(t, hasDem)
		_, hasPresident := result.ContestTallies["president"]
		assert.True(t, hasPresident)
	})
}

func TestEmptyExternalTally(t *testing.T) {
	ed := loadTestElection(t)
	empty := EmptyExternalTally(&ed.Election)

	assert.Equal(t, 0, empty.NumberOfBallotsCounted)
	require.Len(t, empty.ContestTallies, 7)
	for _, ct := range empty.ContestTallies {
		for _, opt := range ct.Tallies {
			assert.Equal(t, 0, opt.Tally)
		}
	}
}
