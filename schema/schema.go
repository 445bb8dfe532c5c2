// Package schema has the election, cast-vote-record and tally models shared
// by all parts of canvass.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Candidate is one enumerated option of a candidate contest.
type Candidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PartyID   string `json:"partyId,omitempty"`
	IsWriteIn bool   `json:"isWriteIn,omitempty"`
}

// Contest is a single race on the ballot. Candidate contests enumerate
// candidates and declare a seat count; yes/no contests have the two literal
// yes/no options; either/neither contests are a linked pair of ballot
// questions that expand into two independent yes/no contests for tallying.
type Contest struct {
	ID            string      `json:"id"`
	DistrictID    string      `json:"districtId"`
	Type          ContestType `json:"type"`
	Title         string      `json:"title"`
	PartyID       string      `json:"partyId,omitempty"`
	Seats         int         `json:"seats,omitempty"`
	AllowWriteIns bool        `json:"allowWriteIns,omitempty"`
	Candidates    []Candidate `json:"candidates,omitempty"`

	// Either/neither linkage. The two ids name the expanded sub-contests.
	EitherNeitherContestID string `json:"eitherNeitherContestId,omitempty"`
	EitherNeitherLabel     string `json:"eitherNeitherLabel,omitempty"`
	PickOneContestID       string `json:"pickOneContestId,omitempty"`
	PickOneLabel           string `json:"pickOneLabel,omitempty"`
}

// SeatCount returns the number of selections a valid vote may carry.
func (c *Contest) SeatCount() int {
	if c.Type == CandidateContestType && c.Seats > 0 {
		return c.Seats
	}
	return 1
}

// BallotStyle assigns a subset of districts (and therefore contests) to a
// set of precincts, optionally restricted to one party for primaries.
type BallotStyle struct {
	ID        string   `json:"id"`
	Districts []string `json:"districts"`
	Precincts []string `json:"precincts"`
	PartyID   string   `json:"partyId,omitempty"`
}

// HasDistrict reports whether the ballot style covers the given district.
func (b *BallotStyle) HasDistrict(districtID string) bool {
	for _, d := range b.Districts {
		if d == districtID {
			return true
		}
	}
	return false
}

// HasPrecinct reports whether the ballot style applies in the given precinct.
func (b *BallotStyle) HasPrecinct(precinctID string) bool {
	for _, p := range b.Precincts {
		if p == precinctID {
			return true
		}
	}
	return false
}

// Party is a political party referenced by contests and ballot styles.
type Party struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Abbrev string `json:"abbrev,omitempty"`
}

// Precinct is a named voting precinct.
type Precinct struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// District is a named electoral district.
type District struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Election is the static election definition: contests, ballot styles,
// precincts and parties. It is produced externally, validated once at load
// time, and treated as immutable by all tallying code.
type Election struct {
	Title        string        `json:"title"`
	County       string        `json:"county,omitempty"`
	Date         string        `json:"date,omitempty"`
	Districts    []District    `json:"districts,omitempty"`
	Parties      []Party       `json:"parties"`
	Precincts    []Precinct    `json:"precincts"`
	BallotStyles []BallotStyle `json:"ballotStyles"`
	Contests     []Contest     `json:"contests"`
}

// ContestByID returns the contest with the given id, or nil.
func (e *Election) ContestByID(id string) *Contest {
	for i := range e.Contests {
		if e.Contests[i].ID == id {
			return &e.Contests[i]
		}
	}
	return nil
}

// BallotStyleByID returns the ballot style with the given id, or nil.
func (e *Election) BallotStyleByID(id string) *BallotStyle {
	for i := range e.BallotStyles {
		if e.BallotStyles[i].ID == id {
			return &e.BallotStyles[i]
		}
	}
	return nil
}

// PrecinctByID returns the precinct with the given id, or nil.
func (e *Election) PrecinctByID(id string) *Precinct {
	for i := range e.Precincts {
		if e.Precincts[i].ID == id {
			return &e.Precincts[i]
		}
	}
	return nil
}

// PartyByID returns the party with the given id, or nil.
func (e *Election) PartyByID(id string) *Party {
	for i := range e.Parties {
		if e.Parties[i].ID == id {
			return &e.Parties[i]
		}
	}
	return nil
}

// ElectionDefinition wraps a parsed election together with its raw bytes and
// a content hash used to tag tabulation runs.
type ElectionDefinition struct {
	Election     Election
	ElectionData []byte
	ElectionHash string
}

// ParseElection decodes an election definition JSON document and computes
// its content hash.
func ParseElection(data []byte) (*ElectionDefinition, error) {
	var election Election
	if err := json.Unmarshal(data, &election); err != nil {
		return nil, fmt.Errorf("failed to parse election definition: %w", err)
	}
	if len(election.Contests) == 0 {
		return nil, fmt.Errorf("election definition has no contests")
	}
	if len(election.BallotStyles) == 0 {
		return nil, fmt.Errorf("election definition has no ballot styles")
	}

	sum := sha256.Sum256(data)
	return &ElectionDefinition{
		Election:     election,
		ElectionData: data,
		ElectionHash: hex.EncodeToString(sum[:]),
	}, nil
}
