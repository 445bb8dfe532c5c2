// Package core has the tabulation logic: election accessors, the contest
// tally aggregator, the full-election tally builder, the tally filter
// engine and the external-tally primitives.
package core

import (
	"strings"

	"github.com/votary/canvass/schema"
)

// EitherNeitherPairs is the bidirectional mapping between either/neither
// contests and their two expanded yes/no sub-contests. It is built once
// from the election definition rather than recomputed per call.
type EitherNeitherPairs struct {
	parentBySub  map[string]string
	subsByParent map[string][2]string
}

// BuildEitherNeitherPairs computes the expansion table for an election.
func BuildEitherNeitherPairs(election *schema.Election) *EitherNeitherPairs {
	pairs := &EitherNeitherPairs{
		parentBySub:  make(map[string]string),
		subsByParent: make(map[string][2]string),
	}
	for i := range election.Contests {
		c := &election.Contests[i]
		if c.Type != schema.EitherNeitherContestType {
			continue
		}
		pairs.parentBySub[c.EitherNeitherContestID] = c.ID
		pairs.parentBySub[c.PickOneContestID] = c.ID
		pairs.subsByParent[c.ID] = [2]string{c.EitherNeitherContestID, c.PickOneContestID}
	}
	return pairs
}

// ParentOf returns the parent either/neither contest id for an expanded
// sub-contest id.
func (p *EitherNeitherPairs) ParentOf(subContestID string) (string, bool) {
	parent, ok := p.parentBySub[subContestID]
	return parent, ok
}

// SubContests returns the expanded sub-contest ids for a parent contest id.
func (p *EitherNeitherPairs) SubContests(parentID string) (string, string, bool) {
	subs, ok := p.subsByParent[parentID]
	return subs[0], subs[1], ok
}

// PartnerOf returns the other sub-contest of the linked pair that
// subContestID belongs to.
func (p *EitherNeitherPairs) PartnerOf(subContestID string) (string, bool) {
	parent, ok := p.parentBySub[subContestID]
	if !ok {
		return "", false
	}
	subs := p.subsByParent[parent]
	if subs[0] == subContestID {
		return subs[1], true
	}
	return subs[0], true
}

// ExpandEitherNeitherContests returns the election's contests with every
// either/neither pair replaced by its two independent yes/no sub-contests.
// All tallying runs over the expanded list; the collapsed form only matters
// for display and filtering.
func ExpandEitherNeitherContests(election *schema.Election) []schema.Contest {
	expanded := make([]schema.Contest, 0, len(election.Contests))
	for i := range election.Contests {
		c := election.Contests[i]
		if c.Type != schema.EitherNeitherContestType {
			expanded = append(expanded, c)
			continue
		}

		eitherNeither := schema.Contest{
			ID:         c.EitherNeitherContestID,
			DistrictID: c.DistrictID,
			Type:       schema.YesNoContestType,
			Title:      c.EitherNeitherLabel,
			PartyID:    c.PartyID,
		}
		if eitherNeither.Title == "" {
			eitherNeither.Title = c.Title + " (either/neither)"
		}
		pickOne := schema.Contest{
			ID:         c.PickOneContestID,
			DistrictID: c.DistrictID,
			Type:       schema.YesNoContestType,
			Title:      c.PickOneLabel,
			PartyID:    c.PartyID,
		}
		if pickOne.Title == "" {
			pickOne.Title = c.Title + " (pick one)"
		}
		expanded = append(expanded, eitherNeither, pickOne)
	}
	return expanded
}

// BallotStylesForPrecinct returns every ballot style applicable in the
// given precinct.
func BallotStylesForPrecinct(election *schema.Election, precinctID string) []schema.BallotStyle {
	var styles []schema.BallotStyle
	for i := range election.BallotStyles {
		if election.BallotStyles[i].HasPrecinct(precinctID) {
			styles = append(styles, election.BallotStyles[i])
		}
	}
	return styles
}

// ContestsForBallotStyle returns the expanded contests presented by a
// ballot style: district must match, and party-affiliated contests only
// appear on ballot styles of the same party.
func ContestsForBallotStyle(election *schema.Election, style *schema.BallotStyle) []schema.Contest {
	var contests []schema.Contest
	for _, c := range ExpandEitherNeitherContests(election) {
		if !style.HasDistrict(c.DistrictID) {
			continue
		}
		if c.PartyID != "" && c.PartyID != style.PartyID {
			continue
		}
		contests = append(contests, c)
	}
	return contests
}

// PartyIDForBallotStyle returns the party a ballot style belongs to: the
// declared party id when present, otherwise a trailing party abbreviation
// matched against the election's parties (legacy ballot style ids encode
// the party as a suffix, e.g. "2R").
func PartyIDForBallotStyle(election *schema.Election, style *schema.BallotStyle) string {
	if style.PartyID != "" {
		return style.PartyID
	}
	for i := range election.Parties {
		party := &election.Parties[i]
		if party.Abbrev == "" {
			continue
		}
		if strings.HasSuffix(style.ID, party.Abbrev) && len(style.ID) > len(party.Abbrev) {
			return party.ID
		}
	}
	return ""
}

// DistrictsForParty returns the set of district ids reachable from ballot
// styles belonging to the given party. A party filter restricts contest
// sets to contests in these districts.
func DistrictsForParty(election *schema.Election, partyID string) map[string]struct{} {
	districts := make(map[string]struct{})
	for i := range election.BallotStyles {
		style := &election.BallotStyles[i]
		if PartyIDForBallotStyle(election, style) != partyID {
			continue
		}
		for _, d := range style.Districts {
			districts[d] = struct{}{}
		}
	}
	return districts
}

// PartiesWithBallotStyles returns the parties that actually have primary
// ballot styles in the election, in definition order. The party breakdown
// of a full tally is restricted to these.
func PartiesWithBallotStyles(election *schema.Election) []schema.Party {
	seen := make(map[string]struct{})
	for i := range election.BallotStyles {
		if id := PartyIDForBallotStyle(election, &election.BallotStyles[i]); id != "" {
			seen[id] = struct{}{}
		}
	}
	var parties []schema.Party
	for _, party := range election.Parties {
		if _, ok := seen[party.ID]; ok {
			parties = append(parties, party)
		}
	}
	return parties
}
