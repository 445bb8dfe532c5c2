package tallystore

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/votary/canvass/schema"
)

// storedExternalTally is the wire form of one external tally in the
// persisted collection. Per-precinct results are stored as [key, value]
// pairs and timestamps as epoch milliseconds so the payload round-trips
// without loss.
type storedExternalTally struct {
	Source             schema.ExternalTallySource `json:"source"`
	InputSourceName    string                     `json:"inputSourceName"`
	VotingMethod       schema.VotingMethod        `json:"votingMethod"`
	TimestampCreatedMs int64                      `json:"timestampCreated"`
	OverallTally       *schema.ExternalTally      `json:"overallTally"`
	ResultsByPrecinct  []json.RawMessage          `json:"resultsByPrecinct"`
}

// SerializeExternalTallies encodes a collection of external tallies into
// the persisted payload format. Precinct pairs are emitted in sorted key
// order so equal collections serialize identically.
func SerializeExternalTallies(tallies []*schema.FullElectionExternalTally) (string, error) {
	stored := make([]storedExternalTally, 0, len(tallies))
	for _, tally := range tallies {
		keys := make([]string, 0, len(tally.ResultsByPrecinct))
		for key := range tally.ResultsByPrecinct {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		pairs := make([]json.RawMessage, 0, len(keys))
		for _, key := range keys {
			pair, err := json.Marshal([]any{key, tally.ResultsByPrecinct[key]})
			if err != nil {
				return "", fmt.Errorf("failed to encode precinct tally %q: %w", key, err)
			}
			pairs = append(pairs, pair)
		}

		stored = append(stored, storedExternalTally{
			Source:             tally.Source,
			InputSourceName:    tally.InputSourceName,
			VotingMethod:       tally.VotingMethod,
			TimestampCreatedMs: tally.TimestampCreated.UnixMilli(),
			OverallTally:       tally.OverallTally,
			ResultsByPrecinct:  pairs,
		})
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode external tallies: %w", err)
	}
	return string(payload), nil
}

// DeserializeExternalTallies decodes a persisted payload back into the
// external-tally collection produced by SerializeExternalTallies.
func DeserializeExternalTallies(payload string) ([]*schema.FullElectionExternalTally, error) {
	var stored []storedExternalTally
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode external tallies: %w", err)
	}

	tallies := make([]*schema.FullElectionExternalTally, 0, len(stored))
	for _, entry := range stored {
		byPrecinct := make(map[string]*schema.ExternalTally, len(entry.ResultsByPrecinct))
		for _, raw := range entry.ResultsByPrecinct {
			var pair []json.RawMessage
			if err := json.Unmarshal(raw, &pair); err != nil {
				return nil, fmt.Errorf("failed to decode precinct pair: %w", err)
			}
			if len(pair) != 2 {
				return nil, fmt.Errorf("precinct pair has %d elements, want 2", len(pair))
			}
			var key string
			if err := json.Unmarshal(pair[0], &key); err != nil {
				return nil, fmt.Errorf("failed to decode precinct key: %w", err)
			}
			var tally schema.ExternalTally
			if err := json.Unmarshal(pair[1], &tally); err != nil {
				return nil, fmt.Errorf("failed to decode precinct tally %q: %w", key, err)
			}
			byPrecinct[key] = &tally
		}

		tallies = append(tallies, &schema.FullElectionExternalTally{
			OverallTally:      entry.OverallTally,
			ResultsByPrecinct: byPrecinct,
			Source:            entry.Source,
			InputSourceName:   entry.InputSourceName,
			VotingMethod:      entry.VotingMethod,
			TimestampCreated:  time.UnixMilli(entry.TimestampCreatedMs),
		})
	}
	return tallies, nil
}
