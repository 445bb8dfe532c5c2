package outwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

func TestWriteStatusText(t *testing.T) {
	var buf bytes.Buffer
	err := writeStatusText(schema.StoreStatus{
		Backend:            schema.SQLiteBackend,
		TabulationRuns:     3,
		LastTabulation:     time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		HasExternalTallies: true,
	}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Tabulation runs: 3")
	assert.Contains(t, out, "Last tabulation: 2026-08-30 14:30:00")
	assert.Contains(t, out, "External tallies stored: true")
}

func TestWriteStatusText_NeverTabulated(t *testing.T) {
	var buf bytes.Buffer
	err := writeStatusText(schema.StoreStatus{Backend: schema.NoneBackend}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Last tabulation: never")
}

func runsFixture() []schema.TabulationRun {
	finishedAt := time.Date(2026, 8, 30, 10, 0, 5, 0, time.UTC)
	return []schema.TabulationRun{
		{
			RunID:        2,
			ElectionHash: "abcdef0123456789abcdef",
			StartedAt:    time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC),
		},
		{
			RunID:          1,
			ElectionHash:   "abcdef0123456789abcdef",
			StartedAt:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
			FinishedAt:     &finishedAt,
			BallotsCounted: 1200,
		},
	}
}

func TestWriteCSVResultsForRuns(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeCSVResultsForRuns(w, runsFixture())
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	// An unfinished run has an empty finished column.
	assert.Equal(t, "2,abcdef0123456789abcdef,2026-08-30T11:00:00Z,,0", lines[0])
	assert.Equal(t, "1,abcdef0123456789abcdef,2026-08-30T10:00:00Z,2026-08-30T10:00:05Z,1200", lines[1])
}

func TestWriteRunsTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.TextOut}
	err := writeRunsTable(runsFixture(), cfg, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "abcdef012345")
	assert.NotContains(t, out, "abcdef0123456789abcdef")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "1200")
	assert.Contains(t, out, "Showing 2 tabulation runs")
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", shortHash("abc"))
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
	assert.Equal(t, "123456789012", shortHash("123456789012"))
}
