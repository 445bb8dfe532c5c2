// Package contract provides interfaces and shared utilities for internal
// architecture.
package contract

import (
	"time"

	"github.com/votary/canvass/schema"
)

// TallyStore defines the persistence interface for external tallies and
// tabulation-run tracking. External tallies are stored as one serialized
// collection with read/replace-all semantics; there are no partial updates.
type TallyStore interface {
	// ReplaceExternalTallies replaces the stored external-tally collection
	// wholesale with the given serialized payload.
	ReplaceExternalTallies(payload string) error

	// GetExternalTallies returns the stored serialized collection and
	// whether one exists.
	GetExternalTallies() (string, bool, error)

	// ClearExternalTallies removes the stored collection.
	ClearExternalTallies() error

	// BeginTabulation records the start of a tabulation run and returns its
	// unique id.
	BeginTabulation(startedAt time.Time, electionHash string, configParams map[string]any) (int64, error)

	// EndTabulation records completion data for a tabulation run.
	EndTabulation(runID int64, finishedAt time.Time, ballotsCounted int) error

	// ListTabulationRuns returns every recorded tabulation run, newest
	// first.
	ListTabulationRuns() ([]schema.TabulationRun, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close releases the underlying database connection.
	Close() error
}
