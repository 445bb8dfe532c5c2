// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteTally prints contest results using the configured output format.
func (ow *OutWriter) WriteTally(tally *schema.Tally, election *schema.Election, cfg *contract.Config, duration time.Duration) error {
	return WriteTallyResults(tally, election, cfg, duration)
}

// WriteExternalTallies prints external tally sources using the configured output format.
func (ow *OutWriter) WriteExternalTallies(tallies []*schema.FullElectionExternalTally, election *schema.Election, cfg *contract.Config) error {
	return WriteExternalTallyResults(tallies, election, cfg)
}

// WriteStoreStatus prints tally store status using the configured output format.
func (ow *OutWriter) WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return WriteStoreStatusResults(status, cfg)
}

// WriteTabulationRuns prints recorded tabulation runs using the configured output format.
func (ow *OutWriter) WriteTabulationRuns(runs []schema.TabulationRun, cfg *contract.Config) error {
	return WriteTabulationRunResults(runs, cfg)
}
