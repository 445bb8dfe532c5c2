package schema

import "time"

// StoreStatus summarizes the tally store for status reporting.
type StoreStatus struct {
	Backend            DatabaseBackend `json:"backend"`
	TabulationRuns     int             `json:"tabulationRuns"`
	LastTabulation     time.Time       `json:"lastTabulation"`
	HasExternalTallies bool            `json:"hasExternalTallies"`
}

// TabulationRun is one recorded tabulation run, as read back from the tally
// store for export.
type TabulationRun struct {
	RunID          int64      `json:"runId"`
	ElectionHash   string     `json:"electionHash"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
	BallotsCounted int        `json:"ballotsCounted"`
	ConfigParams   string     `json:"configParams,omitempty"`
}
