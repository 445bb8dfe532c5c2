package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/votary/canvass/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	MaxPrecision     = 6
)

// Config holds the runtime configuration for tally operations. This struct
// is the final, validated config; all raw input flows through
// ConfigRawInput first.
type Config struct {
	ElectionPath string
	Election     *schema.ElectionDefinition

	CVRPaths           []string
	IncludeTestBallots bool

	// Filter parameters; empty fields are unset.
	PrecinctID   string
	ScannerID    string
	BatchID      string
	PartyID      string
	VotingMethod schema.VotingMethod

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// Set manually from positional args, so no tag.
	CVRPathArgs []string

	Election       string `mapstructure:"election"`
	IncludeTest    bool   `mapstructure:"include-test"`
	Precinct       string `mapstructure:"precinct"`
	Scanner        string `mapstructure:"scanner"`
	Batch          string `mapstructure:"batch"`
	Party          string `mapstructure:"party"`
	VotingMethod   string `mapstructure:"voting-method"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CVRPaths != nil {
		clone.CVRPaths = make([]string, len(c.CVRPaths))
		copy(clone.CVRPaths, c.CVRPaths)
	}
	return &clone
}

// Filter returns the filter parameters carried by the config.
func (c *Config) Filter() (precinctID, scannerID, batchID, partyID string, votingMethod schema.VotingMethod) {
	return c.PrecinctID, c.ScannerID, c.BatchID, c.PartyID, c.VotingMethod
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct, including loading the election
// definition from disk.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := loadElection(cfg, input); err != nil {
		return err
	}
	if err := validateFilters(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs checks output and store settings and copies the
// scalar fields over.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	output := schema.OutputMode(input.Output)
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("invalid output mode %q: must be text, csv, json or parquet", input.Output)
	}
	cfg.Output = output
	cfg.OutputFile = input.OutputFile

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.Width = input.Width
	cfg.UseColors = parseBoolString(input.Color, true)

	backend := schema.DatabaseBackend(input.StoreBackend)
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidStoreBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend %q: must be sqlite, mysql, postgresql or none", input.StoreBackend)
	}
	if err := ValidateDatabaseConnectionString(backend, input.StoreDBConnect); err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect

	cfg.CVRPaths = input.CVRPathArgs
	cfg.IncludeTestBallots = input.IncludeTest
	return nil
}

// loadElection reads and parses the election definition file.
func loadElection(cfg *Config, input *ConfigRawInput) error {
	if input.Election == "" {
		return fmt.Errorf("--election is required")
	}
	data, err := os.ReadFile(input.Election)
	if err != nil {
		return fmt.Errorf("cannot read election definition %q: %w", input.Election, err)
	}
	ed, err := schema.ParseElection(data)
	if err != nil {
		return err
	}
	cfg.ElectionPath = input.Election
	cfg.Election = ed
	return nil
}

// validateFilters checks filter ids against the loaded election definition
// so a typo fails fast instead of silently producing a zero tally.
func validateFilters(cfg *Config, input *ConfigRawInput) error {
	election := &cfg.Election.Election

	if input.Precinct != "" && election.PrecinctByID(input.Precinct) == nil {
		return fmt.Errorf("precinct %q is not in the election definition", input.Precinct)
	}
	if input.Party != "" && election.PartyByID(input.Party) == nil {
		return fmt.Errorf("party %q is not in the election definition", input.Party)
	}
	if input.VotingMethod != "" {
		method := schema.VotingMethod(input.VotingMethod)
		switch method {
		case schema.VotingMethodPrecinct, schema.VotingMethodAbsentee, schema.VotingMethodUnknown:
		default:
			return fmt.Errorf("invalid voting method %q: must be standard, absentee or unknown", input.VotingMethod)
		}
		cfg.VotingMethod = method
	}

	cfg.PrecinctID = input.Precinct
	cfg.ScannerID = input.Scanner
	cfg.BatchID = input.Batch
	cfg.PartyID = input.Party
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("invalid MySQL connection string: expected format user:password@tcp(host:port)/dbname")
		}
		return nil
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "postgres://") && !strings.Contains(connStr, "host=") {
			return fmt.Errorf("invalid PostgreSQL connection string: expected a postgres:// URL or key=value form")
		}
		return nil
	default:
		return fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// parseBoolString interprets yes/no style flag values.
func parseBoolString(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return fallback
	}
}
