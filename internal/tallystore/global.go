package tallystore

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

// Global store instance for main logic.
var (
	globalMu    sync.Mutex
	globalStore contract.TallyStore
	initOnce    sync.Once
	closeOnce   sync.Once
)

// InitStore initializes the global tally store. The backend can be
// NoneBackend to disable persistence entirely.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		store, err := NewTallyStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize tally store: %w", err)
			return
		}
		globalMu.Lock()
		globalStore = store
		globalMu.Unlock()
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// Store returns the global tally store. It falls back to a no-op store when
// InitStore has not run, so callers never need a nil check.
func Store() contract.TallyStore {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalStore == nil {
		globalStore = &TallyStoreImpl{db: nil, backend: schema.NoneBackend}
	}
	return globalStore
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		if globalStore != nil {
			_ = globalStore.Close()
		}
	})
}

// ClearStore removes all persisted tally data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tally tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return dropSQLTables("mysql", connStr)

	case schema.PostgreSQLBackend:
		return dropSQLTables("pgx", connStr)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// dropSQLTables connects to the SQL database and drops the tally tables.
func dropSQLTables(driverName, connStr string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range []string{externalTalliesTable, tabulationRunsTable} {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
