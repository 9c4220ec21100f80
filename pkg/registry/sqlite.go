package registry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fwdctl/pkg/logging"
	"fwdctl/pkg/rules"

	_ "modernc.org/sqlite"
)

const dbFileName = "registry.db"

// SQLiteRegistry persists entries in a SQLite database, one row per port,
// so a restarted supervisor rediscovers processes it previously started.
type SQLiteRegistry struct {
	db     *sql.DB
	mutex  sync.RWMutex
	dbPath string
}

// OpenSQLite opens (creating if needed) the registry database under
// stateDir. When stateDir cannot be created or written it falls back to
// ~/.fwdctl.
func OpenSQLite(stateDir string) (*SQLiteRegistry, error) {
	dir, err := usableStateDir(stateDir)
	if err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, dbFileName)

	// Create the file with restrictive permissions before the driver does.
	if _, statErr := os.Stat(dbPath); os.IsNotExist(statErr) {
		f, ferr := os.OpenFile(dbPath, os.O_CREATE|os.O_RDONLY, 0600)
		if ferr == nil {
			_ = f.Close()
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping registry database: %w", err)
	}

	reg := &SQLiteRegistry{db: db, dbPath: dbPath}
	if err := reg.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	logging.Debug("SQLite registry opened at: %s", dbPath)
	return reg, nil
}

// usableStateDir returns primary when it is usable, otherwise ~/.fwdctl.
func usableStateDir(primary string) (string, error) {
	if primary != "" && dirWritable(primary) {
		return primary, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("state dir %s unusable and no home directory: %w", primary, err)
	}
	fallback := filepath.Join(homeDir, ".fwdctl")
	if !dirWritable(fallback) {
		return "", fmt.Errorf("neither state dir %s nor fallback %s is writable", primary, fallback)
	}
	if primary != "" {
		logging.Warn("state dir %s not writable, using %s", primary, fallback)
	}
	return fallback, nil
}

// dirWritable ensures dir exists and probes that we can create a file in it.
func dirWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return false
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	probe.Close()
	os.Remove(probe.Name())
	return true
}

func (r *SQLiteRegistry) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processes (
		port       INTEGER PRIMARY KEY,
		pid        INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		dest_host  TEXT NOT NULL,
		dest_port  INTEGER NOT NULL,
		proto      TEXT NOT NULL
	);
	`
	_, err := r.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteRegistry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file location (status header, tests).
func (r *SQLiteRegistry) Path() string {
	return r.dbPath
}

// Record inserts or replaces the entry for e.Port.
func (r *SQLiteRegistry) Record(e Entry) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	query := `
		INSERT OR REPLACE INTO processes (port, pid, started_at, dest_host, dest_port, proto)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, e.Port, e.PID, e.StartedAt.Unix(),
		e.Rule.Host, e.Rule.DestPort, string(e.Rule.Proto))
	if err != nil {
		return fmt.Errorf("failed to record process for port %d: %w", e.Port, err)
	}

	logging.Debug("Recorded supervised process: port %d pid %d", e.Port, e.PID)
	return nil
}

// Lookup returns the entry for port, if any.
func (r *SQLiteRegistry) Lookup(port int) (Entry, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	query := `SELECT port, pid, started_at, dest_host, dest_port, proto FROM processes WHERE port = ?`
	e, err := scanEntry(r.db.QueryRow(query, port))
	if err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("failed to look up port %d: %w", port, err)
	}
	return e, true, nil
}

// Remove deletes the entry for port. Removing an absent port is not an
// error; stop sweeps clean up lazily.
func (r *SQLiteRegistry) Remove(port int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, err := r.db.Exec("DELETE FROM processes WHERE port = ?", port)
	if err != nil {
		return fmt.Errorf("failed to remove entry for port %d: %w", port, err)
	}

	logging.Debug("Removed registry entry for port %d", port)
	return nil
}

// List returns all entries ordered by port.
func (r *SQLiteRegistry) List() ([]Entry, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	query := `SELECT port, pid, started_at, dest_host, dest_port, proto FROM processes ORDER BY port`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			logging.Error("Failed to scan registry row: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var startedAt int64
	var proto string
	err := row.Scan(&e.Port, &e.PID, &startedAt, &e.Rule.Host, &e.Rule.DestPort, &proto)
	if err != nil {
		return Entry{}, err
	}
	e.StartedAt = time.Unix(startedAt, 0)
	e.Rule.LocalPort = e.Port
	e.Rule.Proto = rules.Protocol(proto)
	return e, nil
}
