package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/auditprint/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "history.db"

var (
	// ErrDatabaseNotFound is returned by Open when the database does not
	// exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("history database not found")

	// ErrRecordNotFound is returned when no record has the requested id.
	ErrRecordNotFound = errors.New("history record not found")
)

// HistoryDB provides SQLite-based storage for delivered results.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// Otherwise a missing database fails with ErrDatabaseNotFound.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; batch deliveries share this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Deliveries store one row per written artifact
	CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		mode TEXT NOT NULL,
		destination TEXT NOT NULL,
		digest TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deliveries_run ON deliveries(run_id);
	CREATE INDEX IF NOT EXISTS idx_deliveries_digest ON deliveries(digest);
	CREATE INDEX IF NOT EXISTS idx_deliveries_timestamp ON deliveries(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Record is one stored delivery.
type Record struct {
	// ID is the database id, set by SaveResult.
	ID int64

	// RunID groups the deliveries of one CLI invocation.
	// SaveResult generates one when empty.
	RunID string

	// Source names the input the result was read from ("-" for stdin).
	Source string

	// Mode is the output mode name.
	Mode string

	// Destination is the output file path, or "stdout".
	Destination string

	// Digest is the hex SHA3-256 of the stored result JSON, set by SaveResult.
	Digest string

	// Timestamp is when the record was saved.
	Timestamp time.Time

	// Result is the delivered result. It is nil in ListHistory output.
	Result model.Result
}

// RunSummary describes one batch run.
type RunSummary struct {
	RunID      string
	Deliveries int
	Started    time.Time
}

// NewRunID returns a fresh run id.
func NewRunID() string {
	return uuid.NewString()
}

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveResult stores record and fills in its ID, RunID and Digest.
func (hdb *HistoryDB) SaveResult(ctx context.Context, record *Record) error {
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	if record.RunID == "" {
		record.RunID = NewRunID()
	}
	record.Digest = Digest(resultJSON)

	query := `
	INSERT INTO deliveries (run_id, source, mode, destination, digest, result_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := hdb.db.ExecContext(ctx, query,
		record.RunID,
		record.Source,
		record.Mode,
		record.Destination,
		record.Digest,
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	record.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read record id: %w", err)
	}
	return nil
}

// ListHistory returns up to limit records, newest first, without their
// results. A limit of zero or less lists every record.
func (hdb *HistoryDB) ListHistory(ctx context.Context, limit int) ([]Record, error) {
	query := `
	SELECT id, run_id, source, mode, destination, digest, timestamp
	FROM deliveries
	ORDER BY id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := hdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var timestamp string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Source, &r.Mode, &r.Destination, &r.Digest, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Timestamp = parseTimestamp(timestamp)
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetResultByID returns the record with id, including its result.
// It returns ErrRecordNotFound when no such record exists.
func (hdb *HistoryDB) GetResultByID(ctx context.Context, id int64) (*Record, error) {
	query := `
	SELECT id, run_id, source, mode, destination, digest, timestamp, result_json
	FROM deliveries
	WHERE id = ?
	`

	var r Record
	var timestamp, resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.RunID, &r.Source, &r.Mode, &r.Destination, &r.Digest, &timestamp, &resultJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	r.Timestamp = parseTimestamp(timestamp)

	r.Result, err = model.DecodeResultBytes([]byte(resultJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored result %d: %w", id, err)
	}
	return &r, nil
}

// ListRuns returns one summary per run id, newest first.
func (hdb *HistoryDB) ListRuns(ctx context.Context) ([]RunSummary, error) {
	query := `
	SELECT run_id, COUNT(*), MIN(timestamp), MAX(id) AS last_id
	FROM deliveries
	GROUP BY run_id
	ORDER BY last_id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var started string
		var lastID int64
		if err := rows.Scan(&run.RunID, &run.Deliveries, &started, &lastID); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Started = parseTimestamp(started)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
