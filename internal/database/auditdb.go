package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/publintel/mfascan/internal/assess"
	"github.com/publintel/mfascan/internal/model"
)

// AuditDB provides SQLite-based storage for audit history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We store flat risk columns next to the full
// assessment JSON. Trend queries read only the columns; report replay
// unmarshals the document. One file holds all audited sites so
// cross-site queries and backup stay simple.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "mfascan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, so the pool stays at one
	// connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audits store one row per completed assessment
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		audit_id TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		scanned_at DATETIME NOT NULL,
		overall_risk_score REAL NOT NULL,
		risk_level TEXT NOT NULL,
		pattern_risk REAL DEFAULT 0,
		refresh_risk REAL DEFAULT 0,
		visibility_risk REAL DEFAULT 0,
		density_risk REAL DEFAULT 0,
		video_risk REAL DEFAULT 0,
		content_risk REAL DEFAULT 0,
		content_flag TEXT,
		problem_count INTEGER DEFAULT 0,
		critical_problems INTEGER DEFAULT 0,
		high_problems INTEGER DEFAULT 0,
		recommendations TEXT,
		assessment_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_url ON audits(url);
	CREATE INDEX IF NOT EXISTS idx_audits_scanned_at ON audits(scanned_at);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAssessment stores a completed assessment. The flat record
// columns and the full JSON document are written in one row.
func (adb *AuditDB) SaveAssessment(ctx context.Context, assessment *model.RiskAssessment) error {
	assessmentJSON, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to serialize assessment: %w", err)
	}

	record := assess.FlattenAssessment(assessment)

	query := `
	INSERT INTO audits (
		audit_id, url, scanned_at, overall_risk_score, risk_level,
		pattern_risk, refresh_risk, visibility_risk, density_risk, video_risk, content_risk,
		content_flag, problem_count, critical_problems, high_problems,
		recommendations, assessment_json
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = adb.db.ExecContext(ctx, query,
		record.AuditID,
		record.URL,
		record.ScannedAt.UTC().Format("2006-01-02 15:04:05"),
		record.OverallRiskScore,
		record.RiskLevel,
		record.PatternRisk,
		record.RefreshRisk,
		record.VisibilityRisk,
		record.DensityRisk,
		record.VideoRisk,
		record.ContentRisk,
		record.ContentFlag,
		record.ProblemCount,
		record.CriticalProblems,
		record.HighProblems,
		record.Recommendations,
		string(assessmentJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// GetLatestAssessment retrieves the most recent assessment for a URL.
// It returns nil without error when the URL has never been audited.
func (adb *AuditDB) GetLatestAssessment(ctx context.Context, url string) (*model.RiskAssessment, error) {
	query := `
	SELECT assessment_json FROM audits
	WHERE url = ?
	ORDER BY scanned_at DESC, id DESC
	LIMIT 1
	`

	var assessmentJSON string
	err := adb.db.QueryRowContext(ctx, query, url).Scan(&assessmentJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	var assessment model.RiskAssessment
	if err := json.Unmarshal([]byte(assessmentJSON), &assessment); err != nil {
		return nil, fmt.Errorf("failed to parse assessment: %w", err)
	}

	return &assessment, nil
}

// GetAssessmentByAuditID retrieves one assessment by its audit ID.
func (adb *AuditDB) GetAssessmentByAuditID(ctx context.Context, auditID string) (*model.RiskAssessment, error) {
	query := `
	SELECT assessment_json FROM audits
	WHERE audit_id = ?
	`

	var assessmentJSON string
	err := adb.db.QueryRowContext(ctx, query, auditID).Scan(&assessmentJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	var assessment model.RiskAssessment
	if err := json.Unmarshal([]byte(assessmentJSON), &assessment); err != nil {
		return nil, fmt.Errorf("failed to parse assessment: %w", err)
	}

	return &assessment, nil
}

// ListAuditedURLs returns every URL with at least one stored audit.
func (adb *AuditDB) ListAuditedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM audits
	ORDER BY url
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list audited urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// GetAuditHistory retrieves the flat records for a URL ordered oldest
// first, the shape trend analysis consumes.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, url string) ([]assess.Record, error) {
	query := `
	SELECT audit_id, url, scanned_at, overall_risk_score, risk_level,
		pattern_risk, refresh_risk, visibility_risk, density_risk, video_risk, content_risk,
		content_flag, problem_count, critical_problems, high_problems, recommendations
	FROM audits
	WHERE url = ?
	ORDER BY scanned_at ASC, id ASC
	`

	rows, err := adb.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var records []assess.Record
	for rows.Next() {
		var (
			record    assess.Record
			scannedAt string
		)
		err := rows.Scan(
			&record.AuditID,
			&record.URL,
			&scannedAt,
			&record.OverallRiskScore,
			&record.RiskLevel,
			&record.PatternRisk,
			&record.RefreshRisk,
			&record.VisibilityRisk,
			&record.DensityRisk,
			&record.VideoRisk,
			&record.ContentRisk,
			&record.ContentFlag,
			&record.ProblemCount,
			&record.CriticalProblems,
			&record.HighProblems,
			&record.Recommendations,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		record.ScannedAt = parseTimestamp(scannedAt)
		records = append(records, record)
	}

	return records, rows.Err()
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
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
