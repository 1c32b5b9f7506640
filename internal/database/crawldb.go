package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the database directory.
const FileName = "docscrape.db"

// ErrNotFound is returned by Open when the database must already exist but
// does not.
var ErrNotFound = errors.New("database not found")

// CrawlDB provides SQLite-based storage for scraped page metadata and run
// history. A single file holds every documentation site ever scraped.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, ErrNotFound is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per documentation page, updated on every scrape
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		base_url TEXT NOT NULL,
		file_path TEXT NOT NULL,
		title TEXT,
		word_count INTEGER DEFAULT 0,
		content_hash TEXT,
		scraped_at TEXT NOT NULL,
		first_seen_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_base_url ON pages(base_url);

	-- One row per scrape run, rewritten at every checkpoint
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		base_url TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		total_urls INTEGER DEFAULT 0,
		successful INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		UNIQUE(base_url, output_dir, started_at)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_base_url ON runs(base_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page.
type PageRecord struct {
	ID          int64
	URL         string
	BaseURL     string
	FilePath    string
	Title       string
	WordCount   int
	ContentHash string
	ScrapedAt   time.Time
	FirstSeenAt time.Time
}

// UpsertPage inserts or updates a page keyed by URL. It reports whether the
// content hash differs from the stored one; new pages count as changed.
func (cdb *CrawlDB) UpsertPage(ctx context.Context, record *PageRecord) (bool, error) {
	previous, err := cdb.GetPage(ctx, record.URL)
	if err != nil {
		return false, err
	}
	changed := previous == nil || previous.ContentHash != record.ContentHash

	scrapedAt := record.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	query := `
	INSERT INTO pages (url, base_url, file_path, title, word_count, content_hash, scraped_at, first_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		base_url = excluded.base_url,
		file_path = excluded.file_path,
		title = excluded.title,
		word_count = excluded.word_count,
		content_hash = excluded.content_hash,
		scraped_at = excluded.scraped_at
	`

	_, err = cdb.db.ExecContext(ctx, query,
		record.URL,
		record.BaseURL,
		record.FilePath,
		record.Title,
		record.WordCount,
		record.ContentHash,
		formatTimestamp(scrapedAt),
		formatTimestamp(scrapedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert page: %w", err)
	}

	return changed, nil
}

// GetPage retrieves a page by URL. It returns nil, nil when absent.
func (cdb *CrawlDB) GetPage(ctx context.Context, url string) (*PageRecord, error) {
	query := `
	SELECT id, url, base_url, file_path, title, word_count, content_hash, scraped_at, first_seen_at
	FROM pages
	WHERE url = ?
	`

	var record PageRecord
	var title, hash sql.NullString
	var scrapedAt, firstSeenAt string

	err := cdb.db.QueryRowContext(ctx, query, url).Scan(
		&record.ID,
		&record.URL,
		&record.BaseURL,
		&record.FilePath,
		&title,
		&record.WordCount,
		&hash,
		&scrapedAt,
		&firstSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	record.Title = title.String
	record.ContentHash = hash.String
	record.ScrapedAt = parseTimestamp(scrapedAt)
	record.FirstSeenAt = parseTimestamp(firstSeenAt)

	return &record, nil
}

// CountPages returns the number of pages stored for baseURL.
func (cdb *CrawlDB) CountPages(ctx context.Context, baseURL string) (int, error) {
	var count int
	err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE base_url = ?`, baseURL).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// RunRecord summarizes one scrape run.
type RunRecord struct {
	ID          int64
	Platform    string
	BaseURL     string
	OutputDir   string
	StartedAt   time.Time
	CompletedAt *time.Time
	TotalURLs   int
	Successful  int
	Failed      int
	Skipped     int
}

// SaveRun inserts a run or updates the one with the same base URL, output
// directory and start time. It returns the run ID.
func (cdb *CrawlDB) SaveRun(ctx context.Context, run *RunRecord) (int64, error) {
	var completedAt sql.NullString
	if run.CompletedAt != nil {
		completedAt = sql.NullString{String: formatTimestamp(*run.CompletedAt), Valid: true}
	}

	query := `
	INSERT INTO runs (platform, base_url, output_dir, started_at, completed_at, total_urls, successful, failed, skipped)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(base_url, output_dir, started_at) DO UPDATE SET
		platform = excluded.platform,
		completed_at = excluded.completed_at,
		total_urls = excluded.total_urls,
		successful = excluded.successful,
		failed = excluded.failed,
		skipped = excluded.skipped
	RETURNING id
	`

	var id int64
	err := cdb.db.QueryRowContext(ctx, query,
		run.Platform,
		run.BaseURL,
		run.OutputDir,
		formatTimestamp(run.StartedAt),
		completedAt,
		run.TotalURLs,
		run.Successful,
		run.Failed,
		run.Skipped,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return id, nil
}

// ListRuns returns runs newest first, optionally restricted to baseURL.
// A limit of 0 or less returns every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, baseURL string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, platform, base_url, output_dir, started_at, completed_at, total_urls, successful, failed, skipped
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0)

	if baseURL != "" {
		query += " AND base_url = ?"
		args = append(args, baseURL)
	}

	query += " ORDER BY started_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var run RunRecord
		var startedAt string
		var completedAt sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.Platform,
			&run.BaseURL,
			&run.OutputDir,
			&startedAt,
			&completedAt,
			&run.TotalURLs,
			&run.Successful,
			&run.Failed,
			&run.Skipped,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(startedAt)
		if completedAt.Valid && completedAt.String != "" {
			t := parseTimestamp(completedAt.String)
			run.CompletedAt = &t
		}
		results = append(results, run)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // format written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// formatTimestamp renders t in UTC with a fixed-width fractional part so
// stored values sort lexically in time order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
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
