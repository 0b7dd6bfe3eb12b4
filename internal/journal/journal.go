package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// Register the cgo-free SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/prolock/prolock-controller/internal/domain/access"
)

// Decision labels recorded with each journal entry.
const (
	// DecisionCheckedIn marks an authorized check-in.
	DecisionCheckedIn = "checked_in"
	// DecisionCheckedOut marks an authorized check-out.
	DecisionCheckedOut = "checked_out"
	// DecisionDenied marks a schedule denial or fail-safe denial.
	DecisionDenied = "denied"
	// DecisionUnknown marks a scan that resolved to no subject.
	DecisionUnknown = "unknown_identity"
)

// writeQueueSize bounds the number of pending journal writes. Scans arrive
// at human speed, so a small buffer is plenty.
const writeQueueSize = 64

// Entry is one journaled scan decision.
type Entry struct {
	// ID is a generated UUID for the entry.
	ID string
	// At is when the decision was made.
	At time.Time
	// Station is the configured station name.
	Station string
	// Channel is the input channel of the scan.
	Channel access.Channel
	// RawKey is the raw scan identifier (slot number or card UID).
	RawKey string
	// SubjectName is the resolved name, empty when identity was unknown.
	SubjectName string
	// Decision is one of the Decision* labels.
	Decision string
	// Message is the text presented at the door.
	Message string
}

// job couples one entry with the channel its write result is reported on.
type job struct {
	entry Entry
	errCh chan error
}

// Journal is a local append-mostly audit log backed by SQLite.
type Journal struct {
	// db is the SQLite handle; a single connection keeps SQLite happy.
	db *sql.DB
	// jobs carries pending writes to the writer goroutine.
	jobs chan job
	// done is closed once the writer goroutine exits.
	done chan struct{}
}

// Open creates or opens the journal database at the given path and starts
// the writer goroutine.
func Open(ctx context.Context, path string) (*Journal, error) {
	// Ensure the parent directory exists.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir journal dir: %w", err)
		}
	}

	// Per-connection pragmas: WAL for write friendliness on flash storage,
	// busy timeout to ride out checkpoints.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Single connection: all access serialized at the pool level too.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping journal: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS scan_events (
  id           TEXT PRIMARY KEY,
  at_ms        INTEGER NOT NULL,
  station      TEXT NOT NULL,
  channel      TEXT NOT NULL,
  raw_key      TEXT NOT NULL,
  subject_name TEXT NOT NULL,
  decision     TEXT NOT NULL,
  message      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_events_at ON scan_events(at_ms);
`); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	j := &Journal{
		db:   db,
		jobs: make(chan job, writeQueueSize),
		done: make(chan struct{}),
	}

	go j.loop()

	return j, nil
}

// Record journals one scan decision. Missing ID and timestamp are filled in.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	errCh := make(chan error, 1)

	// Enqueue, bailing out if the caller's context expires first.
	select {
	case j.jobs <- job{entry: entry, errCh: errCh}:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Wait for the writer's result. The write still completes if the
	// context expires here; the result lands in the buffered channel.
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT id, at_ms, station, channel, raw_key, subject_name, decision, message
FROM scan_events ORDER BY at_ms DESC, id LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry

	for rows.Next() {
		var (
			entry   Entry
			atMs    int64
			channel string
		)

		if err := rows.Scan(
			&entry.ID, &atMs, &entry.Station, &channel,
			&entry.RawKey, &entry.SubjectName, &entry.Decision, &entry.Message,
		); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}

		entry.At = time.UnixMilli(atMs).UTC()
		entry.Channel = access.Channel(channel)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}

	return entries, nil
}

// Close stops the writer goroutine and closes the database.
func (j *Journal) Close() error {
	close(j.jobs)
	<-j.done

	return j.db.Close()
}

// loop is the single writer: it drains the job queue and performs inserts
// one at a time.
func (j *Journal) loop() {
	defer close(j.done)

	for job := range j.jobs {
		_, err := j.db.Exec(`
INSERT INTO scan_events(id, at_ms, station, channel, raw_key, subject_name, decision, message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			job.entry.ID,
			job.entry.At.UnixMilli(),
			job.entry.Station,
			string(job.entry.Channel),
			job.entry.RawKey,
			job.entry.SubjectName,
			job.entry.Decision,
			job.entry.Message,
		)
		if err != nil {
			err = fmt.Errorf("insert journal entry: %w", err)
		}

		job.errCh <- err
	}
}
