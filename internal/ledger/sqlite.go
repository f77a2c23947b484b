package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"intake-go/internal/intake"
	"intake-go/internal/ledger/migrations"
	"intake-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// connPoolSize bounds the reusable connection pool. Operations are issued
// sequentially by a single pipeline instance; the pool only amortizes
// connection setup, it is not a concurrency mechanism.
const connPoolSize = 5

// SQLiteLedger implements the intake.Ledger interface using SQLite.
type SQLiteLedger struct {
	db    *sql.DB
	clock intake.Clock
	path  string
}

// NewSQLiteLedger opens (and migrates) a ledger database at path.
/// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating ledger database: %w", err)
	}

	return &SQLiteLedger{
		db:    db,
		clock: intake.RealClock{},
		path:  path,
	}, nil
}

// NewSQLiteLedgerFromDB wraps an existing database connection.
// The caller is responsible for the connection's configuration and schema.
func NewSQLiteLedgerFromDB(db *sql.DB, clock intake.Clock) *SQLiteLedger {
	if clock == nil {
		clock = intake.RealClock{}
	}
	return &SQLiteLedger{
		db:    db,
		clock: clock,
		path:  "",
	}
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the ledger relies on. Exported for tools and tests that need a properly
// configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The timeline FK to the ledger is only enforced with this on
	// (SQLite default is OFF for backward compatibility).
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Every connection to ":memory:" is a distinct empty database, so the
	// in-memory ledger must be pinned to a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(connPoolSize)
		db.SetMaxIdleConns(connPoolSize)
	}

	return db, nil
}

// Upsert writes a record keyed by identity. Existing rows keep their
// ingested_at and created_at from first insert, and the curation fields
// (tags, summary, legal_privilege, evidence_category) are never written by
// this path; they belong to downstream review tooling.
func (l *SQLiteLedger) Upsert(record *model.EvidenceRecord) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO evidence_ledger (
			chitty_id, original_path, filename, file_hash, file_size,
			content_type, created_at, modified_at, ingested_at,
			relevance_score, document_type,
			email_from, email_to, email_subject, email_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chitty_id) DO UPDATE SET
			original_path   = excluded.original_path,
			filename        = excluded.filename,
			file_hash       = excluded.file_hash,
			file_size       = excluded.file_size,
			content_type    = excluded.content_type,
			modified_at     = excluded.modified_at,
			relevance_score = excluded.relevance_score,
			document_type   = excluded.document_type,
			email_from      = excluded.email_from,
			email_to        = excluded.email_to,
			email_subject   = excluded.email_subject,
			email_date      = excluded.email_date`,
		record.Identity,
		record.OriginalPath,
		record.Filename,
		record.FileHash,
		record.FileSize,
		string(record.ContentType),
		record.CreatedAt,
		record.ModifiedAt,
		l.clock.Now().UTC(),
		record.RelevanceScore,
		string(record.DocumentType),
		record.EmailFrom,
		record.EmailTo,
		record.EmailSubject,
		record.EmailDate,
	)
	if err != nil {
		return fmt.Errorf("upserting evidence record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const evidenceColumns = `
	chitty_id, original_path, filename, file_hash, file_size,
	content_type, created_at, modified_at, ingested_at,
	relevance_score, document_type,
	email_from, email_to, email_subject, email_date,
	tags, summary, legal_privilege, evidence_category`

// GetByIdentity returns the record with the given identity, or nil if none exists.
func (l *SQLiteLedger) GetByIdentity(identity string) (*model.EvidenceRecord, error) {
	row := l.db.QueryRow(`SELECT`+evidenceColumns+` FROM evidence_ledger WHERE chitty_id = ?`, identity)

	record, err := scanEvidenceRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding record by identity: %w", err)
	}
	return record, nil
}

// QueryByMinScore returns all records with relevance >= threshold, ordered
// by descending score then ascending ingestion time so equal scores render
// in a stable order.
func (l *SQLiteLedger) QueryByMinScore(threshold int) ([]*model.EvidenceRecord, error) {
	rows, err := l.db.Query(`
		SELECT`+evidenceColumns+`
		FROM evidence_ledger
		WHERE relevance_score >= ?
		ORDER BY relevance_score DESC, ingested_at ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("querying records by score: %w", err)
	}
	defer rows.Close()

	var records []*model.EvidenceRecord
	for rows.Next() {
		record, err := scanEvidenceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvidenceRecord(row rowScanner) (*model.EvidenceRecord, error) {
	var (
		record      model.EvidenceRecord
		contentType string
		docType     string
		createdAt   sql.NullTime
		modifiedAt  sql.NullTime
	)
	err := row.Scan(
		&record.Identity,
		&record.OriginalPath,
		&record.Filename,
		&record.FileHash,
		&record.FileSize,
		&contentType,
		&createdAt,
		&modifiedAt,
		&record.IngestedAt,
		&record.RelevanceScore,
		&docType,
		&record.EmailFrom,
		&record.EmailTo,
		&record.EmailSubject,
		&record.EmailDate,
		&record.Tags,
		&record.Summary,
		&record.LegalPrivilege,
		&record.EvidenceCategory,
	)
	if err != nil {
		return nil, err
	}
	record.ContentType = model.DocumentType(contentType)
	record.DocumentType = model.DocumentType(docType)
	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	if modifiedAt.Valid {
		record.ModifiedAt = modifiedAt.Time
	}
	return &record, nil
}

// Timeline operations

// AddTimelineEvent appends an event. When the event references an evidence
// identity the foreign key enforces that the record exists.
func (l *SQLiteLedger) AddTimelineEvent(event *model.TimelineEvent) (*model.TimelineEvent, error) {
	evidenceID := sql.NullString{String: event.EvidenceID, Valid: event.EvidenceID != ""}
	createdAt := l.clock.Now().UTC()

	res, err := l.db.Exec(`
		INSERT INTO schatz_timeline (date, event_type, description, evidence_id, document_reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.Date, event.EventType, event.Description, evidenceID, event.DocumentReference, createdAt)
	if err != nil {
		return nil, fmt.Errorf("inserting timeline event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading timeline event id: %w", err)
	}

	created := *event
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}

// ListTimelineEvents returns up to limit events, oldest first.
func (l *SQLiteLedger) ListTimelineEvents(limit int) ([]*model.TimelineEvent, error) {
	rows, err := l.db.Query(`
		SELECT id, date, event_type, description, evidence_id, document_reference, created_at
		FROM schatz_timeline
		ORDER BY id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing timeline events: %w", err)
	}
	defer rows.Close()

	var events []*model.TimelineEvent
	for rows.Next() {
		var (
			event      model.TimelineEvent
			evidenceID sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.Date, &event.EventType, &event.Description, &evidenceID, &event.DocumentReference, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning timeline event: %w", err)
		}
		event.EvidenceID = evidenceID.String
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline events: %w", err)
	}
	return events, nil
}

// Scan operation tracking

func (l *SQLiteLedger) CreateScanOperation(operation, parameters string) (*model.ScanOperation, error) {
	startedAt := l.clock.Now().UTC()
	res, err := l.db.Exec(`
		INSERT INTO scan_operations (started_at, operation, parameters, status)
		VALUES (?, ?, ?, 'success')`,
		startedAt, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("creating scan operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading scan operation id: %w", err)
	}

	return &model.ScanOperation{
		ID:        id,
		StartedAt: startedAt,
		Operation: operation,
		Parameters: parameters,
		Status:    "success",
	}, nil
}

func (l *SQLiteLedger) FinishScanOperation(id int64, status string) error {
	_, err := l.db.Exec(`
		UPDATE scan_operations SET finished_at = ?, status = ? WHERE id = ?`,
		l.clock.Now().UTC(), status, id)
	if err != nil {
		return fmt.Errorf("finishing scan operation: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) ListScanOperations(limit int) ([]*model.ScanOperation, error) {
	rows, err := l.db.Query(`
		SELECT id, started_at, finished_at, operation, parameters, status
		FROM scan_operations
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing scan operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.ScanOperation
	for rows.Next() {
		var (
			op         model.ScanOperation
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&op.ID, &op.StartedAt, &finishedAt, &op.Operation, &op.Parameters, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning scan operation: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scan operations: %w", err)
	}
	return ops, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (l *SQLiteLedger) Path() string {
	return l.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (l *SQLiteLedger) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(l.db)
}

// Close closes the database connection.
func (l *SQLiteLedger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteLedger implements intake.Ledger
var _ intake.Ledger = (*SQLiteLedger)(nil)
