package intake

import "intake-go/internal/model"

// Ledger is the durable store of evidence records plus its auxiliary tables.
// Upserts are idempotent on identity: applying the same record twice leaves
// the store in the same state as applying it once.
type Ledger interface {
	// Upsert writes a record keyed by its identity. If a row already exists,
	// the mutable fields (path, filename, fingerprint, size, content type,
	// modified timestamp, classification, email headers) are overwritten in
	// place; ingested_at is preserved from the first insert and the curation
	// fields (tags, summary, legal_privilege, evidence_category) are never
	// touched.
	Upsert(record *model.EvidenceRecord) error

	// GetByIdentity returns the record with the given identity, or nil if
	// no such row exists.
	GetByIdentity(identity string) (*model.EvidenceRecord, error)

	// QueryByMinScore returns all records with relevance score >= threshold,
	// ordered by descending score then ascending ingestion time. The
	// secondary order makes report output deterministic for equal scores.
	QueryByMinScore(threshold int) ([]*model.EvidenceRecord, error)

	// AddTimelineEvent appends an event to the case timeline. When the event
	// references an evidence identity, that record must exist.
	AddTimelineEvent(event *model.TimelineEvent) (*model.TimelineEvent, error)

	// ListTimelineEvents returns up to limit events, oldest first.
	ListTimelineEvents(limit int) ([]*model.TimelineEvent, error)

	// CreateScanOperation records the start of a mutating CLI run.
	CreateScanOperation(operation, parameters string) (*model.ScanOperation, error)

	// FinishScanOperation stamps the finish time and final status of a run.
	FinishScanOperation(id int64, status string) error

	// ListScanOperations returns the most recent runs, newest first.
	ListScanOperations(limit int) ([]*model.ScanOperation, error)

	// Close releases the underlying connections.
	Close() error
}
