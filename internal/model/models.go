package model

import "time"

// DocumentType classifies a document by its file extension.
// The set is closed but extensible; UNKNOWN covers everything else.
type DocumentType string

const (
	DocumentTypeEmail   DocumentType = "EMAIL"
	DocumentTypePDF     DocumentType = "PDF"
	DocumentTypeText    DocumentType = "TEXT"
	DocumentTypeUnknown DocumentType = "UNKNOWN"
)

// EvidenceRecord is one row in the evidence ledger, keyed by the identity
// minted by the external ID service. The identity is opaque and immutable
// once assigned; it is never derived from the file path or content.
type EvidenceRecord struct {
	Identity     string // primary key, from the minting service
	OriginalPath string // absolute path at ingest time
	Filename     string
	FileHash     string // SHA-256 of file bytes, lowercase hex
	FileSize     int64
	ContentType  DocumentType
	CreatedAt    time.Time // filesystem metadata
	ModifiedAt   time.Time // filesystem metadata
	IngestedAt   time.Time // server-assigned at first write, preserved on upsert
	RelevanceScore int
	DocumentType DocumentType

	// Email headers, populated only for EMAIL content.
	EmailFrom    string
	EmailTo      string
	EmailSubject string
	EmailDate    string

	// Curation fields are reserved for downstream review workflows.
	// The intake pipeline never writes them and upserts never overwrite them.
	Tags             string
	Summary          string
	LegalPrivilege   string
	EvidenceCategory string
}

// EmailMetadata holds the header fields extracted from an email-formatted file.
type EmailMetadata struct {
	From    string
	To      string
	Subject string
	Date    string
}

// TimelineEvent is one row in the case timeline. The table is append-only
// and keyed by an auto-incrementing sequence. EvidenceID, when set, must
// reference an existing EvidenceRecord identity.
type TimelineEvent struct {
	ID                int64
	Date              string
	EventType         string
	Description       string
	EvidenceID        string // optional FK to EvidenceRecord.Identity
	DocumentReference string
	CreatedAt         time.Time
}

// ScanOperation tracks one mutating CLI run for the history command.
type ScanOperation struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}
