package intake

import "context"

// MintRequest is the metadata envelope sent to the identity service when
// requesting an identifier for a document.
type MintRequest struct {
	EntityType string  `json:"entity_type"`
	Filepath   string  `json:"filepath"`
	FileSize   int64   `json:"file_size"`
	FileMtime  float64 `json:"file_mtime"` // unix seconds, fractional
	Case       string  `json:"case"`
	Domain     string  `json:"domain"`
}

// EntityTypeEvidence is the entity type tag for ledger documents.
const EntityTypeEvidence = "EVIDENCE"

// IdentityMinter requests globally unique identifiers from the external
// minting service. The service is the single source of truth for evidence
// identifiers: on any failure the caller must not substitute a local ID.
// A document without a minted identity is not recorded at all.
type IdentityMinter interface {
	Mint(ctx context.Context, req MintRequest) (string, error)
}
