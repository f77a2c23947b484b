package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"intake-go/internal/model"
)

// IntakeService is the orchestration layer that runs the per-document
// pipeline and the directory scans the CLI exposes.
type IntakeService struct {
	ledger         Ledger
	minter         IdentityMinter
	archive        Archive // nil when no archive is configured
	encryptor      Encryptor
	encryptArchive bool
	fsmgr          FilesystemManager
	profile        CaseProfile
	logger         Logger
	clock          Clock
}

// NewIntakeService creates a new IntakeService with the provided dependencies.
// archive may be nil to disable evidence preservation; encryptArchive is only
// honored when an archive is present.
func NewIntakeService(ledger Ledger, minter IdentityMinter, archive Archive, encryptor Encryptor, encryptArchive bool, fsmgr FilesystemManager, profile CaseProfile, logger Logger, clock Clock) *IntakeService {
	return &IntakeService{
		ledger:         ledger,
		minter:         minter,
		archive:        archive,
		encryptor:      encryptor,
		encryptArchive: encryptArchive && archive != nil,
		fsmgr:          fsmgr,
		profile:        profile,
		logger:         logger,
		clock:          clock,
	}
}

// ScanSummary aggregates the outcomes of one directory scan.
type ScanSummary struct {
	Processed int
	Skipped   int
	Failed    int
}

// ScanDirectory recursively walks root and runs the per-file pipeline on
// every regular file found. Individual failures are logged and counted but
// never abort the scan.
func (s *IntakeService) ScanDirectory(ctx context.Context, root *Path) (ScanSummary, error) {
	if !root.IsDir() {
		return ScanSummary{}, fmt.Errorf("scan root is not a directory: %s", root.String())
	}

	s.logger.Info("scanning directory", "root", root.String())

	files, err := s.fsmgr.FindFiles(root, true)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("finding files: %w", err)
	}

	var summary ScanSummary
	for _, f := range files {
		ignored, err := s.fsmgr.IsIgnored(f, root.String())
		if err != nil {
			return summary, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			summary.Skipped++
			continue
		}

		res := s.ProcessDocument(ctx, f)
		switch res.Outcome {
		case OutcomeProcessed:
			summary.Processed++
			s.logger.Info("document processed", "file", filepath.Base(res.Path), "identity", res.Identity, "score", res.Score)
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
			s.logger.Error("document failed", "file", res.Path, "stage", string(res.Stage), "error", res.Err)
		}
	}

	s.logger.Info("scan complete", "root", root.String(), "processed", summary.Processed, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// ProcessDocument runs the per-file state machine:
// eligibility gate, identity mint, fingerprint, optional archival,
// classification and sampling, scoring, ledger upsert. The returned
// FileResult carries either the recorded identity or the failure stage.
func (s *IntakeService) ProcessDocument(ctx context.Context, path *Path) FileResult {
	if path.IsDir() || !Eligible(path.String()) {
		return skipped(path.String())
	}

	info := path.Info()
	identity, err := s.minter.Mint(ctx, MintRequest{
		EntityType: EntityTypeEvidence,
		Filepath:   path.String(),
		FileSize:   info.Size(),
		FileMtime:  float64(info.ModTime().UnixNano()) / 1e9,
		Case:       s.profile.CaseTag,
		Domain:     s.profile.DomainTag,
	})
	if err != nil {
		return failed(path.String(), StageIdentity, err)
	}

	fingerprint, err := s.fingerprintFile(path)
	if err != nil {
		// The minted identity is abandoned here: nothing records that it
		// was ever issued.
		s.logger.Warn("abandoning minted identity", "identity", identity, "file", path.String())
		return failed(path.String(), StageFingerprint, err)
	}

	if s.archive != nil {
		if err := s.archiveFile(path, fingerprint); err != nil {
			s.logger.Warn("abandoning minted identity", "identity", identity, "file", path.String())
			return failed(path.String(), StageArchive, err)
		}
	}

	docType := Classify(path.String())
	sample := s.readSample(path, docType)
	meta := s.extractMetadata(path, docType)
	score := Score(s.profile, path.String(), sample)

	stat, err := s.fsmgr.ExtractStatData(info)
	createdAt := info.ModTime()
	if err == nil {
		createdAt = stat.ChangedAt
	}

	record := &model.EvidenceRecord{
		Identity:       identity,
		OriginalPath:   path.String(),
		Filename:       filepath.Base(path.String()),
		FileHash:       fingerprint,
		FileSize:       info.Size(),
		ContentType:    docType,
		CreatedAt:      createdAt,
		ModifiedAt:     info.ModTime(),
		RelevanceScore: score,
		DocumentType:   docType,
		EmailFrom:      meta.From,
		EmailTo:        meta.To,
		EmailSubject:   meta.Subject,
		EmailDate:      meta.Date,
	}

	if err := s.ledger.Upsert(record); err != nil {
		s.logger.Warn("abandoning minted identity", "identity", identity, "file", path.String())
		return failed(path.String(), StageStorage, err)
	}

	return processed(path.String(), identity, score)
}

// fingerprintFile streams the file through the hasher. A read failure here
// is fatal for the document: a record without a trustworthy fingerprint is
// worse than no record.
func (s *IntakeService) fingerprintFile(path *Path) (string, error) {
	f, err := s.fsmgr.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for fingerprint: %w", err)
	}
	defer f.Close()

	fingerprint, err := Fingerprint(f)
	if err != nil {
		return "", fmt.Errorf("fingerprinting %s: %w", path.String(), err)
	}
	return fingerprint, nil
}

// archiveFile preserves the original bytes in the archive, keyed by the
// fingerprint. Storing an already-archived checksum is a cheap no-op.
func (s *IntakeService) archiveFile(path *Path, fingerprint string) error {
	exists, err := s.archive.Has(fingerprint)
	if err != nil {
		return fmt.Errorf("checking archive: %w", err)
	}
	if exists {
		s.logger.Debug("content already archived", "checksum", fingerprint)
		return nil
	}

	f, err := s.fsmgr.Open(path)
	if err != nil {
		return fmt.Errorf("opening file for archival: %w", err)
	}
	defer f.Close()

	if s.encryptArchive {
		// Ciphertext length is not knowable up front, so encrypted content
		// is spooled before upload. Evidence files are local-disk sized.
		var buf bytes.Buffer
		if err := s.encryptor.Encrypt(f, &buf); err != nil {
			return fmt.Errorf("encrypting content: %w", err)
		}
		if err := s.archive.Put(fingerprint, &buf, int64(buf.Len())); err != nil {
			return fmt.Errorf("archiving encrypted content: %w", err)
		}
		return nil
	}

	if err := s.archive.Put(fingerprint, f, path.Info().Size()); err != nil {
		return fmt.Errorf("archiving content: %w", err)
	}
	return nil
}

// readSample reads the scoring sample for the document type. Read failures
// degrade to an empty sample; triage still happens on the path alone.
func (s *IntakeService) readSample(path *Path, docType model.DocumentType) string {
	budget := SampleBudget(docType)
	if budget == 0 {
		return ""
	}
	sample, err := s.fsmgr.ReadSample(path, budget)
	if err != nil {
		s.logger.Warn("reading content sample failed", "file", path.String(), "error", err)
		return ""
	}
	return sample
}

// extractMetadata pulls email headers for EMAIL documents. Extraction is
// best-effort: any failure is logged and yields empty metadata.
func (s *IntakeService) extractMetadata(path *Path, docType model.DocumentType) model.EmailMetadata {
	if docType != model.DocumentTypeEmail {
		return model.EmailMetadata{}
	}

	f, err := s.fsmgr.Open(path)
	if err != nil {
		s.logger.Warn("opening email for metadata failed", "file", path.String(), "error", err)
		return model.EmailMetadata{}
	}
	defer f.Close()

	meta, err := ExtractEmailMetadata(f)
	if err != nil {
		s.logger.Warn("extracting email metadata failed", "file", path.String(), "error", err)
	}
	return meta
}

// RetrieveContent copies archived content for the given fingerprint into w,
// decrypting it when the archive is encrypted.
func (s *IntakeService) RetrieveContent(fingerprint string, w io.Writer, dec DecryptionContext) error {
	if s.archive == nil {
		return fmt.Errorf("no archive configured")
	}

	if !s.encryptArchive {
		if err := s.archive.Get(fingerprint, w); err != nil {
			return fmt.Errorf("retrieving content: %w", err)
		}
		return nil
	}

	if dec == nil {
		return fmt.Errorf("archive is encrypted: a decryption context is required")
	}

	var buf bytes.Buffer
	if err := s.archive.Get(fingerprint, &buf); err != nil {
		return fmt.Errorf("retrieving content: %w", err)
	}
	if err := dec.Decrypt(&buf, w); err != nil {
		return fmt.Errorf("decrypting content: %w", err)
	}
	return nil
}
