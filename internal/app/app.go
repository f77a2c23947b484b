package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"intake-go/internal/archive"
	"intake-go/internal/config"
	"intake-go/internal/encryption"
	"intake-go/internal/fs"
	"intake-go/internal/identity"
	"intake-go/internal/intake"
	"intake-go/internal/ledger"
	"intake-go/internal/model"
)

// IntakeApp is the application layer between the CLI and IntakeService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the ledger lifecycle on Close.
type IntakeApp struct {
	cfg       *config.Config
	ledger    intake.Ledger
	archive   intake.Archive
	fsmgr     intake.FilesystemManager
	encryptor intake.Encryptor
	service   *intake.IntakeService
	op        *IntakeOperation
	logFile   *os.File
}

// NewIntakeApp creates a fully wired IntakeApp from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "TimelineAdd").
// The caller must call Close when done.
func NewIntakeApp(cfg *config.Config, operation string) (*IntakeApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	led, err := ledger.NewLedgerFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	arc, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		led.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		led.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		led.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	minter := identity.NewClient(cfg.Identity)
	profile := intake.NewCaseProfile(cfg.Case.Surname, cfg.Case.SubjectEmail, cfg.Case.OpposingCounsel, cfg.Case.CaseTag, cfg.Case.DomainTag)

	svc := intake.NewIntakeService(led, minter, arc, enc, cfg.Archive.Encrypt, fsmgr, profile, &slogAdapter{l: logger}, intake.RealClock{})
	op := NewIntakeOperation(operation, "")

	return &IntakeApp{
		cfg:       cfg,
		ledger:    led,
		archive:   arc,
		fsmgr:     fsmgr,
		encryptor: enc,
		service:   svc,
		op:        op,
		logFile:   logFile,
	}, nil
}

// persistOperation saves the operation to the ledger, giving it an
// auto-increment ID. This should only be called for mutating commands.
func (a *IntakeApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	a.op.Parameters = parameters
	dbOp, err := a.ledger.CreateScanOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting scan operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// MarkFailure records that the current operation ended in an error. The
// status is written to the ledger during Close.
func (a *IntakeApp) MarkFailure() {
	a.op.Status = "error"
}

// checkScanPreconditions verifies everything a scan needs before the first
// document is touched: the identity token and, when archive encryption is
// enabled, an existing key pair.
func (a *IntakeApp) checkScanPreconditions() error {
	if err := a.cfg.ValidateIdentity(); err != nil {
		return err
	}
	if a.cfg.Archive.Encrypt && !a.encryptor.IsConfigured() {
		return fmt.Errorf("archive encryption is enabled but no keys exist: run `intake keys init` first")
	}
	return nil
}

// Scan resolves the given path and runs the intake pipeline on every
// document under it. Requires the identity token to be present.
func (a *IntakeApp) Scan(ctx context.Context, rawPath string) (intake.ScanSummary, error) {
	if err := a.checkScanPreconditions(); err != nil {
		return intake.ScanSummary{}, err
	}
	if err := a.persistOperation(rawPath); err != nil {
		return intake.ScanSummary{}, err
	}
	return a.scanRoot(ctx, rawPath)
}

func (a *IntakeApp) scanRoot(ctx context.Context, rawPath string) (intake.ScanSummary, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return intake.ScanSummary{}, fmt.Errorf("resolving path: %w", err)
	}
	fmt.Printf("Scanning directory: %s\n", p.String())
	summary, err := a.service.ScanDirectory(ctx, p)
	if err != nil {
		return summary, err
	}
	fmt.Printf("Processed %d documents\n", summary.Processed)
	return summary, nil
}

// ScanAll runs the intake pipeline over every configured scan root.
// Roots that no longer exist are skipped with a warning on stderr so a
// stale config entry cannot abort a whole evidence sweep.
func (a *IntakeApp) ScanAll(ctx context.Context) (intake.ScanSummary, error) {
	if len(a.cfg.ScanRoots) == 0 {
		return intake.ScanSummary{}, fmt.Errorf("no scan roots configured")
	}
	if err := a.checkScanPreconditions(); err != nil {
		return intake.ScanSummary{}, err
	}
	if err := a.persistOperation("all"); err != nil {
		return intake.ScanSummary{}, err
	}

	var total intake.ScanSummary
	for _, root := range a.cfg.ScanRoots {
		if _, err := os.Stat(root); err != nil {
			fmt.Fprintf(os.Stderr, "skipping scan root %s: %v\n", root, err)
			continue
		}
		summary, err := a.scanRoot(ctx, root)
		if err != nil {
			return total, fmt.Errorf("scanning %s: %w", root, err)
		}
		total.Processed += summary.Processed
		total.Skipped += summary.Skipped
		total.Failed += summary.Failed
	}
	return total, nil
}

// GenerateReport renders the evidence report and writes it to the
// configured report path, overwriting any previous report.
func (a *IntakeApp) GenerateReport() (string, error) {
	report, err := a.service.BuildReport()
	if err != nil {
		return "", fmt.Errorf("building report: %w", err)
	}
	if err := os.WriteFile(a.cfg.ReportPath, []byte(report), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return a.cfg.ReportPath, nil
}

// AddTimelineEvent appends an event to the case timeline.
func (a *IntakeApp) AddTimelineEvent(date, eventType, description, evidenceID, documentReference string) (*model.TimelineEvent, error) {
	if err := a.persistOperation(eventType); err != nil {
		return nil, err
	}
	return a.ledger.AddTimelineEvent(&model.TimelineEvent{
		Date:              date,
		EventType:         eventType,
		Description:       description,
		EvidenceID:        evidenceID,
		DocumentReference: documentReference,
	})
}

// ListTimelineEvents returns up to limit timeline events, oldest first.
func (a *IntakeApp) ListTimelineEvents(limit int) ([]*model.TimelineEvent, error) {
	return a.ledger.ListTimelineEvents(limit)
}

// GetHistory returns the most recent intake operations.
func (a *IntakeApp) GetHistory(limit int) ([]*model.ScanOperation, error) {
	return a.ledger.ListScanOperations(limit)
}

// RetrieveContent copies archived content for the given fingerprint into w.
// When the archive is encrypted, passphrase unlocks the private key first.
func (a *IntakeApp) RetrieveContent(fingerprint string, w io.Writer, passphrase string) error {
	var dec intake.DecryptionContext
	if a.cfg.Archive.Encrypt {
		var err error
		dec, err = a.encryptor.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking keys: %w", err)
		}
	}
	return a.service.RetrieveContent(fingerprint, w, dec)
}

// Close finalizes the operation record and closes all resources.
func (a *IntakeApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.ledger.FinishScanOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing scan operation: %w", err)
		}
	}

	if err := a.ledger.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing ledger: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// ArchiveEncrypted reports whether archived content is stored encrypted,
// meaning retrieval needs the operator's passphrase.
func (a *IntakeApp) ArchiveEncrypted() bool {
	return a.cfg.Archive.Encrypt
}

// SetupKeys generates and stores the archive encryption key pair.
func (a *IntakeApp) SetupKeys(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return a.encryptor.Setup(passphrase)
}
