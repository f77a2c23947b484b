package intake

// FileOutcome is the terminal state of the per-file state machine.
type FileOutcome int

const (
	// OutcomeProcessed means the document was recorded in the ledger.
	OutcomeProcessed FileOutcome = iota
	// OutcomeSkipped means the file's extension is not accepted; not an error.
	OutcomeSkipped
	// OutcomeFailed means processing aborted for this document; the scan continues.
	OutcomeFailed
)

// FailureStage names the pipeline step at which a document failed.
type FailureStage string

const (
	StageIdentity    FailureStage = "identity"
	StageFingerprint FailureStage = "fingerprint"
	StageArchive     FailureStage = "archive"
	StageStorage     FailureStage = "storage"
)

// FileResult reports what happened to a single file. Per-document failures
// are values, not errors: the directory scan inspects the result and moves
// on, so one bad document never aborts a scan.
type FileResult struct {
	Path     string
	Outcome  FileOutcome
	Identity string       // set when Outcome == OutcomeProcessed
	Score    int          // set when Outcome == OutcomeProcessed
	Stage    FailureStage // set when Outcome == OutcomeFailed
	Err      error        // set when Outcome == OutcomeFailed
}

func processed(path, identity string, score int) FileResult {
	return FileResult{Path: path, Outcome: OutcomeProcessed, Identity: identity, Score: score}
}

func skipped(path string) FileResult {
	return FileResult{Path: path, Outcome: OutcomeSkipped}
}

func failed(path string, stage FailureStage, err error) FileResult {
	return FileResult{Path: path, Outcome: OutcomeFailed, Stage: stage, Err: err}
}
