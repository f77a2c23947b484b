package app

// IntakeOperation tracks a CLI run that may mutate the ledger.
// Operations are created in memory with ID=0. Only ledger-mutating
// commands persist them (giving them an auto-increment ID from the
// scan_operations table).
type IntakeOperation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}

// NewIntakeOperation creates a new in-memory intake operation.
func NewIntakeOperation(operation, parameters string) *IntakeOperation {
	return &IntakeOperation{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this operation has been saved to the ledger.
func (op *IntakeOperation) Persisted() bool {
	return op.ID != 0
}
