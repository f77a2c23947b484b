package testutil

import (
	"testing"

	"intake-go/internal/intake"
	"intake-go/internal/ledger"
	"intake-go/internal/ledger/migrations"
)

// NewTestLedger creates a new in-memory SQLite ledger with all migrations
// applied. The ledger is automatically closed when the test completes.
func NewTestLedger(t *testing.T, clock intake.Clock) *ledger.SQLiteLedger {
	t.Helper()

	db, err := ledger.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger database: %v", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		t.Fatalf("failed to migrate ledger database: %v", err)
	}

	led := ledger.NewSQLiteLedgerFromDB(db, clock)

	t.Cleanup(func() {
		led.Close()
	})

	return led
}
