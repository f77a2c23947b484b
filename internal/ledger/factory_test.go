package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"intake-go/internal/config"
	"intake-go/internal/ledger"
)

func TestNewLedgerFromConfig(t *testing.T) {
	t.Run("memory ledger", func(t *testing.T) {
		led, err := ledger.NewLedgerFromConfig(config.DatabaseConfig{Type: "memory"}, "host-123")
		if err != nil {
			t.Fatalf("NewLedgerFromConfig() error = %v", err)
		}
		defer led.Close()

		// Schema is applied on open.
		if _, err := led.GetByIdentity("CH-NONE"); err != nil {
			t.Errorf("GetByIdentity() on fresh ledger error = %v", err)
		}
	})

	t.Run("sqlite ledger creates the data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "db")
		cfg := config.DatabaseConfig{Type: "sqlite", DataDir: dataDir}

		led, err := ledger.NewLedgerFromConfig(cfg, "host-123")
		if err != nil {
			t.Fatalf("NewLedgerFromConfig() error = %v", err)
		}
		defer led.Close()

		if _, err := os.Stat(filepath.Join(dataDir, "host-123.db")); err != nil {
			t.Errorf("expected database file on disk: %v", err)
		}
	})

	t.Run("sqlite without data_dir fails", func(t *testing.T) {
		if _, err := ledger.NewLedgerFromConfig(config.DatabaseConfig{Type: "sqlite"}, "host-123"); err == nil {
			t.Error("NewLedgerFromConfig() error = nil, want error for missing data_dir")
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		if _, err := ledger.NewLedgerFromConfig(config.DatabaseConfig{Type: "dynamo"}, "host-123"); err == nil {
			t.Error("NewLedgerFromConfig() error = nil, want error for unknown type")
		}
	})
}
