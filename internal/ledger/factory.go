package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"intake-go/internal/config"
	"intake-go/internal/intake"
)

// NewLedgerFromConfig creates a Ledger implementation based on the database config type.
func NewLedgerFromConfig(cfg config.DatabaseConfig, hostID string) (intake.Ledger, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, hostID+".db")
		return NewSQLiteLedger(dbPath)
	case "memory":
		return NewSQLiteLedger(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
