package testutil

import (
	"context"
	"fmt"
	"sync"

	"intake-go/internal/intake"
)

// StubMinter issues sequential identities: "CHITTY-0001", "CHITTY-0002", etc.
// It records every request it receives.
type StubMinter struct {
	mu       sync.Mutex
	counter  int
	Requests []intake.MintRequest

	// Err makes every Mint call fail, simulating an unreachable service.
	Err error
}

// NewStubMinter creates a new StubMinter.
func NewStubMinter() *StubMinter {
	return &StubMinter{}
}

func (m *StubMinter) Mint(_ context.Context, req intake.MintRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Requests = append(m.Requests, req)
	m.counter++
	return fmt.Sprintf("CHITTY-%04d", m.counter), nil
}

// MintCount returns how many identities have been issued.
func (m *StubMinter) MintCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter
}

var _ intake.IdentityMinter = (*StubMinter)(nil)
