package address

import (
	"context"
	"sync"
)

// MockValidator records the addresses it sees. Without ValidateFunc it
// accepts every address as given.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, addr Address) (*ValidationResult, error)

	mu    sync.Mutex
	Calls []Address
}

func NewMockValidator() *MockValidator {
	return &MockValidator{}
}

func (m *MockValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, addr)
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr)
	}
	return &ValidationResult{IsValid: true, NormalizedAddress: &addr}, nil
}
