package mocks

import "github.com/stretchr/testify/mock"

// MockCircuitBreaker runs fn unless the expectation returns an error, which
// simulates a rejection by an open breaker.
type MockCircuitBreaker struct {
	mock.Mock
}

func (m *MockCircuitBreaker) Execute(fn func() error) error {
	args := m.Called(fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn()
}
