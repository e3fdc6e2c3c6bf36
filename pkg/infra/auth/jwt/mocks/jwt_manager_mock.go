package mocks

import (
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/auth/jwt"
	"github.com/stretchr/testify/mock"
)

type Manager struct {
	mock.Mock
}

func (m *Manager) CreateToken(subject identity.Identity, ttl time.Duration) (string, error) {
	args := m.Called(subject, ttl)
	return args.String(0), args.Error(1)
}

func (m *Manager) ValidateToken(tokenString string) error {
	return m.Called(tokenString).Error(0)
}

func (m *Manager) DecodeToken(tokenString string) (*jwt.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*jwt.Claims)
	return claims, args.Error(1)
}

func (m *Manager) Identity(tokenString string) (identity.Identity, error) {
	args := m.Called(tokenString)
	id, _ := args.Get(0).(identity.Identity)
	return id, args.Error(1)
}
