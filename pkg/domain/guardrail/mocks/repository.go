package mocks

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) Create(ctx context.Context, g *guardrail.Guardrail) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *Repository) AppendRule(ctx context.Context, guardrailID string, rule *guardrail.Rule) error {
	args := m.Called(ctx, guardrailID, rule)
	return args.Error(0)
}

func (m *Repository) Get(ctx context.Context, id string) (*guardrail.Guardrail, error) {
	args := m.Called(ctx, id)
	g, ok := args.Get(0).(*guardrail.Guardrail)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *guardrail.Guardrail, got %T", args.Get(0))
	}
	return g, args.Error(1)
}

func (m *Repository) ListByOwner(ctx context.Context, owner identity.Identity) ([]guardrail.Guardrail, error) {
	args := m.Called(ctx, owner)
	list, _ := args.Get(0).([]guardrail.Guardrail)
	return list, args.Error(1)
}

func (m *Repository) List(ctx context.Context) ([]guardrail.Guardrail, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]guardrail.Guardrail)
	return list, args.Error(1)
}

func (m *Repository) GetRule(ctx context.Context, ruleID string) (*guardrail.Rule, error) {
	args := m.Called(ctx, ruleID)
	rule, ok := args.Get(0).(*guardrail.Rule)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *guardrail.Rule, got %T", args.Get(0))
	}
	return rule, args.Error(1)
}

func (m *Repository) UpdateRule(
	ctx context.Context,
	ruleID string,
	mutate guardrail.RuleMutation,
) (*guardrail.Rule, error) {
	args := m.Called(ctx, ruleID, mutate)
	rule, ok := args.Get(0).(*guardrail.Rule)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *guardrail.Rule, got %T", args.Get(0))
	}
	return rule, args.Error(1)
}
