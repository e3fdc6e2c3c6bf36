package registry

import (
	"context"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
)

// Registry is the remote view of the guardrail registry. The caller identity
// travels with the bearer token and is never part of a request body.
//
//go:generate mockery --name=Registry --dir=. --output=./mocks --filename=registry_mock.go --case=underscore --with-expecter
type Registry interface {
	CreateGuardrail(ctx context.Context, draft guardrail.Guardrail) (string, error)
	ProposeRule(ctx context.Context, guardrailID string, text string) (string, error)
	GetGuardrail(ctx context.Context, id string) (*guardrail.Guardrail, error)
	GetGuardrailsByOwner(ctx context.Context) ([]guardrail.Guardrail, error)
	GetAllGuardrails(ctx context.Context) ([]guardrail.Guardrail, error)
	AdvanceToVoting(ctx context.Context, ruleID string) (*guardrail.Rule, error)
	CastVote(ctx context.Context, ruleID string, direction guardrail.VoteDirection) (*guardrail.Rule, error)
	Finalize(ctx context.Context, ruleID string) (*guardrail.Rule, error)
}
