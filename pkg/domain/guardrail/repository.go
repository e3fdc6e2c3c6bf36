package guardrail

import (
	"context"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
)

// RuleMutation mutates a rule and its ballot set in place. Ballots appended to
// the set are persisted together with the rule.
type RuleMutation func(rule *Rule, ballots *Ballots) error

// Repository is the ledger store. Mutating methods are serialized against each
// other; reads may observe the state before or after an in-flight mutation.
type Repository interface {
	Create(ctx context.Context, guardrail *Guardrail) error
	AppendRule(ctx context.Context, guardrailID string, rule *Rule) error
	Get(ctx context.Context, id string) (*Guardrail, error)
	ListByOwner(ctx context.Context, owner identity.Identity) ([]Guardrail, error)
	List(ctx context.Context) ([]Guardrail, error)
	GetRule(ctx context.Context, ruleID string) (*Rule, error)
	UpdateRule(ctx context.Context, ruleID string, mutate RuleMutation) (*Rule, error)
}
