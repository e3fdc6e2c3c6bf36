package guardrail

import (
	"context"
	"time"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Governance --dir=. --output=./mocks --filename=governance_mock.go --case=underscore --with-expecter
type Governance interface {
	AdvanceToVoting(ctx context.Context, ruleID string) (*domainGuardrail.Rule, error)
	CastVote(
		ctx context.Context,
		ruleID string,
		voter identity.Identity,
		direction domainGuardrail.VoteDirection,
	) (*domainGuardrail.Rule, error)
	Finalize(ctx context.Context, ruleID string) (*domainGuardrail.Rule, error)
}

type governance struct {
	logger     *logrus.Logger
	repo       domainGuardrail.Repository
	invalidate InvalidateGuardrailCache
	policy     domainGuardrail.FinalizePolicy
}

func NewGovernance(
	logger *logrus.Logger,
	repo domainGuardrail.Repository,
	invalidate InvalidateGuardrailCache,
	policy domainGuardrail.FinalizePolicy,
) Governance {
	if policy == nil {
		policy = domainGuardrail.MajorityPolicy{}
	}
	return &governance{
		logger:     logger,
		repo:       repo,
		invalidate: invalidate,
		policy:     policy,
	}
}

func (g *governance) AdvanceToVoting(ctx context.Context, ruleID string) (*domainGuardrail.Rule, error) {
	return g.apply(ctx, ruleID, "advance_to_voting", func(rule *domainGuardrail.Rule, _ *domainGuardrail.Ballots) error {
		return domainGuardrail.AdvanceToVoting(rule)
	})
}

func (g *governance) CastVote(
	ctx context.Context,
	ruleID string,
	voter identity.Identity,
	direction domainGuardrail.VoteDirection,
) (*domainGuardrail.Rule, error) {
	return g.apply(ctx, ruleID, "cast_vote", func(rule *domainGuardrail.Rule, ballots *domainGuardrail.Ballots) error {
		return domainGuardrail.CastVote(rule, ballots, voter, direction, time.Now())
	})
}

func (g *governance) Finalize(ctx context.Context, ruleID string) (*domainGuardrail.Rule, error) {
	return g.apply(ctx, ruleID, "finalize", func(rule *domainGuardrail.Rule, ballots *domainGuardrail.Ballots) error {
		return domainGuardrail.Finalize(rule, *ballots, g.policy)
	})
}

func (g *governance) apply(
	ctx context.Context,
	ruleID string,
	operation string,
	mutate domainGuardrail.RuleMutation,
) (*domainGuardrail.Rule, error) {
	rule, err := g.repo.UpdateRule(ctx, ruleID, mutate)
	if err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{
			"rule_id":   ruleID,
			"operation": operation,
		}).Debug("rule transition rejected")
		return nil, err
	}

	if err := g.invalidate.Invalidate(ctx, rule.GuardrailID); err != nil {
		g.logger.WithError(err).Warn("rule updated but cache invalidation failed")
	}

	g.logger.WithFields(logrus.Fields{
		"rule_id":   rule.ID,
		"operation": operation,
		"status":    rule.Status.String(),
		"votes":     rule.Votes,
	}).Info("rule transition applied")
	return rule, nil
}
