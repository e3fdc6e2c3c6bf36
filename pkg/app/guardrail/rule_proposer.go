package guardrail

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=RuleProposer --dir=. --output=./mocks --filename=rule_proposer_mock.go --case=underscore --with-expecter
type RuleProposer interface {
	Propose(ctx context.Context, guardrailID string, req *request.RuleRequest) (string, error)
}

type ruleProposer struct {
	logger     *logrus.Logger
	repo       domainGuardrail.Repository
	invalidate InvalidateGuardrailCache
}

func NewRuleProposer(
	logger *logrus.Logger,
	repo domainGuardrail.Repository,
	invalidate InvalidateGuardrailCache,
) RuleProposer {
	return &ruleProposer{
		logger:     logger,
		repo:       repo,
		invalidate: invalidate,
	}
}

func (p *ruleProposer) Propose(ctx context.Context, guardrailID string, req *request.RuleRequest) (string, error) {
	rule, err := domainGuardrail.NewProposedRule(req.Text)
	if err != nil {
		return "", err
	}

	if err := p.repo.AppendRule(ctx, guardrailID, &rule); err != nil {
		if domain.IsNotFoundError(err) || errors.Is(err, domainGuardrail.ErrDuplicateID) {
			return "", err
		}
		p.logger.WithError(err).WithField("guardrail_id", guardrailID).Error("failed to append rule")
		return "", fmt.Errorf("failed to append rule: %w", err)
	}

	if err := p.invalidate.Invalidate(ctx, guardrailID); err != nil {
		p.logger.WithError(err).Warn("rule appended but cache invalidation failed")
	}

	p.logger.WithFields(logrus.Fields{
		"guardrail_id": guardrailID,
		"rule_id":      rule.ID,
	}).Info("rule proposed")
	return rule.ID, nil
}
