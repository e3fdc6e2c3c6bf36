package guardrail

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Creator --dir=. --output=./mocks --filename=guardrail_creator_mock.go --case=underscore --with-expecter
type Creator interface {
	Create(ctx context.Context, owner identity.Identity, req *request.CreateGuardrailRequest) (string, error)
}

type creator struct {
	logger *logrus.Logger
	repo   domainGuardrail.Repository
}

func NewCreator(logger *logrus.Logger, repo domainGuardrail.Repository) Creator {
	return &creator{
		logger: logger,
		repo:   repo,
	}
}

// Create registers a guardrail. Caller supplied ids, statuses and vote counts
// are discarded: every rule starts Proposed with zero votes.
func (c *creator) Create(
	ctx context.Context,
	owner identity.Identity,
	req *request.CreateGuardrailRequest,
) (string, error) {
	if owner.IsZero() {
		return "", domainGuardrail.ErrOwnerRequired
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	id, err := domainGuardrail.NewID()
	if err != nil {
		c.logger.WithError(err).Error("failed to generate guardrail id")
		return "", err
	}

	entity := &domainGuardrail.Guardrail{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Owner:     owner,
		CreatedAt: uint64(time.Now().UnixMilli()),
		Rules:     make([]domainGuardrail.Rule, 0, len(req.Rules)),
	}
	for _, r := range req.Rules {
		rule, err := domainGuardrail.NewProposedRule(r.Text)
		if err != nil {
			return "", err
		}
		entity.Rules = append(entity.Rules, rule)
	}

	if err := entity.Validate(); err != nil {
		return "", err
	}

	if err := c.repo.Create(ctx, entity); err != nil {
		if errors.Is(err, domainGuardrail.ErrDuplicateID) {
			c.logger.WithError(err).WithField("guardrail_id", id).Warn("guardrail id collision")
			return "", err
		}
		c.logger.WithError(err).Error("failed to create guardrail")
		return "", fmt.Errorf("failed to create guardrail: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"guardrail_id": id,
		"owner":        owner.String(),
		"rules":        len(entity.Rules),
	}).Info("guardrail created")
	return id, nil
}
