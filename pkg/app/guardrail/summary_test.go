package guardrail

import (
	"context"
	"errors"
	"testing"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	guardrailMocks "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail/mocks"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSummaryBuilder_Build(t *testing.T) {
	mine := domainGuardrail.Guardrail{
		ID: "g-1", Owner: "alice", Category: "privacy",
		Rules: []domainGuardrail.Rule{
			{ID: "r-1", Status: domainGuardrail.RuleStatusProposed},
			{ID: "r-2", Status: domainGuardrail.RuleStatusApproved},
		},
	}
	theirs := domainGuardrail.Guardrail{
		ID: "g-2", Owner: "bob", Category: "toxicity",
		Rules: []domainGuardrail.Rule{
			{ID: "r-3", Status: domainGuardrail.RuleStatusVoting},
		},
	}
	repo := new(guardrailMocks.Repository)
	repo.On("ListByOwner", mock.Anything, identity.Identity("alice")).Return([]domainGuardrail.Guardrail{mine}, nil)
	repo.On("List", mock.Anything).Return([]domainGuardrail.Guardrail{mine, theirs}, nil)

	summary, err := NewSummaryBuilder(NewFinder(quietLogger(), repo, NewNoopCache())).Build(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OwnedGuardrails)
	assert.Equal(t, 2, summary.TotalGuardrails)
	assert.Equal(t, StatusCounts{Proposed: 1, Approved: 1}, summary.OwnedRules)
	assert.Equal(t, StatusCounts{Proposed: 1, Voting: 1, Approved: 1}, summary.TotalRules)
	assert.Equal(t, []string{"privacy", "toxicity"}, summary.Categories)
}

func TestSummaryBuilder_Build_Error(t *testing.T) {
	repo := new(guardrailMocks.Repository)
	repo.On("ListByOwner", mock.Anything, mock.Anything).Return([]domainGuardrail.Guardrail{}, nil)
	repo.On("List", mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewSummaryBuilder(NewFinder(quietLogger(), repo, NewNoopCache())).Build(context.Background(), "alice")
	assert.ErrorContains(t, err, "db down")
}
