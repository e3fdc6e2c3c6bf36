package guardrail

import (
	"context"
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGovernance_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo(t)
	guardrailID, err := NewCreator(quietLogger(), repo).Create(ctx, "alice", &request.CreateGuardrailRequest{
		Name:  "g",
		Rules: []request.RuleRequest{{Text: "Block slurs"}},
	})
	require.NoError(t, err)
	g, err := repo.Get(ctx, guardrailID)
	require.NoError(t, err)
	ruleID := g.Rules[0].ID

	invalidate := new(mockInvalidate)
	invalidate.On("Invalidate", mock.Anything, guardrailID).Return(nil)
	gov := NewGovernance(quietLogger(), repo, invalidate, nil)

	_, err = gov.CastVote(ctx, ruleID, "bob", domainGuardrail.VoteApprove)
	assert.ErrorIs(t, err, domainGuardrail.ErrInvalidTransition)

	rule, err := gov.AdvanceToVoting(ctx, ruleID)
	require.NoError(t, err)
	assert.Equal(t, domainGuardrail.RuleStatusVoting, rule.Status)

	for _, voter := range []string{"bob", "carol"} {
		_, err = gov.CastVote(ctx, ruleID, identity.Identity(voter), domainGuardrail.VoteApprove)
		require.NoError(t, err)
	}
	rule, err = gov.CastVote(ctx, ruleID, "dave", domainGuardrail.VoteReject)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), rule.Votes)

	_, err = gov.CastVote(ctx, ruleID, "bob", domainGuardrail.VoteReject)
	assert.ErrorIs(t, err, domainGuardrail.ErrAlreadyVoted)

	rule, err = gov.Finalize(ctx, ruleID)
	require.NoError(t, err)
	assert.Equal(t, domainGuardrail.RuleStatusApproved, rule.Status)

	_, err = gov.Finalize(ctx, ruleID)
	assert.ErrorIs(t, err, domainGuardrail.ErrInvalidTransition)

	stored, err := repo.GetRule(ctx, ruleID)
	require.NoError(t, err)
	assert.Equal(t, domainGuardrail.RuleStatusApproved, stored.Status)
	assert.Equal(t, uint32(3), stored.Votes)

	invalidate.AssertNumberOfCalls(t, "Invalidate", 5)
}

type alwaysReject struct{}

func (alwaysReject) Decide(domainGuardrail.Ballots) domainGuardrail.RuleStatus {
	return domainGuardrail.RuleStatusRejected
}

func TestGovernance_CustomPolicy(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo(t)
	guardrailID, err := NewCreator(quietLogger(), repo).Create(ctx, "alice", &request.CreateGuardrailRequest{
		Name:  "g",
		Rules: []request.RuleRequest{{Text: "r"}},
	})
	require.NoError(t, err)
	g, err := repo.Get(ctx, guardrailID)
	require.NoError(t, err)

	invalidate := new(mockInvalidate)
	invalidate.On("Invalidate", mock.Anything, guardrailID).Return(nil)
	gov := NewGovernance(quietLogger(), repo, invalidate, alwaysReject{})

	_, err = gov.AdvanceToVoting(ctx, g.Rules[0].ID)
	require.NoError(t, err)
	_, err = gov.CastVote(ctx, g.Rules[0].ID, "bob", domainGuardrail.VoteApprove)
	require.NoError(t, err)
	rule, err := gov.Finalize(ctx, g.Rules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domainGuardrail.RuleStatusRejected, rule.Status)
}

func TestGovernance_UnknownRule(t *testing.T) {
	invalidate := new(mockInvalidate)
	gov := NewGovernance(quietLogger(), memoryRepo(t), invalidate, nil)
	_, err := gov.AdvanceToVoting(context.Background(), "missing")
	assert.True(t, domain.IsNotFoundError(err))
	invalidate.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
