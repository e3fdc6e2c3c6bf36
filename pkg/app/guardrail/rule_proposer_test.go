package guardrail

import (
	"context"
	"fmt"
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRuleProposer_Propose(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo(t)
	id, err := NewCreator(quietLogger(), repo).Create(ctx, "alice", &request.CreateGuardrailRequest{
		Name:  "g",
		Rules: []request.RuleRequest{{Text: "first"}},
	})
	require.NoError(t, err)

	invalidate := new(mockInvalidate)
	invalidate.On("Invalidate", ctx, id).Return(nil)
	proposer := NewRuleProposer(quietLogger(), repo, invalidate)

	const n = 10
	ruleIDs := map[string]bool{}
	for i := 0; i < n; i++ {
		ruleID, err := proposer.Propose(ctx, id, &request.RuleRequest{
			Text:  fmt.Sprintf("rule %d", i),
			Votes: 9,
		})
		require.NoError(t, err)
		ruleIDs[ruleID] = true
	}
	assert.Len(t, ruleIDs, n)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Rules, n+1)
	for _, rule := range got.Rules {
		assert.Equal(t, domainGuardrail.RuleStatusProposed, rule.Status)
		assert.Zero(t, rule.Votes)
	}
	invalidate.AssertNumberOfCalls(t, "Invalidate", n)
}

func TestRuleProposer_Propose_NotFound(t *testing.T) {
	ctx := context.Background()
	invalidate := new(mockInvalidate)
	proposer := NewRuleProposer(quietLogger(), memoryRepo(t), invalidate)

	_, err := proposer.Propose(ctx, "missing", &request.RuleRequest{Text: "x"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFoundError(err))
	invalidate.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestRuleProposer_Propose_EmptyText(t *testing.T) {
	proposer := NewRuleProposer(quietLogger(), memoryRepo(t), new(mockInvalidate))
	_, err := proposer.Propose(context.Background(), "g", &request.RuleRequest{Text: ""})
	assert.ErrorIs(t, err, domainGuardrail.ErrRuleTextRequired)
}
