package guardrail_test

import (
	"math"
	"testing"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votingRule() *guardrail.Rule {
	return &guardrail.Rule{ID: "r1", Text: "Block slurs", Status: guardrail.RuleStatusVoting}
}

func TestAdvanceToVoting(t *testing.T) {
	rule := &guardrail.Rule{ID: "r1", Text: "x", Status: guardrail.RuleStatusProposed}
	require.NoError(t, guardrail.AdvanceToVoting(rule))
	assert.Equal(t, guardrail.RuleStatusVoting, rule.Status)

	err := guardrail.AdvanceToVoting(rule)
	assert.ErrorIs(t, err, guardrail.ErrInvalidTransition)
	assert.Equal(t, guardrail.RuleStatusVoting, rule.Status)
}

func TestCastVote(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("records ballot and increments votes", func(t *testing.T) {
		rule := votingRule()
		var ballots guardrail.Ballots
		require.NoError(t, guardrail.CastVote(rule, &ballots, "alice", guardrail.VoteApprove, now))
		require.NoError(t, guardrail.CastVote(rule, &ballots, "bob", guardrail.VoteReject, now))

		assert.Equal(t, uint32(2), rule.Votes)
		require.Len(t, ballots, 2)
		assert.Equal(t, "r1", ballots[0].RuleID)
		assert.Equal(t, guardrail.VoteReject, ballots[1].Direction)
	})

	t.Run("one ballot per voter", func(t *testing.T) {
		rule := votingRule()
		var ballots guardrail.Ballots
		require.NoError(t, guardrail.CastVote(rule, &ballots, "alice", guardrail.VoteApprove, now))
		err := guardrail.CastVote(rule, &ballots, "alice", guardrail.VoteReject, now)
		assert.ErrorIs(t, err, guardrail.ErrAlreadyVoted)
		assert.Equal(t, uint32(1), rule.Votes)
	})

	t.Run("only while voting", func(t *testing.T) {
		for _, status := range []guardrail.RuleStatus{
			guardrail.RuleStatusProposed,
			guardrail.RuleStatusApproved,
			guardrail.RuleStatusRejected,
		} {
			rule := &guardrail.Rule{ID: "r1", Status: status}
			var ballots guardrail.Ballots
			err := guardrail.CastVote(rule, &ballots, "alice", guardrail.VoteApprove, now)
			assert.ErrorIs(t, err, guardrail.ErrInvalidTransition, status.String())
			assert.Zero(t, rule.Votes)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		rule := votingRule()
		var ballots guardrail.Ballots
		err := guardrail.CastVote(rule, &ballots, "alice", guardrail.VoteDirection("abstain"), now)
		assert.ErrorIs(t, err, guardrail.ErrInvalidVoteDirection)
	})

	t.Run("counter saturation", func(t *testing.T) {
		rule := votingRule()
		rule.Votes = math.MaxUint32
		var ballots guardrail.Ballots
		err := guardrail.CastVote(rule, &ballots, "alice", guardrail.VoteApprove, now)
		assert.ErrorIs(t, err, guardrail.ErrVoteLimitReached)
		assert.Empty(t, ballots)
	})
}

func TestFinalize(t *testing.T) {
	ballots := func(directions ...guardrail.VoteDirection) guardrail.Ballots {
		out := make(guardrail.Ballots, 0, len(directions))
		for i, d := range directions {
			out = append(out, guardrail.Ballot{RuleID: "r1", Voter: identity.Identity("v" + string(rune('a'+i))), Direction: d})
		}
		return out
	}

	tests := []struct {
		name    string
		ballots guardrail.Ballots
		want    guardrail.RuleStatus
	}{
		{"no ballots", nil, guardrail.RuleStatusRejected},
		{"strict majority", ballots(guardrail.VoteApprove, guardrail.VoteApprove, guardrail.VoteReject), guardrail.RuleStatusApproved},
		{"tie", ballots(guardrail.VoteApprove, guardrail.VoteReject), guardrail.RuleStatusRejected},
		{"unanimous reject", ballots(guardrail.VoteReject), guardrail.RuleStatusRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := votingRule()
			require.NoError(t, guardrail.Finalize(rule, tt.ballots, guardrail.MajorityPolicy{}))
			assert.Equal(t, tt.want, rule.Status)
			assert.True(t, rule.Status.IsTerminal())
		})
	}

	t.Run("terminal states are final", func(t *testing.T) {
		rule := &guardrail.Rule{ID: "r1", Status: guardrail.RuleStatusApproved}
		err := guardrail.Finalize(rule, nil, guardrail.MajorityPolicy{})
		assert.ErrorIs(t, err, guardrail.ErrInvalidTransition)
		assert.ErrorIs(t, guardrail.AdvanceToVoting(rule), guardrail.ErrInvalidTransition)
		assert.Equal(t, guardrail.RuleStatusApproved, rule.Status)
	})
}

func TestParseVoteDirection(t *testing.T) {
	d, err := guardrail.ParseVoteDirection(" Approve ")
	require.NoError(t, err)
	assert.Equal(t, guardrail.VoteApprove, d)

	_, err = guardrail.ParseVoteDirection("maybe")
	assert.ErrorIs(t, err, guardrail.ErrInvalidVoteDirection)
}
