package guardrail

import (
	"fmt"
	"math"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
)

// FinalizePolicy decides the terminal status of a rule from its ballots.
type FinalizePolicy interface {
	Decide(ballots Ballots) RuleStatus
}

// MajorityPolicy approves a rule when approvals are strictly more than half
// of the ballots cast. A rule without ballots is rejected.
type MajorityPolicy struct{}

func (MajorityPolicy) Decide(ballots Ballots) RuleStatus {
	approvals, _ := ballots.Tally()
	if len(ballots) > 0 && approvals*2 > len(ballots) {
		return RuleStatusApproved
	}
	return RuleStatusRejected
}

func AdvanceToVoting(rule *Rule) error {
	if rule.Status != RuleStatusProposed {
		return fmt.Errorf("%w: cannot open voting on a %s rule", ErrInvalidTransition, rule.Status)
	}
	rule.Status = RuleStatusVoting
	return nil
}

// CastVote records the voter's ballot and increments the rule's vote counter.
func CastVote(
	rule *Rule,
	ballots *Ballots,
	voter identity.Identity,
	direction VoteDirection,
	now time.Time,
) error {
	if rule.Status != RuleStatusVoting {
		return fmt.Errorf("%w: cannot vote on a %s rule", ErrInvalidTransition, rule.Status)
	}
	if voter.IsZero() {
		return ErrOwnerRequired
	}
	if !direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVoteDirection, direction)
	}
	if ballots.HasVoted(voter) {
		return ErrAlreadyVoted
	}
	if rule.Votes == math.MaxUint32 {
		return ErrVoteLimitReached
	}
	*ballots = append(*ballots, Ballot{
		RuleID:    rule.ID,
		Voter:     voter,
		Direction: direction,
		CastAt:    now.UTC(),
	})
	rule.Votes++
	return nil
}

func Finalize(rule *Rule, ballots Ballots, policy FinalizePolicy) error {
	if rule.Status != RuleStatusVoting {
		return fmt.Errorf("%w: cannot finalize a %s rule", ErrInvalidTransition, rule.Status)
	}
	if policy == nil {
		policy = MajorityPolicy{}
	}
	outcome := policy.Decide(ballots)
	if !outcome.IsTerminal() {
		return fmt.Errorf("%w: policy returned non-terminal status %s", ErrInvalidTransition, outcome)
	}
	rule.Status = outcome
	return nil
}
