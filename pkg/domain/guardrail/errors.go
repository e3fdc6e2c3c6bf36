package guardrail

import "errors"

var (
	ErrNameRequired         = errors.New("guardrail name is required")
	ErrOwnerRequired        = errors.New("guardrail owner is required")
	ErrRuleTextRequired     = errors.New("rule text is required")
	ErrNoRules              = errors.New("guardrail must contain at least one rule")
	ErrDuplicateID          = errors.New("duplicate id")
	ErrUnknownRuleStatus    = errors.New("unknown rule status")
	ErrInvalidTransition    = errors.New("invalid rule status transition")
	ErrAlreadyVoted         = errors.New("voter already cast a ballot for this rule")
	ErrInvalidVoteDirection = errors.New("invalid vote direction, must be 'approve' or 'reject'")
	ErrVoteLimitReached     = errors.New("rule vote counter is at its maximum")
)

// IsRetryable reports whether the caller may retry the same request with fresh ids.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}
