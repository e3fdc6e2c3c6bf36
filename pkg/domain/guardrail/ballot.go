package guardrail

import (
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
)

type VoteDirection string

const (
	VoteApprove VoteDirection = "approve"
	VoteReject  VoteDirection = "reject"
)

func ParseVoteDirection(value string) (VoteDirection, error) {
	switch VoteDirection(strings.ToLower(strings.TrimSpace(value))) {
	case VoteApprove:
		return VoteApprove, nil
	case VoteReject:
		return VoteReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVoteDirection, value)
	}
}

func (d VoteDirection) Valid() bool {
	return d == VoteApprove || d == VoteReject
}

// Ballot records a single voter's decision on a rule.
type Ballot struct {
	RuleID    string            `json:"rule_id" gorm:"primaryKey"`
	Voter     identity.Identity `json:"voter" gorm:"primaryKey;type:text"`
	Direction VoteDirection     `json:"direction" gorm:"type:text;not null"`
	CastAt    time.Time         `json:"cast_at" gorm:"not null"`
}

func (b *Ballot) TableName() string {
	return "rule_ballots"
}

// Ballots is the set of ballots recorded for one rule. New ballots are
// appended by CastVote and persisted by the repository.
type Ballots []Ballot

func (b Ballots) HasVoted(voter identity.Identity) bool {
	for _, ballot := range b {
		if ballot.Voter == voter {
			return true
		}
	}
	return false
}

func (b Ballots) Tally() (approvals, rejections int) {
	for _, ballot := range b {
		switch ballot.Direction {
		case VoteApprove:
			approvals++
		case VoteReject:
			rejections++
		}
	}
	return approvals, rejections
}
