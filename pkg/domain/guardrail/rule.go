package guardrail

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Rule struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	GuardrailID string     `json:"-" gorm:"not null;index"`
	Position    int        `json:"-" gorm:"not null"`
	Text        string     `json:"text" gorm:"not null"`
	Status      RuleStatus `json:"status" gorm:"type:text;not null"`
	Votes       uint32     `json:"votes" gorm:"not null;default:0"`
}

// NewProposedRule builds a rule with a fresh id in its initial state.
func NewProposedRule(text string) (Rule, error) {
	if err := ValidateRuleText(text); err != nil {
		return Rule{}, err
	}
	id, err := NewID()
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		ID:     id,
		Text:   text,
		Status: RuleStatusProposed,
		Votes:  0,
	}, nil
}

func ValidateRuleText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrRuleTextRequired
	}
	return nil
}

func (r *Rule) BeforeCreate(tx *gorm.DB) error {
	if err := ValidateRuleText(r.Text); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownRuleStatus, uint8(r.Status))
	}
	return nil
}

func (r *Rule) TableName() string {
	return "guardrail_rules"
}

// NewID returns a time-ordered, globally unique identifier.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}
