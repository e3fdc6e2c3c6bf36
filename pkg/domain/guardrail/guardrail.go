package guardrail

import (
	"strings"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"gorm.io/gorm"
)

type Guardrail struct {
	ID        string            `json:"id" gorm:"primaryKey"`
	Name      string            `json:"name" gorm:"not null"`
	Category  string            `json:"category"`
	Rules     []Rule            `json:"rules" gorm:"foreignKey:GuardrailID;constraint:OnDelete:CASCADE"`
	Owner     identity.Identity `json:"owner" gorm:"type:text;not null;index"`
	CreatedAt uint64            `json:"created_at" gorm:"not null;autoCreateTime:false"`
}

// Validate checks what the registry itself enforces. An empty rule list is accepted.
func (g *Guardrail) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	if g.Owner.IsZero() {
		return ErrOwnerRequired
	}
	for _, rule := range g.Rules {
		if err := ValidateRuleText(rule.Text); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForSubmission is the stricter check of the creation workflow, which
// refuses to submit a guardrail without rules.
func (g *Guardrail) ValidateForSubmission() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	if len(g.Rules) == 0 {
		return ErrNoRules
	}
	for _, rule := range g.Rules {
		if err := ValidateRuleText(rule.Text); err != nil {
			return err
		}
	}
	return nil
}

// RuleIndex returns the position of the rule with the given id, or -1.
func (g *Guardrail) RuleIndex(ruleID string) int {
	for i := range g.Rules {
		if g.Rules[i].ID == ruleID {
			return i
		}
	}
	return -1
}

func (g *Guardrail) BeforeCreate(tx *gorm.DB) error {
	return g.Validate()
}

func (g *Guardrail) TableName() string {
	return "guardrails"
}
