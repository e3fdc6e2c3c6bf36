package request

import (
	"strings"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
)

// RuleRequest mirrors the Rule wire shape. Only Text is honoured: ids, status
// and votes are always assigned by the registry.
type RuleRequest struct {
	ID     string                `json:"id,omitempty"`
	Text   string                `json:"text"`
	Status *guardrail.RuleStatus `json:"status,omitempty" swaggertype:"object"`
	Votes  uint32                `json:"votes,omitempty"`
}

func (r *RuleRequest) Validate() error {
	return guardrail.ValidateRuleText(r.Text)
}

// CreateGuardrailRequest mirrors the Guardrail wire shape. The owner is taken
// from the authenticated caller, never from the body.
type CreateGuardrailRequest struct {
	ID        string        `json:"id,omitempty"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Rules     []RuleRequest `json:"rules"`
	Owner     string        `json:"owner,omitempty"`
	CreatedAt uint64        `json:"created_at,omitempty"`
}

func (r *CreateGuardrailRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return guardrail.ErrNameRequired
	}
	for i := range r.Rules {
		if err := r.Rules[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

type CastVoteRequest struct {
	Direction string `json:"direction"`
}

func (r *CastVoteRequest) Validate() (guardrail.VoteDirection, error) {
	return guardrail.ParseVoteDirection(r.Direction)
}
