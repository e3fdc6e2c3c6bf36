package guardrail_test

import (
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardrail_Validate(t *testing.T) {
	valid := func() guardrail.Guardrail {
		return guardrail.Guardrail{
			Name:     "PII",
			Category: "privacy",
			Owner:    "aaaaa-aa",
			Rules:    []guardrail.Rule{{Text: "Block emails"}},
		}
	}

	t.Run("valid", func(t *testing.T) {
		g := valid()
		assert.NoError(t, g.Validate())
		assert.NoError(t, g.ValidateForSubmission())
	})

	t.Run("blank name", func(t *testing.T) {
		g := valid()
		g.Name = "   "
		assert.ErrorIs(t, g.Validate(), guardrail.ErrNameRequired)
	})

	t.Run("missing owner", func(t *testing.T) {
		g := valid()
		g.Owner = ""
		assert.ErrorIs(t, g.Validate(), guardrail.ErrOwnerRequired)
	})

	t.Run("empty rule text", func(t *testing.T) {
		g := valid()
		g.Rules = append(g.Rules, guardrail.Rule{Text: ""})
		assert.ErrorIs(t, g.Validate(), guardrail.ErrRuleTextRequired)
	})

	t.Run("registry accepts empty rule list", func(t *testing.T) {
		g := valid()
		g.Rules = nil
		assert.NoError(t, g.Validate())
		assert.ErrorIs(t, g.ValidateForSubmission(), guardrail.ErrNoRules)
	})
}

func TestNewProposedRule(t *testing.T) {
	first, err := guardrail.NewProposedRule("Block slurs")
	require.NoError(t, err)
	second, err := guardrail.NewProposedRule("Block slurs")
	require.NoError(t, err)

	assert.Equal(t, guardrail.RuleStatusProposed, first.Status)
	assert.Zero(t, first.Votes)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = guardrail.NewProposedRule("")
	assert.ErrorIs(t, err, guardrail.ErrRuleTextRequired)
}

func TestGuardrail_RuleIndex(t *testing.T) {
	g := guardrail.Guardrail{Rules: []guardrail.Rule{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, 1, g.RuleIndex("b"))
	assert.Equal(t, -1, g.RuleIndex("c"))
}
