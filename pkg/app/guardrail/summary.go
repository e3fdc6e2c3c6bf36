package guardrail

import (
	"context"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"golang.org/x/sync/errgroup"
)

// StatusCounts counts rules per lifecycle status.
type StatusCounts struct {
	Proposed int `json:"proposed"`
	Voting   int `json:"voting"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (s *StatusCounts) add(status domainGuardrail.RuleStatus) {
	switch status {
	case domainGuardrail.RuleStatusProposed:
		s.Proposed++
	case domainGuardrail.RuleStatusVoting:
		s.Voting++
	case domainGuardrail.RuleStatusApproved:
		s.Approved++
	case domainGuardrail.RuleStatusRejected:
		s.Rejected++
	}
}

type Summary struct {
	OwnedGuardrails int          `json:"owned_guardrails"`
	OwnedRules      StatusCounts `json:"owned_rules"`
	TotalGuardrails int          `json:"total_guardrails"`
	TotalRules      StatusCounts `json:"total_rules"`
	Categories      []string     `json:"categories"`
}

//go:generate mockery --name=SummaryBuilder --dir=. --output=./mocks --filename=summary_builder_mock.go --case=underscore --with-expecter
type SummaryBuilder interface {
	Build(ctx context.Context, owner identity.Identity) (*Summary, error)
}

type summaryBuilder struct {
	finder Finder
}

func NewSummaryBuilder(finder Finder) SummaryBuilder {
	return &summaryBuilder{finder: finder}
}

func (b *summaryBuilder) Build(ctx context.Context, owner identity.Identity) (*Summary, error) {
	var owned, all []domainGuardrail.Guardrail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = b.finder.ListByOwner(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = b.finder.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		OwnedGuardrails: len(owned),
		TotalGuardrails: len(all),
		Categories:      make([]string, 0),
	}
	for _, gr := range owned {
		for _, rule := range gr.Rules {
			summary.OwnedRules.add(rule.Status)
		}
	}
	seen := make(map[string]struct{})
	for _, gr := range all {
		for _, rule := range gr.Rules {
			summary.TotalRules.add(rule.Status)
		}
		if gr.Category == "" {
			continue
		}
		if _, ok := seen[gr.Category]; !ok {
			seen[gr.Category] = struct{}{}
			summary.Categories = append(summary.Categories, gr.Category)
		}
	}
	return summary, nil
}
