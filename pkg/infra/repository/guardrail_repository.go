package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type guardrailRepository struct {
	db *gorm.DB
}

// NewGuardrailRepository returns the postgres-backed ledger. The gorm handle
// must be opened with TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewGuardrailRepository(db *gorm.DB) guardrail.Repository {
	return &guardrailRepository{
		db: db,
	}
}

func (r *guardrailRepository) Create(ctx context.Context, g *guardrail.Guardrail) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(g).Error; err != nil {
			return err
		}
		for i := range g.Rules {
			g.Rules[i].GuardrailID = g.ID
			g.Rules[i].Position = i
		}
		if len(g.Rules) == 0 {
			return nil
		}
		return tx.Create(&g.Rules).Error
	})
	return translate(err)
}

func (r *guardrailRepository) AppendRule(ctx context.Context, guardrailID string, rule *guardrail.Rule) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGuardrail(tx, guardrailID); err != nil {
			return err
		}
		var next int
		if err := tx.Model(&guardrail.Rule{}).
			Where("guardrail_id = ?", guardrailID).
			Select("COALESCE(MAX(position), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}
		rule.GuardrailID = guardrailID
		rule.Position = next
		return tx.Create(rule).Error
	})
	return translate(err)
}

func (r *guardrailRepository) Get(ctx context.Context, id string) (*guardrail.Guardrail, error) {
	var g guardrail.Guardrail
	if err := r.db.WithContext(ctx).
		Preload("Rules", orderedRules).
		Where("id = ?", id).
		First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("guardrail", id)
		}
		return nil, err
	}
	return &g, nil
}

func (r *guardrailRepository) ListByOwner(ctx context.Context, owner identity.Identity) ([]guardrail.Guardrail, error) {
	guardrails := make([]guardrail.Guardrail, 0)
	if err := r.db.WithContext(ctx).
		Preload("Rules", orderedRules).
		Where("owner = ?", owner).
		Order("created_at ASC, id ASC").
		Find(&guardrails).Error; err != nil {
		return nil, err
	}
	return guardrails, nil
}

func (r *guardrailRepository) List(ctx context.Context) ([]guardrail.Guardrail, error) {
	guardrails := make([]guardrail.Guardrail, 0)
	if err := r.db.WithContext(ctx).
		Preload("Rules", orderedRules).
		Order("created_at ASC, id ASC").
		Find(&guardrails).Error; err != nil {
		return nil, err
	}
	return guardrails, nil
}

func (r *guardrailRepository) GetRule(ctx context.Context, ruleID string) (*guardrail.Rule, error) {
	var rule guardrail.Rule
	if err := r.db.WithContext(ctx).Where("id = ?", ruleID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("rule", ruleID)
		}
		return nil, err
	}
	return &rule, nil
}

func (r *guardrailRepository) UpdateRule(
	ctx context.Context,
	ruleID string,
	mutate guardrail.RuleMutation,
) (*guardrail.Rule, error) {
	var updated guardrail.Rule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule guardrail.Rule
		if err := tx.Where("id = ?", ruleID).First(&rule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("rule", ruleID)
			}
			return err
		}
		// Lock the parent first so appends and rule updates share one order.
		if err := lockGuardrail(tx, rule.GuardrailID); err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ruleID).
			First(&rule).Error; err != nil {
			return err
		}

		var ballots guardrail.Ballots
		if err := tx.Where("rule_id = ?", ruleID).Order("cast_at ASC").Find(&ballots).Error; err != nil {
			return err
		}
		existing := len(ballots)

		if err := mutate(&rule, &ballots); err != nil {
			return err
		}

		if err := tx.Model(&guardrail.Rule{}).
			Where("id = ?", ruleID).
			Updates(map[string]interface{}{
				"status": rule.Status,
				"votes":  rule.Votes,
			}).Error; err != nil {
			return err
		}
		if added := ballots[existing:]; len(added) > 0 {
			if err := tx.Create(&added).Error; err != nil {
				return err
			}
		}
		updated = rule
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func lockGuardrail(tx *gorm.DB, id string) error {
	var g guardrail.Guardrail
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("guardrail", id)
		}
		return err
	}
	return nil
}

func orderedRules(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", guardrail.ErrDuplicateID, err)
	}
	return err
}
