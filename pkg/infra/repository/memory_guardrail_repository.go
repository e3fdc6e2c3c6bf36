package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/sirupsen/logrus"
)

const snapshotFile = "ledger.json"

type ledgerSnapshot struct {
	Guardrails []guardrail.Guardrail        `json:"guardrails"`
	Ballots    map[string]guardrail.Ballots `json:"ballots"`
}

type memoryGuardrailRepository struct {
	logger  *logrus.Logger
	dataDir string

	mu         sync.RWMutex
	guardrails map[string]*guardrail.Guardrail
	order      []string
	ruleOwner  map[string]string
	ballots    map[string]guardrail.Ballots
}

// NewMemoryGuardrailRepository returns an in-process ledger. When dataDir is
// not empty every mutation is snapshotted to dataDir/ledger.json and the
// snapshot is loaded on start.
func NewMemoryGuardrailRepository(logger *logrus.Logger, dataDir string) (guardrail.Repository, error) {
	r := &memoryGuardrailRepository{
		logger:     logger,
		dataDir:    dataDir,
		guardrails: make(map[string]*guardrail.Guardrail),
		ruleOwner:  make(map[string]string),
		ballots:    make(map[string]guardrail.Ballots),
	}
	if dataDir == "" {
		return r, nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger data dir: %w", err)
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *memoryGuardrailRepository) Create(_ context.Context, g *guardrail.Guardrail) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guardrails[g.ID]; exists {
		return fmt.Errorf("%w: guardrail %s", guardrail.ErrDuplicateID, g.ID)
	}
	seen := make(map[string]struct{}, len(g.Rules))
	for _, rule := range g.Rules {
		if _, exists := r.ruleOwner[rule.ID]; exists {
			return fmt.Errorf("%w: rule %s", guardrail.ErrDuplicateID, rule.ID)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("%w: rule %s", guardrail.ErrDuplicateID, rule.ID)
		}
		seen[rule.ID] = struct{}{}
	}

	for i := range g.Rules {
		g.Rules[i].GuardrailID = g.ID
		g.Rules[i].Position = i
	}
	stored := cloneGuardrail(g)
	r.guardrails[g.ID] = stored
	r.order = append(r.order, g.ID)
	for _, rule := range stored.Rules {
		r.ruleOwner[rule.ID] = g.ID
	}
	if err := r.persist(); err != nil {
		delete(r.guardrails, g.ID)
		r.order = r.order[:len(r.order)-1]
		for _, rule := range stored.Rules {
			delete(r.ruleOwner, rule.ID)
		}
		return err
	}
	return nil
}

func (r *memoryGuardrailRepository) AppendRule(_ context.Context, guardrailID string, rule *guardrail.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.guardrails[guardrailID]
	if !ok {
		return domain.NewNotFoundError("guardrail", guardrailID)
	}
	if _, exists := r.ruleOwner[rule.ID]; exists {
		return fmt.Errorf("%w: rule %s", guardrail.ErrDuplicateID, rule.ID)
	}
	prev := g.Rules
	appended := make([]guardrail.Rule, len(prev), len(prev)+1)
	copy(appended, prev)
	rule.GuardrailID = guardrailID
	rule.Position = len(prev)
	g.Rules = append(appended, *rule)
	r.ruleOwner[rule.ID] = guardrailID
	if err := r.persist(); err != nil {
		g.Rules = prev
		delete(r.ruleOwner, rule.ID)
		return err
	}
	return nil
}

func (r *memoryGuardrailRepository) Get(_ context.Context, id string) (*guardrail.Guardrail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.guardrails[id]
	if !ok {
		return nil, domain.NewNotFoundError("guardrail", id)
	}
	return cloneGuardrail(g), nil
}

func (r *memoryGuardrailRepository) ListByOwner(_ context.Context, owner identity.Identity) ([]guardrail.Guardrail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]guardrail.Guardrail, 0)
	for _, id := range r.order {
		if g := r.guardrails[id]; g.Owner == owner {
			out = append(out, *cloneGuardrail(g))
		}
	}
	return out, nil
}

func (r *memoryGuardrailRepository) List(_ context.Context) ([]guardrail.Guardrail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]guardrail.Guardrail, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *cloneGuardrail(r.guardrails[id]))
	}
	return out, nil
}

func (r *memoryGuardrailRepository) GetRule(_ context.Context, ruleID string) (*guardrail.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, err := r.findRule(ruleID)
	if err != nil {
		return nil, err
	}
	copied := *rule
	return &copied, nil
}

func (r *memoryGuardrailRepository) UpdateRule(
	_ context.Context,
	ruleID string,
	mutate guardrail.RuleMutation,
) (*guardrail.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.findRule(ruleID)
	if err != nil {
		return nil, err
	}

	// Mutate copies so a failed mutation leaves the ledger untouched.
	rule := *stored
	ballots := append(guardrail.Ballots(nil), r.ballots[ruleID]...)
	if err := mutate(&rule, &ballots); err != nil {
		return nil, err
	}

	prevRule := *stored
	prevBallots, hadBallots := r.ballots[ruleID]
	*stored = rule
	if len(ballots) > 0 {
		r.ballots[ruleID] = ballots
	}
	// The snapshot is the source of truth on restart, so memory only keeps
	// what made it to disk.
	if err := r.persist(); err != nil {
		*stored = prevRule
		if hadBallots {
			r.ballots[ruleID] = prevBallots
		} else {
			delete(r.ballots, ruleID)
		}
		return nil, err
	}
	return &rule, nil
}

func (r *memoryGuardrailRepository) findRule(ruleID string) (*guardrail.Rule, error) {
	guardrailID, ok := r.ruleOwner[ruleID]
	if !ok {
		return nil, domain.NewNotFoundError("rule", ruleID)
	}
	g := r.guardrails[guardrailID]
	idx := g.RuleIndex(ruleID)
	if idx < 0 {
		return nil, domain.NewNotFoundError("rule", ruleID)
	}
	return &g.Rules[idx], nil
}

func (r *memoryGuardrailRepository) persist() error {
	if r.dataDir == "" {
		return nil
	}
	snapshot := ledgerSnapshot{
		Guardrails: make([]guardrail.Guardrail, 0, len(r.order)),
		Ballots:    r.ballots,
	}
	for _, id := range r.order {
		snapshot.Guardrails = append(snapshot.Guardrails, *r.guardrails[id])
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	tmp := filepath.Join(r.dataDir, snapshotFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		r.logger.WithError(err).Error("failed to write ledger snapshot")
		return fmt.Errorf("failed to write ledger snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(r.dataDir, snapshotFile)); err != nil {
		r.logger.WithError(err).Error("failed to replace ledger snapshot")
		return fmt.Errorf("failed to replace ledger snapshot: %w", err)
	}
	return nil
}

func (r *memoryGuardrailRepository) load() error {
	data, err := os.ReadFile(filepath.Join(r.dataDir, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger snapshot: %w", err)
	}

	var snapshot ledgerSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to decode ledger snapshot: %w", err)
	}
	for i := range snapshot.Guardrails {
		g := snapshot.Guardrails[i]
		for j := range g.Rules {
			g.Rules[j].GuardrailID = g.ID
			g.Rules[j].Position = j
			r.ruleOwner[g.Rules[j].ID] = g.ID
		}
		r.guardrails[g.ID] = &g
		r.order = append(r.order, g.ID)
	}
	if snapshot.Ballots != nil {
		r.ballots = snapshot.Ballots
	}
	r.logger.WithField("guardrails", len(r.order)).Info("ledger snapshot loaded")
	return nil
}

func cloneGuardrail(g *guardrail.Guardrail) *guardrail.Guardrail {
	copied := *g
	copied.Rules = make([]guardrail.Rule, len(g.Rules))
	copy(copied.Rules, g.Rules)
	return &copied
}
