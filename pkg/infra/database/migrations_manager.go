package database

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

var (
	migrationsRegistry = make(map[string]Migration)
	migrationsOrder    = make([]string, 0)
)

// RegisterMigration is called from init functions of the migrations package.
func RegisterMigration(m Migration) {
	if _, exists := migrationsRegistry[m.ID]; exists {
		panic(fmt.Sprintf("migration with ID %s already registered", m.ID))
	}
	migrationsRegistry[m.ID] = m
	migrationsOrder = append(migrationsOrder, m.ID)
}

// pendingMigrations returns registered migrations not in applied, ordered by id.
func pendingMigrations(applied map[string]struct{}) []Migration {
	ids := make([]string, len(migrationsOrder))
	copy(ids, migrationsOrder)
	sort.Strings(ids)

	pending := make([]Migration, 0, len(ids))
	for _, id := range ids {
		if _, ok := applied[id]; ok {
			continue
		}
		pending = append(pending, migrationsRegistry[id])
	}
	return pending
}

type MigrationsManager struct {
	db *gorm.DB
}

func NewMigrationsManager(db *gorm.DB) *MigrationsManager {
	return &MigrationsManager{db: db}
}

func (m *MigrationsManager) ensureMigrationsTable() error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS public.migration_version (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	return m.db.Exec(createTableSQL).Error
}

func (m *MigrationsManager) getAppliedMigrations() (map[string]struct{}, error) {
	type row struct{ ID string }
	var rows []row
	if err := m.db.Raw("SELECT id FROM public.migration_version").Scan(&rows).Error; err != nil {
		return nil, err
	}
	applied := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		applied[r.ID] = struct{}{}
	}
	return applied, nil
}

// ApplyPending runs every pending migration in its own transaction.
func (m *MigrationsManager) ApplyPending() error {
	if err := m.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}

	for _, mig := range pendingMigrations(applied) {
		if mig.Up == nil {
			return fmt.Errorf("migration %s has no Up function", mig.ID)
		}
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return fmt.Errorf("apply migration %s (%s): %w", mig.ID, mig.Name, err)
			}
			if err := tx.Exec(
				"INSERT INTO public.migration_version (id, name, applied_at) VALUES (?, ?, ?)",
				mig.ID, mig.Name, time.Now(),
			).Error; err != nil {
				return fmt.Errorf("record migration %s: %w", mig.ID, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Rollback reverts a single applied migration.
func (m *MigrationsManager) Rollback(id string) error {
	mig, ok := migrationsRegistry[id]
	if !ok {
		return fmt.Errorf("migration %s is not registered", id)
	}
	if mig.Down == nil {
		return fmt.Errorf("migration %s has no Down function", id)
	}
	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := mig.Down(tx); err != nil {
			return fmt.Errorf("rollback migration %s (%s): %w", mig.ID, mig.Name, err)
		}
		return tx.Exec("DELETE FROM public.migration_version WHERE id = ?", id).Error
	})
}
