package migrations

import (
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250102_create_rule_ballots_table",
		Name: "Create rule_ballots table for rule governance votes",

		Up: func(db *gorm.DB) error {
			return db.Exec(`
				CREATE TABLE IF NOT EXISTS rule_ballots (
					rule_id   TEXT NOT NULL REFERENCES guardrail_rules(id) ON DELETE CASCADE,
					voter     TEXT NOT NULL,
					direction TEXT NOT NULL CHECK (direction IN ('approve', 'reject')),
					cast_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (rule_id, voter)
				);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS rule_ballots;`).Error
		},
	})
}
