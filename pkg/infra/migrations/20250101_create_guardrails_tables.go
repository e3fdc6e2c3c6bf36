package migrations

import (
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250101_create_guardrails_tables",
		Name: "Create guardrails and guardrail_rules tables",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS guardrails (
					id         TEXT PRIMARY KEY,
					name       TEXT NOT NULL,
					category   TEXT NOT NULL DEFAULT '',
					owner      TEXT NOT NULL,
					created_at BIGINT NOT NULL
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_guardrails_owner
				ON guardrails (owner);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS guardrail_rules (
					id           TEXT PRIMARY KEY,
					guardrail_id TEXT NOT NULL REFERENCES guardrails(id) ON DELETE CASCADE,
					position     INTEGER NOT NULL,
					text         TEXT NOT NULL,
					status       TEXT NOT NULL CHECK (status IN ('Proposed', 'Voting', 'Approved', 'Rejected')),
					votes        BIGINT NOT NULL DEFAULT 0 CHECK (votes >= 0 AND votes <= 4294967295),
					UNIQUE (guardrail_id, position)
				);
			`).Error; err != nil {
				return err
			}

			return nil
		},

		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP TABLE IF EXISTS guardrail_rules;`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP TABLE IF EXISTS guardrails;`).Error
		},
	})
}
