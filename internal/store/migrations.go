package store

import (
	"fmt"

	"go.uber.org/zap"
)

// schemaStep is one forward-only schema change. Steps are applied in slice
// order; a database's version is the number of steps it has applied, kept in
// SQLite's user_version header field.
type schemaStep struct {
	name       string
	statements []string
}

var migrations = []schemaStep{
	{
		name: "preferences",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS preferences (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
	},
}

// Migrate brings the schema up to date.
func (s *Store) Migrate() error {
	return s.applySteps(migrations)
}

func (s *Store) applySteps(steps []schemaStep) error {
	current, err := s.MigrationVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > len(steps) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", current, len(steps))
	}

	for i := current; i < len(steps); i++ {
		if err := s.applyStep(i+1, steps[i]); err != nil {
			return err
		}
	}
	return nil
}

// applyStep runs one step and bumps user_version in the same transaction, so
// a failed step leaves both the schema and the version untouched.
func (s *Store) applyStep(version int, step schemaStep) error {
	s.logger.Info("applying schema step", zap.Int("version", version), zap.String("name", step.name))

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("schema step %d (%s): begin: %w", version, step.name, err)
	}
	defer tx.Rollback()

	for _, stmt := range step.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("schema step %d (%s): %w", version, step.name, err)
		}
	}
	// PRAGMA arguments cannot be bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("schema step %d (%s): set version: %w", version, step.name, err)
	}
	return tx.Commit()
}

// MigrationVersion reports how many schema steps the database has applied.
func (s *Store) MigrationVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}
