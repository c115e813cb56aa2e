package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lox/skyglass/internal/forecast"
)

// ThemeKey is the preferences key holding the dashboard theme.
const ThemeKey = "weather-theme"

type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

func New(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("store")}
}

// Open opens (creating if needed) the SQLite database at path and applies
// migrations.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := New(db, logger)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetPreference returns the stored value for key and whether it exists.
func (s *Store) GetPreference(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	return err
}

// LoadTheme returns the saved theme. A missing or unrecognised value loads as
// the default theme.
func (s *Store) LoadTheme() (forecast.Theme, error) {
	value, ok, err := s.GetPreference(ThemeKey)
	if err != nil {
		return forecast.DefaultTheme, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return forecast.DefaultTheme, nil
	}
	theme, err := forecast.ParseTheme(value)
	if err != nil {
		s.logger.Warn("ignoring stored theme", zap.String("value", value))
		return forecast.DefaultTheme, nil
	}
	return theme, nil
}

func (s *Store) SaveTheme(theme forecast.Theme) error {
	if err := s.SetPreference(ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
