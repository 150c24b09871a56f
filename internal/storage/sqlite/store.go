package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"taskboard/internal/secrets"
)

// DefaultService scopes secrets written by this application.
const DefaultService = "com.example.taskboard"

// Store keeps secrets in a SQLite database. It implements secrets.Store.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	service string
}

var _ secrets.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithService scopes all keys under service instead of DefaultService.
func WithService(service string) Option {
	return func(s *Store) {
		if strings.TrimSpace(service) != "" {
			s.service = service
		}
	}
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}
	if err := ensureFile(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, service: DefaultService}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("secret store ready", slog.String("path", dbPath), slog.String("service", s.service))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o700)
}

// ensureFile creates the database file readable by the owner only, and
// tightens the mode of an existing file.
func ensureFile(dbPath string) error {
	f, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("create database file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create database file: %w", err)
	}
	if err := os.Chmod(dbPath, 0o600); err != nil {
		return fmt.Errorf("chmod database file: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS secrets (
            service TEXT NOT NULL,
            key TEXT NOT NULL,
            value TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (service, key)
        );`,
		`CREATE TRIGGER IF NOT EXISTS trg_secrets_updated
            AFTER UPDATE OF value ON secrets
            FOR EACH ROW BEGIN
                UPDATE secrets SET updated_at = CURRENT_TIMESTAMP
                WHERE service = OLD.service AND key = OLD.key;
            END;`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Get returns the value stored under key, or secrets.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE service = ? AND key = ?`, s.service, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", secrets.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO secrets(service, key, value) VALUES(?, ?, ?)
        ON CONFLICT(service, key) DO UPDATE SET value = excluded.value`, s.service, key, value)
	if err != nil {
		return fmt.Errorf("set secret: %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE service = ? AND key = ?`, s.service, key)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		s.logger.Debug("secret already absent", slog.String("key", key))
	}
	return nil
}

// Keys lists the keys stored for the current service in name order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM secrets WHERE service = ? ORDER BY key`, s.service)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
