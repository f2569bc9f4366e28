// Package store persists profiles, listings, applications, documents and
// market insights in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/petasbytes/job-agent/internal/privacy"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrNotFound        = errors.New("not found")
	ErrWrongPassphrase = errors.New("passphrase does not match stored key")
)

const keyCheckPlaintext = "job-agent"

type Store struct {
	db     *sql.DB
	cipher *privacy.Cipher
	log    zerolog.Logger
}

type Option func(*options)

type options struct {
	passphrase string
	log        zerolog.Logger
}

// WithPassphrase enables encryption of personal profile fields.
func WithPassphrase(p string) Option { return func(o *options) { o.passphrase = p } }

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{log: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	// Connection-scoped pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db, log: o.log}
	if err := s.configure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if o.passphrase != "" {
		if err := s.initCipher(ctx, o.passphrase); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		s.log.Debug().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("applied")
	}
	return nil
}

// initCipher derives the key from the stored salt, creating salt and a check
// value on first use.
func (s *Store) initCipher(ctx context.Context, passphrase string) error {
	saltB64, err := s.meta(ctx, "kdf_salt")
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	var salt []byte
	if saltB64 != "" {
		if salt, err = base64.StdEncoding.DecodeString(saltB64); err != nil {
			return fmt.Errorf("stored salt: %w", err)
		}
	}
	key, used, err := privacy.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}
	c, err := privacy.NewCipher(key)
	if err != nil {
		return err
	}
	if salt == nil {
		check, err := c.Encrypt(keyCheckPlaintext)
		if err != nil {
			return err
		}
		if err := s.setMeta(ctx, "kdf_salt", base64.StdEncoding.EncodeToString(used)); err != nil {
			return err
		}
		if err := s.setMeta(ctx, "key_check", check); err != nil {
			return err
		}
	} else {
		check, err := s.meta(ctx, "key_check")
		if err != nil {
			return err
		}
		if got, err := c.Decrypt(check); err != nil || got != keyCheckPlaintext {
			return ErrWrongPassphrase
		}
	}
	s.cipher = c
	return nil
}

func (s *Store) meta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// Encrypted reports whether personal fields are encrypted at rest.
func (s *Store) Encrypted() bool { return s.cipher != nil }

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
