package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/job-agent/internal/domain"
)

// SaveProfile inserts or replaces p. An empty ID is assigned. Name, email and
// phone go to their own columns, encrypted when the store has a cipher.
func (s *Store) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	body := *p
	body.Name, body.Email, body.Phone = "", "", ""
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	name, email, phone := p.Name, p.Email, p.Phone
	if s.cipher != nil {
		if name, err = s.cipher.Encrypt(name); err != nil {
			return err
		}
		if email, err = s.cipher.Encrypt(email); err != nil {
			return err
		}
		if phone, err = s.cipher.Encrypt(phone); err != nil {
			return err
		}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles(id, name_enc, email_enc, phone_enc, encrypted, body, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name_enc = excluded.name_enc, email_enc = excluded.email_enc, phone_enc = excluded.phone_enc,
			encrypted = excluded.encrypted, body = excluded.body, updated_at = excluded.updated_at`,
		p.ID, name, email, phone, s.cipher != nil, string(b), formatTime(p.CreatedAt), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Store) LoadProfile(ctx context.Context, id string) (domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name_enc, email_enc, phone_enc, encrypted, body FROM user_profiles WHERE id = ?`, id)
	return s.scanProfile(row)
}

// LatestProfile returns the most recently updated profile.
func (s *Store) LatestProfile(ctx context.Context) (domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name_enc, email_enc, phone_enc, encrypted, body FROM user_profiles ORDER BY updated_at DESC LIMIT 1`)
	return s.scanProfile(row)
}

func (s *Store) scanProfile(row *sql.Row) (domain.UserProfile, error) {
	var (
		p                  domain.UserProfile
		name, email, phone string
		encrypted          bool
		body               string
	)
	if err := row.Scan(&name, &email, &phone, &encrypted, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, err
	}
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return p, fmt.Errorf("decode profile: %w", err)
	}
	if encrypted {
		if s.cipher == nil {
			return p, errors.New("profile is encrypted; a passphrase is required")
		}
		var err error
		if name, err = s.cipher.Decrypt(name); err != nil {
			return p, err
		}
		if email, err = s.cipher.Decrypt(email); err != nil {
			return p, err
		}
		if phone, err = s.cipher.Decrypt(phone); err != nil {
			return p, err
		}
	}
	p.Name, p.Email, p.Phone = name, email, phone
	return p, nil
}
