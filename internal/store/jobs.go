package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/petasbytes/job-agent/internal/domain"
)

// UpsertJob stores j keyed by its ID.
func (s *Store) UpsertJob(ctx context.Context, j domain.JobListing) error {
	if j.ID == "" {
		return errors.New("job listing has no id")
	}
	if j.FetchedAt.IsZero() {
		j.FetchedAt = time.Now().UTC()
	}
	b, err := json.Marshal(j)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_listings(id, title, company, location, region, industry, platform, body, fetched_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, company = excluded.company, location = excluded.location,
			region = excluded.region, industry = excluded.industry, platform = excluded.platform,
			body = excluded.body, fetched_at = excluded.fetched_at`,
		j.ID, j.Title, j.Company, j.Location, j.Region, j.Industry, j.Platform, string(b), formatTime(j.FetchedAt))
	if err != nil {
		return fmt.Errorf("upsert job %s: %w", j.ID, err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (domain.JobListing, error) {
	var (
		j    domain.JobListing
		body string
	)
	err := s.db.QueryRowContext(ctx, `SELECT body FROM job_listings WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return j, ErrNotFound
	}
	if err != nil {
		return j, err
	}
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return j, fmt.Errorf("decode job %s: %w", id, err)
	}
	return j, nil
}
