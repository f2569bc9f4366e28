package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/petasbytes/job-agent/internal/domain"
)

func (s *Store) SaveInsight(ctx context.Context, in domain.MarketInsight) error {
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO market_insights(region, industry, body, generated_at) VALUES(?, ?, ?, ?)`,
		in.Region, in.Industry, string(b), formatTime(in.GeneratedAt))
	return err
}

// LatestInsight returns the newest insight for region and industry generated
// after since.
func (s *Store) LatestInsight(ctx context.Context, region, industry string, since time.Time) (domain.MarketInsight, error) {
	var (
		in   domain.MarketInsight
		body string
	)
	err := s.db.QueryRowContext(ctx, `SELECT body FROM market_insights
		WHERE region = ? AND industry = ? AND generated_at >= ?
		ORDER BY generated_at DESC LIMIT 1`, region, industry, formatTime(since)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return in, ErrNotFound
	}
	if err != nil {
		return in, err
	}
	err = json.Unmarshal([]byte(body), &in)
	return in, err
}
