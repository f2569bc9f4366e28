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

const applicationColumns = `id, user_id, job_id, status, submitted_at, updated_at, notes,
	employer_feedback, resume_version, cover_letter_version, interview_dates`

// InsertApplication stores a new record, assigning ID and UpdatedAt when empty.
func (s *Store) InsertApplication(ctx context.Context, a *domain.ApplicationRecord) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}
	dates, err := encodeDates(a.InterviewDates)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO applications(`+applicationColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.JobID, string(a.Status), formatTimePtr(a.SubmittedAt), formatTime(a.UpdatedAt),
		a.Notes, a.EmployerFeedback, a.ResumeVersion, a.CoverLetterVersion, dates)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// UpdateApplication overwrites the mutable fields of an existing record.
func (s *Store) UpdateApplication(ctx context.Context, a domain.ApplicationRecord) error {
	dates, err := encodeDates(a.InterviewDates)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE applications SET
			status = ?, submitted_at = ?, updated_at = ?, notes = ?, employer_feedback = ?,
			resume_version = ?, cover_letter_version = ?, interview_dates = ?
		WHERE id = ?`,
		string(a.Status), formatTimePtr(a.SubmittedAt), formatTime(a.UpdatedAt), a.Notes, a.EmployerFeedback,
		a.ResumeVersion, a.CoverLetterVersion, dates, a.ID)
	if err != nil {
		return fmt.Errorf("update application %s: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (domain.ApplicationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// ListApplications returns userID's records, most recently updated first.
func (s *Store) ListApplications(ctx context.Context, userID string) ([]domain.ApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ApplicationRecord
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(sc scanner) (domain.ApplicationRecord, error) {
	var (
		a                      domain.ApplicationRecord
		status, updated, dates string
		submitted              sql.NullString
	)
	err := sc.Scan(&a.ID, &a.UserID, &a.JobID, &status, &submitted, &updated, &a.Notes,
		&a.EmployerFeedback, &a.ResumeVersion, &a.CoverLetterVersion, &dates)
	if err != nil {
		return a, err
	}
	a.Status = domain.ApplicationStatus(status)
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return a, err
	}
	if a.SubmittedAt, err = parseTimePtr(submitted); err != nil {
		return a, err
	}
	if err := json.Unmarshal([]byte(dates), &a.InterviewDates); err != nil {
		return a, fmt.Errorf("decode interview dates: %w", err)
	}
	return a, nil
}

func encodeDates(ts []time.Time) (string, error) {
	if ts == nil {
		ts = []time.Time{}
	}
	b, err := json.Marshal(ts)
	return string(b), err
}
