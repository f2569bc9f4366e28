package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/job-agent/internal/domain"
)

func (s *Store) SaveDocument(ctx context.Context, d *domain.GeneratedDocument) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents(id, user_id, job_id, doc_type, content, model_used, tailoring_notes, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.JobID, string(d.DocType), d.Content, d.ModelUsed, d.TailoringNotes, formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (domain.GeneratedDocument, error) {
	var (
		d                domain.GeneratedDocument
		docType, created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, job_id, doc_type, content, model_used, tailoring_notes, created_at FROM documents WHERE id = ?`, id).
		Scan(&d.ID, &d.UserID, &d.JobID, &docType, &d.Content, &d.ModelUsed, &d.TailoringNotes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	d.DocType = domain.DocType(docType)
	if d.CreatedAt, err = parseTime(created); err != nil {
		return d, err
	}
	return d, nil
}
