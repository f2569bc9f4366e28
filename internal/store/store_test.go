package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/store"
)

func openStore(t *testing.T, opts ...store.Option) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.db")
	s, err := store.Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestProfile_EncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t, store.WithPassphrase("pw"))
	require.True(t, s.Encrypted())

	p := domain.UserProfile{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555", Skills: []string{"Go"}}
	require.NoError(t, s.SaveProfile(ctx, &p))
	require.NotEmpty(t, p.ID)

	got, err := s.LoadProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []string{"Go"}, got.Skills)

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	var nameEnc, body string
	require.NoError(t, raw.QueryRow(`SELECT name_enc, body FROM user_profiles WHERE id = ?`, p.ID).Scan(&nameEnc, &body))
	assert.NotContains(t, nameEnc, "Ada")
	assert.NotContains(t, body, "ada@example.com")
}

func TestOpen_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")
	s, err := store.Open(ctx, path, store.WithPassphrase("right"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = store.Open(ctx, path, store.WithPassphrase("wrong"))
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)

	s, err = store.Open(ctx, path, store.WithPassphrase("right"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestProfile_PlaintextAndLatest(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	_, err := s.LatestProfile(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	p := domain.UserProfile{Name: "Grace", Skills: []string{"COBOL"}}
	require.NoError(t, s.SaveProfile(ctx, &p))
	got, err := s.LatestProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Grace", got.Name)
}

func TestApplications_CRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	job := domain.JobListing{ID: "job-1", Title: "Go Engineer", Company: "Acme", Industry: "Fintech", Platform: "LinkedIn"}
	require.NoError(t, s.UpsertJob(ctx, job))
	gotJob, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", gotJob.Company)

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	old := domain.ApplicationRecord{UserID: "u1", JobID: "job-1", Status: domain.StatusDraft, UpdatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, s.InsertApplication(ctx, &old))
	applied := time.Now().UTC()
	newer := domain.ApplicationRecord{
		UserID: "u1", JobID: "job-1", Status: domain.StatusSubmitted, SubmittedAt: &applied,
		InterviewDates: []time.Time{applied.Add(48 * time.Hour)},
	}
	require.NoError(t, s.InsertApplication(ctx, &newer))

	list, err := s.ListApplications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	require.NotNil(t, list[0].SubmittedAt)
	assert.WithinDuration(t, applied, *list[0].SubmittedAt, time.Millisecond)
	require.Len(t, list[0].InterviewDates, 1)
	assert.Nil(t, list[1].SubmittedAt)
	assert.Empty(t, list[1].InterviewDates)

	old.Status = domain.StatusRejected
	old.EmployerFeedback = "More Go experience needed"
	old.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.UpdateApplication(ctx, old))
	got, err := s.GetApplication(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Equal(t, "More Go experience needed", got.EmployerFeedback)

	assert.ErrorIs(t, s.UpdateApplication(ctx, domain.ApplicationRecord{ID: "nope", UpdatedAt: time.Now()}), store.ErrNotFound)
	_, err = s.GetApplication(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestJob_RegionAndFetchTime(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t)

	job := domain.JobListing{ID: "job-eu", Title: "Platform Engineer", Company: "Acme GmbH", Location: "Berlin, Germany", Region: "Europe"}
	require.NoError(t, s.UpsertJob(ctx, job))

	got, err := s.GetJob(ctx, "job-eu")
	require.NoError(t, err)
	assert.Equal(t, "Europe", got.Region)
	assert.False(t, got.FetchedAt.IsZero())

	job.Region = "EMEA"
	require.NoError(t, s.UpsertJob(ctx, job))

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	var region, fetched string
	require.NoError(t, raw.QueryRow(`SELECT region, fetched_at FROM job_listings WHERE id = ?`, "job-eu").Scan(&region, &fetched))
	assert.Equal(t, "EMEA", region)
	assert.NotEmpty(t, fetched)
}

func TestApplication_RequiresKnownJob(t *testing.T) {
	s, _ := openStore(t)
	err := s.InsertApplication(context.Background(), &domain.ApplicationRecord{UserID: "u", JobID: "ghost", Status: domain.StatusDraft})
	assert.Error(t, err)
}

func TestDocumentsAndInsights(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	d := domain.GeneratedDocument{UserID: "u1", DocType: domain.DocResume, Content: "# CV", TailoringNotes: "lead with Go"}
	require.NoError(t, s.SaveDocument(ctx, &d))
	got, err := s.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "# CV", got.Content)
	assert.Equal(t, "lead with Go", got.TailoringNotes)

	since := time.Now().Add(-time.Minute)
	_, err = s.LatestInsight(ctx, "EU", "Fintech", since)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveInsight(ctx, domain.MarketInsight{Region: "EU", Industry: "Fintech", CompetitionLevel: "high"}))
	in, err := s.LatestInsight(ctx, "EU", "Fintech", since)
	require.NoError(t, err)
	assert.Equal(t, "high", in.CompetitionLevel)
}
