package documents_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/job-agent/internal/documents"
	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/provider/providertest"
)

type memSink struct{ docs []domain.GeneratedDocument }

func (m *memSink) SaveDocument(_ context.Context, d *domain.GeneratedDocument) error {
	m.docs = append(m.docs, *d)
	return nil
}

func profile() domain.UserProfile {
	return domain.UserProfile{
		ID:              "u1",
		Name:            "Grace Hopper",
		Email:           "grace@example.com",
		Location:        "Berlin, Germany",
		Skills:          []string{"Go", "SQL"},
		TargetRoles:     []string{"Backend Engineer"},
		YearsExperience: 6,
		ExperienceLevel: domain.LevelSenior,
		Languages:       []string{"English"},
	}
}

func job() domain.JobListing {
	return domain.JobListing{ID: "j1", Title: "Backend Engineer", Company: "Acme", Requirements: []string{"Go"}}
}

func TestResume_FillsPlaceholdersLocally(t *testing.T) {
	model := &providertest.Completer{Replies: []string{
		"## {{CANDIDATE_NAME}}\n{{CANDIDATE_EMAIL}}\n\nBuilt things.\n\n```json\n{\"tailoring_notes\": \"led with Go\"}\n```",
	}}
	sink := &memSink{}
	g := documents.NewGenerator(model, sink, "test-model")

	doc, err := g.Resume(context.Background(), profile(), job(), documents.ToneTechnical)
	require.NoError(t, err)
	assert.Equal(t, "## Grace Hopper\ngrace@example.com\n\nBuilt things.", doc.Content)
	assert.Equal(t, "led with Go", doc.TailoringNotes)
	assert.Equal(t, domain.DocResume, doc.DocType)
	assert.Equal(t, "test-model", doc.ModelUsed)
	assert.Equal(t, "j1", doc.JobID)
	assert.NotEmpty(t, doc.ID)
	require.Len(t, sink.docs, 1)
	assert.Equal(t, doc.ID, sink.docs[0].ID)

	require.Len(t, model.Prompts, 1)
	assert.Contains(t, model.Prompts[0], "technical resume")
	assert.NotContains(t, model.Prompts[0], "Grace Hopper")
	assert.NotContains(t, model.Prompts[0], "grace@example.com")
}

func TestCoverLetter_NoNotesBlock(t *testing.T) {
	model := &providertest.Completer{Replies: []string{"Dear Acme,\n\nHire me.\n\n{{CANDIDATE_NAME}}"}}
	g := documents.NewGenerator(model, nil, "m")

	doc, err := g.CoverLetter(context.Background(), profile(), job())
	require.NoError(t, err)
	assert.Equal(t, "Dear Acme,\n\nHire me.\n\nGrace Hopper", doc.Content)
	assert.Empty(t, doc.TailoringNotes)
	assert.Equal(t, domain.DocCoverLetter, doc.DocType)
}

func TestGenerate_ModelError(t *testing.T) {
	g := documents.NewGenerator(&providertest.Completer{Err: errors.New("down")}, nil, "m")
	_, err := g.CoverLetter(context.Background(), profile(), job())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}

func TestSplitNotes(t *testing.T) {
	tests := []struct {
		name, raw, body, notes string
	}{
		{"none", "body only", "body only", ""},
		{"string", "b\n```json\n{\"tailoring_notes\":\"x\"}\n```", "b", "x"},
		{"list", "b\n```json\n{\"tailoring_notes\":[\"x\",\"y\"]}\n```", "b", "x; y"},
		{"invalid", "b\n```json\nnot json\n```", "b", "not json"},
		{"unterminated", "b\n```json\n{\"tailoring_notes\":\"x\"}", "b", "x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, notes := documents.SplitNotes(tc.raw)
			assert.Equal(t, tc.body, body)
			assert.Equal(t, tc.notes, notes)
		})
	}
}

func TestParseTone(t *testing.T) {
	tone, err := documents.ParseTone("")
	require.NoError(t, err)
	assert.Equal(t, documents.ToneProfessional, tone)

	tone, err = documents.ParseTone(" Creative ")
	require.NoError(t, err)
	assert.Equal(t, documents.ToneCreative, tone)

	_, err = documents.ParseTone("sarcastic")
	assert.Error(t, err)
}

func TestSuggestImprovements_ScrubsContent(t *testing.T) {
	model := &providertest.Completer{Replies: []string{" 1. Quantify impact. "}}
	g := documents.NewGenerator(model, nil, "m")
	doc := domain.GeneratedDocument{DocType: domain.DocCoverLetter, Content: "Reach me at grace@example.com"}

	out, err := g.SuggestImprovements(context.Background(), doc, job())
	require.NoError(t, err)
	assert.Equal(t, "1. Quantify impact.", out)
	require.Len(t, model.Prompts, 1)
	assert.Contains(t, model.Prompts[0], "cover letter")
	assert.NotContains(t, model.Prompts[0], "grace@example.com")
}

func TestRedact(t *testing.T) {
	p := domain.UserProfile{Name: "Grace Hopper", Email: "grace@example.com"}
	got := documents.Redact("# Grace Hopper\ngrace@example.com | Phone: ", p)
	assert.Equal(t, "# {{CANDIDATE_NAME}}\n{{CANDIDATE_EMAIL}} | Phone: ", got)
	assert.Equal(t, "unchanged", documents.Redact("unchanged", domain.UserProfile{}))
}
