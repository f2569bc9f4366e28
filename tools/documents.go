package tools

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/petasbytes/job-agent/internal/documents"
	"github.com/petasbytes/job-agent/internal/domain"
)

type GenerateResumeInput struct {
	JobID string `json:"job_id" jsonschema_description:"ID of the target job listing."`
	Tone  string `json:"tone,omitempty" jsonschema:"enum=professional,enum=creative,enum=technical" jsonschema_description:"Desired tone of the resume (default professional)."`
}

type GenerateCoverLetterInput struct {
	JobID string `json:"job_id" jsonschema_description:"ID of the target job listing."`
}

// documentResult is returned for generated documents. Content carries
// placeholders instead of the candidate's contact details.
type documentResult struct {
	DocumentID     string         `json:"document_id"`
	DocType        domain.DocType `json:"doc_type"`
	Content        string         `json:"content"`
	TailoringNotes string         `json:"tailoring_notes,omitempty"`
}

func (tb *Toolbox) documentResult(d domain.GeneratedDocument) (string, error) {
	tb.cacheDoc(d)
	return JSON(documentResult{
		DocumentID:     d.ID,
		DocType:        d.DocType,
		Content:        documents.Redact(d.Content, tb.deps.Profile),
		TailoringNotes: d.TailoringNotes,
	})
}

func (tb *Toolbox) generateResume() ToolDefinition {
	return NewTool("generate_resume",
		"Generate a tailored resume in Markdown for a job listing found by search_jobs.",
		func(ctx context.Context, in GenerateResumeInput) (string, error) {
			tone, err := documents.ParseTone(in.Tone)
			if err != nil {
				return "", err
			}
			job, err := tb.job(ctx, in.JobID)
			if err != nil {
				return "", err
			}
			doc, err := tb.deps.Documents.Resume(ctx, tb.deps.Profile, job, tone)
			if err != nil {
				return "", err
			}
			return tb.documentResult(doc)
		})
}

func (tb *Toolbox) generateCoverLetter() ToolDefinition {
	return NewTool("generate_cover_letter",
		"Generate a tailored cover letter for a job listing found by search_jobs.",
		func(ctx context.Context, in GenerateCoverLetterInput) (string, error) {
			job, err := tb.job(ctx, in.JobID)
			if err != nil {
				return "", err
			}
			doc, err := tb.deps.Documents.CoverLetter(ctx, tb.deps.Profile, job)
			if err != nil {
				return "", err
			}
			return tb.documentResult(doc)
		})
}

type SuggestImprovementsInput struct {
	DocumentID string `json:"document_id" jsonschema_description:"ID of a generated resume or cover letter."`
}

func (tb *Toolbox) suggestImprovements() ToolDefinition {
	return NewTool("suggest_improvements",
		"Review a generated resume or cover letter against its job listing and suggest concrete improvements.",
		func(ctx context.Context, in SuggestImprovementsInput) (string, error) {
			doc, err := tb.document(ctx, in.DocumentID)
			if err != nil {
				return "", err
			}
			job, err := tb.job(ctx, doc.JobID)
			if err != nil {
				return "", err
			}
			return tb.deps.Documents.SuggestImprovements(ctx, doc, job)
		})
}

type SaveDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema_description:"ID of a generated resume or cover letter."`
	Filename   string `json:"filename,omitempty" jsonschema_description:"Optional relative file name; .md is appended when missing."`
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func defaultFilename(d domain.GeneratedDocument, job domain.JobListing) string {
	parts := []string{string(d.DocType)}
	if s := slug(job.Company); s != "" {
		parts = append(parts, s)
	}
	id := d.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.Join(append(parts, id), "-") + ".md"
}

func (tb *Toolbox) saveDocument() ToolDefinition {
	return NewTool("save_document",
		"Export a generated resume or cover letter as a Markdown file in the documents folder.",
		func(ctx context.Context, in SaveDocumentInput) (string, error) {
			doc, err := tb.document(ctx, in.DocumentID)
			if err != nil {
				return "", err
			}
			name := in.Filename
			if name == "" {
				job, _ := tb.job(ctx, doc.JobID)
				name = defaultFilename(doc, job)
			}
			if path.Ext(name) != ".md" {
				name += ".md"
			}
			if _, err := tb.deps.Sandbox.WriteFile(name, doc.Content); err != nil {
				return "", err
			}
			return JSON(map[string]any{"saved": name, "bytes": len(doc.Content)})
		})
}

type ListSavedDocumentsInput struct {
	Dir string `json:"dir,omitempty" jsonschema_description:"Optional sub-folder of the documents folder."`
}

func (tb *Toolbox) listSavedDocuments() ToolDefinition {
	return NewTool("list_saved_documents",
		"List files previously exported with save_document.",
		func(_ context.Context, in ListSavedDocumentsInput) (string, error) {
			names, err := tb.deps.Sandbox.List(in.Dir)
			if err != nil {
				return "", err
			}
			return JSON(names)
		})
}
