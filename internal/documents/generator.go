// Package documents drafts résumés and cover letters tailored to a listing.
//
// The model never sees the candidate's name or contact details: prompts carry
// placeholders that are filled in locally once the draft comes back.
package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/privacy"
	"github.com/petasbytes/job-agent/internal/provider"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCreative     Tone = "creative"
	ToneTechnical    Tone = "technical"
)

func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ToneProfessional, nil
	case ToneProfessional, ToneCreative, ToneTechnical:
		return t, nil
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

const (
	namePlaceholder     = "{{CANDIDATE_NAME}}"
	emailPlaceholder    = "{{CANDIDATE_EMAIL}}"
	phonePlaceholder    = "{{CANDIDATE_PHONE}}"
	linkedInPlaceholder = "{{CANDIDATE_LINKEDIN}}"
)

// DocumentSink persists generated documents.
type DocumentSink interface {
	SaveDocument(ctx context.Context, d *domain.GeneratedDocument) error
}

type Generator struct {
	completer provider.TextCompleter
	sink      DocumentSink
	model     string
	now       func() time.Time
}

func NewGenerator(completer provider.TextCompleter, sink DocumentSink, model string) *Generator {
	return &Generator{completer: completer, sink: sink, model: model, now: time.Now}
}

const resumeSystem = `You are an expert resume writer with 15+ years of experience
across tech, finance, marketing, and creative industries worldwide.

Rules:
1. Write in Markdown. Use ## for section headers, bold for company/role names.
2. Tailor bullet points to mirror the job listing's keywords and requirements.
3. Quantify achievements wherever possible (e.g. "reduced latency by 40%").
4. Keep to 1-2 pages of content (roughly 500-800 words of body text).
5. Never invent credentials or experiences not supplied by the user.
6. Do NOT include any protected-attribute language (age, gender, etc.).
7. Copy placeholders such as {{CANDIDATE_NAME}} verbatim where contact details belong.
8. End with a JSON block between ` + "```json ```" + ` tags containing "tailoring_notes".`

const coverLetterSystem = `You are a professional career coach who writes compelling,
personalised cover letters that stand out without being gimmicky.

Rules:
1. Write in plain prose (no bullet lists in the body).
2. Opening: hook with a specific reason why you're excited about THIS company.
3. Middle: bridge 2-3 key skills/experiences to the job's core requirements.
4. Closing: confident call to action, no desperate begging.
5. Tone: enthusiastic but professional. Adapt to regional/industry norms.
6. Length: 3-4 paragraphs (~300-400 words).
7. Sign with the placeholder {{CANDIDATE_NAME}} verbatim.
8. End with a JSON block between ` + "```json ```" + ` tags containing "tailoring_notes".`

// Resume drafts and stores a résumé for job.
func (g *Generator) Resume(ctx context.Context, p domain.UserProfile, job domain.JobListing, tone Tone) (domain.GeneratedDocument, error) {
	if tone == "" {
		tone = ToneProfessional
	}
	return g.generate(ctx, p, job, domain.DocResume, resumeSystem, resumePrompt(p, job, tone))
}

// CoverLetter drafts and stores a cover letter for job.
func (g *Generator) CoverLetter(ctx context.Context, p domain.UserProfile, job domain.JobListing) (domain.GeneratedDocument, error) {
	return g.generate(ctx, p, job, domain.DocCoverLetter, coverLetterSystem, coverLetterPrompt(p, job))
}

func (g *Generator) generate(ctx context.Context, p domain.UserProfile, job domain.JobListing, kind domain.DocType, system, prompt string) (domain.GeneratedDocument, error) {
	raw, err := g.completer.Complete(ctx, system, prompt)
	if err != nil {
		return domain.GeneratedDocument{}, fmt.Errorf("draft %s: %w", kind, err)
	}
	body, notes := SplitNotes(strings.TrimSpace(raw))
	doc := domain.GeneratedDocument{
		ID:             uuid.NewString(),
		UserID:         p.ID,
		JobID:          job.ID,
		DocType:        kind,
		Content:        fillPlaceholders(body, p),
		ModelUsed:      g.model,
		TailoringNotes: notes,
		CreatedAt:      g.now().UTC(),
	}
	if g.sink != nil {
		if err := g.sink.SaveDocument(ctx, &doc); err != nil {
			return domain.GeneratedDocument{}, fmt.Errorf("save %s: %w", kind, err)
		}
	}
	return doc, nil
}

const improvePrompt = `Review the following %s for a %s role at %s.

--- DOCUMENT ---
%s

--- JOB REQUIREMENTS ---
%s

Provide 5-7 specific, actionable improvement suggestions as a numbered list.
Focus on: keyword optimisation, impact quantification, relevance, and structure.`

// SuggestImprovements reviews doc against job. Personal details are scrubbed
// from the document before it is sent.
func (g *Generator) SuggestImprovements(ctx context.Context, doc domain.GeneratedDocument, job domain.JobListing) (string, error) {
	reqs, _ := json.Marshal(job.Requirements)
	out, err := g.completer.Complete(ctx, "", fmt.Sprintf(improvePrompt,
		strings.ReplaceAll(string(doc.DocType), "_", " "), job.Title, job.Company, privacy.ScrubPII(doc.Content), reqs))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SplitNotes separates the document body from a trailing ```json block
// carrying "tailoring_notes". Without such a block raw is returned whole.
func SplitNotes(raw string) (body, notes string) {
	i := strings.Index(raw, "```json")
	if i < 0 {
		return raw, ""
	}
	body = strings.TrimSpace(raw[:i])
	rest := raw[i+len("```json"):]
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	rest = strings.TrimSpace(rest)
	if !gjson.Valid(rest) {
		return body, rest
	}
	v := gjson.Get(rest, "tailoring_notes")
	switch {
	case !v.Exists():
		return body, rest
	case v.IsArray():
		parts := make([]string, 0, len(v.Array()))
		for _, n := range v.Array() {
			parts = append(parts, n.String())
		}
		return body, strings.Join(parts, "; ")
	default:
		return body, v.String()
	}
}

func fillPlaceholders(s string, p domain.UserProfile) string {
	return strings.NewReplacer(
		namePlaceholder, p.Name,
		emailPlaceholder, p.Email,
		phonePlaceholder, p.Phone,
		linkedInPlaceholder, p.LinkedInURL,
	).Replace(s)
}

// Redact puts the contact placeholders back in place of p's details so the
// content can be shown to the model again.
func Redact(content string, p domain.UserProfile) string {
	pairs := make([]string, 0, 8)
	for _, kv := range [][2]string{
		{p.Name, namePlaceholder},
		{p.Email, emailPlaceholder},
		{p.Phone, phonePlaceholder},
		{p.LinkedInURL, linkedInPlaceholder},
	} {
		if strings.TrimSpace(kv[0]) != "" {
			pairs = append(pairs, kv[0], kv[1])
		}
	}
	if len(pairs) == 0 {
		return content
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

func orNone(s, none string) string {
	if strings.TrimSpace(s) == "" {
		return none
	}
	return s
}

func resumePrompt(p domain.UserProfile, job domain.JobListing, tone Tone) string {
	edu, work := "Not provided", "Not provided"
	if len(p.Education) > 0 {
		b, _ := json.MarshalIndent(p.Education, "", "  ")
		edu = string(b)
	}
	if len(p.WorkHistory) > 0 {
		b, _ := json.MarshalIndent(p.WorkHistory, "", "  ")
		work = privacy.ScrubPII(string(b))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a %s resume for the following candidate applying to the job below.\n\n", tone)
	sb.WriteString("=== CANDIDATE PROFILE ===\n")
	fmt.Fprintf(&sb, "Name: %s\n", namePlaceholder)
	fmt.Fprintf(&sb, "Location: %s\n", p.Location)
	fmt.Fprintf(&sb, "Email: %s\n", emailPlaceholder)
	if p.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", phonePlaceholder)
	}
	fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(&sb, "Experience Level: %s (%g years)\n", p.ExperienceLevel, p.YearsExperience)
	fmt.Fprintf(&sb, "Languages: %s\n", strings.Join(p.Languages, ", "))
	fmt.Fprintf(&sb, "Certifications: %s\n", orNone(strings.Join(p.Certifications, ", "), "None"))
	fmt.Fprintf(&sb, "Portfolio: %s\n", orNone(p.PortfolioURL, "N/A"))
	if p.LinkedInURL != "" {
		fmt.Fprintf(&sb, "LinkedIn: %s\n", linkedInPlaceholder)
	} else {
		sb.WriteString("LinkedIn: N/A\n")
	}
	fmt.Fprintf(&sb, "\nEducation:\n%s\n\nWork History:\n%s\n\n", edu, work)
	writeJob(&sb, job, true)
	sb.WriteString("\nGenerate the full resume now. After the resume, add a ```json block with:\n")
	sb.WriteString(`{"tailoring_notes": "<explanation of specific tailoring choices made>"}` + "\n")
	return sb.String()
}

func coverLetterPrompt(p domain.UserProfile, job domain.JobListing) string {
	skills := p.Skills
	if len(skills) > 10 {
		skills = skills[:10]
	}
	roles := p.TargetRoles
	if len(roles) > 3 {
		roles = roles[:3]
	}
	degree, recent := "Not specified", "Not specified"
	if len(p.Education) > 0 {
		degree = p.Education[0].Degree
	}
	if len(p.WorkHistory) > 0 {
		recent = p.WorkHistory[0].Title + " at " + p.WorkHistory[0].Company
	}
	var sb strings.Builder
	sb.WriteString("Write a cover letter for the following candidate and job.\n\n")
	sb.WriteString("=== CANDIDATE ===\n")
	fmt.Fprintf(&sb, "Name: %s\n", namePlaceholder)
	fmt.Fprintf(&sb, "Location: %s\n", p.Location)
	fmt.Fprintf(&sb, "Key Skills: %s\n", strings.Join(skills, ", "))
	fmt.Fprintf(&sb, "Experience: %g years as %s\n", p.YearsExperience, strings.Join(roles, ", "))
	fmt.Fprintf(&sb, "Notable:\n- Education: %s\n- Recent role: %s\n\n", degree, recent)
	writeJob(&sb, job, false)
	sb.WriteString("\nWrite the cover letter now. After the letter, add a ```json block with:\n")
	sb.WriteString(`{"tailoring_notes": "<why specific paragraphs/phrases were chosen>"}` + "\n")
	return sb.String()
}

func writeJob(sb *strings.Builder, job domain.JobListing, full bool) {
	if full {
		sb.WriteString("=== TARGET JOB ===\n")
	} else {
		sb.WriteString("=== JOB ===\n")
	}
	fmt.Fprintf(sb, "Title: %s\nCompany: %s\n", job.Title, job.Company)
	if full {
		fmt.Fprintf(sb, "Location: %s  |  Remote: %t\n", job.Location, job.RemoteAllowed)
	} else {
		fmt.Fprintf(sb, "Location: %s\n", job.Location)
	}
	fmt.Fprintf(sb, "Industry: %s\n", job.Industry)
	if full {
		fmt.Fprintf(sb, "Required Skills: %s\nNice-to-Have: %s\nDescription:\n%s\n",
			strings.Join(job.Requirements, ", "), strings.Join(job.NiceToHave, ", "), job.Description)
		return
	}
	fmt.Fprintf(sb, "Must-have skills: %s\nDescription: %s\n", strings.Join(job.Requirements, ", "), job.Description)
}
