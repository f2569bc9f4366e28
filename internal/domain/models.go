// Package domain holds the job assistant's records.
package domain

import (
	"strings"
	"time"
)

type WorkEntry struct {
	Title      string   `json:"title" yaml:"title"`
	Company    string   `json:"company" yaml:"company"`
	Start      string   `json:"start,omitempty" yaml:"start"`
	End        string   `json:"end,omitempty" yaml:"end"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights"`
}

type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Year        int    `json:"year,omitempty" yaml:"year"`
}

// UserProfile describes the job seeker. Name, Email and Phone are personal
// data and never leave the process unencrypted or reach the model.
type UserProfile struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Email           string          `json:"email" yaml:"email"`
	Phone           string          `json:"phone,omitempty" yaml:"phone"`
	Location        string          `json:"location" yaml:"location"`
	Region          string          `json:"region" yaml:"region"`
	TargetRoles     []string        `json:"target_roles" yaml:"target_roles"`
	Skills          []string        `json:"skills" yaml:"skills"`
	YearsExperience float64         `json:"years_experience" yaml:"years_experience"`
	ExperienceLevel ExperienceLevel `json:"experience_level" yaml:"experience_level"`
	Industries      []string        `json:"industries,omitempty" yaml:"industries"`
	SalaryMin       int             `json:"salary_min,omitempty" yaml:"salary_min"`
	SalaryMax       int             `json:"salary_max,omitempty" yaml:"salary_max"`
	DesiredJobTypes []JobType       `json:"desired_job_types,omitempty" yaml:"desired_job_types"`
	RemoteOK        bool            `json:"remote_ok" yaml:"remote_ok"`
	Languages       []string        `json:"languages,omitempty" yaml:"languages"`
	Certifications  []string        `json:"certifications,omitempty" yaml:"certifications"`
	PortfolioURL    string          `json:"portfolio_url,omitempty" yaml:"portfolio_url"`
	LinkedInURL     string          `json:"linkedin_url,omitempty" yaml:"linkedin_url"`
	Summary         string          `json:"summary,omitempty" yaml:"summary"`
	WorkHistory     []WorkEntry     `json:"work_history,omitempty" yaml:"work_history"`
	Education       []Education     `json:"education,omitempty" yaml:"education"`
	CreatedAt       time.Time       `json:"created_at" yaml:"-"`
}

// Normalize de-duplicates skills and roles case-insensitively, keeping the
// first spelling, and defaults the experience level.
func (p *UserProfile) Normalize() {
	p.Skills = dedupe(p.Skills)
	p.TargetRoles = dedupe(p.TargetRoles)
	p.Industries = dedupe(p.Industries)
	if p.ExperienceLevel == "" {
		p.ExperienceLevel = LevelMid
	}
	if len(p.Languages) == 0 {
		p.Languages = []string{"English"}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

type JobListing struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	Region          string          `json:"region,omitempty"`
	RemoteAllowed   bool            `json:"remote_allowed"`
	JobType         JobType         `json:"job_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Description     string          `json:"description"`
	Requirements    []string        `json:"requirements"`
	NiceToHave      []string        `json:"nice_to_have,omitempty"`
	SalaryMin       int             `json:"salary_min,omitempty"`
	SalaryMax       int             `json:"salary_max,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	PostedDate      time.Time       `json:"posted_date"`
	Deadline        time.Time       `json:"application_deadline"`
	SourceURL       string          `json:"source_url,omitempty"`
	Platform        string          `json:"source_platform"`
	Industry        string          `json:"industry"`
	Keywords        []string        `json:"keywords,omitempty"`
	MatchScore      *float64        `json:"match_score,omitempty"`
	MatchRationale  string          `json:"match_rationale,omitempty"`
	FetchedAt       time.Time       `json:"fetched_at"`
}

type ApplicationRecord struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id"`
	JobID              string            `json:"job_id"`
	Status             ApplicationStatus `json:"status"`
	SubmittedAt        *time.Time        `json:"submitted_at,omitempty"`
	UpdatedAt          time.Time         `json:"last_updated"`
	Notes              string            `json:"notes,omitempty"`
	EmployerFeedback   string            `json:"employer_feedback,omitempty"`
	ResumeVersion      string            `json:"resume_version,omitempty"`
	CoverLetterVersion string            `json:"cover_letter_version,omitempty"`
	InterviewDates     []time.Time       `json:"interview_dates,omitempty"`
}

type MarketInsight struct {
	Region           string    `json:"region"`
	Industry         string    `json:"industry"`
	TopSkills        []string  `json:"top_skills_in_demand"`
	AvgSalaryUSD     *int      `json:"avg_salary_usd"`
	JobGrowthPct     *float64  `json:"job_growth_pct"`
	CompetitionLevel string    `json:"competition_level"`
	CulturalNotes    string    `json:"cultural_notes"`
	TrendingRoles    []string  `json:"trending_roles"`
	GeneratedAt      time.Time `json:"last_updated"`
}

type GeneratedDocument struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	JobID          string    `json:"job_id"`
	DocType        DocType   `json:"doc_type"`
	Content        string    `json:"content"`
	ModelUsed      string    `json:"model_used,omitempty"`
	TailoringNotes string    `json:"tailoring_notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
