// Package tracker records job applications and summarises how they are going.
package tracker

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/provider"
	"github.com/petasbytes/job-agent/internal/store"
)

var ErrNotFound = errors.New("application not found")

// Store is the persistence the tracker needs; *store.Store satisfies it.
type Store interface {
	InsertApplication(ctx context.Context, a *domain.ApplicationRecord) error
	UpdateApplication(ctx context.Context, a domain.ApplicationRecord) error
	GetApplication(ctx context.Context, id string) (domain.ApplicationRecord, error)
	ListApplications(ctx context.Context, userID string) ([]domain.ApplicationRecord, error)
	GetJob(ctx context.Context, id string) (domain.JobListing, error)
}

type Tracker struct {
	store     Store
	completer provider.TextCompleter
	now       func() time.Time
}

func New(s Store, completer provider.TextCompleter) *Tracker {
	return &Tracker{store: s, completer: completer, now: time.Now}
}

// Track records a submitted application for jobID.
func (t *Tracker) Track(ctx context.Context, userID, jobID, notes string) (domain.ApplicationRecord, error) {
	now := t.now().UTC()
	rec := domain.ApplicationRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		JobID:       jobID,
		Status:      domain.StatusSubmitted,
		SubmittedAt: &now,
		UpdatedAt:   now,
		Notes:       notes,
	}
	if err := t.store.InsertApplication(ctx, &rec); err != nil {
		return domain.ApplicationRecord{}, err
	}
	return rec, nil
}

// Update sets a new status. Nil feedback or notes leave the stored values alone.
func (t *Tracker) Update(ctx context.Context, id string, status domain.ApplicationStatus, feedback, notes *string) (domain.ApplicationRecord, error) {
	rec, err := t.store.GetApplication(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	rec.Status = status
	rec.UpdatedAt = t.now().UTC()
	if feedback != nil {
		rec.EmployerFeedback = *feedback
	}
	if notes != nil {
		rec.Notes = *notes
	}
	if err := t.store.UpdateApplication(ctx, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return rec, ErrNotFound
		}
		return rec, err
	}
	return rec, nil
}

func (t *Tracker) List(ctx context.Context, userID string) ([]domain.ApplicationRecord, error) {
	return t.store.ListApplications(ctx, userID)
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Metrics summarises a user's applications. Rates are fractions of the
// non-draft applications.
type Metrics struct {
	Total          int            `json:"total"`
	Message        string         `json:"message,omitempty"`
	Submitted      int            `json:"submitted"`
	ResponseRate   float64        `json:"response_rate"`
	InterviewRate  float64        `json:"interview_rate"`
	OfferRate      float64        `json:"offer_rate"`
	AvgDaysToReply *float64       `json:"avg_days_to_reply"`
	ByStatus       map[string]int `json:"by_status,omitempty"`
	TopIndustries  []Count        `json:"top_industries,omitempty"`
	TopPlatforms   []Count        `json:"top_platforms,omitempty"`
}

// MarshalJSON reduces metrics with no applications to the total and the
// message.
func (m Metrics) MarshalJSON() ([]byte, error) {
	if m.Total == 0 {
		return json.Marshal(struct {
			Total   int    `json:"total"`
			Message string `json:"message"`
		}{0, m.Message})
	}
	type plain Metrics
	return json.Marshal(plain(m))
}

const topN = 5

func (t *Tracker) Metrics(ctx context.Context, userID string) (Metrics, error) {
	apps, err := t.store.ListApplications(ctx, userID)
	if err != nil {
		return Metrics{}, err
	}
	if len(apps) == 0 {
		return Metrics{Message: "No applications yet."}, nil
	}

	m := Metrics{Total: len(apps), ByStatus: map[string]int{}}
	var replied, interviewed, offered int
	var replyDays []float64
	industries, platforms := &counter{}, &counter{}
	for _, a := range apps {
		m.ByStatus[string(a.Status)]++
		if a.Status != domain.StatusDraft {
			m.Submitted++
			if a.Status != domain.StatusSubmitted {
				replied++
				if a.SubmittedAt != nil && !a.UpdatedAt.Before(*a.SubmittedAt) {
					replyDays = append(replyDays, math.Floor(a.UpdatedAt.Sub(*a.SubmittedAt).Hours()/24))
				}
			}
		}
		switch a.Status {
		case domain.StatusInterviewScheduled:
			interviewed++
		case domain.StatusOfferReceived:
			interviewed++
			offered++
		}
		job, err := t.store.GetJob(ctx, a.JobID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			continue
		case err != nil:
			return Metrics{}, err
		}
		industries.add(job.Industry)
		platforms.add(job.Platform)
	}

	denom := float64(max(m.Submitted, 1))
	m.ResponseRate = float64(replied) / denom
	m.InterviewRate = float64(interviewed) / denom
	m.OfferRate = float64(offered) / denom
	if len(replyDays) > 0 {
		var sum float64
		for _, d := range replyDays {
			sum += d
		}
		avg := math.Round(sum/float64(len(replyDays))*10) / 10
		m.AvgDaysToReply = &avg
	}
	m.TopIndustries = industries.top(topN)
	m.TopPlatforms = platforms.top(topN)
	return m, nil
}

// counter keeps first-seen order so ties rank by appearance.
type counter struct{ entries []Count }

func (c *counter) add(name string) {
	if name == "" {
		return
	}
	for i := range c.entries {
		if c.entries[i].Name == name {
			c.entries[i].Count++
			return
		}
	}
	c.entries = append(c.entries, Count{Name: name, Count: 1})
}

func (c *counter) top(n int) []Count {
	out := slices.Clone(c.entries)
	slices.SortStableFunc(out, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

const insightsPrompt = `You are a career coach reviewing a job seeker's application analytics.

METRICS:
%s

Write 3-5 bullet points of specific, actionable advice based on these numbers.
Be honest about weaknesses (e.g. low response rate) and suggest concrete fixes.
Keep each bullet under 2 sentences. Do NOT repeat the raw numbers verbatim.`

// Insights turns the metrics into coaching advice.
func (t *Tracker) Insights(ctx context.Context, userID string) (string, error) {
	m, err := t.Metrics(ctx, userID)
	if err != nil {
		return "", err
	}
	if m.Total == 0 {
		return "Start tracking applications to unlock analytics insights.", nil
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	out, err := t.completer.Complete(ctx, "", fmt.Sprintf(insightsPrompt, b))
	if err != nil {
		return "", fmt.Errorf("analytics insights: %w", err)
	}
	return strings.TrimSpace(out), nil
}

const feedbackPrompt = `Analyse the following employer feedback messages a job seeker received
and identify common themes, recurring objections, and improvement opportunities.

FEEDBACK MESSAGES:
%s

Provide:
1. Top 3 recurring themes (positive and negative)
2. Most common reason for rejection (if apparent)
3. Two specific action items the candidate should focus on`

// FeedbackAnalysis looks for patterns across recorded employer feedback.
func (t *Tracker) FeedbackAnalysis(ctx context.Context, userID string) (string, error) {
	apps, err := t.store.ListApplications(ctx, userID)
	if err != nil {
		return "", err
	}
	var feedback []string
	for _, a := range apps {
		if strings.TrimSpace(a.EmployerFeedback) != "" {
			feedback = append(feedback, a.EmployerFeedback)
		}
	}
	if len(feedback) == 0 {
		return "No employer feedback recorded yet.", nil
	}
	b, err := json.MarshalIndent(feedback, "", "  ")
	if err != nil {
		return "", err
	}
	out, err := t.completer.Complete(ctx, "", fmt.Sprintf(feedbackPrompt, b))
	if err != nil {
		return "", fmt.Errorf("feedback analysis: %w", err)
	}
	return strings.TrimSpace(out), nil
}
