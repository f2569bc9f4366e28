// Package jobs finds and ranks job listings and produces market intelligence.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/privacy"
	"github.com/petasbytes/job-agent/internal/provider"
)

const DefaultMaxResults = 10

// ListingSink persists listings so later tools and analytics can join on them.
type ListingSink interface {
	UpsertJob(ctx context.Context, j domain.JobListing) error
}

type SearchEngine struct {
	source    Source
	completer provider.TextCompleter
	sink      ListingSink
	log       zerolog.Logger
}

func NewSearchEngine(source Source, completer provider.TextCompleter, sink ListingSink, log zerolog.Logger) *SearchEngine {
	return &SearchEngine{source: source, completer: completer, sink: sink, log: log}
}

// Search returns listings ranked by match score, highest first, at most
// maxResults of them (DefaultMaxResults when maxResults <= 0).
func (e *SearchEngine) Search(ctx context.Context, profile domain.UserProfile, maxResults int) ([]domain.JobListing, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	listings, err := e.source.Fetch(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	if len(listings) == 0 {
		return listings, nil
	}
	if err := e.score(ctx, profile, listings); err != nil {
		e.log.Warn().Err(err).Msg("model scoring failed; using skill overlap")
		for i := range listings {
			s, why := overlapScore(profile, listings[i])
			listings[i].MatchScore = &s
			listings[i].MatchRationale = why
		}
	}
	sort.SliceStable(listings, func(a, b int) bool {
		return scoreOf(listings[a]) > scoreOf(listings[b])
	})
	if len(listings) > maxResults {
		listings = listings[:maxResults]
	}
	if e.sink != nil {
		for _, j := range listings {
			if err := e.sink.UpsertJob(ctx, j); err != nil {
				return nil, fmt.Errorf("persist listing: %w", err)
			}
		}
	}
	return listings, nil
}

type listingSummary struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Requirements    []string               `json:"requirements"`
	ExperienceLevel domain.ExperienceLevel `json:"experience_level"`
	Location        string                 `json:"location"`
	RemoteAllowed   bool                   `json:"remote_allowed"`
	Industry        string                 `json:"industry"`
}

const scoringPrompt = `You are an unbiased job-matching assistant.

CANDIDATE (anonymised, no personal information):
%s

JOB LISTINGS:
%s

Score each listing from 0 to 100 based ONLY on:
- Skill overlap with candidate's skills
- Alignment with desired roles
- Experience level fit
- Location / remote preference

IMPORTANT: Do NOT consider or infer any protected attributes (gender, age, ethnicity, etc.).

Return a JSON array: [{"id": "...", "score": <0-100>, "rationale": "..."}]
Return ONLY the JSON array, no other text.`

// score asks the model for per-listing scores. Listings the model omits keep
// a nil score.
func (e *SearchEngine) score(ctx context.Context, profile domain.UserProfile, listings []domain.JobListing) error {
	if e.completer == nil {
		return fmt.Errorf("no completer configured")
	}
	safe, err := json.MarshalIndent(privacy.SanitizeProfile(profile), "", "  ")
	if err != nil {
		return err
	}
	summaries := make([]listingSummary, len(listings))
	for i, j := range listings {
		summaries[i] = listingSummary{j.ID, j.Title, j.Requirements, j.ExperienceLevel, j.Location, j.RemoteAllowed, j.Industry}
	}
	sum, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return err
	}
	raw, err := e.completer.Complete(ctx, "", fmt.Sprintf(scoringPrompt, safe, sum))
	if err != nil {
		return err
	}
	arr, err := jsonArray(raw)
	if err != nil {
		return err
	}
	byID := make(map[string]gjson.Result)
	arr.ForEach(func(_, v gjson.Result) bool {
		byID[v.Get("id").String()] = v
		return true
	})
	for i := range listings {
		v, ok := byID[listings[i].ID]
		if !ok {
			continue
		}
		s := clamp(v.Get("score").Float(), 0, 100)
		listings[i].MatchScore = &s
		listings[i].MatchRationale = v.Get("rationale").String()
	}
	return nil
}

// jsonArray locates the JSON array in model output, tolerating fences and
// surrounding prose.
func jsonArray(raw string) (gjson.Result, error) {
	s := provider.StripFences(raw)
	if !gjson.Valid(s) {
		start, end := strings.IndexByte(s, '['), strings.LastIndexByte(s, ']')
		if start < 0 || end <= start {
			return gjson.Result{}, fmt.Errorf("no JSON array in model output")
		}
		s = s[start : end+1]
	}
	r := gjson.Parse(s)
	if !r.IsArray() {
		return gjson.Result{}, fmt.Errorf("model output is not a JSON array")
	}
	return r, nil
}

// overlapScore is the offline fallback: share of requirements covered by the
// candidate's skills, with a small bonus for a role or level match.
func overlapScore(p domain.UserProfile, j domain.JobListing) (float64, string) {
	skills := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		skills[strings.ToLower(s)] = struct{}{}
	}
	var matched []string
	for _, r := range j.Requirements {
		if _, ok := skills[strings.ToLower(r)]; ok {
			matched = append(matched, r)
		}
	}
	score := 0.0
	if len(j.Requirements) > 0 {
		score = 80 * float64(len(matched)) / float64(len(j.Requirements))
	}
	for _, role := range p.TargetRoles {
		if strings.Contains(strings.ToLower(j.Title), strings.ToLower(role)) {
			score += 10
			break
		}
	}
	if p.ExperienceLevel == j.ExperienceLevel {
		score += 10
	}
	why := "no listed requirements matched"
	if len(matched) > 0 {
		why = "matches " + strings.Join(matched, ", ")
	}
	return clamp(score, 0, 100), why
}

// FilterByLocation keeps listings whose location or region contains location
// (case-insensitive), plus remote-friendly ones when includeRemote is set.
func FilterByLocation(listings []domain.JobListing, location string, includeRemote bool) []domain.JobListing {
	loc := strings.ToLower(strings.TrimSpace(location))
	out := make([]domain.JobListing, 0, len(listings))
	for _, j := range listings {
		if strings.Contains(strings.ToLower(j.Location), loc) || strings.Contains(strings.ToLower(j.Region), loc) ||
			(includeRemote && j.RemoteAllowed) {
			out = append(out, j)
		}
	}
	return out
}

func scoreOf(j domain.JobListing) float64 {
	if j.MatchScore == nil {
		return 0
	}
	return *j.MatchScore
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
