package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/provider"
)

// InsightStore caches generated insights.
type InsightStore interface {
	SaveInsight(ctx context.Context, in domain.MarketInsight) error
	LatestInsight(ctx context.Context, region, industry string, since time.Time) (domain.MarketInsight, error)
}

// MarketService synthesises regional market reports and application tips.
type MarketService struct {
	completer provider.TextCompleter
	store     InsightStore
	// TTL bounds how long a stored insight is reused. Zero disables reuse.
	TTL time.Duration
	Now func() time.Time
}

func NewMarketService(completer provider.TextCompleter, store InsightStore) *MarketService {
	return &MarketService{completer: completer, store: store, TTL: 24 * time.Hour, Now: time.Now}
}

const insightPrompt = `You are a global job market analyst.

Provide a structured analysis of the **%s** job market in **%s**.

Return ONLY valid JSON with these exact keys:
{
  "top_skills_in_demand": ["skill1", "skill2", ...],
  "avg_salary_usd": <integer or null>,
  "job_growth_pct": <float year-over-year %% or null>,
  "competition_level": "low" | "medium" | "high",
  "cultural_notes": "<hiring culture, CV norms, interview expectations>",
  "trending_roles": ["role1", "role2", ...]
}

Be concise and factual. If data is unavailable, use null.`

// Insights returns a report for region and industry, reusing a stored one
// younger than TTL.
func (m *MarketService) Insights(ctx context.Context, region, industry string) (domain.MarketInsight, error) {
	now := m.Now()
	if m.store != nil && m.TTL > 0 {
		in, err := m.store.LatestInsight(ctx, region, industry, now.Add(-m.TTL))
		if err == nil {
			return in, nil
		}
	}
	raw, err := m.completer.Complete(ctx, "", fmt.Sprintf(insightPrompt, industry, region))
	if err != nil {
		return domain.MarketInsight{}, err
	}
	in, err := parseInsight(raw)
	if err != nil {
		return domain.MarketInsight{}, err
	}
	in.Region, in.Industry, in.GeneratedAt = region, industry, now.UTC()
	if m.store != nil {
		if err := m.store.SaveInsight(ctx, in); err != nil {
			return domain.MarketInsight{}, fmt.Errorf("save insight: %w", err)
		}
	}
	return in, nil
}

func parseInsight(raw string) (domain.MarketInsight, error) {
	s := provider.StripFences(raw)
	if !gjson.Valid(s) {
		start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
		if start < 0 || end <= start {
			return domain.MarketInsight{}, errors.New("no JSON object in model output")
		}
		s = s[start : end+1]
	}
	r := gjson.Parse(s)
	if !r.IsObject() {
		return domain.MarketInsight{}, errors.New("model output is not a JSON object")
	}
	in := domain.MarketInsight{
		TopSkills:        stringList(r.Get("top_skills_in_demand")),
		CompetitionLevel: r.Get("competition_level").String(),
		CulturalNotes:    r.Get("cultural_notes").String(),
		TrendingRoles:    stringList(r.Get("trending_roles")),
	}
	if v := r.Get("avg_salary_usd"); v.Type == gjson.Number {
		n := int(v.Int())
		in.AvgSalaryUSD = &n
	}
	if v := r.Get("job_growth_pct"); v.Type == gjson.Number {
		f := v.Float()
		in.JobGrowthPct = &f
	}
	if in.CompetitionLevel == "" {
		in.CompetitionLevel = "medium"
	}
	return in, nil
}

func stringList(r gjson.Result) []string {
	out := []string{}
	for _, v := range r.Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const tipsPrompt = `You are a career coach familiar with hiring practices worldwide.

Provide 5-7 concise, actionable tips for job seekers applying to positions in **%s**.
Cover: CV/resume format, cover letter expectations, interview etiquette, follow-up norms.
Format as a numbered list. Be specific to this region's culture.`

// Tips returns culturally aware application advice for region.
func (m *MarketService) Tips(ctx context.Context, region string) (string, error) {
	out, err := m.completer.Complete(ctx, "", fmt.Sprintf(tipsPrompt, region))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
