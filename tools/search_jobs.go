package tools

import (
	"context"
	"fmt"

	"github.com/petasbytes/job-agent/internal/jobs"
)

type SearchJobsInput struct {
	LocationFilter string `json:"location_filter,omitempty" jsonschema_description:"Optional region filter, e.g. 'Austin, TX'. Leave empty to search globally."`
	IncludeRemote  *bool  `json:"include_remote,omitempty" jsonschema_description:"Whether remote roles pass the location filter (default true)."`
	MaxResults     int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=50,default=10" jsonschema_description:"Maximum number of results to return (default 10)."`
}

// DefaultSearchResults is the number of listings search_jobs returns when
// the model does not ask for a count. Deps.MaxResults caps any request.
const DefaultSearchResults = 10

// jobSummary is what the model sees of a listing.
type jobSummary struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Region         string   `json:"region,omitempty"`
	Remote         bool     `json:"remote"`
	Salary         string   `json:"salary"`
	MatchScore     *float64 `json:"match_score"`
	MatchRationale string   `json:"match_rationale,omitempty"`
	Source         string   `json:"source"`
	URL            string   `json:"url,omitempty"`
}

func (tb *Toolbox) searchJobs() ToolDefinition {
	return NewTool("search_jobs",
		"Search for job listings that match the user's profile. Returns a ranked list of opportunities with match scores. Listing ids are valid for the rest of the session.",
		func(ctx context.Context, in SearchJobsInput) (string, error) {
			limit := in.MaxResults
			if limit <= 0 {
				limit = DefaultSearchResults
			}
			if tb.deps.MaxResults > 0 && limit > tb.deps.MaxResults {
				limit = tb.deps.MaxResults
			}
			listings, err := tb.deps.Search.Search(ctx, tb.deps.Profile, limit)
			if err != nil {
				return "", err
			}
			if in.LocationFilter != "" {
				remote := in.IncludeRemote == nil || *in.IncludeRemote
				listings = jobs.FilterByLocation(listings, in.LocationFilter, remote)
			}
			tb.cacheJobs(listings...)

			out := make([]jobSummary, len(listings))
			for i, j := range listings {
				salary := "Not disclosed"
				if j.SalaryMin > 0 {
					salary = fmt.Sprintf("%s %d-%d", j.Currency, j.SalaryMin, j.SalaryMax)
				}
				out[i] = jobSummary{
					ID:             j.ID,
					Title:          j.Title,
					Company:        j.Company,
					Location:       j.Location,
					Region:         j.Region,
					Remote:         j.RemoteAllowed,
					Salary:         salary,
					MatchScore:     j.MatchScore,
					MatchRationale: j.MatchRationale,
					Source:         j.Platform,
					URL:            j.SourceURL,
				}
			}
			return JSON(out)
		})
}

type MarketInsightsInput struct {
	Region   string `json:"region" jsonschema_description:"Geographic region, e.g. 'Berlin, Germany'."`
	Industry string `json:"industry" jsonschema_description:"Industry sector, e.g. 'Technology'."`
}

func (tb *Toolbox) marketInsights() ToolDefinition {
	return NewTool("get_market_insights",
		"Get a job market report for a specific region and industry.",
		func(ctx context.Context, in MarketInsightsInput) (string, error) {
			insight, err := tb.deps.Market.Insights(ctx, in.Region, in.Industry)
			if err != nil {
				return "", err
			}
			return JSON(insight)
		})
}

type ApplicationTipsInput struct {
	Region string `json:"region" jsonschema_description:"Geographic region, e.g. 'Japan'."`
}

func (tb *Toolbox) applicationTips() ToolDefinition {
	return NewTool("get_application_tips",
		"Get culturally aware job application tips for a specific region.",
		func(ctx context.Context, in ApplicationTipsInput) (string, error) {
			return tb.deps.Market.Tips(ctx, in.Region)
		})
}
