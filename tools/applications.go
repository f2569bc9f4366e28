package tools

import (
	"context"

	"github.com/petasbytes/job-agent/internal/domain"
)

type TrackApplicationInput struct {
	JobID string `json:"job_id" jsonschema_description:"ID of the job applied to."`
	Notes string `json:"notes,omitempty" jsonschema_description:"Optional notes about this application."`
}

func (tb *Toolbox) trackApplication() ToolDefinition {
	return NewTool("track_application",
		"Log a new job application in the tracker. The application starts as submitted.",
		func(ctx context.Context, in TrackApplicationInput) (string, error) {
			if _, err := tb.job(ctx, in.JobID); err != nil {
				return "", err
			}
			rec, err := tb.deps.Tracker.Track(ctx, tb.deps.Profile.ID, in.JobID, in.Notes)
			if err != nil {
				return "", err
			}
			tb.cacheApp(rec)
			return JSON(map[string]any{"application_id": rec.ID, "status": rec.Status})
		})
}

type UpdateApplicationInput struct {
	ApplicationID string  `json:"application_id" jsonschema_description:"ID returned by track_application."`
	NewStatus     string  `json:"new_status" jsonschema:"enum=draft,enum=submitted,enum=under_review,enum=interview_scheduled,enum=offer_received,enum=rejected,enum=withdrawn"`
	Feedback      *string `json:"feedback,omitempty" jsonschema_description:"Employer feedback, if any."`
	Notes         *string `json:"notes,omitempty" jsonschema_description:"Replaces the application's notes."`
}

func (tb *Toolbox) updateApplication() ToolDefinition {
	return NewTool("update_application",
		"Update the status, notes or employer feedback of a tracked application.",
		func(ctx context.Context, in UpdateApplicationInput) (string, error) {
			status, err := domain.ParseApplicationStatus(in.NewStatus)
			if err != nil {
				return "", err
			}
			rec, err := tb.deps.Tracker.Update(ctx, in.ApplicationID, status, in.Feedback, in.Notes)
			if err != nil {
				return "", err
			}
			tb.cacheApp(rec)
			return JSON(map[string]any{"application_id": rec.ID, "new_status": rec.Status})
		})
}

type noInput struct{}

func (tb *Toolbox) analytics() ToolDefinition {
	return NewTool("get_analytics",
		"Get application success metrics and coaching insights derived from them.",
		func(ctx context.Context, _ noInput) (string, error) {
			m, err := tb.deps.Tracker.Metrics(ctx, tb.deps.Profile.ID)
			if err != nil {
				return "", err
			}
			insights, err := tb.deps.Tracker.Insights(ctx, tb.deps.Profile.ID)
			if err != nil {
				return "", err
			}
			return JSON(map[string]any{"metrics": m, "insights": insights})
		})
}

func (tb *Toolbox) feedbackAnalysis() ToolDefinition {
	return NewTool("get_feedback_analysis",
		"Analyse patterns across all employer feedback received.",
		func(ctx context.Context, _ noInput) (string, error) {
			return tb.deps.Tracker.FeedbackAnalysis(ctx, tb.deps.Profile.ID)
		})
}
