// Package tools defines the tool contract and the job assistant tool box.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T]() and NewTool[T]: schema derived from a Go struct; the
//     handler rejects inputs that do not match it.
//   - Registry: immutable name index with the advertisement list.
//   - Toolbox: search_jobs, get_market_insights, get_application_tips,
//     generate_resume, generate_cover_letter, save_document,
//     track_application, update_application, get_analytics,
//     get_feedback_analysis.
package tools
