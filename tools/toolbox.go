package tools

import (
	"context"
	"errors"
	"sync"

	"github.com/petasbytes/job-agent/internal/documents"
	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/fsops"
	"github.com/petasbytes/job-agent/internal/jobs"
	"github.com/petasbytes/job-agent/internal/tracker"
)

var (
	errJobNotCached = errors.New("job not found in current session; run search_jobs first")
	errDocNotFound  = errors.New("document not found; generate it first")
)

// Lookup is the read side of the store the tool box falls back to for
// listings and documents created in earlier sessions.
type Lookup interface {
	GetJob(ctx context.Context, id string) (domain.JobListing, error)
	GetDocument(ctx context.Context, id string) (domain.GeneratedDocument, error)
}

// Deps are the services behind the job tools. Lookup and Sandbox are optional.
type Deps struct {
	Profile    domain.UserProfile
	Search     *jobs.SearchEngine
	Market     *jobs.MarketService
	Documents  *documents.Generator
	Tracker    *tracker.Tracker
	Lookup     Lookup
	Sandbox    *fsops.Sandbox
	MaxResults int
}

// Toolbox binds the job tools to one session. Listings, applications and
// documents produced during the session are cached so later calls can refer
// to them by id. Handlers may run concurrently.
type Toolbox struct {
	deps Deps

	mu   sync.RWMutex
	jobs map[string]domain.JobListing
	apps map[string]domain.ApplicationRecord
	docs map[string]domain.GeneratedDocument
}

func NewToolbox(d Deps) *Toolbox {
	return &Toolbox{
		deps: d,
		jobs: make(map[string]domain.JobListing),
		apps: make(map[string]domain.ApplicationRecord),
		docs: make(map[string]domain.GeneratedDocument),
	}
}

// Definitions lists the job tools in advertisement order. The document
// export tools are only offered when a sandbox is configured.
func (tb *Toolbox) Definitions() []ToolDefinition {
	defs := []ToolDefinition{
		tb.searchJobs(),
		tb.marketInsights(),
		tb.applicationTips(),
		tb.generateResume(),
		tb.generateCoverLetter(),
		tb.suggestImprovements(),
		tb.trackApplication(),
		tb.updateApplication(),
		tb.analytics(),
		tb.feedbackAnalysis(),
	}
	if tb.deps.Sandbox != nil {
		defs = append(defs, tb.saveDocument(), tb.listSavedDocuments())
	}
	return defs
}

func (tb *Toolbox) Registry() (*Registry, error) {
	return NewRegistry(tb.Definitions()...)
}

func (tb *Toolbox) Profile() domain.UserProfile { return tb.deps.Profile }

// Job returns a listing cached in this session.
func (tb *Toolbox) Job(id string) (domain.JobListing, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	j, ok := tb.jobs[id]
	return j, ok
}

// Application returns an application tracked or updated in this session.
func (tb *Toolbox) Application(id string) (domain.ApplicationRecord, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	a, ok := tb.apps[id]
	return a, ok
}

func (tb *Toolbox) job(ctx context.Context, id string) (domain.JobListing, error) {
	if j, ok := tb.Job(id); ok {
		return j, nil
	}
	if tb.deps.Lookup != nil {
		if j, err := tb.deps.Lookup.GetJob(ctx, id); err == nil {
			tb.cacheJobs(j)
			return j, nil
		}
	}
	return domain.JobListing{}, errJobNotCached
}

func (tb *Toolbox) document(ctx context.Context, id string) (domain.GeneratedDocument, error) {
	tb.mu.RLock()
	d, ok := tb.docs[id]
	tb.mu.RUnlock()
	if ok {
		return d, nil
	}
	if tb.deps.Lookup != nil {
		if d, err := tb.deps.Lookup.GetDocument(ctx, id); err == nil {
			return d, nil
		}
	}
	return domain.GeneratedDocument{}, errDocNotFound
}

func (tb *Toolbox) cacheJobs(js ...domain.JobListing) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for _, j := range js {
		tb.jobs[j.ID] = j
	}
}

func (tb *Toolbox) cacheApp(a domain.ApplicationRecord) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.apps[a.ID] = a
}

func (tb *Toolbox) cacheDoc(d domain.GeneratedDocument) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.docs[d.ID] = d
}
