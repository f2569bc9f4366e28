package jobs

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/job-agent/internal/domain"
)

// Source fetches candidate listings for a profile.
type Source interface {
	Fetch(ctx context.Context, profile domain.UserProfile) ([]domain.JobListing, error)
}

// sampleJobs is a representative offline catalogue across regions.
var sampleJobs = []domain.JobListing{
	{
		Title: "Senior Software Engineer", Company: "TechCorp", Location: "Austin, TX, USA", Region: "North America", RemoteAllowed: true,
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelSenior,
		Description:  "Build scalable backend services for our SaaS platform.",
		Requirements: []string{"Python", "AWS", "PostgreSQL", "REST APIs", "Docker"},
		NiceToHave:   []string{"Kubernetes", "GraphQL"},
		SalaryMin:    130_000, SalaryMax: 170_000, Currency: "USD",
		Platform: "LinkedIn", Industry: "Technology", Keywords: []string{"backend", "cloud", "python"},
	},
	{
		Title: "Data Scientist", Company: "AnalyticsPro", Location: "New York, NY, USA", Region: "North America",
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelMid,
		Description:  "Develop predictive models and derive actionable insights.",
		Requirements: []string{"Python", "Machine Learning", "SQL", "TensorFlow"},
		NiceToHave:   []string{"Spark", "Airflow", "A/B Testing"},
		SalaryMin:    110_000, SalaryMax: 145_000, Currency: "USD",
		Platform: "Indeed", Industry: "Finance", Keywords: []string{"ML", "data", "analytics"},
	},
	{
		Title: "Frontend Developer", Company: "DesignHub", Location: "London, UK", Region: "Europe", RemoteAllowed: true,
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelMid,
		Description:  "Craft pixel-perfect UIs with React and TypeScript.",
		Requirements: []string{"React", "TypeScript", "CSS", "REST APIs"},
		NiceToHave:   []string{"Next.js", "Storybook", "Figma"},
		SalaryMin:    55_000, SalaryMax: 80_000, Currency: "GBP",
		Platform: "Glassdoor", Industry: "Technology", Keywords: []string{"react", "frontend", "typescript"},
	},
	{
		Title: "Product Manager", Company: "InnovateCo", Location: "Berlin, Germany", Region: "Europe", RemoteAllowed: true,
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelSenior,
		Description:  "Lead cross-functional teams to ship world-class products.",
		Requirements: []string{"Product Strategy", "Agile", "Stakeholder Management", "SQL"},
		NiceToHave:   []string{"B2B SaaS", "OKRs", "User Research"},
		SalaryMin:    90_000, SalaryMax: 120_000, Currency: "EUR",
		Platform: "XING", Industry: "Technology", Keywords: []string{"product", "agile", "roadmap"},
	},
	{
		Title: "DevOps Engineer", Company: "CloudBase", Location: "Remote", Region: "Global", RemoteAllowed: true,
		JobType: domain.JobRemote, ExperienceLevel: domain.LevelMid,
		Description:  "Automate CI/CD pipelines and manage cloud infrastructure.",
		Requirements: []string{"Kubernetes", "Terraform", "AWS", "CI/CD", "Linux"},
		NiceToHave:   []string{"Prometheus", "Grafana", "Go"},
		SalaryMin:    120_000, SalaryMax: 155_000, Currency: "USD",
		Platform: "Remote.co", Industry: "Technology", Keywords: []string{"devops", "cloud", "kubernetes"},
	},
	{
		Title: "UX Designer", Company: "CreativeMinds", Location: "Toronto, Canada", Region: "North America",
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelMid,
		Description:  "Design intuitive digital experiences grounded in user research.",
		Requirements: []string{"Figma", "User Research", "Prototyping", "Accessibility"},
		NiceToHave:   []string{"Motion Design", "HTML/CSS", "Design Systems"},
		SalaryMin:    85_000, SalaryMax: 110_000, Currency: "CAD",
		Platform: "Workopolis", Industry: "Media", Keywords: []string{"UX", "design", "figma"},
	},
	{
		Title: "Machine Learning Engineer", Company: "AIStart", Location: "San Francisco, CA, USA", Region: "North America", RemoteAllowed: true,
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelSenior,
		Description:  "Deploy and scale LLM-based products in production.",
		Requirements: []string{"Python", "PyTorch", "MLOps", "Docker", "LLMs"},
		NiceToHave:   []string{"RLHF", "vLLM", "Triton"},
		SalaryMin:    160_000, SalaryMax: 220_000, Currency: "USD",
		Platform: "LinkedIn", Industry: "Artificial Intelligence", Keywords: []string{"llm", "ml", "pytorch"},
	},
	{
		Title: "Marketing Analyst", Company: "GrowthLab", Location: "Sydney, Australia", Region: "Asia Pacific",
		JobType: domain.JobFullTime, ExperienceLevel: domain.LevelEntry,
		Description:  "Analyse campaign performance and support growth strategy.",
		Requirements: []string{"Google Analytics", "Excel", "SQL", "Data Visualisation"},
		NiceToHave:   []string{"Tableau", "Python", "A/B Testing"},
		SalaryMin:    65_000, SalaryMax: 85_000, Currency: "AUD",
		Platform: "Seek", Industry: "Marketing", Keywords: []string{"analytics", "marketing", "growth"},
	},
}

// SampleSource serves a shuffled subset of the built-in catalogue with fresh
// ids and posting dates, simulating a live board.
type SampleSource struct {
	Max  int
	Rand *rand.Rand
	Now  func() time.Time
}

func (s SampleSource) Fetch(ctx context.Context, _ domain.UserProfile) ([]domain.JobListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := s.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	idx := r.Perm(len(sampleJobs))
	n := len(idx)
	if s.Max > 0 && s.Max < n {
		n = s.Max
	}
	today := now().UTC().Truncate(24 * time.Hour)
	out := make([]domain.JobListing, 0, n)
	for _, i := range idx[:n] {
		j := cloneListing(sampleJobs[i])
		daysAgo := r.IntN(15)
		j.ID = uuid.NewString()
		j.PostedDate = today.AddDate(0, 0, -daysAgo)
		j.Deadline = today.AddDate(0, 0, 30-daysAgo)
		j.FetchedAt = now().UTC()
		out = append(out, j)
	}
	return out, nil
}

func cloneListing(j domain.JobListing) domain.JobListing {
	j.Requirements = append([]string(nil), j.Requirements...)
	j.NiceToHave = append([]string(nil), j.NiceToHave...)
	j.Keywords = append([]string(nil), j.Keywords...)
	return j
}
