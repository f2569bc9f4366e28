package privacy

import (
	"regexp"
	"strings"

	"github.com/petasbytes/job-agent/internal/domain"
)

const Redacted = "[REDACTED]"

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	phoneRE = regexp.MustCompile(`(\+?1?\s*[-.]?\s*)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	// Two to four capitalised words in a row.
	nameRE = regexp.MustCompile(`\b(?:[A-Z][a-z]+\s){1,3}[A-Z][a-z]+\b`)
)

// ScrubPII replaces emails, phone numbers and name-like phrases.
func ScrubPII(text string) string {
	text = emailRE.ReplaceAllString(text, Redacted)
	text = phoneRE.ReplaceAllString(text, Redacted)
	return nameRE.ReplaceAllString(text, Redacted)
}

// SafeProfile is the projection of a profile that may be sent to the model.
type SafeProfile struct {
	Location        string   `json:"location,omitempty"`
	Region          string   `json:"region,omitempty"`
	TargetRoles     []string `json:"desired_roles,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	YearsExperience float64  `json:"years_of_experience,omitempty"`
	Industries      []string `json:"industries,omitempty"`
	SalaryMin       int      `json:"desired_salary_min,omitempty"`
	SalaryMax       int      `json:"desired_salary_max,omitempty"`
	RemoteOK        bool     `json:"remote_ok"`
	Languages       []string `json:"languages,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	JobTypes        []string `json:"desired_job_types,omitempty"`
	Education       []string `json:"education,omitempty"`
	Experience      []string `json:"experience,omitempty"`
}

// SanitizeProfile drops identifying fields. Work history keeps titles and
// highlights with PII scrubbed; employer names are kept since they are
// needed for a résumé.
func SanitizeProfile(p domain.UserProfile) SafeProfile {
	out := SafeProfile{
		Location:        p.Location,
		Region:          p.Region,
		TargetRoles:     p.TargetRoles,
		Skills:          p.Skills,
		ExperienceLevel: string(p.ExperienceLevel),
		YearsExperience: p.YearsExperience,
		Industries:      p.Industries,
		SalaryMin:       p.SalaryMin,
		SalaryMax:       p.SalaryMax,
		RemoteOK:        p.RemoteOK,
		Languages:       p.Languages,
		Certifications:  p.Certifications,
	}
	for _, jt := range p.DesiredJobTypes {
		out.JobTypes = append(out.JobTypes, string(jt))
	}
	for _, e := range p.Education {
		out.Education = append(out.Education, strings.TrimSpace(e.Degree+", "+e.Institution))
	}
	for _, w := range p.WorkHistory {
		line := w.Title + " at " + w.Company
		if w.Start != "" {
			line += " (" + w.Start + " to " + orPresent(w.End) + ")"
		}
		for _, h := range w.Highlights {
			line += "; " + scrubContact(h)
		}
		out.Experience = append(out.Experience, line)
	}
	return out
}

// scrubContact removes contact details but keeps capitalised phrases, which in
// highlights are mostly product and team names.
func scrubContact(s string) string {
	s = emailRE.ReplaceAllString(s, Redacted)
	return phoneRE.ReplaceAllString(s, Redacted)
}

func orPresent(s string) string {
	if s == "" {
		return "present"
	}
	return s
}
