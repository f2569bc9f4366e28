package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/job-agent/internal/domain"
)

func TestParseApplicationStatus(t *testing.T) {
	for _, st := range domain.ApplicationStatuses {
		got, err := domain.ParseApplicationStatus(" " + string(st) + " ")
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := domain.ParseApplicationStatus("ghosted")
	assert.Error(t, err)
}

func TestParseJobTypeAndLevel(t *testing.T) {
	jt, err := domain.ParseJobType("REMOTE")
	require.NoError(t, err)
	assert.Equal(t, domain.JobRemote, jt)
	_, err = domain.ParseJobType("gig")
	assert.Error(t, err)

	lvl, err := domain.ParseExperienceLevel("senior")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelSenior, lvl)
	_, err = domain.ParseExperienceLevel("wizard")
	assert.Error(t, err)
}

func TestUserProfile_Normalize(t *testing.T) {
	p := domain.UserProfile{
		Skills:      []string{"Go", "go", " SQL ", "", "Kubernetes", "sql"},
		TargetRoles: []string{"Backend Engineer", "backend engineer"},
	}
	p.Normalize()
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, p.Skills)
	assert.Equal(t, []string{"Backend Engineer"}, p.TargetRoles)
	assert.Equal(t, domain.LevelMid, p.ExperienceLevel)
}

func TestUserProfile_NormalizeDefaultsLanguage(t *testing.T) {
	p := domain.UserProfile{Languages: nil}
	p.Normalize()
	assert.Equal(t, []string{"English"}, p.Languages)
}
