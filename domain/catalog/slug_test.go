package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Apache Software Foundation", "apache-software-foundation"},
		{"C++", "c"},
		{"Node.js", "nodejs"},
		{"Machine Learning / AI", "machine-learning-ai"},
		{"  spaced  out  ", "spaced-out"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER_case", "upper_case"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestOrganizationYearHelpers(t *testing.T) {
	org := Organization{
		Slug: "apache",
		Name: "Apache",
		Years: []YearParticipation{
			{Year: 2024, NumProjects: 30},
			{Year: 2025, NumProjects: 40},
		},
	}

	assert.Equal(t, 70, org.TotalProjects())
	assert.Equal(t, 40, org.ProjectsInYear(2025))
	assert.Zero(t, org.ProjectsInYear(2010))
	assert.True(t, org.ParticipatedIn(2024))
	assert.False(t, org.ParticipatedIn(2010))
	assert.NoError(t, org.Validate())

	unnamed := Organization{Slug: "x"}
	assert.Error(t, unnamed.Validate())
	unslugged := Organization{Name: "X"}
	assert.Error(t, unslugged.Validate())
}
