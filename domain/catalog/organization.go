// Package catalog holds the GSoC catalog entities: organizations,
// projects, and the technology/topic vocabularies derived from them.
// Slugs are the stable identity used as join keys across independently
// generated datasets (store records, trending snapshots); cross-references
// are always plain slugs resolved through a repository, never embedded
// pointers.
package catalog

import "fmt"

// Organization is a mentoring organization as imported from the upstream
// program archive.
type Organization struct {
	ID           string
	Slug         string
	Name         string
	Description  string
	ImageURL     string
	Website      string
	Technologies []string
	Topics       []string
	Years        []YearParticipation
}

// YearParticipation records one program year an organization took part in.
type YearParticipation struct {
	Year        int
	NumProjects int
}

// TotalProjects returns the organization's all-time project count.
func (o *Organization) TotalProjects() int {
	total := 0
	for _, y := range o.Years {
		total += y.NumProjects
	}
	return total
}

// ProjectsInYear returns the organization's project count for one year,
// zero if it did not participate.
func (o *Organization) ProjectsInYear(year int) int {
	for _, y := range o.Years {
		if y.Year == year {
			return y.NumProjects
		}
	}
	return 0
}

// ParticipatedIn reports whether the organization took part in year.
func (o *Organization) ParticipatedIn(year int) bool {
	for _, y := range o.Years {
		if y.Year == year {
			return true
		}
	}
	return false
}

// Validate checks the identity fields every stored organization must carry.
func (o *Organization) Validate() error {
	if o.Slug == "" {
		return fmt.Errorf("organization %q has no slug", o.Name)
	}
	if o.Name == "" {
		return fmt.Errorf("organization %q has no name", o.Slug)
	}
	return nil
}
