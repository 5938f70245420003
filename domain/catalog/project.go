package catalog

// Project is a single accepted GSoC project. OrganizationSlug is a weak
// reference into the organization dataset.
type Project struct {
	ID               string
	Title            string
	Summary          string
	OrganizationSlug string
	Year             int
	Contributor      string
	Technologies     []string
	URL              string
}
