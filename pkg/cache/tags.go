package cache

import "fmt"

// Global cache tags. Every cached read carries TagAll plus the global tag
// for its category, in addition to its most specific tag, so invalidation
// works at any granularity without enumerating entries.
const (
	TagAll           = "all"
	TagOrganizations = "organizations"
	TagProjects      = "projects"
	TagStats         = "stats"
	TagTechStack     = "tech-stack"
	TagTopics        = "topics"
	TagYears         = "years"
	TagMeta          = "meta"
)

// OrganizationTag returns the tag scoping a single organization.
func OrganizationTag(slug string) string {
	return "organization:" + slug
}

// YearTag returns the tag scoping a single program year.
func YearTag(year int) string {
	return fmt.Sprintf("year:%d", year)
}

// ProjectTag returns the tag scoping a single project.
func ProjectTag(id string) string {
	return "project:" + id
}

// TechStackTag returns the tag scoping a single technology.
func TechStackTag(slug string) string {
	return "tech-stack:" + slug
}

// TopicTag returns the tag scoping a single topic.
func TopicTag(slug string) string {
	return "topic:" + slug
}
