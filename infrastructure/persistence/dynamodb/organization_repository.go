// Package dynamodb implements the catalog repositories over a single-table
// DynamoDB layout. Organizations live under PK "ORG#<slug>" with a
// METADATA sort key; projects share the organization partition under
// "PROJECT#<id>" sort keys. GSI1 partitions by entity type (and by year
// for projects), GSI2 gives direct project-ID lookups.
package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"gsoc-backend/application/ports"
	"gsoc-backend/domain/catalog"
	apperrors "gsoc-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// OrganizationRepository implements ports.OrganizationRepository.
type OrganizationRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string // GSI1 - entity-type partition
	logger    *zap.Logger
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.OrganizationRepository {
	return &OrganizationRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// organizationItem is the DynamoDB item structure for an organization.
type organizationItem struct {
	PK           string                  `dynamodbav:"PK"`
	SK           string                  `dynamodbav:"SK"`
	GSI1PK       string                  `dynamodbav:"GSI1PK"`
	GSI1SK       string                  `dynamodbav:"GSI1SK"`
	EntityType   string                  `dynamodbav:"EntityType"`
	ID           string                  `dynamodbav:"ID"`
	Slug         string                  `dynamodbav:"Slug"`
	Name         string                  `dynamodbav:"Name"`
	Description  string                  `dynamodbav:"Description,omitempty"`
	ImageURL     string                  `dynamodbav:"ImageURL,omitempty"`
	Website      string                  `dynamodbav:"Website,omitempty"`
	Technologies []string                `dynamodbav:"Technologies,omitempty"`
	Topics       []string                `dynamodbav:"Topics,omitempty"`
	Years        []yearParticipationItem `dynamodbav:"Years,omitempty"`
	// YearSet duplicates the participation years as strings so filter
	// expressions can test membership with contains().
	YearSet []string `dynamodbav:"YearSet,omitempty"`
}

type yearParticipationItem struct {
	Year        int `dynamodbav:"Year"`
	NumProjects int `dynamodbav:"NumProjects"`
}

// FindAll returns every organization, paging through GSI1.
func (r *OrganizationRepository) FindAll(ctx context.Context) ([]catalog.Organization, error) {
	return r.queryOrganizations(ctx, nil)
}

// FindByYear returns the organizations that participated in year.
func (r *OrganizationRepository) FindByYear(ctx context.Context, year int) ([]catalog.Organization, error) {
	filter := expression.Name("YearSet").Contains(strconv.Itoa(year))
	return r.queryOrganizations(ctx, &filter)
}

// FindBySlug returns one organization, or nil if unknown.
func (r *OrganizationRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Organization, error) {
	keyCond := expression.Key("PK").Equal(expression.Value("ORG#" + slug)).
		And(expression.Key("SK").Equal(expression.Value("METADATA")))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build organization query: %w", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 &r.tableName,
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		r.logger.Error("organization lookup failed",
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, apperrors.NewDatabaseError(fmt.Sprintf("query organization %s", slug), err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var item organizationItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("unmarshal organization %s: %w", slug, err)
	}
	org := item.toDomain()
	return &org, nil
}

// Years returns the distinct participating years, ascending.
func (r *OrganizationRepository) Years(ctx context.Context) ([]int, error) {
	orgs, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for _, org := range orgs {
		for _, y := range org.Years {
			seen[y.Year] = struct{}{}
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// queryOrganizations pages through the entity-type index, optionally
// applying a filter expression.
func (r *OrganizationRepository) queryOrganizations(ctx context.Context, filter *expression.ConditionBuilder) ([]catalog.Organization, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("ORG"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build organizations query: %w", err)
	}

	var orgs []catalog.Organization

	input := &dynamodb.QueryInput{
		TableName:                 &r.tableName,
		IndexName:                 &r.indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			r.logger.Error("organizations query failed", zap.Error(err))
			return nil, apperrors.NewDatabaseError("query organizations", err)
		}

		var items []organizationItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal organizations: %w", err)
		}
		for _, item := range items {
			orgs = append(orgs, item.toDomain())
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return orgs, nil
}

func (i organizationItem) toDomain() catalog.Organization {
	years := make([]catalog.YearParticipation, 0, len(i.Years))
	for _, y := range i.Years {
		years = append(years, catalog.YearParticipation{Year: y.Year, NumProjects: y.NumProjects})
	}
	return catalog.Organization{
		ID:           i.ID,
		Slug:         i.Slug,
		Name:         i.Name,
		Description:  i.Description,
		ImageURL:     i.ImageURL,
		Website:      i.Website,
		Technologies: i.Technologies,
		Topics:       i.Topics,
		Years:        years,
	}
}
