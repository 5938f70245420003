package dynamodb

import (
	"context"
	"fmt"

	"gsoc-backend/application/ports"
	"gsoc-backend/domain/catalog"
	apperrors "gsoc-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProjectRepository implements ports.ProjectRepository.
type ProjectRepository struct {
	client        *dynamodb.Client
	tableName     string
	indexName     string // GSI1 - year partition
	gsi2IndexName string // GSI2 - direct project-ID lookups
	logger        *zap.Logger
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(client *dynamodb.Client, tableName, indexName, gsi2IndexName string, logger *zap.Logger) ports.ProjectRepository {
	return &ProjectRepository{
		client:        client,
		tableName:     tableName,
		indexName:     indexName,
		gsi2IndexName: gsi2IndexName,
		logger:        logger,
	}
}

// projectItem is the DynamoDB item structure for a project.
type projectItem struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	GSI1PK       string   `dynamodbav:"GSI1PK"`
	GSI1SK       string   `dynamodbav:"GSI1SK"`
	GSI2PK       string   `dynamodbav:"GSI2PK"`
	EntityType   string   `dynamodbav:"EntityType"`
	ID           string   `dynamodbav:"ID"`
	Title        string   `dynamodbav:"Title"`
	Summary      string   `dynamodbav:"Summary,omitempty"`
	OrgSlug      string   `dynamodbav:"OrgSlug"`
	Year         int      `dynamodbav:"Year"`
	Contributor  string   `dynamodbav:"Contributor,omitempty"`
	Technologies []string `dynamodbav:"Technologies,omitempty"`
	URL          string   `dynamodbav:"URL,omitempty"`
}

// FindByYear returns the projects accepted in year, paging through GSI1.
func (r *ProjectRepository) FindByYear(ctx context.Context, year int) ([]catalog.Project, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("YEAR#%d", year)))
	return r.queryProjects(ctx, keyCond, &r.indexName)
}

// FindByID returns one project via GSI2, or nil if unknown.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*catalog.Project, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value("PROJECT#" + id))
	projects, err := r.queryProjects(ctx, keyCond, &r.gsi2IndexName)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return &projects[0], nil
}

// FindByOrganization returns an organization's projects across years from
// the base table partition.
func (r *ProjectRepository) FindByOrganization(ctx context.Context, orgSlug string) ([]catalog.Project, error) {
	keyCond := expression.Key("PK").Equal(expression.Value("ORG#" + orgSlug)).
		And(expression.Key("SK").BeginsWith("PROJECT#"))
	return r.queryProjects(ctx, keyCond, nil)
}

func (r *ProjectRepository) queryProjects(ctx context.Context, keyCond expression.KeyConditionBuilder, indexName *string) ([]catalog.Project, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build projects query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 &r.tableName,
		IndexName:                 indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var projects []catalog.Project
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			r.logger.Error("projects query failed", zap.Error(err))
			return nil, apperrors.NewDatabaseError("query projects", err)
		}

		var items []projectItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal projects: %w", err)
		}
		for _, item := range items {
			projects = append(projects, item.toDomain())
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return projects, nil
}

func (i projectItem) toDomain() catalog.Project {
	return catalog.Project{
		ID:               i.ID,
		Title:            i.Title,
		Summary:          i.Summary,
		OrganizationSlug: i.OrgSlug,
		Year:             i.Year,
		Contributor:      i.Contributor,
		Technologies:     i.Technologies,
		URL:              i.URL,
	}
}
