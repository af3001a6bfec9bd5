package ddb

import (
	"brandtheme/internal/types"
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// ConfigStore keeps one item per tenant: PK=BRAND#<tenant>, SK=CONFIG, config attributes inline.
type ConfigStore struct {
	table string
	cli   *dynamodb.Client
}

type brandItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	types.BrandConfig
}

func NewConfigStore(ctx context.Context, table string, cli *dynamodb.Client) (*ConfigStore, error) {
	if err := createTableIfNotExists(ctx, cli, table); err != nil {
		return nil, err
	}
	return &ConfigStore{table: table, cli: cli}, nil
}

func (s *ConfigStore) GetBrandConfig(ctx context.Context, tenantID string) (types.BrandConfig, error) {
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.table,
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkBrand(tenantID)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skConfig()},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return types.BrandConfig{}, types.Err(types.ErrDataStoreAccess, err, "")
	}
	if out.Item == nil {
		return types.BrandConfig{}, types.ErrNotFound
	}
	var item brandItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return types.BrandConfig{}, types.Err(types.ErrConfigMalformed, err, "tenant %q", tenantID)
	}
	return item.BrandConfig, nil
}

func (s *ConfigStore) ListTenants(ctx context.Context) ([]string, error) {
	var ids []string
	p := dynamodb.NewScanPaginator(s.cli, &dynamodb.ScanInput{
		TableName:        &s.table,
		FilterExpression: awsString("begins_with(PK, :pk) AND SK = :sk"),
		ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
			":pk": &ddbTypes.AttributeValueMemberS{Value: SBrand + "#"},
			":sk": &ddbTypes.AttributeValueMemberS{Value: skConfig()},
		},
		ProjectionExpression: awsString("PK"),
		ConsistentRead:       awsBool(true),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, types.Err(types.ErrDataStoreAccess, err, "")
		}
		for _, item := range page.Items {
			var pk struct {
				PK string `dynamodbav:"PK"`
			}
			if err := attributevalue.UnmarshalMap(item, &pk); err != nil {
				return nil, err
			}
			id, err := parseTenantID(pk.PK)
			if err != nil {
				log.WithError(err).Warn("skipping foreign item in brand table")
				continue
			}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ConfigStore) PutBrandConfig(ctx context.Context, tenantID string, config types.BrandConfig) error {
	item, err := attributevalue.MarshalMap(brandItem{
		PK:          pkBrand(tenantID),
		SK:          skConfig(),
		BrandConfig: config,
	})
	if err != nil {
		return err
	}
	// PutItem replaces the whole item atomically.
	if _, err = s.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.table,
		Item:      item,
	}); err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *ConfigStore) DeleteBrandConfig(ctx context.Context, tenantID string) error {
	_, err := s.cli.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.table,
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkBrand(tenantID)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skConfig()},
		},
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *ConfigStore) ClearAll(ctx context.Context) error {
	_, err := s.cli.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: &s.table,
	})
	if err != nil {
		return err
	}
	// wait until the table is deleted
	err = dynamodb.NewTableNotExistsWaiter(s.cli).Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	}, 30*time.Second)
	if err != nil {
		return err
	}
	return createTableIfNotExists(ctx, s.cli, s.table)
}
