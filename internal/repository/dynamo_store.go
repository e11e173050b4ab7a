package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/retail-dashboard/ledger-service/internal/domain"
	pkgconfig "github.com/retail-dashboard/ledger-service/pkg/config"
)

const (
	// DynamoDB caps BatchWriteItem at 25 items per call.
	batchWriteLimit = 25
	// A throttled batch succeeds with the rejected puts echoed back in
	// UnprocessedItems; those are retried this many times before the
	// save is reported as failed.
	maxBatchRetries = 5

	initialBatchBackoff = 50 * time.Millisecond
)

// DynamoAPI is the slice of the DynamoDB client the stores use.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// NewDynamoDBClient builds a DynamoDB client from the service config.
// When DynamoEndpoint is set (dynamodb-local) static credentials are
// used so the client works without an AWS account.
func NewDynamoDBClient(ctx context.Context, cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.DynamoEndpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	}), nil
}

// dynamoCollection reads and writes one table as a whole collection:
// Load is a paginated Scan, Save is a series of chunked batch puts.
type dynamoCollection struct {
	client    DynamoAPI
	tableName string
}

func (c dynamoCollection) scanAll(ctx context.Context) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		out, err := c.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(c.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.tableName, err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (c dynamoCollection) putAll(ctx context.Context, items []map[string]types.AttributeValue) error {
	for start := 0; start < len(items); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(items) {
			end = len(items)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			writes = append(writes, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := c.writeBatch(ctx, writes); err != nil {
			return err
		}
	}
	return nil
}

// writeBatch keeps re-submitting whatever DynamoDB echoes back in
// UnprocessedItems. Reporting success while part of the batch was
// rejected would silently lose catalog writes.
func (c dynamoCollection) writeBatch(ctx context.Context, writes []types.WriteRequest) error {
	backoff := initialBatchBackoff
	for attempt := 0; ; attempt++ {
		out, err := c.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{c.tableName: writes},
		})
		if err != nil {
			return fmt.Errorf("batch write %s: %w", c.tableName, err)
		}

		writes = out.UnprocessedItems[c.tableName]
		if len(writes) == 0 {
			return nil
		}
		if attempt == maxBatchRetries {
			return fmt.Errorf("batch write %s: %d items unprocessed after %d retries",
				c.tableName, len(writes), maxBatchRetries)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("batch write %s: %w", c.tableName, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// DynamoProductStore persists the catalog in a DynamoDB table keyed by
// the numeric product id.
type DynamoProductStore struct {
	c dynamoCollection
}

func NewDynamoProductStore(client DynamoAPI, tableName string) *DynamoProductStore {
	return &DynamoProductStore{c: dynamoCollection{client: client, tableName: tableName}}
}

func (s *DynamoProductStore) Load(ctx context.Context) ([]domain.Product, error) {
	items, err := s.c.scanAll(ctx)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(items, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	return products, nil
}

func (s *DynamoProductStore) Save(ctx context.Context, products []domain.Product) error {
	items := make([]map[string]types.AttributeValue, 0, len(products))
	for _, p := range products {
		item, err := attributevalue.MarshalMap(p)
		if err != nil {
			return fmt.Errorf("marshal product %d: %w", p.ID, err)
		}
		items = append(items, item)
	}
	return s.c.putAll(ctx, items)
}

// DynamoReviewStore persists the review log keyed by the review uuid.
type DynamoReviewStore struct {
	c dynamoCollection
}

func NewDynamoReviewStore(client DynamoAPI, tableName string) *DynamoReviewStore {
	return &DynamoReviewStore{c: dynamoCollection{client: client, tableName: tableName}}
}

func (s *DynamoReviewStore) Load(ctx context.Context) ([]domain.Review, error) {
	items, err := s.c.scanAll(ctx)
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	if err := attributevalue.UnmarshalListOfMaps(items, &reviews); err != nil {
		return nil, fmt.Errorf("unmarshal reviews: %w", err)
	}
	return reviews, nil
}

func (s *DynamoReviewStore) Save(ctx context.Context, reviews []domain.Review) error {
	items := make([]map[string]types.AttributeValue, 0, len(reviews))
	for _, r := range reviews {
		item, err := attributevalue.MarshalMap(r)
		if err != nil {
			return fmt.Errorf("marshal review %s: %w", r.ID, err)
		}
		items = append(items, item)
	}
	return s.c.putAll(ctx, items)
}

// DynamoOrderStore persists the order log keyed by the order uuid.
type DynamoOrderStore struct {
	c dynamoCollection
}

func NewDynamoOrderStore(client DynamoAPI, tableName string) *DynamoOrderStore {
	return &DynamoOrderStore{c: dynamoCollection{client: client, tableName: tableName}}
}

func (s *DynamoOrderStore) Load(ctx context.Context) ([]domain.Order, error) {
	items, err := s.c.scanAll(ctx)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	if err := attributevalue.UnmarshalListOfMaps(items, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return orders, nil
}

func (s *DynamoOrderStore) Save(ctx context.Context, orders []domain.Order) error {
	items := make([]map[string]types.AttributeValue, 0, len(orders))
	for _, o := range orders {
		item, err := attributevalue.MarshalMap(o)
		if err != nil {
			return fmt.Errorf("marshal order %s: %w", o.ID, err)
		}
		items = append(items, item)
	}
	return s.c.putAll(ctx, items)
}
