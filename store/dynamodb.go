package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/guestbook/internal/itemkey"
)

// MaxDynamoValueBytes is the largest value Dynamo.Set accepts. DynamoDB caps
// items at 400 KB including attribute names and the key.
const MaxDynamoValueBytes = 399 * 1024

// DynamoAPI is the subset of the DynamoDB client used by Dynamo.
// *dynamodb.Client satisfies it.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Item is the stored shape of one key-value pair.
type Item struct {
	PK        string `dynamodbav:"pk"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// Dynamo is a key-value store with one DynamoDB item per key.
type Dynamo struct {
	client DynamoAPI
	config DynamoConfig
	now    func() time.Time
}

// NewDynamo creates a Dynamo store.
func NewDynamo(client DynamoAPI, config DynamoConfig) *Dynamo {
	config.validate()
	return &Dynamo{
		client: client,
		config: config,
		now:    time.Now,
	}
}

// Config returns the validated configuration.
func (d *Dynamo) Config() DynamoConfig {
	return d.config
}

func (d *Dynamo) key(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: itemkey.PK(d.config.Namespace, key)},
	}
}

// Get reads the value under key with a strongly consistent read.
// A missing item returns nil and no error.
func (d *Dynamo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.config.TableName),
		Key:            d.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item %q: %w", key, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item Item
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item %q: %w", key, err)
	}
	return []byte(item.Value), nil
}

// Set writes value under key, replacing any previous item.
func (d *Dynamo) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(value) > MaxDynamoValueBytes {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrValueTooLarge)
	}

	av, err := attributevalue.MarshalMap(Item{
		PK:        itemkey.PK(d.config.Namespace, key),
		Value:     string(value),
		UpdatedAt: d.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal item %q: %w", key, err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.config.TableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item %q: %w", key, err)
	}
	return nil
}

// EnsureTable creates the table if it does not exist and waits until it is
// active. The table streams new and old images for the change feed.
func (d *Dynamo) EnsureTable(ctx context.Context, maxWait time.Duration) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.config.TableName),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", d.config.TableName, err)
	}

	_, err = d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.config.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
		StreamSpecification: &types.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: types.StreamViewTypeNewAndOldImages,
		},
	})
	var inUse *types.ResourceInUseException
	if err != nil && !errors.As(err, &inUse) {
		return fmt.Errorf("create table %s: %w", d.config.TableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.config.TableName),
	}, maxWait); err != nil {
		return fmt.Errorf("wait for table %s: %w", d.config.TableName, err)
	}
	return nil
}
