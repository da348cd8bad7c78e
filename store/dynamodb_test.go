package store_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/guestbook/guestbook"
	"github.com/jacentio/guestbook/store"
)

// fakeDynamo keeps items in memory keyed by pk.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	created  *dynamodb.CreateTableInput
	tableUp  bool
	failWith error
	reads    []*dynamodb.GetItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func pkOf(m map[string]types.AttributeValue) string {
	if s, ok := m["pk"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.reads = append(f.reads, in)
	return &dynamodb.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.items[pkOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tableUp {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = in
	f.tableUp = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestDynamo(t *testing.T) {
	kvContract(t, func(*testing.T) guestbook.KV {
		return store.NewDynamo(newFakeDynamo(), store.DefaultDynamoConfig())
	})
}

func TestDefaultDynamoConfig(t *testing.T) {
	cfg := store.DefaultDynamoConfig()
	assert.Equal(t, "guestbook_kv", cfg.TableName)
	assert.Equal(t, "default", cfg.Namespace)
}

func TestNewDynamo_ConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		input    store.DynamoConfig
		expected store.DynamoConfig
	}{
		{"zero value", store.DynamoConfig{}, store.DefaultDynamoConfig()},
		{"custom", store.DynamoConfig{TableName: "t", Namespace: "site"}, store.DynamoConfig{TableName: "t", Namespace: "site"}},
		{"separator in namespace", store.DynamoConfig{TableName: "t", Namespace: "a#b"}, store.DynamoConfig{TableName: "t", Namespace: "a-b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := store.NewDynamo(newFakeDynamo(), tt.input)
			assert.Equal(t, tt.expected, d.Config())
		})
	}
}

func TestDynamo_ItemLayout(t *testing.T) {
	fake := newFakeDynamo()
	d := store.NewDynamo(fake, store.DynamoConfig{TableName: "kv", Namespace: "site"})
	ctx := context.Background()

	require.NoError(t, d.Set(ctx, "guestbook-entries", []byte(`[]`)))

	item, ok := fake.items["site#guestbook-entries"]
	require.True(t, ok)
	value, ok := item["value"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "[]", value.Value)
	updated, ok := item["updated_at"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, updated.Value)
	assert.NoError(t, err)

	_, err = d.Get(ctx, "guestbook-entries")
	require.NoError(t, err)
	require.Len(t, fake.reads, 1)
	assert.Equal(t, "kv", aws.ToString(fake.reads[0].TableName))
	assert.True(t, aws.ToBool(fake.reads[0].ConsistentRead))
}

func TestDynamo_NamespacesAreIsolated(t *testing.T) {
	fake := newFakeDynamo()
	a := store.NewDynamo(fake, store.DynamoConfig{Namespace: "a"})
	b := store.NewDynamo(fake, store.DynamoConfig{Namespace: "b"})
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "secret-flag", []byte(`"mousey"`)))

	v, err := b.Get(ctx, "secret-flag")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDynamo_ValueTooLarge(t *testing.T) {
	d := store.NewDynamo(newFakeDynamo(), store.DefaultDynamoConfig())

	err := d.Set(context.Background(), "k", []byte(strings.Repeat("x", store.MaxDynamoValueBytes+1)))
	assert.ErrorIs(t, err, store.ErrValueTooLarge)

	err = d.Set(context.Background(), "k", []byte(strings.Repeat("x", store.MaxDynamoValueBytes)))
	assert.NoError(t, err)
}

func TestDynamo_ClientErrorsAreWrapped(t *testing.T) {
	fake := newFakeDynamo()
	boom := errors.New("throttled")
	fake.failWith = boom
	d := store.NewDynamo(fake, store.DefaultDynamoConfig())

	_, err := d.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, d.Set(context.Background(), "k", []byte("v")), boom)
}

func TestDynamo_EnsureTable(t *testing.T) {
	fake := newFakeDynamo()
	d := store.NewDynamo(fake, store.DynamoConfig{TableName: "kv"})

	require.NoError(t, d.EnsureTable(context.Background(), time.Minute))

	require.NotNil(t, fake.created)
	assert.Equal(t, "kv", aws.ToString(fake.created.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, fake.created.BillingMode)
	require.NotNil(t, fake.created.StreamSpecification)
	assert.Equal(t, types.StreamViewTypeNewAndOldImages, fake.created.StreamSpecification.StreamViewType)
	require.Len(t, fake.created.KeySchema, 1)
	assert.Equal(t, "pk", aws.ToString(fake.created.KeySchema[0].AttributeName))

	fake.created = nil
	require.NoError(t, d.EnsureTable(context.Background(), time.Minute))
	assert.Nil(t, fake.created, "existing table is left alone")
}
