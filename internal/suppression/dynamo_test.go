package suppression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxrmessenger/internal/types"
)

// fakeDynamo keeps items in a map keyed by the "email" attribute.
type fakeDynamo struct {
	items  map[string]map[string]ddbtypes.AttributeValue
	err    error
	tables []string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]ddbtypes.AttributeValue)}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.tables = append(f.tables, aws.ToString(in.TableName))
	if f.err != nil {
		return nil, f.err
	}
	key := in.Key["email"].(*ddbtypes.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[key]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.tables = append(f.tables, aws.ToString(in.TableName))
	if f.err != nil {
		return nil, f.err
	}
	key := in.Item["email"].(*ddbtypes.AttributeValueMemberS).Value
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoStoreRoundTrip(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStoreWithAPI(fake, "wxr-suppressions")
	ctx := context.Background()
	until := time.Date(2124, 5, 10, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	require.NoError(t, store.Put(ctx, types.SuppressionRecord{EmailAddress: "hiker@example.com", Until: until}))

	item := fake.items["hiker@example.com"]
	require.NotNil(t, item)
	assert.Equal(t, "2124-05-10T06:30:00Z", item["until"].(*ddbtypes.AttributeValueMemberS).Value)

	rec, err := store.Get(ctx, "hiker@example.com")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "hiker@example.com", rec.EmailAddress)
	assert.True(t, until.Equal(rec.Until))
	assert.Equal(t, []string{"wxr-suppressions", "wxr-suppressions"}, fake.tables)
}

func TestDynamoStoreGetMissing(t *testing.T) {
	rec, err := NewDynamoStoreWithAPI(newFakeDynamo(), "t").Get(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDynamoStoreMalformedItem(t *testing.T) {
	fake := newFakeDynamo()
	fake.items["bad@example.com"] = map[string]ddbtypes.AttributeValue{
		"email": &ddbtypes.AttributeValueMemberS{Value: "bad@example.com"},
		"until": &ddbtypes.AttributeValueMemberS{Value: "not-a-time"},
	}

	_, err := NewDynamoStoreWithAPI(fake, "t").Get(context.Background(), "bad@example.com")

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestDynamoStoreErrors(t *testing.T) {
	fake := newFakeDynamo()
	fake.err = errors.New("ResourceNotFoundException")
	store := NewDynamoStoreWithAPI(fake, "t")

	_, err := store.Get(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, fake.err)

	err = store.Put(context.Background(), types.SuppressionRecord{EmailAddress: "x@example.com"})
	assert.ErrorIs(t, err, fake.err)
}

func TestDynamoStoreThrottling(t *testing.T) {
	fake := newFakeDynamo()
	fake.err = &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	store := NewDynamoStoreWithAPI(fake, "t")

	err := store.Put(context.Background(), types.SuppressionRecord{EmailAddress: "x@example.com"})

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamRateLimited, appErr.Code)

	fake.err = &smithy.GenericAPIError{Code: "ValidationException"}
	_, err = store.Get(context.Background(), "x@example.com")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestLedgerOverDynamoStoreFailsOpen(t *testing.T) {
	fake := newFakeDynamo()
	fake.err = errors.New("timeout")

	ledger := NewLedger(NewDynamoStoreWithAPI(fake, "t"), nil, nil)
	assert.False(t, ledger.IsSuppressed(context.Background(), "x@example.com"))
}
