package suppression

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"wxrmessenger/internal/types"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by DynamoStore.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps one item per address in a table whose partition key is
// the string attribute "email". "until" is stored as an RFC 3339 string.
type DynamoStore struct {
	api   DynamoDBAPI
	table string
}

// NewDynamoStore creates a DynamoStore from an AWS config.
func NewDynamoStore(awsCfg aws.Config, table string) *DynamoStore {
	return NewDynamoStoreWithAPI(dynamodb.NewFromConfig(awsCfg), table)
}

// NewDynamoStoreWithAPI creates a DynamoStore with a pre-configured client.
func NewDynamoStoreWithAPI(api DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{api: api, table: table}
}

func (s *DynamoStore) Get(ctx context.Context, email string) (*types.SuppressionRecord, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]ddbtypes.AttributeValue{
			"email": &ddbtypes.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, mapDynamoError("GetItem", s.table, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec types.SuppressionRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			fmt.Sprintf("malformed suppression item in %s", s.table), err)
	}
	return &rec, nil
}

func (s *DynamoStore) Put(ctx context.Context, rec types.SuppressionRecord) error {
	rec.Until = rec.Until.UTC()
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to marshal suppression record", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return mapDynamoError("PutItem", s.table, err)
	}
	return nil
}

// mapDynamoError separates throttling from other failures so logs and
// callers can tell capacity problems apart from misconfiguration.
func mapDynamoError(op, table string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ProvisionedThroughputExceededException", "RequestLimitExceeded":
			return types.NewAppError(types.ErrCodeUpstreamRateLimited,
				fmt.Sprintf("dynamodb %s on %s throttled", op, table), err)
		}
	}
	return types.NewAppError(types.ErrCodeInternalDB, fmt.Sprintf("dynamodb %s on %s failed", op, table), err)
}

var _ Store = (*DynamoStore)(nil)
