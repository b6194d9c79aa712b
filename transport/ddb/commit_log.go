package ddb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/simsearch/transport"
)

const (
	attrOperation   = "operation_id"
	attrPeer        = "peer"
	attrCommittedAt = "committed_at"
)

// Client is the subset of the DynamoDB API used by CommitLog.
// *dynamodb.Client satisfies it.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// CommitLog implements transport.CommitLog on a DynamoDB table.
type CommitLog struct {
	client Client
	table  string
	now    func() time.Time
}

var _ transport.CommitLog = (*CommitLog)(nil)

// New loads the default AWS config and creates a CommitLog over table.
func New(ctx context.Context, table, region string) (*CommitLog, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("ddb: load aws config: %w", err)
	}
	return NewCommitLog(dynamodb.NewFromConfig(cfg), table), nil
}

// NewCommitLog creates a CommitLog over table.
func NewCommitLog(client Client, table string) *CommitLog {
	return &CommitLog{client: client, table: table, now: time.Now}
}

func key(opID, peer string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrOperation: &types.AttributeValueMemberS{Value: opID},
		attrPeer:      &types.AttributeValueMemberS{Value: peer},
	}
}

// Commit claims the slot of peer with a conditional write.
func (l *CommitLog) Commit(ctx context.Context, opID, peer string) error {
	item := key(opID, peer)
	item[attrCommittedAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(l.now().UnixMilli(), 10)}

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + attrPeer + ")"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return transport.ErrAlreadyCommitted
		}
		return fmt.Errorf("ddb: commit %s/%s: %w", opID, peer, err)
	}
	return nil
}

// Committed queries the peers of opID. The sort key keeps them ordered.
func (l *CommitLog) Committed(ctx context.Context, opID string) ([]string, error) {
	var (
		peers []string
		start map[string]types.AttributeValue
	)
	for {
		resp, err := l.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(l.table),
			KeyConditionExpression: aws.String(attrOperation + " = :op"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":op": &types.AttributeValueMemberS{Value: opID},
			},
			ProjectionExpression: aws.String(attrPeer),
			ConsistentRead:       aws.Bool(true),
			ExclusiveStartKey:    start,
		})
		if err != nil {
			return nil, fmt.Errorf("ddb: query %s: %w", opID, err)
		}
		for _, item := range resp.Items {
			attr, ok := item[attrPeer].(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("ddb: query %s: invalid %s attribute", opID, attrPeer)
			}
			peers = append(peers, attr.Value)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return peers, nil
		}
		start = resp.LastEvaluatedKey
	}
}

// Revoke deletes the slot of peer.
func (l *CommitLog) Revoke(ctx context.Context, opID, peer string) error {
	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.table),
		Key:       key(opID, peer),
	})
	if err != nil {
		return fmt.Errorf("ddb: revoke %s/%s: %w", opID, peer, err)
	}
	return nil
}
