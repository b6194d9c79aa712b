package ddb

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/blobstore"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
	"github.com/hupe1980/simsearch/transport"
)

// mockDDBClient is an in-memory DynamoDB table keyed by operation and peer.
type mockDDBClient struct {
	mu       sync.Mutex
	items    map[string]map[string]map[string]types.AttributeValue
	pageSize int
	queries  int
	err      error
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]map[string]types.AttributeValue)}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	return item[name].(*types.AttributeValueMemberS).Value
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	opID, peer := stringAttr(params.Item, attrOperation), stringAttr(params.Item, attrPeer)
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(peer)" {
		if _, exists := m.items[opID][peer]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	if m.items[opID] == nil {
		m.items[opID] = make(map[string]map[string]types.AttributeValue)
	}
	m.items[opID][peer] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.queries++

	opID := params.ExpressionAttributeValues[":op"].(*types.AttributeValueMemberS).Value
	peers := make([]string, 0, len(m.items[opID]))
	for peer := range m.items[opID] {
		if params.ExclusiveStartKey == nil || peer > stringAttr(params.ExclusiveStartKey, attrPeer) {
			peers = append(peers, peer)
		}
	}
	slices.Sort(peers)

	out := &dynamodb.QueryOutput{}
	if m.pageSize > 0 && len(peers) > m.pageSize {
		peers = peers[:m.pageSize]
		out.LastEvaluatedKey = key(opID, peers[len(peers)-1])
	}
	for _, peer := range peers {
		out.Items = append(out.Items, map[string]types.AttributeValue{
			attrPeer: &types.AttributeValueMemberS{Value: peer},
		})
	}
	return out, nil
}

func (m *mockDDBClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	delete(m.items[stringAttr(params.Key, attrOperation)], stringAttr(params.Key, attrPeer))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestCommitLog_Commit(t *testing.T) {
	ctx := context.Background()
	client := newMockDDBClient()
	log := NewCommitLog(client, "simsearch-commits")
	log.now = func() time.Time { return time.UnixMilli(1700000000000) }

	require.NoError(t, log.Commit(ctx, "op-1", "b"))
	require.NoError(t, log.Commit(ctx, "op-1", "a"))
	require.NoError(t, log.Commit(ctx, "op-2", "a"))
	require.ErrorIs(t, log.Commit(ctx, "op-1", "a"), transport.ErrAlreadyCommitted)

	committedAt := client.items["op-1"]["a"][attrCommittedAt].(*types.AttributeValueMemberN)
	assert.Equal(t, "1700000000000", committedAt.Value)

	peers, err := log.Committed(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, peers)

	require.NoError(t, log.Revoke(ctx, "op-1", "a"))
	peers, err = log.Committed(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, peers)
}

func TestCommitLog_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	log := NewCommitLog(newMockDDBClient(), "simsearch-commits")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := log.Commit(ctx, "op", "peer")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, transport.ErrAlreadyCommitted):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, conflicts)
}

func TestCommitLog_CommittedPages(t *testing.T) {
	ctx := context.Background()
	client := newMockDDBClient()
	client.pageSize = 2
	log := NewCommitLog(client, "simsearch-commits")

	for _, peer := range []string{"e", "c", "a", "d", "b"} {
		require.NoError(t, log.Commit(ctx, "op", peer))
	}

	peers, err := log.Committed(ctx, "op")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, peers)
	assert.Equal(t, 3, client.queries)
}

func TestCommitLog_ClientError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	client := newMockDDBClient()
	client.err = boom
	log := NewCommitLog(client, "simsearch-commits")

	err := log.Commit(ctx, "op", "peer")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, transport.ErrAlreadyCommitted)

	_, err = log.Committed(ctx, "op")
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, log.Revoke(ctx, "op", "peer"), boom)
}

func TestCommitLog_SpoolPublishesOnce(t *testing.T) {
	ctx := context.Background()
	spool := transport.NewSpool(blobstore.NewMemoryStore(),
		transport.WithCommitLog(NewCommitLog(newMockDDBClient(), "simsearch-commits")),
	)

	op, err := operation.NewKNN(object.NewVector([]float32{0}), 1)
	require.NoError(t, err)

	partial := op.Clone(false).(operation.QueryOperation)
	_, err = partial.Evaluate(object.NewSliceIterator(object.NewVector([]float32{2}, object.WithLocator("2"))))
	require.NoError(t, err)
	partial.EndOperation()

	require.NoError(t, spool.Put(ctx, "peer", partial))
	require.ErrorIs(t, spool.Put(ctx, "peer", partial), transport.ErrAlreadyCommitted)

	n, err := spool.Collect(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	answer := slices.Collect(op.Answer())
	require.Len(t, answer, 1)
	assert.Equal(t, "2", answer[0].Object.Locator())
}
