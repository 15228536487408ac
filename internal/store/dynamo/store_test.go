package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotif/internal/store"
)

type mockDynamo struct {
	getInput  *dynamodb.GetItemInput
	getOutput *dynamodb.GetItemOutput
	getErr    error
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.getInput = in
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}

func TestGetCustomer(t *testing.T) {
	m := &mockDynamo{getOutput: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"id":    &types.AttributeValueMemberS{Value: "c-1"},
		"name":  &types.AttributeValueMemberS{Value: "Maria"},
		"phone": &types.AttributeValueMemberS{Value: "11987654321"},
		"email": &types.AttributeValueMemberS{Value: "ignored@example.com"},
	}}}

	c, err := New(m, "customers").GetCustomer(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, store.Customer{ID: "c-1", Name: "Maria", Phone: "11987654321"}, c)
	assert.Equal(t, "customers", *m.getInput.TableName)
	key, ok := m.getInput.Key["id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "c-1", key.Value)
}

func TestGetCustomerNotFound(t *testing.T) {
	_, err := New(&mockDynamo{}, "customers").GetCustomer(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetCustomerError(t *testing.T) {
	_, err := New(&mockDynamo{getErr: errors.New("throttled")}, "customers").GetCustomer(context.Background(), "c-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewPanicsWithoutTable(t *testing.T) {
	assert.Panics(t, func() { New(&mockDynamo{}, "") })
}
