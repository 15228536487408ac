package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"wanotif/internal/store"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store reads customer documents keyed by "id".
type Store struct {
	client    dynamoAPI
	tableName string
}

func New(client dynamoAPI, tableName string) *Store {
	if client == nil {
		panic("dynamo: client cannot be nil")
	}
	if tableName == "" {
		panic("dynamo: table name cannot be empty")
	}
	return &Store{client: client, tableName: tableName}
}

func (s *Store) GetCustomer(ctx context.Context, id string) (store.Customer, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return store.Customer{}, fmt.Errorf("dynamo: get customer: %w", err)
	}
	if len(out.Item) == 0 {
		return store.Customer{}, store.ErrNotFound
	}
	var c store.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return store.Customer{}, fmt.Errorf("dynamo: decode customer: %w", err)
	}
	return c, nil
}

// Ping checks the table exists and is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	return err
}
