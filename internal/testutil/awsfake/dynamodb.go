package awsfake

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type table struct {
	describes int
	items     map[string]map[string]types.AttributeValue
}

// DynamoDB keeps tables CREATING for ActivateAfter describe calls.
type DynamoDB struct {
	mu sync.Mutex

	tables        map[string]*table
	ActivateAfter int
	Creates       int
	Describes     int
	PutErr        error
}

func NewDynamoDB() *DynamoDB {
	return &DynamoDB{tables: map[string]*table{}}
}

func (f *DynamoDB) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Describes++

	t, ok := f.tables[aws.ToString(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}

	t.describes++

	status := types.TableStatusActive
	if f.ActivateAfter < 0 || t.describes <= f.ActivateAfter {
		status = types.TableStatusCreating
	}

	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: status,
	}}, nil
}

func (f *DynamoDB) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.TableName)
	if _, ok := f.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("table exists")}
	}

	f.Creates++
	f.tables[name] = &table{items: map[string]map[string]types.AttributeValue{}}

	return &dynamodb.CreateTableOutput{TableDescription: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusCreating,
	}}, nil
}

func (f *DynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PutErr != nil {
		return nil, f.PutErr
	}

	t, ok := f.tables[aws.ToString(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}

	t.items[hashKey(in.Item)] = in.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (f *DynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[aws.ToString(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}

	return &dynamodb.GetItemOutput{Item: t.items[hashKey(in.Key)]}, nil
}

func (f *DynamoDB) ItemCount(tableName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[tableName]
	if !ok {
		return 0
	}

	return len(t.items)
}

func (f *DynamoDB) TableCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.tables)
}

func hashKey(item map[string]types.AttributeValue) string {
	if s, ok := item["order_id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}

	return ""
}
