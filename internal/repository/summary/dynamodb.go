package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v4"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

const hashKey = "order_id"

type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type DynamoDB struct {
	log    *slog.Logger
	client DynamoAPI
	table  string

	waitAttempts uint64
	waitDelay    time.Duration
}

func NewDynamoDB(log *slog.Logger, client DynamoAPI, table string, waitAttempts uint64, waitDelay time.Duration) *DynamoDB {
	return &DynamoDB{
		log:          log,
		client:       client,
		table:        table,
		waitAttempts: waitAttempts,
		waitDelay:    waitDelay,
	}
}

// Upsert writes the summary keyed by order id. Last write wins.
func (d *DynamoDB) Upsert(ctx context.Context, summary models.OrderSummary) error {
	const op = "repository.summary.DynamoDB.Upsert"

	item, err := attributevalue.MarshalMap(summary)
	if err != nil {
		return fmt.Errorf("%s: marshal summary: %w", op, errors.Join(internalErrors.ErrPermanent, err))
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		d.log.Error(op, slog.String("order_id", summary.OrderID.String()), slog.String("error", err.Error()))
		return fmt.Errorf("%s: put item: %w", op, err)
	}

	return nil
}

func (d *DynamoDB) Get(ctx context.Context, orderID string) (models.OrderSummary, error) {
	const op = "repository.summary.DynamoDB.Get"

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            map[string]types.AttributeValue{hashKey: &types.AttributeValueMemberS{Value: orderID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		d.log.Error(op, slog.String("order_id", orderID), slog.String("error", err.Error()))
		return models.OrderSummary{}, fmt.Errorf("%s: get item: %w", op, err)
	}

	if len(out.Item) == 0 {
		return models.OrderSummary{}, fmt.Errorf("%s: %s: %w", op, orderID, internalErrors.ErrSummaryNotFound)
	}

	var summary models.OrderSummary
	if err = attributevalue.UnmarshalMap(out.Item, &summary); err != nil {
		return models.OrderSummary{}, fmt.Errorf("%s: unmarshal item: %w", op, err)
	}

	return summary, nil
}

// EnsureTable creates the summary table when absent and waits until it is
// ACTIVE. The wait is bounded and ends with ErrTableNotReady.
func (d *DynamoDB) EnsureTable(ctx context.Context) (string, bool, error) {
	const op = "repository.summary.DynamoDB.EnsureTable"

	out, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
	if err == nil {
		if out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return d.table, false, nil
		}

		if err = d.waitActive(ctx); err != nil {
			return "", false, fmt.Errorf("%s: %w", op, err)
		}

		return d.table, false, nil
	}
	if !internalErrors.IsNotFound(err) {
		return "", false, fmt.Errorf("%s: describe table: %w", op, err)
	}

	_, err = d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(hashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return "", false, fmt.Errorf("%s: create table: %w", op, err)
		}
	}

	d.log.Info(op, slog.String("table", d.table), slog.String("status", "creating"))

	if err = d.waitActive(ctx); err != nil {
		return "", true, fmt.Errorf("%s: %w", op, err)
	}

	return d.table, true, nil
}

func (d *DynamoDB) waitActive(ctx context.Context) error {
	attempts := max(d.waitAttempts, 1)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(d.waitDelay), attempts-1),
		ctx,
	)

	err := backoff.Retry(func() error {
		out, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
		if err != nil {
			if internalErrors.IsNotFound(err) {
				return internalErrors.ErrTableNotReady
			}
			return backoff.Permanent(err)
		}

		if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
			return internalErrors.ErrTableNotReady
		}

		return nil
	}, policy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(internalErrors.ErrTableNotReady, ctxErr)
		}
		return err
	}

	return nil
}
