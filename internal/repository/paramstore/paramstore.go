package paramstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// Store keeps resolved resource addresses in SSM Parameter Store.
type Store struct {
	log    *slog.Logger
	client ssmAPI
}

func New(log *slog.Logger, client ssmAPI) *Store {
	return &Store{
		log:    log,
		client: client,
	}
}

// Get returns ErrResourceNotFound when the key was never written.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const op = "paramstore.Store.Get"

	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(key)})
	if err != nil {
		if internalErrors.IsNotFound(err) {
			return "", fmt.Errorf("%s: %s: %w", op, key, internalErrors.ErrResourceNotFound)
		}

		s.log.Error(op, slog.String("key", key), slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: get parameter %s: %w", op, key, err)
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("%s: %s: %w", op, key, internalErrors.ErrResourceNotFound)
	}

	return aws.ToString(out.Parameter.Value), nil
}

// Put overwrites key with value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	const op = "paramstore.Store.Put"

	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(key),
		Value:     aws.String(value),
		Type:      types.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		s.log.Error(op, slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("%s: put parameter %s: %w", op, key, err)
	}

	s.log.Debug(op, slog.String("key", key), slog.String("value", value))

	return nil
}
