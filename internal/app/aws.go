package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/jeevanjot011/bevflow/internal/config"
)

type awsClients struct {
	region string

	sqs      *sqs.Client
	sns      *sns.Client
	s3       *s3.Client
	presign  *s3.PresignClient
	ssm      *ssm.Client
	dynamodb *dynamodb.Client
	ses      *sesv2.Client
	lambda   *lambda.Client
	iam      *iam.Client
}

// newAWSClients builds every service client from one shared config. A
// configured endpoint (LocalStack) replaces the default for all services.
func newAWSClients(ctx context.Context, cfg config.AWSConfig) (*awsClients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &awsClients{
		region:   cfg.Region,
		sqs:      sqs.NewFromConfig(awsCfg),
		sns:      sns.NewFromConfig(awsCfg),
		s3:       s3Client,
		presign:  s3.NewPresignClient(s3Client),
		ssm:      ssm.NewFromConfig(awsCfg),
		dynamodb: dynamodb.NewFromConfig(awsCfg),
		ses:      sesv2.NewFromConfig(awsCfg),
		lambda:   lambda.NewFromConfig(awsCfg),
		iam:      iam.NewFromConfig(awsCfg),
	}, nil
}
