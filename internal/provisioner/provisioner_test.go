package provisioner

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	"github.com/jeevanjot011/bevflow/internal/repository/paramstore"
	"github.com/jeevanjot011/bevflow/internal/repository/summary"
	"github.com/jeevanjot011/bevflow/internal/resources"
	"github.com/jeevanjot011/bevflow/internal/testutil/awsfake"
	snsBroker "github.com/jeevanjot011/bevflow/pkg/brokers/sns"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

const (
	queueParam    = "/bevflow/sqs-url-test"
	topicParam    = "/bevflow/sns-arn-test"
	bucketParam   = "/bevflow/logs-bucket-test"
	functionParam = "/bevflow/lambda-arn-test"
	functionName  = "bevflow-order-processor-test"
	roleName      = "BevFlowLambdaRole-test"
	tableName     = "bevflow-orders-table-test"
)

type cloud struct {
	sqs    *awsfake.SQS
	sns    *awsfake.SNS
	s3     *awsfake.S3
	ssm    *awsfake.SSM
	ddb    *awsfake.DynamoDB
	iam    *awsfake.IAM
	lambda *awsfake.Lambda
}

func newCloud() *cloud {
	return &cloud{
		sqs:    awsfake.NewSQS(),
		sns:    awsfake.NewSNS(),
		s3:     awsfake.NewS3(),
		ssm:    awsfake.NewSSM(),
		ddb:    awsfake.NewDynamoDB(),
		iam:    awsfake.NewIAM(roleName),
		lambda: awsfake.NewLambda(),
	}
}

type setup struct {
	waitAttempts  uint64
	noSubscriber  bool
	noDeployer    bool
	binaryContent string
}

func newProvisioner(c *cloud, s setup) *Provisioner {
	log := logger.Discard()

	if s.waitAttempts == 0 {
		s.waitAttempts = 3
	}

	queues := resources.NewSQSQueues(c.sqs)
	opts := Options{
		Queue:   resources.Resource{Kind: "queue", Name: "bevflow-orders-test", Param: queueParam, Backend: queues},
		Topic:   resources.Resource{Kind: "topic", Name: "bevflow-orders-topic-test", Param: topicParam, Backend: resources.NewSNSTopics(c.sns)},
		Archive: resources.Resource{Kind: "bucket", Param: bucketParam, Backend: resources.NewS3Buckets(c.s3, awsfake.Region), Mint: resources.BucketMinter("bevflow-logs", "test")},

		FunctionParam: functionParam,
	}

	var subscriber QueueSubscriber
	if !s.noSubscriber {
		subscriber = NewSQSSubscriber(log, c.sqs, snsBroker.New(c.sns))
	}

	var deployer FunctionDeployer
	if !s.noDeployer {
		d := NewLambdaDeployer(log, FunctionConfig{
			Name:      functionName,
			RoleName:  roleName,
			Timeout:   30,
			BatchSize: 1,
			Env:       map[string]string{"SES_SENDER": "no-reply@bevflow.ie", "AWS_REGION": "eu-west-1"},
		}, c.iam, c.lambda, queues)
		d.code = func() ([]byte, error) { return zipReader(strings.NewReader(s.binaryContent)) }
		deployer = d
	}

	table := summary.NewDynamoDB(log, c.ddb, tableName, s.waitAttempts, time.Millisecond)

	return New(log, opts, resources.NewResolver(log, paramstore.New(log, c.ssm)), table, subscriber, deployer)
}

func TestEnsureAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newCloud()
	p := newProvisioner(c, setup{binaryContent: "v1"})

	first, err := p.EnsureAll(ctx)
	require.NoError(t, err)
	require.Empty(t, first.Failed())

	second, err := p.EnsureAll(ctx)
	require.NoError(t, err)
	require.Equal(t, first.Config, second.Config)

	require.Equal(t, 1, c.sqs.QueueCount())
	require.Equal(t, 1, c.sns.TopicCount())
	require.Equal(t, 1, c.ddb.TableCount())
	require.Len(t, c.s3.Buckets(), 1)
	require.Len(t, c.lambda.Functions, 1)
	require.Len(t, c.lambda.Mappings, 1)
	require.Len(t, c.sns.Subscriptions(first.Config.TopicARN), 1)
	require.Equal(t, 1, c.lambda.CodeUpdates)

	mapping := c.lambda.Mappings[0]
	require.Equal(t, int32(1), aws.ToInt32(mapping.BatchSize))
	require.Equal(t, []types.FunctionResponseType{types.FunctionResponseTypeReportBatchItemFailures}, mapping.FunctionResponseTypes)

	fn := c.lambda.Functions[functionName]
	require.Equal(t, types.RuntimeProvidedal2023, fn.Config.Runtime)
	require.Equal(t, tableName, fn.Config.Environment.Variables["DDB_TABLE"])
	require.Equal(t, first.Config.ArchiveBucket, fn.Config.Environment.Variables["LOGS_BUCKET"])
	require.Equal(t, "no-reply@bevflow.ie", fn.Config.Environment.Variables["SES_SENDER"])
	require.NotContains(t, fn.Config.Environment.Variables, "AWS_REGION")

	require.Equal(t, first.Config.QueueURL, c.ssm.Get(queueParam))
	require.Equal(t, first.Config.TopicARN, c.ssm.Get(topicParam))
	require.Equal(t, first.Config.ArchiveBucket, c.ssm.Get(bucketParam))
	require.Equal(t, functionName, c.ssm.Get(functionParam))

	policy := c.sqs.Attribute(first.Config.QueueURL, "Policy")
	require.Equal(t, 1, strings.Count(policy, policySid))
	require.Contains(t, policy, first.Config.TopicARN)
}

func TestEnsureAllMissingRoleFailsOnlyFunction(t *testing.T) {
	c := newCloud()
	c.iam = awsfake.NewIAM()
	p := newProvisioner(c, setup{})

	report, err := p.EnsureAll(context.Background())
	require.ErrorIs(t, err, internalErrors.ErrProvisioningFailed)
	require.ErrorIs(t, err, internalErrors.ErrRoleNotFound)

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, StepFunction, failed[0].Name)

	params, ok := report.Step(StepParams)
	require.True(t, ok)
	require.Equal(t, StatusOK, params.Status)

	require.NotEmpty(t, c.ssm.Get(queueParam))
	require.Empty(t, c.ssm.Get(functionParam))
	require.Empty(t, c.lambda.Functions)
}

func TestEnsureAllTableNeverActive(t *testing.T) {
	c := newCloud()
	c.ddb.ActivateAfter = -1
	p := newProvisioner(c, setup{waitAttempts: 2})

	report, err := p.EnsureAll(context.Background())
	require.ErrorIs(t, err, internalErrors.ErrTableNotReady)

	table, _ := report.Step(StepTable)
	require.Equal(t, StatusFailed, table.Status)

	function, _ := report.Step(StepFunction)
	require.Equal(t, StatusSkipped, function.Status)
	require.Equal(t, "requires "+StepTable, function.Error)

	require.Equal(t, 2, c.ddb.Describes-1)
}

func TestEnsureAllSkipsDisabledSteps(t *testing.T) {
	c := newCloud()
	p := newProvisioner(c, setup{noSubscriber: true, noDeployer: true})

	report, err := p.EnsureAll(context.Background())
	require.NoError(t, err)

	for _, name := range []string{StepSubscription, StepFunction} {
		s, ok := report.Step(name)
		require.True(t, ok)
		require.Equal(t, StatusSkipped, s.Status)
	}

	require.Empty(t, c.sns.Subscriptions(report.Config.TopicARN))
	require.Empty(t, report.Config.FunctionName)
}

func TestEnsureAllConcurrentCallers(t *testing.T) {
	c := newCloud()
	p := newProvisioner(c, setup{})

	var wg sync.WaitGroup
	errs := make([]error, 8)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.EnsureAll(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, c.sqs.QueueCount())
	require.Equal(t, 1, c.sns.TopicCount())
	require.Equal(t, 1, c.ddb.TableCount())
	require.Len(t, c.s3.Buckets(), 1)
	require.Len(t, c.lambda.Mappings, 1)
}

func TestReportJSON(t *testing.T) {
	c := newCloud()
	c.iam = awsfake.NewIAM()
	p := newProvisioner(c, setup{})

	report, _ := p.EnsureAll(context.Background())

	body, err := json.Marshal(report)
	require.NoError(t, err)
	require.Contains(t, string(body), `"status":"failed"`)
	require.Contains(t, string(body), internalErrors.ErrRoleNotFound.Error())
}

func TestMergePolicy(t *testing.T) {
	const (
		queueARN = "arn:aws:sqs:us-east-1:000000000000:orders"
		topicARN = "arn:aws:sns:us-east-1:000000000000:orders-topic"
	)

	current, _, err := mergePolicy("", queueARN, topicARN)
	require.NoError(t, err)

	tCases := []struct {
		name        string
		existing    string
		wantChanged bool
		wantCount   int
	}{
		{name: "empty", existing: "", wantChanged: true, wantCount: 1},
		{name: "up_to_date", existing: current, wantChanged: false, wantCount: 1},
		{
			name:        "single_statement_object",
			existing:    `{"Version":"2012-10-17","Statement":{"Sid":"Other","Effect":"Allow"}}`,
			wantChanged: true,
			wantCount:   2,
		},
		{
			name:        "stale_statement_replaced",
			existing:    `{"Version":"2012-10-17","Statement":[{"Sid":"Allow-SNS-SendMessage","Effect":"Allow","Condition":{"ArnEquals":{"aws:SourceArn":"arn:old"}}},{"Sid":"Other"}]}`,
			wantChanged: true,
			wantCount:   2,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			merged, changed, err := mergePolicy(tCase.existing, queueARN, topicARN)
			require.NoError(t, err)
			require.Equal(t, tCase.wantChanged, changed)

			var doc policyDocument
			require.NoError(t, json.Unmarshal([]byte(merged), &doc))
			require.Len(t, doc.Statement, tCase.wantCount)
			require.Equal(t, 1, strings.Count(merged, policySid))
			require.Contains(t, merged, topicARN)
			require.NotContains(t, merged, "arn:old")
		})
	}

	_, _, err = mergePolicy("{broken", queueARN, topicARN)
	require.Error(t, err)
}

func TestZipBinary(t *testing.T) {
	body, err := zipReader(bytes.NewReader([]byte("#!binary")))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	require.Equal(t, handlerName, zr.File[0].Name)
	require.Equal(t, "-rwxr-xr-x", zr.File[0].Mode().String())

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "#!binary", string(content))

	_, err = zipBinary("/does/not/exist")
	require.Error(t, err)
}
