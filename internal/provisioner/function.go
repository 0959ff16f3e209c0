package provisioner

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

const (
	handlerName     = "bootstrap"
	functionRuntime = types.RuntimeProvidedal2023
	functionWait    = 2 * time.Minute
)

type RoleAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

type LambdaAPI interface {
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
	ListEventSourceMappings(ctx context.Context, params *lambda.ListEventSourceMappingsInput, optFns ...func(*lambda.Options)) (*lambda.ListEventSourceMappingsOutput, error)
	CreateEventSourceMapping(ctx context.Context, params *lambda.CreateEventSourceMappingInput, optFns ...func(*lambda.Options)) (*lambda.CreateEventSourceMappingOutput, error)
}

type QueueArns interface {
	Arn(ctx context.Context, queueURL string) (string, error)
}

type FunctionConfig struct {
	Name      string
	RoleName  string
	Binary    string
	Timeout   int32
	BatchSize int32
	// Env is merged into the function environment next to the resolved resources.
	Env map[string]string
}

// LambdaDeployer packages the processor binary, creates or updates the
// function and wires it to the order queue.
type LambdaDeployer struct {
	log    *slog.Logger
	cfg    FunctionConfig
	roles  RoleAPI
	client LambdaAPI
	queues QueueArns
	// code returns the deployment zip; it reads cfg.Binary unless overridden.
	code func() ([]byte, error)
}

func NewLambdaDeployer(log *slog.Logger, cfg FunctionConfig, roles RoleAPI, client LambdaAPI, queues QueueArns) *LambdaDeployer {
	d := &LambdaDeployer{
		log:    log,
		cfg:    cfg,
		roles:  roles,
		client: client,
		queues: queues,
	}
	d.code = func() ([]byte, error) { return zipBinary(d.cfg.Binary) }

	return d
}

func (d *LambdaDeployer) Deploy(ctx context.Context, res models.ResourceConfig) (string, error) {
	const op = "provisioner.LambdaDeployer.Deploy"

	log := d.log.With(slog.String("op", op), slog.String("function", d.cfg.Name))

	roleARN, err := d.roleARN(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	code, err := d.code()
	if err != nil {
		return "", fmt.Errorf("%s: package: %w", op, errors.Join(internalErrors.ErrPermanent, err))
	}

	env := d.environment(res)

	_, err = d.client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(d.cfg.Name)})
	switch {
	case err == nil:
		if err = d.update(ctx, code, env); err != nil {
			return "", fmt.Errorf("%s: update: %w", op, err)
		}
		log.Info("function updated")
	case internalErrors.IsNotFound(err):
		if err = d.create(ctx, roleARN, code, env); err != nil {
			return "", fmt.Errorf("%s: create: %w", op, err)
		}
		log.Info("function created")
	default:
		return "", fmt.Errorf("%s: get function: %w", op, err)
	}

	if err = d.ensureMapping(ctx, res.QueueURL); err != nil {
		return "", fmt.Errorf("%s: event source: %w", op, err)
	}

	return d.cfg.Name, nil
}

func (d *LambdaDeployer) roleARN(ctx context.Context) (string, error) {
	out, err := d.roles.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(d.cfg.RoleName)})
	if err != nil {
		var noEntity *iamtypes.NoSuchEntityException
		if errors.As(err, &noEntity) || internalErrors.IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", internalErrors.ErrRoleNotFound, d.cfg.RoleName)
		}
		return "", fmt.Errorf("get role %s: %w", d.cfg.RoleName, err)
	}

	return aws.ToString(out.Role.Arn), nil
}

// environment never sets AWS_REGION; the runtime reserves it.
func (d *LambdaDeployer) environment(res models.ResourceConfig) map[string]string {
	env := map[string]string{}
	for k, v := range d.cfg.Env {
		if v != "" {
			env[k] = v
		}
	}

	env["DDB_TABLE"] = res.TableName
	env["LOGS_BUCKET"] = res.ArchiveBucket
	delete(env, "AWS_REGION")

	return env
}

func (d *LambdaDeployer) create(ctx context.Context, roleARN string, code []byte, env map[string]string) error {
	_, err := d.client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(d.cfg.Name),
		Role:         aws.String(roleARN),
		Runtime:      functionRuntime,
		Handler:      aws.String(handlerName),
		Timeout:      aws.Int32(d.cfg.Timeout),
		Code:         &types.FunctionCode{ZipFile: code},
		Environment:  &types.Environment{Variables: env},
	})
	if err != nil {
		return err
	}

	waiter := lambda.NewFunctionActiveV2Waiter(d.client)

	return waiter.Wait(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(d.cfg.Name)}, functionWait)
}

func (d *LambdaDeployer) update(ctx context.Context, code []byte, env map[string]string) error {
	_, err := d.client.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(d.cfg.Name),
		ZipFile:      code,
	})
	if err != nil {
		return err
	}

	waiter := lambda.NewFunctionUpdatedV2Waiter(d.client)
	in := &lambda.GetFunctionInput{FunctionName: aws.String(d.cfg.Name)}

	if err = waiter.Wait(ctx, in, functionWait); err != nil {
		return err
	}

	_, err = d.client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(d.cfg.Name),
		Timeout:      aws.Int32(d.cfg.Timeout),
		Environment:  &types.Environment{Variables: env},
	})
	if err != nil {
		return err
	}

	return waiter.Wait(ctx, in, functionWait)
}

func (d *LambdaDeployer) ensureMapping(ctx context.Context, queueURL string) error {
	queueARN, err := d.queues.Arn(ctx, queueURL)
	if err != nil {
		return err
	}

	out, err := d.client.ListEventSourceMappings(ctx, &lambda.ListEventSourceMappingsInput{
		EventSourceArn: aws.String(queueARN),
		FunctionName:   aws.String(d.cfg.Name),
	})
	if err != nil {
		return err
	}
	if len(out.EventSourceMappings) > 0 {
		return nil
	}

	_, err = d.client.CreateEventSourceMapping(ctx, &lambda.CreateEventSourceMappingInput{
		EventSourceArn:        aws.String(queueARN),
		FunctionName:          aws.String(d.cfg.Name),
		BatchSize:             aws.Int32(d.cfg.BatchSize),
		Enabled:               aws.Bool(true),
		FunctionResponseTypes: []types.FunctionResponseType{types.FunctionResponseTypeReportBatchItemFailures},
	})
	if err != nil {
		return err
	}

	d.log.Info("event source mapping created", slog.String("queue", queueARN), slog.String("function", d.cfg.Name))

	return nil
}

func zipBinary(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return zipReader(f)
}

func zipReader(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	header := &zip.FileHeader{Name: handlerName, Method: zip.Deflate}
	header.SetMode(0o755)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(w, r); err != nil {
		return nil, err
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
