package awsfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

type IAM struct {
	Roles map[string]string
}

func NewIAM(roles ...string) *IAM {
	f := &IAM{Roles: map[string]string{}}
	for _, role := range roles {
		f.Roles[role] = fmt.Sprintf("arn:aws:iam::%s:role/%s", Account, role)
	}

	return f
}

func (f *IAM) GetRole(_ context.Context, in *iam.GetRoleInput, _ ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	arn, ok := f.Roles[aws.ToString(in.RoleName)]
	if !ok {
		return nil, &iamtypes.NoSuchEntityException{Message: aws.String("role not found")}
	}

	return &iam.GetRoleOutput{Role: &iamtypes.Role{RoleName: in.RoleName, Arn: aws.String(arn)}}, nil
}

type Function struct {
	Config types.FunctionConfiguration
	Code   []byte
}

type Lambda struct {
	mu sync.Mutex

	Functions     map[string]*Function
	Mappings      []types.EventSourceMappingConfiguration
	CodeUpdates   int
	ConfigUpdates int
}

func NewLambda() *Lambda {
	return &Lambda{Functions: map[string]*Function{}}
}

func (f *Lambda) GetFunction(_ context.Context, in *lambda.GetFunctionInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn, ok := f.Functions[aws.ToString(in.FunctionName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("function not found")}
	}

	cfg := fn.Config

	return &lambda.GetFunctionOutput{Configuration: &cfg}, nil
}

func (f *Lambda) CreateFunction(_ context.Context, in *lambda.CreateFunctionInput, _ ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.FunctionName)
	if _, ok := f.Functions[name]; ok {
		return nil, &types.ResourceConflictException{Message: aws.String("function exists")}
	}

	fn := &Function{
		Config: types.FunctionConfiguration{
			FunctionName:     in.FunctionName,
			FunctionArn:      aws.String(fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", Region, Account, name)),
			Role:             in.Role,
			Runtime:          in.Runtime,
			Handler:          in.Handler,
			Timeout:          in.Timeout,
			Environment:      &types.EnvironmentResponse{},
			State:            types.StateActive,
			LastUpdateStatus: types.LastUpdateStatusSuccessful,
		},
	}
	if in.Environment != nil {
		fn.Config.Environment.Variables = in.Environment.Variables
	}
	if in.Code != nil {
		fn.Code = in.Code.ZipFile
	}
	f.Functions[name] = fn

	cfg := fn.Config

	return &lambda.CreateFunctionOutput{
		FunctionName: cfg.FunctionName,
		FunctionArn:  cfg.FunctionArn,
		State:        cfg.State,
	}, nil
}

func (f *Lambda) UpdateFunctionCode(_ context.Context, in *lambda.UpdateFunctionCodeInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn, ok := f.Functions[aws.ToString(in.FunctionName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("function not found")}
	}

	f.CodeUpdates++
	fn.Code = in.ZipFile

	return &lambda.UpdateFunctionCodeOutput{FunctionArn: fn.Config.FunctionArn}, nil
}

func (f *Lambda) UpdateFunctionConfiguration(_ context.Context, in *lambda.UpdateFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn, ok := f.Functions[aws.ToString(in.FunctionName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("function not found")}
	}

	f.ConfigUpdates++
	if in.Environment != nil {
		fn.Config.Environment = &types.EnvironmentResponse{Variables: in.Environment.Variables}
	}
	if in.Timeout != nil {
		fn.Config.Timeout = in.Timeout
	}

	return &lambda.UpdateFunctionConfigurationOutput{FunctionArn: fn.Config.FunctionArn}, nil
}

func (f *Lambda) ListEventSourceMappings(_ context.Context, in *lambda.ListEventSourceMappingsInput, _ ...func(*lambda.Options)) (*lambda.ListEventSourceMappingsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &lambda.ListEventSourceMappingsOutput{}
	for _, m := range f.Mappings {
		if aws.ToString(m.EventSourceArn) != aws.ToString(in.EventSourceArn) {
			continue
		}
		if in.FunctionName != nil && aws.ToString(m.FunctionArn) != f.arnLocked(aws.ToString(in.FunctionName)) {
			continue
		}
		out.EventSourceMappings = append(out.EventSourceMappings, m)
	}

	return out, nil
}

func (f *Lambda) CreateEventSourceMapping(_ context.Context, in *lambda.CreateEventSourceMappingInput, _ ...func(*lambda.Options)) (*lambda.CreateEventSourceMappingOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := fmt.Sprintf("mapping-%d", len(f.Mappings)+1)
	state := "Disabled"
	if aws.ToBool(in.Enabled) {
		state = "Enabled"
	}

	f.Mappings = append(f.Mappings, types.EventSourceMappingConfiguration{
		UUID:                  aws.String(id),
		EventSourceArn:        in.EventSourceArn,
		FunctionArn:           aws.String(f.arnLocked(aws.ToString(in.FunctionName))),
		BatchSize:             in.BatchSize,
		State:                 aws.String(state),
		FunctionResponseTypes: in.FunctionResponseTypes,
	})

	return &lambda.CreateEventSourceMappingOutput{UUID: aws.String(id)}, nil
}

func (f *Lambda) arnLocked(name string) string {
	if fn, ok := f.Functions[name]; ok {
		return aws.ToString(fn.Config.FunctionArn)
	}

	return name
}
