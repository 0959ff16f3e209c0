package awsfake

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type SSM struct {
	mu sync.Mutex

	Values map[string]string
	GetErr error
	PutErr error
}

func NewSSM() *SSM {
	return &SSM{Values: map[string]string{}}
}

func (f *SSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return nil, f.GetErr
	}

	value, ok := f.Values[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{Message: aws.String("parameter not found")}
	}

	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(value)}}, nil
}

func (f *SSM) PutParameter(_ context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PutErr != nil {
		return nil, f.PutErr
	}

	f.Values[aws.ToString(in.Name)] = aws.ToString(in.Value)

	return &ssm.PutParameterOutput{}, nil
}

func (f *SSM) Get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.Values[key]
}

func (f *SSM) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Values[key] = value
}
