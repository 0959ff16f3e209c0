package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "plain", err: errors.New("connection reset"), expected: true},
		{name: "permanent", err: fmt.Errorf("put: %w", ErrPermanent), expected: false},
		{name: "invalid_message", err: fmt.Errorf("decode: %w", ErrInvalidMessage), expected: false},
		{name: "deadline", err: fmt.Errorf("put: %w", context.DeadlineExceeded), expected: true},
		{
			name:     "client_fault",
			err:      &smithy.GenericAPIError{Code: "ValidationException", Fault: smithy.FaultClient},
			expected: false,
		},
		{
			name:     "throttled_client_fault",
			err:      &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Fault: smithy.FaultClient},
			expected: true,
		},
		{
			name:     "server_fault",
			err:      fmt.Errorf("put: %w", &smithy.GenericAPIError{Code: "InternalServerError", Fault: smithy.FaultServer}),
			expected: true,
		},
		{
			name:     "unknown_fault",
			err:      &smithy.GenericAPIError{Code: "Weird"},
			expected: true,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			require.Equal(t, tCase.expected, IsRetryable(tCase.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "sentinel", err: fmt.Errorf("lookup: %w", ErrResourceNotFound), expected: true},
		{name: "queue", err: &smithy.GenericAPIError{Code: "AWS.SimpleQueueService.NonExistentQueue"}, expected: true},
		{name: "bucket_head", err: &smithy.GenericAPIError{Code: "NotFound"}, expected: true},
		{name: "parameter", err: &smithy.GenericAPIError{Code: "ParameterNotFound"}, expected: true},
		{name: "access_denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, expected: false},
		{name: "plain", err: errors.New("boom"), expected: false},
		{name: "nil", err: nil, expected: false},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			require.Equal(t, tCase.expected, IsNotFound(tCase.err))
		})
	}
}
