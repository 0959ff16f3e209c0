package errors

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
)

var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrTableNotReady      = errors.New("table did not become active in time")
	ErrRoleNotFound       = errors.New("execution role not found")
	ErrProvisioningFailed = errors.New("provisioning failed")

	ErrEnqueueFailed   = errors.New("order was not enqueued")
	ErrInvalidMessage  = errors.New("invalid order message")
	ErrSummaryNotFound = errors.New("order summary not found")

	// ErrPermanent marks failures that will not go away on redelivery.
	ErrPermanent = errors.New("permanent failure")
)

// throttlingCodes are client-fault API errors that still succeed later.
var throttlingCodes = map[string]struct{}{
	"Throttling":                             {},
	"ThrottlingException":                    {},
	"ThrottledException":                     {},
	"RequestThrottled":                       {},
	"TooManyRequestsException":               {},
	"ProvisionedThroughputExceededException": {},
	"RequestLimitExceeded":                   {},
	"SlowDown":                               {},
	"LimitExceededException":                 {},
}

// IsRetryable reports whether redelivering the work that produced err may succeed.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrPermanent),
		errors.Is(err, ErrInvalidMessage):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := throttlingCodes[apiErr.ErrorCode()]; ok {
			return true
		}

		return apiErr.ErrorFault() != smithy.FaultClient
	}

	return true
}

// IsNotFound reports whether err is an AWS "does not exist" error or ErrResourceNotFound.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrResourceNotFound) {
		return true
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "AWS.SimpleQueueService.NonExistentQueue", "QueueDoesNotExist",
		"NotFound", "NotFoundException", "NoSuchBucket",
		"ResourceNotFoundException", "ParameterNotFound", "NoSuchEntity":
		return true
	}

	return false
}
