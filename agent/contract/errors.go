package contract

import "errors"

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrMalformedOutput  = errors.New("model response is not valid JSON")
	ErrRateLimited      = errors.New("model call was rate limited")
	ErrRetriesExhausted = errors.New("exhausted retries on rate limit")
	ErrValidation       = errors.New("validation failed")
)
