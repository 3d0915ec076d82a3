package ports

import (
	"errors"
	"fmt"
)

// ValidationError means a request was malformed before any network call was
// made (non-positive amount, missing token, ...). It is never retried and is
// surfaced to the user as a form-level message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GatewayError is a failure talking to the payment gateway: either transport
// or routing trouble (the endpoint variant does not exist), or a business
// rejection surfaced by the gateway itself. Retryable marks timeouts and
// other transient transport conditions, as opposed to validation failures
// or declined transactions.
type GatewayError struct {
	Op        string
	Message   string
	Retryable bool
	Err       error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webpay %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("webpay %s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// AsGateway unwraps err into a GatewayError, if it is one.
func AsGateway(err error) (*GatewayError, bool) {
	var ge *GatewayError
	ok := errors.As(err, &ge)
	return ge, ok
}
