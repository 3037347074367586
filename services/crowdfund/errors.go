package crowdfund

import (
	"fmt"
	"net/http"
)

// Code identifies an error kind. Codes are stable and exposed at the API
// boundary.
type Code string

const (
	CodeNotAuthorized         Code = "NOT_AUTHORIZED"
	CodeUnknownCampaign       Code = "UNKNOWN_CAMPAIGN"
	CodeInvalidRecipient      Code = "INVALID_RECIPIENT"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeZeroAmount            Code = "ZERO_AMOUNT"
	CodeDeadlineInPast        Code = "DEADLINE_IN_PAST"
	CodeDeadlineExpired       Code = "DEADLINE_EXPIRED"
	CodeDeadlineNotYetReached Code = "DEADLINE_NOT_YET_REACHED"
	CodeInvalidState          Code = "INVALID_STATE"
	CodeNothingToRefund       Code = "NOTHING_TO_REFUND"
	CodeTransferFailed        Code = "TRANSFER_FAILED"
	CodeReentrancyDetected    Code = "REENTRANCY_DETECTED"
	CodeOperationNotSupported Code = "OPERATION_NOT_SUPPORTED"
)

// Error is a typed service error. Two Errors match under errors.Is when their
// codes are equal, so callers compare against the sentinel values below.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by code so wrapped instances compare equal to sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus maps the error code to an HTTP status for the API layer.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotAuthorized:
		return http.StatusForbidden
	case CodeUnknownCampaign:
		return http.StatusNotFound
	case CodeInvalidRecipient, CodeInvalidAmount, CodeZeroAmount,
		CodeDeadlineInPast, CodeOperationNotSupported:
		return http.StatusBadRequest
	case CodeDeadlineExpired, CodeDeadlineNotYetReached, CodeInvalidState,
		CodeNothingToRefund, CodeReentrancyDetected:
		return http.StatusConflict
	case CodeTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinel errors, one per code.
var (
	ErrNotAuthorized         = &Error{Code: CodeNotAuthorized, Message: "caller is not the administrator"}
	ErrUnknownCampaign       = &Error{Code: CodeUnknownCampaign, Message: "campaign does not exist"}
	ErrInvalidRecipient      = &Error{Code: CodeInvalidRecipient, Message: "recipient is required"}
	ErrInvalidAmount         = &Error{Code: CodeInvalidAmount, Message: "amount must be strictly positive"}
	ErrZeroAmount            = &Error{Code: CodeZeroAmount, Message: "donation amount must be strictly positive"}
	ErrDeadlineInPast        = &Error{Code: CodeDeadlineInPast, Message: "deadline must be in the future"}
	ErrDeadlineExpired       = &Error{Code: CodeDeadlineExpired, Message: "campaign deadline has passed"}
	ErrDeadlineNotYetReached = &Error{Code: CodeDeadlineNotYetReached, Message: "goal not reached and deadline not expired"}
	ErrInvalidState          = &Error{Code: CodeInvalidState, Message: "operation not legal in current campaign status"}
	ErrNothingToRefund       = &Error{Code: CodeNothingToRefund, Message: "no recorded contribution to refund"}
	ErrTransferFailed        = &Error{Code: CodeTransferFailed, Message: "external transfer failed"}
	ErrReentrancyDetected    = &Error{Code: CodeReentrancyDetected, Message: "nested call rejected while transfer in flight"}
	ErrOperationNotSupported = &Error{Code: CodeOperationNotSupported, Message: "operation not supported"}
)

// transferFailed wraps the underlying transfer error while keeping the
// TRANSFER_FAILED identity.
func transferFailed(err error) *Error {
	return &Error{Code: CodeTransferFailed, Message: "external transfer failed", Err: err}
}
