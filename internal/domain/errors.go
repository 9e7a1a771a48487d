package domain

import "errors"

// ErrorKind discriminates every expected business failure. The HTTP layer maps
// kinds to status codes; the services put them on the response envelope.
type ErrorKind string

const (
	KindInvalidArgument     ErrorKind = "INVALID_ARGUMENT"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindAccountClosed       ErrorKind = "ACCOUNT_CLOSED"
	KindInsufficientFunds   ErrorKind = "INSUFFICIENT_FUNDS"
	KindCurrencyMismatch    ErrorKind = "CURRENCY_MISMATCH"
	KindAllocationExhausted ErrorKind = "ALLOCATION_EXHAUSTED"
	KindStoreConflict       ErrorKind = "STORE_CONFLICT"
	KindServerError         ErrorKind = "SERVER_ERROR"
)

// Error is a business-rule failure. Infrastructure faults are plain errors and
// are converted to KindServerError at the service boundary.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewInvalidArgument(message string) *Error {
	return NewError(KindInvalidArgument, message)
}

// KindOf extracts the business kind from an error chain, or KindServerError
// when the failure is not a recognized business rule.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindServerError
}
