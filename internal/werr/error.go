package werr

import (
	"errors"
	"fmt"
)

// Kind classifies a wallet failure. The string value doubles as the
// machine-readable code returned by the HTTP API.
type Kind string

const (
	InvalidKeyFormat    Kind = "INVALID_KEY_FORMAT"
	CorruptRecord       Kind = "CORRUPT_RECORD"
	InvalidDestination  Kind = "INVALID_DESTINATION"
	InvalidAmount       Kind = "INVALID_AMOUNT"
	InvalidArgument     Kind = "INVALID_ARGUMENT"
	DuplicateName       Kind = "DUPLICATE_NAME"
	MalformedInterface  Kind = "MALFORMED_INTERFACE"
	UnknownContract     Kind = "UNKNOWN_CONTRACT"
	UnknownFunction     Kind = "UNKNOWN_FUNCTION"
	SubmissionRejected  Kind = "SUBMISSION_REJECTED"
	ExecutionReverted   Kind = "EXECUTION_REVERTED"
	ConfirmationTimeout Kind = "CONFIRMATION_TIMEOUT"
	TransportFailure    Kind = "TRANSPORT_FAILURE"
	StorageFailure      Kind = "STORAGE_FAILURE"
	InvalidPassword     Kind = "INVALID_PASSWORD"
	WalletNotLoaded     Kind = "WALLET_NOT_LOADED"
	CooldownActive      Kind = "COOLDOWN_ACTIVE"
)

// Error is a classified failure with a human-readable cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around a cause
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is checks if err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
