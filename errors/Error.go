package errors

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ERR identifies a category of failure. Kept as a small closed set rather
// than bare strings so callers can switch on Code instead of parsing
// messages, the way the teacher's generated ERR enum is used.
type ERR int32

const (
	ERR_UNKNOWN ERR = iota
	ERR_INVALID_ARGUMENT
	ERR_NOT_FOUND
	ERR_BLOCK_INVALID
	ERR_BLOCK_NOT_FOUND
	ERR_BLOCK_EXISTS
	ERR_PARENT_NOT_FOUND
	ERR_POW_INVALID
	ERR_THRESHOLD_EXCEEDED
	ERR_SERVICE_UNAVAILABLE
	ERR_SERVICE_ERROR
	ERR_PROCESSING
	ERR_CONFIGURATION
	ERR_STATE_INVALID
)

var errName = map[ERR]string{
	ERR_UNKNOWN:             "UNKNOWN",
	ERR_INVALID_ARGUMENT:    "INVALID_ARGUMENT",
	ERR_NOT_FOUND:           "NOT_FOUND",
	ERR_BLOCK_INVALID:       "BLOCK_INVALID",
	ERR_BLOCK_NOT_FOUND:     "BLOCK_NOT_FOUND",
	ERR_BLOCK_EXISTS:        "BLOCK_EXISTS",
	ERR_PARENT_NOT_FOUND:    "PARENT_NOT_FOUND",
	ERR_POW_INVALID:         "POW_INVALID",
	ERR_THRESHOLD_EXCEEDED:  "THRESHOLD_EXCEEDED",
	ERR_SERVICE_UNAVAILABLE: "SERVICE_UNAVAILABLE",
	ERR_SERVICE_ERROR:       "SERVICE_ERROR",
	ERR_PROCESSING:          "PROCESSING",
	ERR_CONFIGURATION:       "CONFIGURATION",
	ERR_STATE_INVALID:       "STATE_INVALID",
}

func (c ERR) String() string {
	if n, ok := errName[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// Error is a structured, wrapped error carrying a stable code alongside the
// human-readable message, modeled on the teacher's errors.Error.
type Error struct {
	Code       ERR
	Message    string
	WrappedErr error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.WrappedErr == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.WrappedErr)
}

// Is reports whether error codes match, walking the wrapped chain.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	var ue *Error
	if errors.As(target, &ue) {
		if e.Code == ue.Code {
			return true
		}
	}

	if unwrapped := errors.Unwrap(e); unwrapped != nil {
		if ue, ok := unwrapped.(*Error); ok {
			return ue.Is(target)
		}
	}

	return false
}

func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if targetErr, ok := target.(**Error); ok {
		*targetErr = e
		return true
	}

	if e.WrappedErr != nil {
		return errors.As(e.WrappedErr, target)
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.WrappedErr
}

// New builds an *Error, folding a trailing error parameter (if present) in
// as the wrapped cause and the rest through fmt.Sprintf, matching the
// teacher's variadic New(code, message, params...) shape.
func New(code ERR, message string, params ...interface{}) *Error {
	var wrapped error

	if len(params) > 0 {
		if err, ok := params[len(params)-1].(error); ok {
			wrapped = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{Code: code, Message: message, WrappedErr: wrapped}
}

// GRPCCode maps a Code to the nearest canonical gRPC status code. Kept even
// though no gRPC server is wired in this node, because the teacher's error
// taxonomy assigns a canonical status independently of transport.
func (c ERR) GRPCCode() codes.Code {
	switch c {
	case ERR_NOT_FOUND, ERR_BLOCK_NOT_FOUND, ERR_PARENT_NOT_FOUND:
		return codes.NotFound
	case ERR_INVALID_ARGUMENT, ERR_BLOCK_INVALID, ERR_POW_INVALID:
		return codes.InvalidArgument
	case ERR_THRESHOLD_EXCEEDED:
		return codes.ResourceExhausted
	case ERR_SERVICE_UNAVAILABLE:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// GRPCStatus satisfies the interface status.FromError looks for, so an
// *Error can cross a gRPC boundary without an explicit conversion step.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code.GRPCCode(), e.Message)
}

func Join(errs ...error) error {
	var messages []string
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return errors.New(strings.Join(messages, ", "))
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Convenience constructors, one per category other than UNKNOWN and
// THRESHOLD_EXCEEDED.

func NewInvalidArgumentError(message string, params ...interface{}) *Error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}

func NewNotFoundError(message string, params ...interface{}) *Error {
	return New(ERR_NOT_FOUND, message, params...)
}

func NewBlockInvalidError(message string, params ...interface{}) *Error {
	return New(ERR_BLOCK_INVALID, message, params...)
}

func NewBlockNotFoundError(message string, params ...interface{}) *Error {
	return New(ERR_BLOCK_NOT_FOUND, message, params...)
}

func NewBlockExistsError(message string, params ...interface{}) *Error {
	return New(ERR_BLOCK_EXISTS, message, params...)
}

func NewParentNotFoundError(message string, params ...interface{}) *Error {
	return New(ERR_PARENT_NOT_FOUND, message, params...)
}

func NewPowInvalidError(message string, params ...interface{}) *Error {
	return New(ERR_POW_INVALID, message, params...)
}

func NewServiceError(message string, params ...interface{}) *Error {
	return New(ERR_SERVICE_ERROR, message, params...)
}

func NewServiceUnavailableError(message string, params ...interface{}) *Error {
	return New(ERR_SERVICE_UNAVAILABLE, message, params...)
}

func NewProcessingError(message string, params ...interface{}) *Error {
	return New(ERR_PROCESSING, message, params...)
}

func NewConfigurationError(message string, params ...interface{}) *Error {
	return New(ERR_CONFIGURATION, message, params...)
}

func NewStateInvalidError(message string, params ...interface{}) *Error {
	return New(ERR_STATE_INVALID, message, params...)
}
