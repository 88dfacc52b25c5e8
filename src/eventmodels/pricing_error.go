package eventmodels

import (
	"errors"
	"fmt"
)

var ErrInvalidParameter = errors.New("invalid parameter")
var ErrInvalidOptionType = errors.New("invalid option type")
var ErrConnection = errors.New("connection error")
var ErrAuthentication = errors.New("authentication rejected")
var ErrParse = errors.New("malformed frame")
var ErrTransportClosed = errors.New("transport closed unexpectedly")

// ParameterError names the pricing input that failed validation.
type ParameterError struct {
	Parameter string
	Reason    string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidParameter, e.Parameter, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func NewParameterError(parameter, reason string) *ParameterError {
	return &ParameterError{
		Parameter: parameter,
		Reason:    reason,
	}
}

type ErrorKind string

const (
	InvalidParameterError       ErrorKind = "InvalidParameter"
	InvalidOptionTypeError      ErrorKind = "InvalidOptionType"
	ConnectionError             ErrorKind = "ConnectionError"
	AuthenticationError         ErrorKind = "AuthenticationError"
	ParseError                  ErrorKind = "ParseError"
	TransportClosedUnexpectedly ErrorKind = "TransportClosedUnexpectedly"
	UnknownError                ErrorKind = "Unknown"
)

// ErrorKindOf classifies err against the pricing and streaming sentinels.
func ErrorKindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		return InvalidParameterError
	case errors.Is(err, ErrInvalidOptionType):
		return InvalidOptionTypeError
	case errors.Is(err, ErrAuthentication):
		return AuthenticationError
	case errors.Is(err, ErrTransportClosed):
		return TransportClosedUnexpectedly
	case errors.Is(err, ErrConnection):
		return ConnectionError
	case errors.Is(err, ErrParse):
		return ParseError
	default:
		return UnknownError
	}
}
