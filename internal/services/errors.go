package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid           ErrorCode = "invalid"
	ErrorConsentMissing    ErrorCode = "consent_missing"
	ErrorInvalidIdentifier ErrorCode = "invalid_identifier"
	ErrorSaltUnconfigured  ErrorCode = "salt_unconfigured"
	ErrorItemConfig        ErrorCode = "item_config"
	ErrorLocalWrite        ErrorCode = "local_write"
	ErrorRemoteWrite       ErrorCode = "remote_write"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error { return &ServiceError{Code: ErrorInvalid, Message: msg} }

func NewConsentMissingError() error {
	return &ServiceError{Code: ErrorConsentMissing, Message: "informed consent must be accepted before saving"}
}

func NewInvalidIdentifierError() error {
	return &ServiceError{Code: ErrorInvalidIdentifier, Message: "invalid RUT: check format and verification digit"}
}

func NewSaltUnconfiguredError() error {
	return &ServiceError{Code: ErrorSaltUnconfigured, Message: "SALT is not configured; refusing to pseudonymize"}
}

func NewItemConfigError(msg string) error {
	return &ServiceError{Code: ErrorItemConfig, Message: msg}
}

func NewLocalWriteError(msg string) error {
	return &ServiceError{Code: ErrorLocalWrite, Message: msg}
}

func NewRemoteWriteError(msg string) error {
	return &ServiceError{Code: ErrorRemoteWrite, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
