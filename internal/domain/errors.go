package domain

import (
	"errors"
	"fmt"
)

// Error types for pipeline failures
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeConversion     ErrorType = "conversion"
	ErrorTypeOCR            ErrorType = "ocr"
	ErrorTypeTableDetection ErrorType = "table_detection"
	ErrorTypeSerialization  ErrorType = "serialization"
	ErrorTypeConfig         ErrorType = "config"
)

// Reason codes attached to validation failures
const (
	ReasonKindMismatch     = "kind_mismatch"
	ReasonUnsupportedType  = "unsupported_type"
	ReasonEmptyUpload      = "empty_upload"
	ReasonUploadTooLarge   = "upload_too_large"
	ReasonUnknownKind      = "unknown_kind"
	ReasonMissingFile      = "missing_file"
	ReasonUnreadableSource = "unreadable_source"
)

// DomainError represents a typed pipeline failure with context
type DomainError struct {
	Type    ErrorType `json:"type"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Detail returns the wrapped cause as text, or an empty string.
func (e *DomainError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// WithReason sets the reason code and returns the same error.
func (e *DomainError) WithReason(reason string) *DomainError {
	e.Reason = reason
	return e
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

func OCRError(message string, err error) *DomainError {
	return NewError(ErrorTypeOCR, message, err)
}

func TableDetectionError(message string, err error) *DomainError {
	return NewError(ErrorTypeTableDetection, message, err)
}

func SerializationError(message string, err error) *DomainError {
	return NewError(ErrorTypeSerialization, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

// AsDomainError returns err as a *DomainError. Errors that are not already
// typed are wrapped with the fallback type.
func AsDomainError(err error, fallback ErrorType, message string) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return NewError(fallback, message, err)
}

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == errType
	}
	return false
}
