// Package errors provides standardized error handling for the site builder.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Config load errors
const (
	ErrCodeConfigLoadFailed    ErrorCode = "CONFIG_LOAD_FAILED"
	ErrCodeConfigParseFailed   ErrorCode = "CONFIG_PARSE_FAILED"
	ErrCodeMissingConfigSource ErrorCode = "MISSING_CONFIG_SOURCE"
	ErrCodeInvalidMode         ErrorCode = "INVALID_MODE"
)

// Engine errors
const (
	ErrCodeMissingContainer ErrorCode = "MISSING_CONTAINER"
	ErrCodeInitSuperseded   ErrorCode = "INIT_SUPERSEDED"
)

// Lookup and site errors
const (
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateExists   ErrorCode = "TEMPLATE_EXISTS"
	ErrCodeSiteNotFound     ErrorCode = "SITE_NOT_FOUND"
	ErrCodeSiteExists       ErrorCode = "SITE_EXISTS"
	ErrCodeExportFailed     ErrorCode = "EXPORT_FAILED"
	ErrCodePublishFailed    ErrorCode = "PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code, so errors.Is works against the
// sentinel values below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrConfigLoadFailed = &StandardError{Code: ErrCodeConfigLoadFailed}
	ErrConfigParse      = &StandardError{Code: ErrCodeConfigParseFailed}
	ErrMissingContainer = &StandardError{Code: ErrCodeMissingContainer}
	ErrTemplateNotFound = &StandardError{Code: ErrCodeTemplateNotFound}
	ErrTemplateExists   = &StandardError{Code: ErrCodeTemplateExists}
	ErrSiteNotFound     = &StandardError{Code: ErrCodeSiteNotFound}
	ErrSiteExists       = &StandardError{Code: ErrCodeSiteExists}
	ErrInvalidMode      = &StandardError{Code: ErrCodeInvalidMode}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigLoadError reports a config document that could not be read or fetched.
func NewConfigLoadError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigLoadFailed,
		Message:   "Failed to load config",
		Details:   fmt.Sprintf("source: %s, error: %v", source, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewConfigParseError reports a config document that is not valid JSON.
func NewConfigParseError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigParseFailed,
		Message:   "Config is not valid JSON",
		Details:   fmt.Sprintf("source: %s, error: %v", source, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewMissingConfigSourceError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingConfigSource,
		Message:   "Either configPath or configData is required",
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingContainerError(containerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingContainer,
		Message:   "Container not found",
		Details:   fmt.Sprintf("containerId: %s", containerID),
		Timestamp: time.Now().UTC(),
	}
}

// NewInitSupersededError marks a load that finished after a newer init started.
func NewInitSupersededError(generation uint64) *StandardError {
	return &StandardError{
		Code:      ErrCodeInitSuperseded,
		Message:   "Init superseded by a newer call",
		Metadata:  map[string]interface{}{"generation": generation},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidModeError(mode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidMode,
		Message:   "Deployment mode must be local or cdn",
		Details:   fmt.Sprintf("mode: %s", mode),
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found in registry",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Timestamp: time.Now().UTC(),
	}
}

func NewTemplateExistsError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateExists,
		Message:   "Template already exists",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Timestamp: time.Now().UTC(),
	}
}

func NewSiteNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSiteNotFound,
		Message:   "Site not found",
		Details:   fmt.Sprintf("path: %s", path),
		Timestamp: time.Now().UTC(),
	}
}

func NewSiteExistsError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSiteExists,
		Message:   "Directory already exists",
		Details:   fmt.Sprintf("path: %s", path),
		Timestamp: time.Now().UTC(),
	}
}

func NewExportFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportFailed,
		Message:   "Export failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPublishFailedError wraps an upload failure. Network errors are retryable.
func NewPublishFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePublishFailed,
		Message:   "Failed to publish file",
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf returns the code of the first StandardError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONFIG"), code == ErrCodeMissingConfigSource, code == ErrCodeInvalidMode:
		return "LOAD"
	case code == ErrCodeMissingContainer, code == ErrCodeInitSuperseded:
		return "CONTAINER"
	case strings.HasPrefix(codeStr, "TEMPLATE"):
		return "LOOKUP"
	case strings.HasPrefix(codeStr, "SITE"), code == ErrCodeExportFailed, code == ErrCodePublishFailed:
		return "SITE"
	default:
		return "OTHER"
	}
}
